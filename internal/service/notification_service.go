package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"badgereg/internal/model"
	"badgereg/internal/repository"
)

// --- DTOs ---

type AddRecipientRequest struct {
	Email string `json:"email" binding:"required,email"`
	Kind  string `json:"kind" binding:"required,oneof=weekly expiry"`
}

type StoreTokenRequest struct {
	Email        string    `json:"email" binding:"required,email"`
	AccessToken  string    `json:"access_token" binding:"required"`
	RefreshToken string    `json:"refresh_token"`
	TokenURI     string    `json:"token_uri"`
	ClientID     string    `json:"client_id"`
	ClientSecret string    `json:"client_secret"`
	Scopes       string    `json:"scopes"`
	Expiry       time.Time `json:"expiry"`
}

// NotificationService manages the mailing subscriber lists and the sender
// credentials the report mailers authenticate with.
type NotificationService interface {
	ListRecipients(ctx context.Context, kind string) ([]string, error)
	AddRecipient(ctx context.Context, req AddRecipientRequest) error
	StoreToken(ctx context.Context, req StoreTokenRequest) error
	TokenExpiry(ctx context.Context, email string) (*time.Time, error)
}

type notificationService struct {
	recipients repository.RecipientRepository
	tokens     repository.TokenRepository
}

func NewNotificationService(recipients repository.RecipientRepository, tokens repository.TokenRepository) NotificationService {
	return &notificationService{recipients: recipients, tokens: tokens}
}

func (s *notificationService) ListRecipients(ctx context.Context, kind string) ([]string, error) {
	if kind != model.RecipientWeekly && kind != model.RecipientExpiry {
		return nil, fmt.Errorf("unknown recipient kind %q", kind)
	}
	return s.recipients.ListByKind(ctx, kind)
}

func (s *notificationService) AddRecipient(ctx context.Context, req AddRecipientRequest) error {
	return s.recipients.Add(ctx, req.Email, req.Kind)
}

func (s *notificationService) StoreToken(ctx context.Context, req StoreTokenRequest) error {
	return s.tokens.Upsert(ctx, &model.OAuthToken{
		Email:        req.Email,
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
		TokenURI:     req.TokenURI,
		ClientID:     req.ClientID,
		ClientSecret: req.ClientSecret,
		Scopes:       req.Scopes,
		Expiry:       req.Expiry,
	})
}

// TokenExpiry reports when the stored credentials for a sender identity
// expire, without ever exposing the credentials themselves.
func (s *notificationService) TokenExpiry(ctx context.Context, email string) (*time.Time, error) {
	token, err := s.tokens.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("no credentials stored for %s", email)
		}
		return nil, err
	}
	return &token.Expiry, nil
}
