package repository

import (
	"context"
	"errors"

	"badgereg/internal/model"

	"gorm.io/gorm"
)

// RecipientRepository resolves the subscriber lists of the periodic mailings
type RecipientRepository interface {
	ListByKind(ctx context.Context, kind string) ([]string, error)
	Add(ctx context.Context, email, kind string) error
}

type recipientRepository struct {
	db *gorm.DB
}

func NewRecipientRepository(db *gorm.DB) RecipientRepository {
	return &recipientRepository{db: db}
}

func (r *recipientRepository) ListByKind(ctx context.Context, kind string) ([]string, error) {
	var emails []string
	err := GetDB(ctx, r.db).Model(&model.EmailRecipient{}).
		Where("kind = ?", kind).
		Order("email ASC").
		Pluck("email", &emails).Error
	return emails, err
}

func (r *recipientRepository) Add(ctx context.Context, email, kind string) error {
	return GetDB(ctx, r.db).Create(&model.EmailRecipient{Email: email, Kind: kind}).Error
}

// TokenRepository stores sender credentials, one row per email identity
type TokenRepository interface {
	GetByEmail(ctx context.Context, email string) (*model.OAuthToken, error)
	Upsert(ctx context.Context, token *model.OAuthToken) error
}

type tokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) GetByEmail(ctx context.Context, email string) (*model.OAuthToken, error) {
	var token model.OAuthToken
	if err := GetDB(ctx, r.db).First(&token, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &token, nil
}

// Upsert replaces the stored credentials for the identity on
// re-authentication, keeping a single row per email.
func (r *tokenRepository) Upsert(ctx context.Context, token *model.OAuthToken) error {
	db := GetDB(ctx, r.db)

	var existing model.OAuthToken
	err := db.First(&existing, "email = ?", token.Email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Create(token).Error
	}
	if err != nil {
		return err
	}

	token.ID = existing.ID
	token.CreatedAt = existing.CreatedAt
	return db.Save(token).Error
}
