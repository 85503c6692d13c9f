package model

import (
	"time"

	"github.com/google/uuid"
)

// Recipient kinds for the two periodic mailings
const (
	RecipientWeekly = "weekly"
	RecipientExpiry = "expiry"
)

// EmailRecipient is an address subscribed to one of the periodic report
// mailings.
type EmailRecipient struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"type:varchar(255);not null;index:idx_recipient_kind_email,unique" json:"email"`
	Kind      string    `gorm:"type:varchar(20);not null;index:idx_recipient_kind_email,unique" json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

// OAuthToken stores the credentials of a sender identity, one row per
// email, upserted each time the identity (re)authenticates. Exchanging and
// refreshing tokens happens outside this service.
type OAuthToken struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	AccessToken  string    `gorm:"type:text" json:"-"`
	RefreshToken string    `gorm:"type:text" json:"-"`
	TokenURI     string    `gorm:"type:varchar(255)" json:"token_uri"`
	ClientID     string    `gorm:"type:varchar(255)" json:"-"`
	ClientSecret string    `gorm:"type:varchar(255)" json:"-"`
	Scopes       string    `gorm:"type:text" json:"scopes"`
	Expiry       time.Time `json:"expiry"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
