package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IDs are generated application-side so the schema works on any SQL
// backend, including the sqlite databases the tests run on.

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (c *Company) BeforeCreate(tx *gorm.DB) error        { ensureID(&c.ID); return nil }
func (e *Employee) BeforeCreate(tx *gorm.DB) error       { ensureID(&e.ID); return nil }
func (r *Role) BeforeCreate(tx *gorm.DB) error           { ensureID(&r.ID); return nil }
func (u *User) BeforeCreate(tx *gorm.DB) error           { ensureID(&u.ID); return nil }
func (r *AccountRole) BeforeCreate(tx *gorm.DB) error    { ensureID(&r.ID); return nil }
func (p *Permission) BeforeCreate(tx *gorm.DB) error     { ensureID(&p.ID); return nil }
func (r *EmailRecipient) BeforeCreate(tx *gorm.DB) error { ensureID(&r.ID); return nil }
func (t *OAuthToken) BeforeCreate(tx *gorm.DB) error     { ensureID(&t.ID); return nil }
func (l *AuditLog) BeforeCreate(tx *gorm.DB) error       { ensureID(&l.ID); return nil }
