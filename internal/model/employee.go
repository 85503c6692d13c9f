package model

import (
	"time"

	"github.com/google/uuid"
)

// Employee represents a person employed by a Company and the state of their
// access badge.
type Employee struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FirstName string    `gorm:"type:varchar(255);not null" json:"first_name"`
	LastName  string    `gorm:"type:varchar(255);not null" json:"last_name"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index" json:"company_id"`
	Company   *Company  `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	// BadgeIssued tracks whether the physical badge has been handed out.
	BadgeIssued   bool `gorm:"default:false" json:"badge_issued"`
	AccessBlocked bool `gorm:"default:false" json:"access_blocked"`
	// BadgeSuspended keeps its historic column name: several flows read it
	// as "badge currently valid". Import mapping is explicit, see importer.
	BadgeSuspended bool `gorm:"default:false" json:"badge_suspended"`
	BadgeCancelled bool `gorm:"default:false" json:"badge_cancelled"`
	// BadgeTemporary marks loaner badges; BadgeNumber and
	// AuthorizationExpiry are only meaningful when it is set.
	BadgeTemporary      bool       `gorm:"default:false" json:"badge_temporary"`
	BadgeNumber         string     `gorm:"type:varchar(50)" json:"badge_number"`
	RoleID              *uuid.UUID `gorm:"type:uuid;index" json:"role_id"`
	Role                *Role      `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	AuthorizationExpiry *time.Time `gorm:"type:date" json:"authorization_expiry"`
	Note                string     `gorm:"type:text" json:"note"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// Role is an optional job role attached to an employee
type Role struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
