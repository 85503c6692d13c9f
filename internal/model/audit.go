package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateCompany  = "CREATE_COMPANY"
	ActionUpdateCompany  = "UPDATE_COMPANY"
	ActionDeleteCompany  = "DELETE_COMPANY"
	ActionCreateEmployee = "CREATE_EMPLOYEE"
	ActionUpdateEmployee = "UPDATE_EMPLOYEE"
	ActionDeleteEmployee = "DELETE_EMPLOYEE"
	ActionToggleFlag     = "TOGGLE_FLAG"
	ActionImportBatch    = "IMPORT_BATCH"
)

// AuditLog tracks Who, What, and When for critical registry changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable for batch jobs
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string     `gorm:"type:text" json:"details"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
