package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Company represents a contractor firm whose personnel need facility access
type Company struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	// Name as entered; uniqueness is enforced on NormalizedName so that
	// "Acme Srl" and "acmesrl" cannot coexist.
	Name               string     `gorm:"type:varchar(255);not null" json:"name"`
	NormalizedName     string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"-"`
	TaxCode            string     `gorm:"type:varchar(50)" json:"tax_code"`
	ContactName        string     `gorm:"type:varchar(255)" json:"contact_name"`
	ContactEmail       string     `gorm:"type:varchar(255)" json:"contact_email"`
	ContactPhone       string     `gorm:"type:varchar(50)" json:"contact_phone"`
	Note               string     `gorm:"type:text" json:"note"`
	AccessBlocked      bool       `gorm:"default:false" json:"access_blocked"`
	SoleProprietorship bool       `gorm:"default:false" json:"sole_proprietorship"`
	Employees          []Employee `gorm:"foreignKey:CompanyID" json:"employees,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// BeforeSave keeps NormalizedName in sync no matter which path writes the
// row, so the uniqueness guarantee cannot be bypassed.
func (c *Company) BeforeSave(tx *gorm.DB) error {
	c.NormalizedName = NormalizeCompanyName(c.Name)
	return nil
}

// NormalizeCompanyName lowers the name and strips all spaces. Both the
// interactive add flow and the CSV import deduplicate through this one
// function, so a company can never be created twice under spelling variants.
func NormalizeCompanyName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "")
}
