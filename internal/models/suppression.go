package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/customeros/outreachstack/internal/enum"
	"github.com/customeros/outreachstack/internal/utils"
)

// Suppression blocks a recipient from all future contact. Hard bounces,
// complaints and unsubscribes create suppressions; they are checked both
// at schedule time and again immediately before dispatch.
type Suppression struct {
	ID           string                 `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	Tenant       string                 `gorm:"column:tenant;type:varchar(255);index;not null" json:"tenant"`
	EmailAddress string                 `gorm:"column:email_address;type:varchar(255);uniqueIndex:idx_suppression_tenant_email;not null" json:"emailAddress"`
	Reason       enum.SuppressionReason `gorm:"column:reason;type:varchar(50);not null" json:"reason"`
	Detail       string                 `gorm:"column:detail;type:text" json:"detail"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
}

func (Suppression) TableName() string {
	return "suppressions"
}

func (s *Suppression) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = utils.GenerateNanoIDWithPrefix("sup", 16)
	}
	return nil
}
