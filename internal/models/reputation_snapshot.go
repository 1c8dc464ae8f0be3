package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReputationSnapshot records the component breakdown of a health score
// recompute so reputation history can be charted per identity.
type ReputationSnapshot struct {
	ID         string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Tenant     string    `gorm:"column:tenant;type:varchar(255);NOT NULL" json:"tenant"`
	CreatedAt  time.Time `gorm:"column:created_at;type:timestamp;DEFAULT:current_timestamp" json:"createdAt"`
	IdentityID string    `gorm:"column:identity_id;type:varchar(50);index" json:"identityId"`

	HealthScore      int `gorm:"column:health_score;type:integer" json:"healthScore"`
	AuthPenalty      int `gorm:"column:auth_penalty;type:integer" json:"authPenalty"`
	BouncePenalty    int `gorm:"column:bounce_penalty;type:integer" json:"bouncePenalty"`
	ComplaintPenalty int `gorm:"column:complaint_penalty;type:integer" json:"complaintPenalty"`
	EngagementBonus  int `gorm:"column:engagement_bonus;type:integer" json:"engagementBonus"`
}

func (ReputationSnapshot) TableName() string {
	return "reputation_snapshots"
}

func (s *ReputationSnapshot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}
