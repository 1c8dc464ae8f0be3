package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/customeros/outreachstack/internal/enum"
	"github.com/customeros/outreachstack/internal/utils"
)

// ChannelTouch is one scheduled outreach attempt on a specific channel.
// Touches are created by the orchestrator and consumed by the external
// job scheduler.
type ChannelTouch struct {
	ID         string `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	Tenant     string `gorm:"column:tenant;type:varchar(255);index;not null" json:"tenant"`
	ProspectID string `gorm:"column:prospect_id;type:varchar(50);index;not null" json:"prospectId"`

	Channel      enum.Channel      `gorm:"column:channel;type:varchar(50);index;not null" json:"channel"`
	ScheduledFor time.Time         `gorm:"column:scheduled_for;type:timestamp;index;not null" json:"scheduledFor"`
	Priority     int               `gorm:"column:priority;default:0" json:"priority"`
	StrategyType enum.StrategyType `gorm:"column:strategy_type;type:varchar(50)" json:"strategyType"`
	Trigger      enum.TouchTrigger `gorm:"column:trigger_type;type:varchar(50)" json:"trigger"`

	Status        enum.TouchStatus `gorm:"column:status;type:varchar(50);index" json:"status"`
	FailureReason string           `gorm:"column:failure_reason;type:text" json:"failureReason"`
	DispatchedAt  *time.Time       `gorm:"column:dispatched_at;type:timestamp" json:"dispatchedAt"`

	// Set when an inbound response is attributed to this touch.
	ResponseAt *time.Time `gorm:"column:response_at;type:timestamp" json:"responseAt"`

	Metadata JSONMap `gorm:"column:metadata;type:jsonb" json:"metadata"`

	CreatedAt time.Time      `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (ChannelTouch) TableName() string {
	return "channel_touches"
}

func (t *ChannelTouch) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = utils.GenerateNanoIDWithPrefix("touch", 16)
	}
	return nil
}

// HardFailed reports whether the touch failed in a way that should push
// the prospect to another channel (e.g. a bounce).
func (t *ChannelTouch) HardFailed() bool {
	return t.Status == enum.TouchStatusFailed && t.FailureReason != ""
}
