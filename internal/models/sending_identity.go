package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/customeros/outreachstack/internal/enum"
	"github.com/customeros/outreachstack/internal/utils"
)

// SendingIdentity is a domain or account emails are sent from. It is
// owned exclusively by the health engine and mutated on every send,
// bounce and complaint event.
type SendingIdentity struct {
	ID           string `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	Tenant       string `gorm:"column:tenant;type:varchar(255);index;not null" json:"tenant"`
	Domain       string `gorm:"column:domain;type:varchar(255);index;not null" json:"domain"`
	EmailAddress string `gorm:"column:email_address;type:varchar(255);index" json:"emailAddress"`

	// Reputation
	HealthScore    int     `gorm:"column:health_score;default:100" json:"healthScore"`
	HardBounceRate float64 `gorm:"column:hard_bounce_rate;default:0" json:"hardBounceRate"`
	SoftBounceRate float64 `gorm:"column:soft_bounce_rate;default:0" json:"softBounceRate"`
	ComplaintRate  float64 `gorm:"column:complaint_rate;default:0" json:"complaintRate"`
	OpenRate       float64 `gorm:"column:open_rate;default:0" json:"openRate"`
	ClickRate      float64 `gorm:"column:click_rate;default:0" json:"clickRate"`
	ReplyRate      float64 `gorm:"column:reply_rate;default:0" json:"replyRate"`

	// Delivery counters the rates above are derived from. TotalSent is
	// incremented by the daily send reservation; the others by the
	// bounce/complaint/engagement tracking paths.
	TotalSent   int64 `gorm:"column:total_sent;default:0" json:"totalSent"`
	HardBounces int64 `gorm:"column:hard_bounces;default:0" json:"hardBounces"`
	SoftBounces int64 `gorm:"column:soft_bounces;default:0" json:"softBounces"`
	Complaints  int64 `gorm:"column:complaints;default:0" json:"complaints"`
	Opens       int64 `gorm:"column:opens;default:0" json:"opens"`
	Clicks      int64 `gorm:"column:clicks;default:0" json:"clicks"`
	Replies     int64 `gorm:"column:replies;default:0" json:"replies"`

	// Volume gating
	DailyLimit        int        `gorm:"column:daily_limit;not null" json:"dailyLimit"`
	CurrentDailyCount int        `gorm:"column:current_daily_count;default:0" json:"currentDailyCount"`
	CountResetAt      *time.Time `gorm:"column:count_reset_at;type:timestamp" json:"countResetAt"`

	// Warmup
	WarmupStage     enum.WarmupStage    `gorm:"column:warmup_stage;type:varchar(50);index" json:"warmupStage"`
	WarmupStartedAt *time.Time          `gorm:"column:warmup_started_at;type:timestamp" json:"warmupStartedAt"`
	Status          enum.IdentityStatus `gorm:"column:status;type:varchar(50);index" json:"status"`

	// Authentication
	SPFValid      bool           `gorm:"column:spf_valid;default:false" json:"spfValid"`
	DKIMValid     bool           `gorm:"column:dkim_valid;default:false" json:"dkimValid"`
	DKIMSelectors pq.StringArray `gorm:"column:dkim_selectors;type:text[]" json:"dkimSelectors"`
	DMARCValid    bool           `gorm:"column:dmarc_valid;default:false" json:"dmarcValid"`

	// Standard timestamps
	CreatedAt time.Time      `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (SendingIdentity) TableName() string {
	return "sending_identities"
}

func (i *SendingIdentity) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = utils.GenerateNanoIDWithPrefix("sid", 16)
	}
	return nil
}

// WarmupDay returns the 1-based day on the warmup timeline, or 0 when
// warmup has not started.
func (i *SendingIdentity) WarmupDay(now time.Time) int {
	if i.WarmupStartedAt == nil {
		return 0
	}
	return int(now.Sub(*i.WarmupStartedAt).Hours()/24) + 1
}

// RecordBounce counts a bounce and refreshes the derived rates.
func (i *SendingIdentity) RecordBounce(bounceType enum.BounceType) {
	if bounceType == enum.BounceHard {
		i.HardBounces++
	} else {
		i.SoftBounces++
	}
	i.refreshRates()
}

// RecordComplaint counts a spam complaint and refreshes the derived
// rates.
func (i *SendingIdentity) RecordComplaint() {
	i.Complaints++
	i.refreshRates()
}

// RecordEngagement counts a positive recipient signal and refreshes the
// derived rates.
func (i *SendingIdentity) RecordEngagement(kind enum.EngagementType) {
	switch kind {
	case enum.EngagementOpen:
		i.Opens++
	case enum.EngagementClick:
		i.Clicks++
	case enum.EngagementReply:
		i.Replies++
	}
	i.refreshRates()
}

// refreshRates recomputes the percentage rates from the counters. A
// bounce can arrive before the send that caused it is counted, so the
// denominator never drops below one.
func (i *SendingIdentity) refreshRates() {
	sends := float64(i.TotalSent)
	if sends < 1 {
		sends = 1
	}
	i.HardBounceRate = 100 * float64(i.HardBounces) / sends
	i.SoftBounceRate = 100 * float64(i.SoftBounces) / sends
	i.ComplaintRate = 100 * float64(i.Complaints) / sends
	i.OpenRate = 100 * float64(i.Opens) / sends
	i.ClickRate = 100 * float64(i.Clicks) / sends
	i.ReplyRate = 100 * float64(i.Replies) / sends
}
