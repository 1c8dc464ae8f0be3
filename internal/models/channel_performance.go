package models

import (
	"time"

	"github.com/customeros/outreachstack/internal/enum"
)

// ChannelPerformance aggregates team-level outcomes per channel over a
// window. Read-only input to channel scoring.
type ChannelPerformance struct {
	ID          uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	Tenant      string       `gorm:"column:tenant;type:varchar(255);index;not null" json:"tenant"`
	Channel     enum.Channel `gorm:"column:channel;type:varchar(50);index;not null" json:"channel"`
	WindowStart time.Time    `gorm:"column:window_start;type:timestamp;not null" json:"windowStart"`
	WindowEnd   time.Time    `gorm:"column:window_end;type:timestamp;not null" json:"windowEnd"`

	Sent     int `gorm:"column:sent;default:0" json:"sent"`
	Opened   int `gorm:"column:opened;default:0" json:"opened"`
	Clicked  int `gorm:"column:clicked;default:0" json:"clicked"`
	Replied  int `gorm:"column:replied;default:0" json:"replied"`
	Meetings int `gorm:"column:meetings;default:0" json:"meetings"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
}

func (ChannelPerformance) TableName() string {
	return "channel_performance"
}

// ReplyRate is replies over sends for the window, 0 when nothing was sent.
func (p *ChannelPerformance) ReplyRate() float64 {
	if p.Sent == 0 {
		return 0
	}
	return float64(p.Replied) / float64(p.Sent)
}
