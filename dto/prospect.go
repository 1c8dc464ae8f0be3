package dto

import (
	"time"

	"github.com/customeros/outreachstack/internal/enum"
)

// Prospect carries the signals channel scoring and send-time
// optimization read. It is a read-only projection of the CRM record.
type Prospect struct {
	ID           string  `json:"id"`
	EmailAddress string  `json:"emailAddress"`
	FirstName    string  `json:"firstName"`
	LastName     string  `json:"lastName"`
	Title        string  `json:"title"`
	Industry     string  `json:"industry"`
	Persona      string  `json:"persona"`
	Timezone     string  `json:"timezone"`
	LinkedInURL  string  `json:"linkedinUrl"`
	PhoneNumber  string  `json:"phoneNumber"`
	DealValue    float64 `json:"dealValue"`
	IntentScore  int     `json:"intentScore"`

	PriorOpens        int  `json:"priorOpens"`
	PriorBounces      int  `json:"priorBounces"`
	InboundEngagement bool `json:"inboundEngagement"`

	CurrentChannel enum.Channel `json:"currentChannel"`

	// Historical engagement events, newest first not required; the
	// optimizer only reads timestamps.
	EngagementHistory []EngagementEvent `json:"engagementHistory"`
}

type EngagementEvent struct {
	OccurredAt time.Time `json:"occurredAt"`
	Type       string    `json:"type"` // open | click | reply
}

// SendTimeConstraints bound the candidate window for the optimizer.
type SendTimeConstraints struct {
	MinHoursFromNow int          `json:"minHoursFromNow"`
	MaxHoursFromNow int          `json:"maxHoursFromNow"`
	Urgency         enum.Urgency `json:"urgency"`
}

// OptimalSendTime is the optimizer's output: a timestamp in the
// recipient's timezone, the weighted factor breakdown and a confidence
// in [0,1]. Recomputed per request, never persisted.
type OptimalSendTime struct {
	Time       time.Time    `json:"time"`
	Confidence float64      `json:"confidence"`
	Factors    []TimeFactor `json:"factors"`
}

type TimeFactor struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
	Score  float64 `json:"score"`
}
