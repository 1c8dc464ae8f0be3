package dto

import (
	"time"

	"github.com/customeros/outreachstack/internal/enum"
)

type Event struct {
	Event    EventDetails  `json:"event"`
	Metadata EventMetadata `json:"metadata"`
}

type EventDetails struct {
	Id         string          `json:"id"`
	Tenant     string          `json:"tenant"`
	EntityId   string          `json:"entityId"`
	EntityType enum.EntityType `json:"entityType"`
	EventType  string          `json:"eventType"`
	Data       interface{}     `json:"data"`
}

type EventMetadata struct {
	UberTraceId string `json:"uber-trace-id"`
	AppSource   string `json:"appSource"`
	UserId      string `json:"userId"`
	UserEmail   string `json:"userEmail"`
	Timestamp   string `json:"timestamp"`
}

// Event payloads published on the outreach lifecycle.

type TouchDispatched struct {
	TouchID      string       `json:"touchId"`
	ProspectID   string       `json:"prospectId"`
	Channel      enum.Channel `json:"channel"`
	DispatchedAt time.Time    `json:"dispatchedAt"`
}

type TouchScheduled struct {
	TouchID      string       `json:"touchId"`
	ProspectID   string       `json:"prospectId"`
	Channel      enum.Channel `json:"channel"`
	ScheduledFor time.Time    `json:"scheduledFor"`
}

type BounceRecorded struct {
	IdentityID   string          `json:"identityId"`
	EmailAddress string          `json:"emailAddress"`
	BounceType   enum.BounceType `json:"bounceType"`
	Detail       string          `json:"detail"`
}

type ComplaintRecorded struct {
	IdentityID   string `json:"identityId"`
	EmailAddress string `json:"emailAddress"`
	Detail       string `json:"detail"`
}

type EngagementRecorded struct {
	IdentityID   string              `json:"identityId"`
	EmailAddress string              `json:"emailAddress"`
	Kind         enum.EngagementType `json:"kind"`
}

// OutreachExecuted summarizes one pipeline run for a prospect.
type OutreachExecuted struct {
	ProspectID string         `json:"prospectId"`
	Channels   []enum.Channel `json:"channels"`
	Dispatched int            `json:"dispatched"`
	Scheduled  int            `json:"scheduled"`
	Success    bool           `json:"success"`
}

// TouchDue is the delayed-dispatch payload. It travels through the wait
// queue and comes back when the touch's scheduled time has passed.
type TouchDue struct {
	TouchID      string    `json:"touchId"`
	Tenant       string    `json:"tenant"`
	ScheduledFor time.Time `json:"scheduledFor"`
}

type RecipientSuppressed struct {
	EmailAddress string                 `json:"emailAddress"`
	Reason       enum.SuppressionReason `json:"reason"`
}
