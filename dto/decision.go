package dto

import (
	"time"

	"github.com/customeros/outreachstack/internal/enum"
)

// SendDecision is the health engine's answer to "may this identity send
// right now".
type SendDecision struct {
	CanSend   bool       `json:"canSend"`
	Reason    string     `json:"reason,omitempty"`
	WaitUntil *time.Time `json:"waitUntil,omitempty"`
}

// RateLimitStatus reports the state of a rate-limit scope after a check.
type RateLimitStatus struct {
	Allowed           bool      `json:"allowed"`
	Remaining         int       `json:"remaining"`
	ResetAt           time.Time `json:"resetAt"`
	RetryAfterSeconds int       `json:"retryAfterSeconds"`
}

// ChannelScore is one channel's score with a short textual
// justification.
type ChannelScore struct {
	Channel enum.Channel `json:"channel"`
	Score   float64      `json:"score"`
	Reason  string       `json:"reason"`
}

// ChannelRecommendation ranks the channels for a prospect. Alternatives
// are ordered best-first and exclude the recommended channel.
type ChannelRecommendation struct {
	Channel      enum.Channel   `json:"channel"`
	Score        float64        `json:"score"`
	Reason       string         `json:"reason"`
	Alternatives []ChannelScore `json:"alternatives"`
}

// SwitchRecommendation answers whether the prospect should be moved to
// a different channel.
type SwitchRecommendation struct {
	ShouldSwitch     bool         `json:"shouldSwitch"`
	Reason           string       `json:"reason"`
	SuggestedChannel enum.Channel `json:"suggestedChannel,omitempty"`
}
