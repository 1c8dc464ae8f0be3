package interfaces

import (
	"context"

	"github.com/customeros/outreachstack/dto"
	"github.com/customeros/outreachstack/internal/enum"
	"github.com/customeros/outreachstack/internal/models"
)

// HealthService owns sending-identity reputation and volume gating.
type HealthService interface {
	// CanSend evaluates gating rules without reserving volume.
	CanSend(ctx context.Context, identityID string) (dto.SendDecision, error)
	// CanSendAndReserve atomically checks the gating rules and claims
	// one send against the daily limit. Concurrent callers on the same
	// identity never overshoot daily_limit.
	CanSendAndReserve(ctx context.Context, identityID string) (dto.SendDecision, error)

	CalculateHealthScore(identity *models.SendingIdentity) int
	RecomputeHealthScore(ctx context.Context, identityID string) (int, error)

	GetScheduleForDay(day int) int
	RampUpIdentities(ctx context.Context) error

	// TrackBounce classifies the bounce from the provider detail when
	// bounceType is empty.
	TrackBounce(ctx context.Context, identityID, recipient, detail string, bounceType enum.BounceType) error
	TrackComplaint(ctx context.Context, identityID, recipient, detail string) error
	TrackEngagement(ctx context.Context, identityID, recipient string, kind enum.EngagementType) error

	RefreshAuthentication(ctx context.Context, identityID string) error
	ResetWarmup(ctx context.Context, identityID string) error
	ResetDailyCounters(ctx context.Context) error
}
