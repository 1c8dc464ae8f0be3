package enum

type WarmupStage string

const (
	WarmupStageNew         WarmupStage = "new"
	WarmupStageWarming     WarmupStage = "warming"
	WarmupStageWarm        WarmupStage = "warm"
	WarmupStageEstablished WarmupStage = "established"
)

func (t WarmupStage) String() string {
	return string(t)
}

// Order returns the position of the stage on the warmup timeline.
// Stages only ever advance; a higher order never transitions to a lower
// one except through an explicit manual reset.
func (t WarmupStage) Order() int {
	switch t {
	case WarmupStageNew:
		return 0
	case WarmupStageWarming:
		return 1
	case WarmupStageWarm:
		return 2
	case WarmupStageEstablished:
		return 3
	default:
		return -1
	}
}

type IdentityStatus string

const (
	IdentityStatusActive      IdentityStatus = "active"
	IdentityStatusWarming     IdentityStatus = "warming"
	IdentityStatusPaused      IdentityStatus = "paused"
	IdentityStatusBlacklisted IdentityStatus = "blacklisted"
)

func (t IdentityStatus) String() string {
	return string(t)
}

type BounceType string

const (
	BounceHard BounceType = "hard"
	BounceSoft BounceType = "soft"
)

func (t BounceType) String() string {
	return string(t)
}

type EngagementType string

const (
	EngagementOpen  EngagementType = "open"
	EngagementClick EngagementType = "click"
	EngagementReply EngagementType = "reply"
)

func (t EngagementType) String() string {
	return string(t)
}

type SuppressionReason string

const (
	SuppressionHardBounce  SuppressionReason = "hard_bounce"
	SuppressionComplaint   SuppressionReason = "complaint"
	SuppressionUnsubscribe SuppressionReason = "unsubscribe"
	SuppressionManual      SuppressionReason = "manual"
)

func (t SuppressionReason) String() string {
	return string(t)
}
