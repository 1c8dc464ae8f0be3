package enum

type VerificationStatus string

const (
	VerificationValid   VerificationStatus = "valid"
	VerificationInvalid VerificationStatus = "invalid"
	VerificationRisky   VerificationStatus = "risky"
	VerificationUnknown VerificationStatus = "unknown"
)

func (t VerificationStatus) String() string {
	return string(t)
}

type PipelineStage string

const (
	StageVerify         PipelineStage = "verify"
	StageCompliance     PipelineStage = "compliance"
	StagePrepareContent PipelineStage = "prepare_content"
	StageSpamCheck      PipelineStage = "spam_check"
	StageSchedule       PipelineStage = "schedule"
	StageDispatch       PipelineStage = "dispatch"
	StageTrack          PipelineStage = "track"
)

func (t PipelineStage) String() string {
	return string(t)
}

type IssueSeverity string

const (
	SeverityCritical IssueSeverity = "critical"
	SeverityWarning  IssueSeverity = "warning"
	SeverityInfo     IssueSeverity = "info"
)

func (t IssueSeverity) String() string {
	return string(t)
}

type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyNormal Urgency = "normal"
	UrgencyHigh   Urgency = "high"
)

func (t Urgency) String() string {
	return string(t)
}

type CircuitStatus string

const (
	CircuitClosed   CircuitStatus = "closed"
	CircuitOpen     CircuitStatus = "open"
	CircuitHalfOpen CircuitStatus = "half_open"
)

func (t CircuitStatus) String() string {
	return string(t)
}
