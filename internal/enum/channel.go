package enum

type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelLinkedIn Channel = "linkedin"
	ChannelPhone    Channel = "phone"
)

func (t Channel) String() string {
	return string(t)
}

type TouchStatus string

const (
	TouchStatusPending    TouchStatus = "pending"
	TouchStatusScheduled  TouchStatus = "scheduled"
	TouchStatusDispatched TouchStatus = "dispatched"
	TouchStatusFailed     TouchStatus = "failed"
	TouchStatusCancelled  TouchStatus = "cancelled"
)

func (t TouchStatus) String() string {
	return string(t)
}

type TouchTrigger string

const (
	TriggerImmediate       TouchTrigger = "immediate"
	TriggerAfterNoResponse TouchTrigger = "after_no_response"
	TriggerConcurrent      TouchTrigger = "concurrent"
	TriggerConditional     TouchTrigger = "conditional"
)

func (t TouchTrigger) String() string {
	return string(t)
}

type StrategyType string

const (
	StrategyAggressive StrategyType = "aggressive"
	StrategyBalanced   StrategyType = "balanced"
	StrategyPatient    StrategyType = "patient"
)

func (t StrategyType) String() string {
	return string(t)
}
