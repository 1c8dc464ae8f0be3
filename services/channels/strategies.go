package channels

import (
	"github.com/customeros/outreachstack/internal/enum"
	er "github.com/customeros/outreachstack/internal/errors"
)

// strategyStep is one entry in a sequencing strategy. DelayDays counts
// from campaign start, not from the previous step.
type strategyStep struct {
	Channel   enum.Channel
	Priority  int
	Trigger   enum.TouchTrigger
	DelayDays int
}

// The three named strategies are fixed ordered touch lists. Aggressive
// front-loads concurrent channels, patient leans on email with long
// gaps.
var strategies = map[enum.StrategyType][]strategyStep{
	enum.StrategyAggressive: {
		{Channel: enum.ChannelEmail, Priority: 1, Trigger: enum.TriggerImmediate, DelayDays: 0},
		{Channel: enum.ChannelLinkedIn, Priority: 2, Trigger: enum.TriggerConcurrent, DelayDays: 0},
		{Channel: enum.ChannelPhone, Priority: 3, Trigger: enum.TriggerAfterNoResponse, DelayDays: 2},
		{Channel: enum.ChannelEmail, Priority: 4, Trigger: enum.TriggerAfterNoResponse, DelayDays: 4},
		{Channel: enum.ChannelPhone, Priority: 5, Trigger: enum.TriggerAfterNoResponse, DelayDays: 6},
	},
	enum.StrategyBalanced: {
		{Channel: enum.ChannelEmail, Priority: 1, Trigger: enum.TriggerImmediate, DelayDays: 0},
		{Channel: enum.ChannelLinkedIn, Priority: 2, Trigger: enum.TriggerAfterNoResponse, DelayDays: 3},
		{Channel: enum.ChannelEmail, Priority: 3, Trigger: enum.TriggerAfterNoResponse, DelayDays: 5},
		{Channel: enum.ChannelPhone, Priority: 4, Trigger: enum.TriggerConditional, DelayDays: 8},
	},
	enum.StrategyPatient: {
		{Channel: enum.ChannelEmail, Priority: 1, Trigger: enum.TriggerImmediate, DelayDays: 0},
		{Channel: enum.ChannelEmail, Priority: 2, Trigger: enum.TriggerAfterNoResponse, DelayDays: 7},
		{Channel: enum.ChannelLinkedIn, Priority: 3, Trigger: enum.TriggerAfterNoResponse, DelayDays: 14},
	},
}

func strategySteps(strategy enum.StrategyType) ([]strategyStep, error) {
	steps, ok := strategies[strategy]
	if !ok {
		return nil, er.ErrUnknownStrategy
	}
	return steps, nil
}
