package dto

import (
	"time"

	"github.com/customeros/outreachstack/internal/enum"
)

// OutreachMessage is the rendered content evaluated by the spam scorer
// and handed to channel dispatch.
type OutreachMessage struct {
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	FromName  string `json:"fromName"`
	FromEmail string `json:"fromEmail"`
	ReplyTo   string `json:"replyTo"`
}

// OutreachRequest is the execution pipeline's input.
type OutreachRequest struct {
	ProspectID string            `json:"prospectId"`
	Prospect   *Prospect         `json:"prospect"`
	IdentityID string            `json:"identityId"`
	Channels   []enum.Channel    `json:"channels"`
	Strategy   enum.StrategyType `json:"strategy"`
	Urgency    enum.Urgency      `json:"urgency"`

	// Content: either a template reference resolved by the renderer or
	// a pre-rendered message.
	TemplateID   string            `json:"templateId"`
	TemplateVars map[string]string `json:"templateVars"`
	Message      *OutreachMessage  `json:"message"`

	// Scheduling constraints
	MinHoursFromNow int `json:"minHoursFromNow"`
	MaxHoursFromNow int `json:"maxHoursFromNow"`
}

type StageOutcome struct {
	Stage   enum.PipelineStage `json:"stage"`
	Success bool               `json:"success"`
	Detail  string             `json:"detail,omitempty"`
}

type OutreachWarning struct {
	Stage   enum.PipelineStage `json:"stage"`
	Message string             `json:"message"`
}

type ChannelDispatchResult struct {
	Channel      enum.Channel `json:"channel"`
	Dispatched   bool         `json:"dispatched"`
	TouchID      string       `json:"touchId,omitempty"`
	ScheduledFor *time.Time   `json:"scheduledFor,omitempty"`
	Error        string       `json:"error,omitempty"`
}

// OutreachResult accumulates per-stage outcomes, warnings and errors.
// Success is true iff at least one channel dispatched and no hard error
// occurred.
type OutreachResult struct {
	Success    bool                    `json:"success"`
	Stages     []StageOutcome          `json:"stages"`
	Warnings   []OutreachWarning       `json:"warnings"`
	Errors     []string                `json:"errors"`
	Dispatches []ChannelDispatchResult `json:"dispatches"`

	SpamCheck       *SpamCheckResult `json:"spamCheck,omitempty"`
	OptimalSendTime *OptimalSendTime `json:"optimalSendTime,omitempty"`
}

func (r *OutreachResult) AddStage(stage enum.PipelineStage, success bool, detail string) {
	r.Stages = append(r.Stages, StageOutcome{Stage: stage, Success: success, Detail: detail})
}

func (r *OutreachResult) AddWarning(stage enum.PipelineStage, message string) {
	r.Warnings = append(r.Warnings, OutreachWarning{Stage: stage, Message: message})
}

func (r *OutreachResult) AddError(err error) {
	if err != nil {
		r.Errors = append(r.Errors, err.Error())
	}
}
