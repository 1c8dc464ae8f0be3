package outreach

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"

	"github.com/customeros/outreachstack/dto"
	"github.com/customeros/outreachstack/interfaces"
	"github.com/customeros/outreachstack/internal/enum"
	er "github.com/customeros/outreachstack/internal/errors"
	"github.com/customeros/outreachstack/internal/logger"
	"github.com/customeros/outreachstack/internal/metrics"
	"github.com/customeros/outreachstack/internal/models"
	"github.com/customeros/outreachstack/internal/repository"
	"github.com/customeros/outreachstack/internal/tracing"
	"github.com/customeros/outreachstack/internal/utils"
)

// Send times inside this window dispatch in-process; anything later is
// handed to the job scheduler.
const immediateDispatchWindow = time.Hour

type outreachService struct {
	log          logger.Logger
	repositories *repository.Repositories
	health       interfaces.HealthService
	spamCheck    interfaces.SpamCheckService
	sendTime     interfaces.SendTimeService
	verifier     interfaces.EmailVerifier
	compliance   interfaces.ComplianceService
	renderer     interfaces.TemplateRenderer
	scheduler    interfaces.JobScheduler
	events       interfaces.EventsPublisher
	senders      map[enum.Channel]interfaces.ChannelSender
}

func NewOutreachService(
	log logger.Logger,
	repositories *repository.Repositories,
	health interfaces.HealthService,
	spamCheck interfaces.SpamCheckService,
	sendTime interfaces.SendTimeService,
	verifier interfaces.EmailVerifier,
	compliance interfaces.ComplianceService,
	renderer interfaces.TemplateRenderer,
	scheduler interfaces.JobScheduler,
	events interfaces.EventsPublisher,
	senders []interfaces.ChannelSender,
) interfaces.OutreachService {
	byChannel := make(map[enum.Channel]interfaces.ChannelSender, len(senders))
	for _, sender := range senders {
		byChannel[sender.Channel()] = sender
	}
	return &outreachService{
		log:          log,
		repositories: repositories,
		health:       health,
		spamCheck:    spamCheck,
		sendTime:     sendTime,
		verifier:     verifier,
		compliance:   compliance,
		renderer:     renderer,
		scheduler:    scheduler,
		events:       events,
		senders:      byChannel,
	}
}

// ExecuteOutreach walks the pipeline stages in order. Hard stops abort
// before dispatch; soft findings accumulate as warnings and the run
// continues. Stage outcomes, warnings and dispatch results are all
// reported on the returned result, not as an error.
func (s *outreachService) ExecuteOutreach(ctx context.Context, request *dto.OutreachRequest) (*dto.OutreachResult, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "OutreachService.ExecuteOutreach")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	if err := validateRequest(request); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if err := utils.ValidateTenant(ctx); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	tracing.TagEntity(span, request.ProspectID)

	result := &dto.OutreachResult{}

	// VERIFY
	verification, err := s.verifier.Verify(ctx, request.Prospect.EmailAddress)
	if err != nil {
		return s.hardStop(ctx, span, result, enum.StageVerify, "verification unavailable: "+err.Error()), nil
	}
	switch verification {
	case enum.VerificationInvalid:
		return s.hardStop(ctx, span, result, enum.StageVerify, "recipient email failed verification"), nil
	case enum.VerificationRisky, enum.VerificationUnknown:
		result.AddWarning(enum.StageVerify, "recipient email verified as "+verification.String())
		result.AddStage(enum.StageVerify, true, verification.String())
	default:
		result.AddStage(enum.StageVerify, true, "")
	}

	// COMPLIANCE
	tenant := utils.GetTenantFromContext(ctx)
	suppressed, err := s.repositories.SuppressionRepository.IsSuppressed(ctx, tenant, request.Prospect.EmailAddress)
	if err != nil {
		return s.hardStop(ctx, span, result, enum.StageCompliance, "suppression lookup failed: "+err.Error()), nil
	}
	if suppressed {
		return s.hardStop(ctx, span, result, enum.StageCompliance, er.ErrRecipientSuppressed.Error()), nil
	}
	compliance, err := s.compliance.CanContact(ctx, request.Prospect.EmailAddress)
	if err != nil {
		return s.hardStop(ctx, span, result, enum.StageCompliance, "compliance check failed: "+err.Error()), nil
	}
	if !compliance.Allowed {
		return s.hardStop(ctx, span, result, enum.StageCompliance, compliance.Reason), nil
	}
	result.AddStage(enum.StageCompliance, true, "")

	// PREPARE_CONTENT
	message := request.Message
	if message == nil {
		rendered, err := s.renderer.Render(ctx, request.TemplateID, request.TemplateVars)
		if err != nil {
			return s.hardStop(ctx, span, result, enum.StagePrepareContent, "template render failed: "+err.Error()), nil
		}
		message = &dto.OutreachMessage{Subject: rendered.Subject, Body: rendered.Body}
	}
	result.AddStage(enum.StagePrepareContent, true, "")

	// SPAM_CHECK advises, never blocks.
	spamResult := s.spamCheck.CheckSpamScore(*message)
	result.SpamCheck = &spamResult
	if !spamResult.Passed {
		metrics.PipelineStageFailures.WithLabelValues(enum.StageSpamCheck.String(), "soft").Inc()
		result.AddWarning(enum.StageSpamCheck, fmt.Sprintf("spam score %.1f puts deliverability at risk", spamResult.Score))
	}
	result.AddStage(enum.StageSpamCheck, true, fmt.Sprintf("score %.1f", spamResult.Score))

	// SCHEDULE
	optimal, err := s.sendTime.CalculateOptimalSendTime(request.Prospect, dto.SendTimeConstraints{
		MinHoursFromNow: request.MinHoursFromNow,
		MaxHoursFromNow: request.MaxHoursFromNow,
		Urgency:         request.Urgency,
	})
	if err != nil {
		return s.hardStop(ctx, span, result, enum.StageSchedule, "send time optimization failed: "+err.Error()), nil
	}
	result.OptimalSendTime = &optimal
	result.AddStage(enum.StageSchedule, true, optimal.Time.Format(time.RFC3339))

	// DISPATCH runs the channels concurrently; one channel's failure
	// never blocks another.
	immediate := !optimal.Time.After(utils.Now().Add(immediateDispatchWindow))
	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, channel := range request.Channels {
		wg.Add(1)
		go func(channel enum.Channel) {
			defer wg.Done()
			defer tracing.RecoverAndLogToJaeger(s.log)
			dispatch := s.dispatchChannel(ctx, request, channel, message, optimal.Time, immediate)
			mu.Lock()
			result.Dispatches = append(result.Dispatches, dispatch)
			mu.Unlock()
		}(channel)
	}
	wg.Wait()

	dispatched, scheduled := 0, 0
	for _, dispatch := range result.Dispatches {
		if dispatch.Dispatched {
			dispatched++
		}
		if dispatch.ScheduledFor != nil {
			scheduled++
		}
	}
	result.AddStage(enum.StageDispatch, dispatched+scheduled > 0, fmt.Sprintf("%d dispatched, %d scheduled", dispatched, scheduled))

	// TRACK
	err = s.events.PublishEvent(ctx, request.ProspectID, enum.OUTREACH, dto.OutreachExecuted{
		ProspectID: request.ProspectID,
		Channels:   request.Channels,
		Dispatched: dispatched,
		Scheduled:  scheduled,
		Success:    dispatched+scheduled > 0,
	})
	if err != nil {
		tracing.TraceErr(span, err)
		s.log.Errorf("failed to publish outreach executed event for %s: %v", request.ProspectID, err)
	}
	result.AddStage(enum.StageTrack, true, "")

	result.Success = dispatched+scheduled > 0 && len(result.Errors) == 0
	span.LogFields(tracingLog.Bool("result.success", result.Success))
	return result, nil
}

func validateRequest(request *dto.OutreachRequest) error {
	if request == nil {
		return er.NewValidationError("request", "is required")
	}
	if request.Prospect == nil {
		return er.NewValidationError("prospect", "is required")
	}
	if request.Prospect.EmailAddress == "" {
		return er.NewValidationError("prospect.emailAddress", "is required")
	}
	if len(request.Channels) == 0 {
		return er.NewValidationError("channels", er.ErrNoChannelsRequested.Error())
	}
	if request.Message == nil && request.TemplateID == "" {
		return er.NewValidationError("message", "message or templateId is required")
	}
	if request.ProspectID == "" {
		request.ProspectID = request.Prospect.ID
	}
	return nil
}

func (s *outreachService) hardStop(ctx context.Context, span opentracing.Span, result *dto.OutreachResult, stage enum.PipelineStage, reason string) *dto.OutreachResult {
	err := er.NewHardStopError(stage, reason)
	tracing.TraceErr(span, err)
	metrics.PipelineStageFailures.WithLabelValues(stage.String(), "hard").Inc()
	s.log.Warnf("outreach hard stop at %s: %s", stage, reason)

	result.AddStage(stage, false, reason)
	result.AddError(err)
	result.Success = false
	return result
}

func (s *outreachService) dispatchChannel(ctx context.Context, request *dto.OutreachRequest, channel enum.Channel, message *dto.OutreachMessage, dispatchAt time.Time, immediate bool) dto.ChannelDispatchResult {
	span, ctx := opentracing.StartSpanFromContext(ctx, "OutreachService.dispatchChannel")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.LogKV("channel", channel)

	dispatchResult := dto.ChannelDispatchResult{Channel: channel}

	touch := &models.ChannelTouch{
		Tenant:       utils.GetTenantFromContext(ctx),
		ProspectID:   request.ProspectID,
		Channel:      channel,
		ScheduledFor: dispatchAt,
		StrategyType: request.Strategy,
		Trigger:      enum.TriggerImmediate,
		Status:       enum.TouchStatusPending,
		Metadata:     touchMetadata(request, message),
	}
	if err := s.repositories.ChannelTouchRepository.Create(ctx, touch); err != nil {
		tracing.TraceErr(span, err)
		dispatchResult.Error = err.Error()
		return dispatchResult
	}
	dispatchResult.TouchID = touch.ID

	if !immediate {
		if err := s.scheduler.Schedule(ctx, dispatchAt, touch.ID); err != nil {
			tracing.TraceErr(span, err)
			_ = s.repositories.ChannelTouchRepository.MarkFailed(ctx, touch.ID, "scheduling failed: "+err.Error())
			dispatchResult.Error = err.Error()
			return dispatchResult
		}
		if err := s.repositories.ChannelTouchRepository.MarkScheduled(ctx, touch.ID); err != nil {
			tracing.TraceErr(span, err)
		}
		dispatchResult.ScheduledFor = utils.ToPtr(dispatchAt)
		return dispatchResult
	}

	if err := s.dispatchNow(ctx, touch, message); err != nil {
		dispatchResult.Error = err.Error()
		return dispatchResult
	}
	dispatchResult.Dispatched = true
	return dispatchResult
}

// dispatchNow gates the email identity, hands the touch to the channel
// sender and records the outcome.
func (s *outreachService) dispatchNow(ctx context.Context, touch *models.ChannelTouch, message *dto.OutreachMessage) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "OutreachService.dispatchNow")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, touch.ID)

	start := utils.Now()

	reservedIdentity := ""
	if touch.Channel == enum.ChannelEmail {
		identityID := metaString(touch, metaIdentityID)
		if identityID == "" {
			return s.failTouch(ctx, span, touch, errors.New("no sending identity assigned"))
		}
		decision, err := s.health.CanSendAndReserve(ctx, identityID)
		if err != nil {
			return s.failTouch(ctx, span, touch, err)
		}
		if !decision.CanSend {
			return s.failTouch(ctx, span, touch, errors.New("identity cannot send: "+decision.Reason))
		}
		reservedIdentity = identityID
	}

	sender, ok := s.senders[touch.Channel]
	if !ok {
		err := errors.Errorf("no sender registered for channel %s", touch.Channel)
		s.releaseReservation(ctx, reservedIdentity)
		return s.failTouch(ctx, span, touch, err)
	}

	if err := sender.Dispatch(ctx, touch, message); err != nil {
		s.releaseReservation(ctx, reservedIdentity)
		return s.failTouch(ctx, span, touch, err)
	}

	dispatchedAt := utils.Now()
	if err := s.repositories.ChannelTouchRepository.MarkDispatched(ctx, touch.ID, dispatchedAt); err != nil {
		tracing.TraceErr(span, err)
		s.log.Errorf("touch %s dispatched but not recorded: %v", touch.ID, err)
	}

	metrics.DispatchesTotal.WithLabelValues(touch.Channel.String(), "dispatched").Inc()
	metrics.DispatchLatency.WithLabelValues(touch.Channel.String()).Observe(dispatchedAt.Sub(start).Seconds())

	err := s.events.PublishEvent(ctx, touch.ID, enum.TOUCH, dto.TouchDispatched{
		TouchID:      touch.ID,
		ProspectID:   touch.ProspectID,
		Channel:      touch.Channel,
		DispatchedAt: dispatchedAt,
	})
	if err != nil {
		tracing.TraceErr(span, err)
		s.log.Errorf("failed to publish touch dispatched event for %s: %v", touch.ID, err)
	}
	return nil
}

func (s *outreachService) releaseReservation(ctx context.Context, identityID string) {
	if identityID == "" {
		return
	}
	if err := s.repositories.SendingIdentityRepository.ReleaseDailySend(ctx, identityID); err != nil {
		s.log.Errorf("failed to release daily send for identity %s: %v", identityID, err)
	}
}

func (s *outreachService) failTouch(ctx context.Context, span opentracing.Span, touch *models.ChannelTouch, cause error) error {
	tracing.TraceErr(span, cause)
	metrics.DispatchesTotal.WithLabelValues(touch.Channel.String(), "failed").Inc()
	if err := s.repositories.ChannelTouchRepository.MarkFailed(ctx, touch.ID, cause.Error()); err != nil {
		tracing.TraceErr(span, err)
	}
	return cause
}

// DispatchDueTouch is invoked when a scheduled touch becomes due. The
// world may have changed since scheduling, so suppression, compliance
// and response state are re-checked before anything leaves the building.
func (s *outreachService) DispatchDueTouch(ctx context.Context, touchID string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "OutreachService.DispatchDueTouch")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, touchID)

	touch, err := s.repositories.ChannelTouchRepository.GetByID(ctx, touchID)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	if touch == nil {
		err := repository.ErrTouchNotFound
		tracing.TraceErr(span, err)
		return err
	}
	if utils.GetTenantFromContext(ctx) == "" {
		ctx = utils.SetTenantInContext(ctx, touch.Tenant)
	}

	// Already handled: duplicate deliveries are acknowledged silently.
	switch touch.Status {
	case enum.TouchStatusDispatched, enum.TouchStatusCancelled, enum.TouchStatusFailed:
		return nil
	}

	if touch.ResponseAt != nil {
		return s.cancelTouch(ctx, span, touch, "prospect already responded")
	}

	recipient := metaString(touch, metaRecipient)
	if recipient != "" {
		suppressed, err := s.repositories.SuppressionRepository.IsSuppressed(ctx, touch.Tenant, recipient)
		if err != nil {
			tracing.TraceErr(span, err)
			return err
		}
		if suppressed {
			return s.cancelTouch(ctx, span, touch, "recipient suppressed after scheduling")
		}

		compliance, err := s.compliance.CanContact(ctx, recipient)
		if err != nil {
			tracing.TraceErr(span, err)
			return err
		}
		if !compliance.Allowed {
			return s.cancelTouch(ctx, span, touch, "compliance denied after scheduling: "+compliance.Reason)
		}
	}

	return s.dispatchNow(ctx, touch, messageFromTouch(touch))
}

func (s *outreachService) cancelTouch(ctx context.Context, span opentracing.Span, touch *models.ChannelTouch, reason string) error {
	span.LogKV("cancelled", reason)
	metrics.DispatchesTotal.WithLabelValues(touch.Channel.String(), "cancelled").Inc()
	if err := s.repositories.ChannelTouchRepository.MarkCancelled(ctx, touch.ID, reason); err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}

func touchMetadata(request *dto.OutreachRequest, message *dto.OutreachMessage) models.JSONMap {
	meta := models.JSONMap{
		metaRecipient: request.Prospect.EmailAddress,
		metaSubject:   message.Subject,
		metaBody:      message.Body,
		metaFromName:  message.FromName,
		metaFromEmail: message.FromEmail,
		metaReplyTo:   message.ReplyTo,
	}
	if request.IdentityID != "" {
		meta[metaIdentityID] = request.IdentityID
	}
	if request.Prospect.LinkedInURL != "" {
		meta[metaProfileURL] = request.Prospect.LinkedInURL
	}
	if request.Prospect.PhoneNumber != "" {
		meta[metaPhoneNumber] = request.Prospect.PhoneNumber
	}
	return meta
}

func messageFromTouch(touch *models.ChannelTouch) *dto.OutreachMessage {
	return &dto.OutreachMessage{
		Subject:   metaString(touch, metaSubject),
		Body:      metaString(touch, metaBody),
		FromName:  metaString(touch, metaFromName),
		FromEmail: metaString(touch, metaFromEmail),
		ReplyTo:   metaString(touch, metaReplyTo),
	}
}
