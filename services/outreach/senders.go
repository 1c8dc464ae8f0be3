package outreach

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/customeros/outreachstack/dto"
	"github.com/customeros/outreachstack/interfaces"
	"github.com/customeros/outreachstack/internal/enum"
	er "github.com/customeros/outreachstack/internal/errors"
	"github.com/customeros/outreachstack/internal/logger"
	"github.com/customeros/outreachstack/internal/models"
	"github.com/customeros/outreachstack/internal/tracing"
)

// Rate-limit scopes per provider endpoint. Limits are registered at
// startup; an unregistered scope is not limited.
const (
	ScopeEmailSend       = "email:send"
	ScopeLinkedInMessage = "linkedin:message"
	ScopePhoneCall       = "phone:call"
)

// Touch metadata keys. Scheduled touches carry everything needed to
// dispatch later without the original request.
const (
	metaRecipient   = "recipient"
	metaIdentityID  = "identityId"
	metaSubject     = "subject"
	metaBody        = "body"
	metaFromName    = "fromName"
	metaFromEmail   = "fromEmail"
	metaReplyTo     = "replyTo"
	metaProfileURL  = "profileUrl"
	metaPhoneNumber = "phoneNumber"
)

func metaString(touch *models.ChannelTouch, key string) string {
	if touch.Metadata == nil {
		return ""
	}
	value, _ := touch.Metadata[key].(string)
	return value
}

func breakerScope(channel enum.Channel, qualifier string) string {
	if qualifier == "" {
		return channel.String()
	}
	return channel.String() + ":" + qualifier
}

// resilienceKit bundles the guards every sender dispatches through.
type resilienceKit struct {
	limiter  interfaces.RateLimiter
	breakers interfaces.CircuitBreakerRegistry
	retry    interfaces.RetryExecutor
	retryCfg interfaces.RetryConfig
}

func NewResilienceKit(limiter interfaces.RateLimiter, breakers interfaces.CircuitBreakerRegistry, retry interfaces.RetryExecutor, retryCfg interfaces.RetryConfig) *resilienceKit {
	return &resilienceKit{
		limiter:  limiter,
		breakers: breakers,
		retry:    retry,
		retryCfg: retryCfg,
	}
}

// guard runs op behind the scope's rate limit and circuit, retrying
// transient failures inside the circuit so the breaker counts final
// outcomes only.
func (k *resilienceKit) guard(ctx context.Context, limitScope, circuitScope, operation string, op func(ctx context.Context) error) error {
	if _, err := k.limiter.CheckAndIncrement(ctx, limitScope); err != nil {
		return err
	}
	breaker := k.breakers.For(circuitScope)
	return breaker.Execute(ctx, func(ctx context.Context) error {
		return k.retry.Execute(ctx, operation, op, k.retryCfg)
	})
}

type emailSender struct {
	log     logger.Logger
	gateway interfaces.EmailGateway
	kit     *resilienceKit
}

func NewEmailSender(log logger.Logger, gateway interfaces.EmailGateway, kit *resilienceKit) interfaces.ChannelSender {
	return &emailSender{log: log, gateway: gateway, kit: kit}
}

func (s *emailSender) Channel() enum.Channel {
	return enum.ChannelEmail
}

func (s *emailSender) Dispatch(ctx context.Context, touch *models.ChannelTouch, message *dto.OutreachMessage) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "EmailSender.Dispatch")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, touch.ID)

	recipient := metaString(touch, metaRecipient)
	if recipient == "" {
		err := er.NewValidationError("recipient", "is required")
		tracing.TraceErr(span, err)
		return err
	}
	identityID := metaString(touch, metaIdentityID)

	err := s.kit.guard(ctx, ScopeEmailSend, breakerScope(enum.ChannelEmail, identityID), "email_dispatch", func(ctx context.Context) error {
		return s.gateway.Send(ctx, identityID, recipient, message)
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}

type linkedinSender struct {
	log     logger.Logger
	gateway interfaces.LinkedInGateway
	kit     *resilienceKit
}

func NewLinkedInSender(log logger.Logger, gateway interfaces.LinkedInGateway, kit *resilienceKit) interfaces.ChannelSender {
	return &linkedinSender{log: log, gateway: gateway, kit: kit}
}

func (s *linkedinSender) Channel() enum.Channel {
	return enum.ChannelLinkedIn
}

func (s *linkedinSender) Dispatch(ctx context.Context, touch *models.ChannelTouch, message *dto.OutreachMessage) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "LinkedInSender.Dispatch")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, touch.ID)

	profileURL := metaString(touch, metaProfileURL)
	if profileURL == "" {
		err := errors.New("prospect has no linkedin profile on file")
		tracing.TraceErr(span, err)
		return err
	}

	err := s.kit.guard(ctx, ScopeLinkedInMessage, breakerScope(enum.ChannelLinkedIn, ""), "linkedin_dispatch", func(ctx context.Context) error {
		return s.gateway.SendMessage(ctx, profileURL, message.Body)
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}

type phoneSender struct {
	log     logger.Logger
	gateway interfaces.PhoneGateway
	kit     *resilienceKit
}

func NewPhoneSender(log logger.Logger, gateway interfaces.PhoneGateway, kit *resilienceKit) interfaces.ChannelSender {
	return &phoneSender{log: log, gateway: gateway, kit: kit}
}

func (s *phoneSender) Channel() enum.Channel {
	return enum.ChannelPhone
}

func (s *phoneSender) Dispatch(ctx context.Context, touch *models.ChannelTouch, message *dto.OutreachMessage) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "PhoneSender.Dispatch")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, touch.ID)

	phoneNumber := metaString(touch, metaPhoneNumber)
	if phoneNumber == "" {
		err := errors.New("prospect has no phone number on file")
		tracing.TraceErr(span, err)
		return err
	}

	err := s.kit.guard(ctx, ScopePhoneCall, breakerScope(enum.ChannelPhone, ""), "phone_dispatch", func(ctx context.Context) error {
		return s.gateway.QueueCall(ctx, phoneNumber, message.Body)
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}
