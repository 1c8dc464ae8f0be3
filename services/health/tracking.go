package health

import (
	"context"
	"regexp"
	"strings"

	"github.com/opentracing/opentracing-go"

	"github.com/customeros/outreachstack/dto"
	"github.com/customeros/outreachstack/internal/enum"
	"github.com/customeros/outreachstack/internal/metrics"
	"github.com/customeros/outreachstack/internal/models"
	"github.com/customeros/outreachstack/internal/tracing"
)

var smtpStatusCode = regexp.MustCompile(`\b[45]\d\d\b`)

// classifyBounce infers hard/soft from the SMTP status in the provider
// detail when the caller did not classify. Unknown details are treated
// as soft; a retry is cheaper than a lost contact.
func classifyBounce(detail string) enum.BounceType {
	if strings.HasPrefix(smtpStatusCode.FindString(detail), "5") {
		return enum.BounceHard
	}
	return enum.BounceSoft
}

// TrackBounce records a delivery bounce against the identity. Both
// bounce types feed the identity's rates and recompute its health
// score; hard bounces additionally suppress the recipient from all
// future contact.
func (s *healthService) TrackBounce(ctx context.Context, identityID, recipient, detail string, bounceType enum.BounceType) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "HealthService.TrackBounce")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, identityID)

	if bounceType == "" {
		bounceType = classifyBounce(detail)
	}
	span.LogKV("bounceType", bounceType)

	identity, err := s.getIdentity(ctx, identityID)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	identity.RecordBounce(bounceType)
	if err := s.repositories.SendingIdentityRepository.UpdateDeliverability(ctx, identity); err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	err = s.events.PublishEvent(ctx, identityID, enum.IDENTITY, dto.BounceRecorded{
		IdentityID:   identityID,
		EmailAddress: recipient,
		BounceType:   bounceType,
		Detail:       detail,
	})
	if err != nil {
		tracing.TraceErr(span, err)
		s.log.Errorf("failed to publish bounce event for %s: %v", identityID, err)
	}

	if bounceType == enum.BounceHard {
		if err := s.suppressRecipient(ctx, identity.Tenant, recipient, enum.SuppressionHardBounce, detail); err != nil {
			tracing.TraceErr(span, err)
			return err
		}
	}

	_, err = s.RecomputeHealthScore(ctx, identityID)
	return err
}

// TrackComplaint records a spam complaint. Complaints always suppress
// the recipient and recompute the identity's health score.
func (s *healthService) TrackComplaint(ctx context.Context, identityID, recipient, detail string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "HealthService.TrackComplaint")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, identityID)

	identity, err := s.getIdentity(ctx, identityID)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	identity.RecordComplaint()
	if err := s.repositories.SendingIdentityRepository.UpdateDeliverability(ctx, identity); err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	err = s.events.PublishEvent(ctx, identityID, enum.IDENTITY, dto.ComplaintRecorded{
		IdentityID:   identityID,
		EmailAddress: recipient,
		Detail:       detail,
	})
	if err != nil {
		tracing.TraceErr(span, err)
		s.log.Errorf("failed to publish complaint event for %s: %v", identityID, err)
	}

	if err := s.suppressRecipient(ctx, identity.Tenant, recipient, enum.SuppressionComplaint, detail); err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	_, err = s.RecomputeHealthScore(ctx, identityID)
	return err
}

// TrackEngagement records a positive recipient signal (open, click or
// reply) and recomputes the identity's health score so the engagement
// bonus takes effect.
func (s *healthService) TrackEngagement(ctx context.Context, identityID, recipient string, kind enum.EngagementType) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "HealthService.TrackEngagement")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, identityID)
	span.LogKV("kind", kind)

	identity, err := s.getIdentity(ctx, identityID)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	identity.RecordEngagement(kind)
	if err := s.repositories.SendingIdentityRepository.UpdateDeliverability(ctx, identity); err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	err = s.events.PublishEvent(ctx, identityID, enum.IDENTITY, dto.EngagementRecorded{
		IdentityID:   identityID,
		EmailAddress: recipient,
		Kind:         kind,
	})
	if err != nil {
		tracing.TraceErr(span, err)
		s.log.Errorf("failed to publish engagement event for %s: %v", identityID, err)
	}

	_, err = s.RecomputeHealthScore(ctx, identityID)
	return err
}

func (s *healthService) suppressRecipient(ctx context.Context, tenant, recipient string, reason enum.SuppressionReason, detail string) error {
	err := s.repositories.SuppressionRepository.Create(ctx, &models.Suppression{
		Tenant:       tenant,
		EmailAddress: recipient,
		Reason:       reason,
		Detail:       detail,
	})
	if err != nil {
		return err
	}

	metrics.SuppressionsTotal.WithLabelValues(reason.String()).Inc()

	err = s.events.PublishEvent(ctx, recipient, enum.SUPPRESSION, dto.RecipientSuppressed{
		EmailAddress: recipient,
		Reason:       reason,
	})
	if err != nil {
		s.log.Errorf("failed to publish suppression event for %s: %v", recipient, err)
	}
	return nil
}
