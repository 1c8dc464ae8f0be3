package events

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"

	"github.com/customeros/outreachstack/dto"
	"github.com/customeros/outreachstack/interfaces"
	"github.com/customeros/outreachstack/internal/tracing"
	"github.com/customeros/outreachstack/internal/utils"
)

// touchScheduler hands future dispatches to the broker. The wait queue
// holds the message until its per-message TTL expires, then dead-letters
// it into the dispatch queue where the dispatch listener picks it up.
type touchScheduler struct {
	publisher *RabbitMQPublisher
}

func NewTouchScheduler(publisher *RabbitMQPublisher) interfaces.JobScheduler {
	return &touchScheduler{publisher: publisher}
}

func (s *touchScheduler) Schedule(ctx context.Context, scheduledFor time.Time, touchID string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TouchScheduler.Schedule")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, touchID)
	span.LogKV("scheduledFor", scheduledFor.Format(time.RFC3339))

	due := dto.TouchDue{
		TouchID:      touchID,
		Tenant:       utils.GetTenantFromContext(ctx),
		ScheduledFor: scheduledFor,
	}

	err := s.publisher.PublishDispatchDue(ctx, due, time.Until(scheduledFor))
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}
