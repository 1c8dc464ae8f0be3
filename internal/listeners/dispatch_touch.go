package listeners

import (
	"context"

	"github.com/opentracing/opentracing-go"

	"github.com/customeros/outreachstack/dto"
	"github.com/customeros/outreachstack/interfaces"
	"github.com/customeros/outreachstack/internal/logger"
	"github.com/customeros/outreachstack/internal/tracing"
	"github.com/customeros/outreachstack/services/events"
)

// DispatchTouchListener consumes due touches from the dispatch queue
// and runs the pre-dispatch re-checks plus the actual send.
type DispatchTouchListener struct {
	events.BaseEventListener
	outreachService interfaces.OutreachService
}

func NewDispatchTouchListener(
	logger logger.Logger, outreachService interfaces.OutreachService,
) interfaces.EventListener {
	return &DispatchTouchListener{
		BaseEventListener: events.NewBaseEventListener(
			logger,
			events.GetEventType[dto.TouchDue](), // subscribed event
			events.QueueDispatchTouch,           // listening on Direct queue
		),
		outreachService: outreachService,
	}
}

func (l *DispatchTouchListener) Handle(ctx context.Context, baseEvent any) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DispatchTouchListener.Handle")
	defer span.Finish()
	tracing.SetDefaultListenerSpanTags(ctx, span)
	tracing.LogObjectAsJson(span, "event", baseEvent)

	validatedEvent, err := l.ValidateBaseEvent(ctx, baseEvent)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	due, err := events.DecodeEventData[dto.TouchDue](ctx, validatedEvent)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	err = l.outreachService.DispatchDueTouch(ctx, due.TouchID)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}
