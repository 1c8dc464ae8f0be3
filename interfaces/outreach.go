package interfaces

import (
	"context"

	"github.com/customeros/outreachstack/dto"
)

// OutreachService is the top-level execution pipeline.
type OutreachService interface {
	ExecuteOutreach(ctx context.Context, request *dto.OutreachRequest) (*dto.OutreachResult, error)
	// DispatchDueTouch is the callback handed to the external job
	// scheduler. It re-checks cancellation conditions (suppression,
	// compliance) immediately before dispatch.
	DispatchDueTouch(ctx context.Context, touchID string) error
}
