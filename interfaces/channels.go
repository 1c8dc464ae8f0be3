package interfaces

import (
	"context"

	"github.com/customeros/outreachstack/dto"
	"github.com/customeros/outreachstack/internal/enum"
	"github.com/customeros/outreachstack/internal/models"
)

// ChannelOrchestrator decides channel mix and multi-touch sequencing.
type ChannelOrchestrator interface {
	ExecuteCampaign(ctx context.Context, prospect *dto.Prospect, strategy enum.StrategyType, maxTotalTouches int) ([]*models.ChannelTouch, error)
	GetChannelRecommendation(ctx context.Context, prospect *dto.Prospect) (dto.ChannelRecommendation, error)
	ShouldSwitchChannel(ctx context.Context, prospect *dto.Prospect) (dto.SwitchRecommendation, error)
}

// ChannelSender dispatches one touch on one channel. One implementation
// exists per channel; dispatch failures on one channel never affect
// another.
type ChannelSender interface {
	Channel() enum.Channel
	Dispatch(ctx context.Context, touch *models.ChannelTouch, message *dto.OutreachMessage) error
}
