package channels

import (
	"context"
	"sort"
	"time"

	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"

	"github.com/customeros/outreachstack/dto"
	"github.com/customeros/outreachstack/interfaces"
	"github.com/customeros/outreachstack/internal/enum"
	er "github.com/customeros/outreachstack/internal/errors"
	"github.com/customeros/outreachstack/internal/logger"
	"github.com/customeros/outreachstack/internal/models"
	"github.com/customeros/outreachstack/internal/repository"
	"github.com/customeros/outreachstack/internal/tracing"
	"github.com/customeros/outreachstack/internal/utils"
)

const (
	// Same-channel touches with no inbound response before a switch is
	// recommended.
	unansweredTouchesBeforeSwitch = 3

	recentTouchLookback = 10
)

type channelOrchestrator struct {
	log          logger.Logger
	repositories *repository.Repositories
	events       interfaces.EventsPublisher
}

func NewChannelOrchestrator(
	log logger.Logger,
	repositories *repository.Repositories,
	events interfaces.EventsPublisher,
) interfaces.ChannelOrchestrator {
	return &channelOrchestrator{
		log:          log,
		repositories: repositories,
		events:       events,
	}
}

// ExecuteCampaign walks the strategy's step list, computes each step's
// absolute schedule time and emits one pending touch per step, stopping
// at maxTotalTouches.
func (s *channelOrchestrator) ExecuteCampaign(ctx context.Context, prospect *dto.Prospect, strategy enum.StrategyType, maxTotalTouches int) ([]*models.ChannelTouch, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ChannelOrchestrator.ExecuteCampaign")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.LogKV("strategy", strategy, "maxTotalTouches", maxTotalTouches)

	if prospect == nil {
		return nil, er.NewValidationError("prospect", "is required")
	}
	if err := utils.ValidateTenant(ctx); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	steps, err := strategySteps(strategy)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	tenant := utils.GetTenantFromContext(ctx)
	now := utils.Now()

	var touches []*models.ChannelTouch
	for _, step := range steps {
		if maxTotalTouches > 0 && len(touches) >= maxTotalTouches {
			break
		}

		scheduledFor := now
		if step.Trigger != enum.TriggerImmediate && step.Trigger != enum.TriggerConcurrent {
			scheduledFor = now.Add(time.Duration(step.DelayDays) * 24 * time.Hour)
		}

		touch := &models.ChannelTouch{
			Tenant:       tenant,
			ProspectID:   prospect.ID,
			Channel:      step.Channel,
			ScheduledFor: scheduledFor,
			Priority:     step.Priority,
			StrategyType: strategy,
			Trigger:      step.Trigger,
			Status:       enum.TouchStatusPending,
		}

		if err := s.repositories.ChannelTouchRepository.Create(ctx, touch); err != nil {
			tracing.TraceErr(span, err)
			return nil, err
		}

		err = s.events.PublishEvent(ctx, touch.ID, enum.TOUCH, dto.TouchScheduled{
			TouchID:      touch.ID,
			ProspectID:   prospect.ID,
			Channel:      touch.Channel,
			ScheduledFor: touch.ScheduledFor,
		})
		if err != nil {
			tracing.TraceErr(span, err)
			s.log.Errorf("failed to publish touch scheduled event for %s: %v", touch.ID, err)
		}

		touches = append(touches, touch)
	}

	span.LogFields(tracingLog.Int("result.touches", len(touches)))
	return touches, nil
}

// GetChannelRecommendation scores email, linkedin and phone
// independently and ranks them. Alternatives exclude the winner.
func (s *channelOrchestrator) GetChannelRecommendation(ctx context.Context, prospect *dto.Prospect) (dto.ChannelRecommendation, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ChannelOrchestrator.GetChannelRecommendation")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	if prospect == nil {
		return dto.ChannelRecommendation{}, er.NewValidationError("prospect", "is required")
	}

	scores, err := s.scoreAllChannels(ctx, prospect)
	if err != nil {
		tracing.TraceErr(span, err)
		return dto.ChannelRecommendation{}, err
	}

	recommendation := dto.ChannelRecommendation{
		Channel:      scores[0].Channel,
		Score:        scores[0].Score,
		Reason:       scores[0].Reason,
		Alternatives: scores[1:],
	}

	span.LogFields(tracingLog.String("result.channel", recommendation.Channel.String()))
	return recommendation, nil
}

func (s *channelOrchestrator) scoreAllChannels(ctx context.Context, prospect *dto.Prospect) ([]dto.ChannelScore, error) {
	tenant := utils.GetTenantFromContext(ctx)

	performanceByChannel := map[enum.Channel]*models.ChannelPerformance{}
	if tenant != "" {
		performances, err := s.repositories.ChannelPerformanceRepository.GetLatestAll(ctx, tenant)
		if err != nil {
			return nil, err
		}
		for i := range performances {
			performanceByChannel[performances[i].Channel] = &performances[i]
		}
	}

	scores := []dto.ChannelScore{
		scoreEmail(prospect, performanceByChannel[enum.ChannelEmail]),
		scoreLinkedIn(prospect, performanceByChannel[enum.ChannelLinkedIn]),
		scorePhone(prospect, performanceByChannel[enum.ChannelPhone]),
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	return scores, nil
}

// ShouldSwitchChannel inspects the prospect's most recent outbound
// touches. A switch is recommended after three unanswered touches on
// the same channel, or when the latest touch hard-failed.
func (s *channelOrchestrator) ShouldSwitchChannel(ctx context.Context, prospect *dto.Prospect) (dto.SwitchRecommendation, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ChannelOrchestrator.ShouldSwitchChannel")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	if prospect == nil {
		return dto.SwitchRecommendation{}, er.NewValidationError("prospect", "is required")
	}

	tenant := utils.GetTenantFromContext(ctx)
	touches, err := s.repositories.ChannelTouchRepository.GetRecentByProspect(ctx, tenant, prospect.ID, recentTouchLookback)
	if err != nil {
		tracing.TraceErr(span, err)
		return dto.SwitchRecommendation{}, err
	}

	outbound := dispatchedOrFailed(touches)
	if len(outbound) == 0 {
		return dto.SwitchRecommendation{Reason: "no outbound touches yet"}, nil
	}

	latest := outbound[0]
	if latest.HardFailed() {
		suggested, err := s.suggestOtherChannel(ctx, prospect, latest.Channel)
		if err != nil {
			tracing.TraceErr(span, err)
			return dto.SwitchRecommendation{}, err
		}
		return dto.SwitchRecommendation{
			ShouldSwitch:     true,
			Reason:           "most recent touch hard-failed: " + latest.FailureReason,
			SuggestedChannel: suggested,
		}, nil
	}

	unanswered := 0
	for _, touch := range outbound {
		if touch.Channel != latest.Channel {
			break
		}
		if touch.ResponseAt != nil {
			break
		}
		unanswered++
	}

	if unanswered >= unansweredTouchesBeforeSwitch {
		suggested, err := s.suggestOtherChannel(ctx, prospect, latest.Channel)
		if err != nil {
			tracing.TraceErr(span, err)
			return dto.SwitchRecommendation{}, err
		}
		return dto.SwitchRecommendation{
			ShouldSwitch:     true,
			Reason:           "3 or more unanswered touches on " + latest.Channel.String(),
			SuggestedChannel: suggested,
		}, nil
	}

	return dto.SwitchRecommendation{Reason: "current channel still has headroom"}, nil
}

// dispatchedOrFailed keeps outbound touches only, preserving the
// newest-first order the repository returns.
func dispatchedOrFailed(touches []models.ChannelTouch) []models.ChannelTouch {
	var outbound []models.ChannelTouch
	for _, touch := range touches {
		if touch.Status == enum.TouchStatusDispatched || touch.Status == enum.TouchStatusFailed {
			outbound = append(outbound, touch)
		}
	}
	return outbound
}

func (s *channelOrchestrator) suggestOtherChannel(ctx context.Context, prospect *dto.Prospect, current enum.Channel) (enum.Channel, error) {
	scores, err := s.scoreAllChannels(ctx, prospect)
	if err != nil {
		return "", err
	}
	for _, score := range scores {
		if score.Channel != current {
			return score.Channel, nil
		}
	}
	return current, nil
}
