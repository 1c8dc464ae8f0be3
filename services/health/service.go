package health

import (
	"context"
	"fmt"

	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"

	"github.com/customeros/outreachstack/config"
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

const (
	minHealthScoreToSend = 50
	maxHardBounceRatePct = 5.0
	warmupInitialDay     = 1
)

type healthService struct {
	log          logger.Logger
	repositories *repository.Repositories
	authChecker  interfaces.AuthenticationChecker
	events       interfaces.EventsPublisher
	warmupConfig *config.WarmupConfig
}

func NewHealthService(
	log logger.Logger,
	repositories *repository.Repositories,
	authChecker interfaces.AuthenticationChecker,
	events interfaces.EventsPublisher,
	warmupConfig *config.WarmupConfig,
) interfaces.HealthService {
	return &healthService{
		log:          log,
		repositories: repositories,
		authChecker:  authChecker,
		events:       events,
		warmupConfig: warmupConfig,
	}
}

func (s *healthService) getIdentity(ctx context.Context, identityID string) (*models.SendingIdentity, error) {
	identity, err := s.repositories.SendingIdentityRepository.GetByID(ctx, identityID)
	if err != nil {
		return nil, err
	}
	if identity == nil {
		return nil, er.ErrIdentityNotFound
	}
	return identity, nil
}

// gateDecision evaluates everything except the daily volume claim.
func gateDecision(identity *models.SendingIdentity) (dto.SendDecision, bool) {
	switch identity.Status {
	case enum.IdentityStatusPaused:
		return dto.SendDecision{Reason: "identity is paused"}, false
	case enum.IdentityStatusBlacklisted:
		return dto.SendDecision{Reason: "identity is blacklisted"}, false
	}

	if identity.HealthScore < minHealthScoreToSend {
		return dto.SendDecision{
			Reason: fmt.Sprintf("health score %d is below minimum %d", identity.HealthScore, minHealthScoreToSend),
		}, false
	}

	if identity.HardBounceRate > maxHardBounceRatePct {
		return dto.SendDecision{
			Reason: fmt.Sprintf("hard bounce rate %.1f%% exceeds %.1f%%", identity.HardBounceRate, maxHardBounceRatePct),
		}, false
	}

	return dto.SendDecision{CanSend: true}, true
}

func dailyLimitDecision(identity *models.SendingIdentity) dto.SendDecision {
	waitUntil := utils.StartOfNextDayUTC(utils.Now())
	return dto.SendDecision{
		Reason:    fmt.Sprintf("daily limit of %d reached", identity.DailyLimit),
		WaitUntil: &waitUntil,
	}
}

func (s *healthService) CanSend(ctx context.Context, identityID string) (dto.SendDecision, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "HealthService.CanSend")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, identityID)

	identity, err := s.getIdentity(ctx, identityID)
	if err != nil {
		tracing.TraceErr(span, err)
		return dto.SendDecision{}, err
	}

	decision, ok := gateDecision(identity)
	if ok && identity.CurrentDailyCount >= identity.DailyLimit {
		decision = dailyLimitDecision(identity)
	}

	span.LogFields(tracingLog.Bool("result.canSend", decision.CanSend))
	return decision, nil
}

// CanSendAndReserve claims one send against the daily limit. The claim
// is a single guarded update keyed by the identity; concurrent callers
// never push the count past the limit.
func (s *healthService) CanSendAndReserve(ctx context.Context, identityID string) (dto.SendDecision, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "HealthService.CanSendAndReserve")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, identityID)

	identity, err := s.getIdentity(ctx, identityID)
	if err != nil {
		tracing.TraceErr(span, err)
		return dto.SendDecision{}, err
	}

	decision, ok := gateDecision(identity)
	if !ok {
		return decision, nil
	}

	err = s.repositories.SendingIdentityRepository.ReserveDailySend(ctx, identityID)
	if err != nil {
		if errors.Is(err, repository.ErrDailyLimitSpent) {
			return dailyLimitDecision(identity), nil
		}
		tracing.TraceErr(span, err)
		return dto.SendDecision{}, err
	}

	return dto.SendDecision{CanSend: true}, nil
}

func (s *healthService) CalculateHealthScore(identity *models.SendingIdentity) int {
	return healthScoreBreakdown(identity).score
}

func (s *healthService) RecomputeHealthScore(ctx context.Context, identityID string) (int, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "HealthService.RecomputeHealthScore")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, identityID)

	identity, err := s.getIdentity(ctx, identityID)
	if err != nil {
		tracing.TraceErr(span, err)
		return 0, err
	}

	breakdown := healthScoreBreakdown(identity)
	span.LogFields(tracingLog.Int("result.healthScore", breakdown.score))

	err = s.repositories.SendingIdentityRepository.UpdateHealthScore(ctx, identityID, breakdown.score)
	if err != nil {
		tracing.TraceErr(span, err)
		return 0, err
	}

	snapshot := &models.ReputationSnapshot{
		IdentityID:       identityID,
		HealthScore:      breakdown.score,
		AuthPenalty:      breakdown.authPenalty,
		BouncePenalty:    breakdown.bouncePenalty,
		ComplaintPenalty: breakdown.complaintPenalty,
		EngagementBonus:  breakdown.engagementBonus,
	}
	if err := s.repositories.ReputationSnapshotRepository.Create(ctx, identity.Tenant, snapshot); err != nil {
		tracing.TraceErr(span, err)
		s.log.Errorf("failed to store reputation snapshot for %s: %v", identityID, err)
	}

	metrics.IdentityHealthScore.WithLabelValues(identity.Tenant, identityID).Set(float64(breakdown.score))
	return breakdown.score, nil
}

func (s *healthService) GetScheduleForDay(day int) int {
	return scheduleForDay(day, s.warmupConfig.MaxDailyVolume)
}

// RampUpIdentities advances every identity on the warmup timeline to
// its scheduled daily volume. Stages never regress here; only an
// explicit ResetWarmup moves an identity backwards.
func (s *healthService) RampUpIdentities(ctx context.Context) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "HealthService.RampUpIdentities")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	identities, err := s.repositories.SendingIdentityRepository.GetAllInWarmup(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	now := utils.Now()
	for i := range identities {
		identity := &identities[i]

		day := identity.WarmupDay(now)
		if day < warmupInitialDay {
			continue
		}

		targetLimit := s.GetScheduleForDay(day)
		targetStage := stageForDay(day)
		if targetStage.Order() < identity.WarmupStage.Order() {
			targetStage = identity.WarmupStage
		}

		if targetLimit == identity.DailyLimit && targetStage == identity.WarmupStage {
			continue
		}

		err = s.repositories.SendingIdentityRepository.UpdateWarmup(ctx, identity.ID, targetStage, targetLimit)
		if err != nil {
			tracing.TraceErr(span, err)
			s.log.Errorf("failed to ramp up identity %s: %v", identity.ID, err)
			continue
		}

		if targetStage == enum.WarmupStageEstablished && identity.Status == enum.IdentityStatusWarming {
			err = s.repositories.SendingIdentityRepository.UpdateStatus(ctx, identity.ID, enum.IdentityStatusActive)
			if err != nil {
				tracing.TraceErr(span, err)
				s.log.Errorf("failed to activate identity %s: %v", identity.ID, err)
			}
		}

		s.log.Infof("identity %s ramped to %d daily sends on warmup day %d (%s)", identity.ID, targetLimit, day, targetStage)
	}

	return nil
}

func (s *healthService) RefreshAuthentication(ctx context.Context, identityID string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "HealthService.RefreshAuthentication")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, identityID)

	identity, err := s.getIdentity(ctx, identityID)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	result, err := s.authChecker.CheckDomain(ctx, identity.Domain)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	err = s.repositories.SendingIdentityRepository.UpdateAuthentication(ctx, identityID, result.SPFValid, result.DKIMValid, result.DMARCValid, result.DKIMSelectors)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	if result.Blacklisted && identity.Status != enum.IdentityStatusBlacklisted {
		s.log.Warnf("domain %s is blacklisted, blocking identity %s", identity.Domain, identityID)
		err = s.repositories.SendingIdentityRepository.UpdateStatus(ctx, identityID, enum.IdentityStatusBlacklisted)
		if err != nil {
			tracing.TraceErr(span, err)
			return err
		}
	}

	_, err = s.RecomputeHealthScore(ctx, identityID)
	return err
}

// ResetWarmup restarts the warmup timeline from day one. This is the
// only path that moves a warmup stage backwards.
func (s *healthService) ResetWarmup(ctx context.Context, identityID string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "HealthService.ResetWarmup")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, identityID)

	identity, err := s.getIdentity(ctx, identityID)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	now := utils.Now()
	identity.WarmupStartedAt = &now
	identity.WarmupStage = enum.WarmupStageNew
	identity.DailyLimit = s.GetScheduleForDay(warmupInitialDay)
	identity.CurrentDailyCount = 0
	identity.Status = enum.IdentityStatusWarming

	err = s.repositories.SendingIdentityRepository.Save(ctx, identity)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	s.log.Infof("warmup reset for identity %s", identityID)
	return nil
}

func (s *healthService) ResetDailyCounters(ctx context.Context) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "HealthService.ResetDailyCounters")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	err := s.repositories.SendingIdentityRepository.ResetDailyCounts(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}
