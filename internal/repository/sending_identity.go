package repository

import (
	"context"

	"github.com/lib/pq"
	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/customeros/outreachstack/internal/enum"
	"github.com/customeros/outreachstack/internal/models"
	"github.com/customeros/outreachstack/internal/tracing"
	"github.com/customeros/outreachstack/internal/utils"
)

type SendingIdentityRepository interface {
	Create(ctx context.Context, identity *models.SendingIdentity) error
	GetByID(ctx context.Context, id string) (*models.SendingIdentity, error)
	GetActive(ctx context.Context, tenant string) ([]models.SendingIdentity, error)
	GetAllInWarmup(ctx context.Context) ([]models.SendingIdentity, error)
	Save(ctx context.Context, identity *models.SendingIdentity) error

	// ReserveDailySend claims one send against the daily limit in a
	// single guarded update. Returns ErrDailyLimitSpent when the limit
	// is already reached; concurrent callers can never push
	// current_daily_count past daily_limit.
	ReserveDailySend(ctx context.Context, id string) error
	// ReleaseDailySend returns a reserved slot after a failed dispatch.
	ReleaseDailySend(ctx context.Context, id string) error
	ResetDailyCounts(ctx context.Context) error

	UpdateHealthScore(ctx context.Context, id string, score int) error
	// UpdateDeliverability persists the delivery counters and the rates
	// derived from them.
	UpdateDeliverability(ctx context.Context, identity *models.SendingIdentity) error
	UpdateWarmup(ctx context.Context, id string, stage enum.WarmupStage, dailyLimit int) error
	UpdateAuthentication(ctx context.Context, id string, spf, dkim, dmarc bool, dkimSelectors []string) error
	UpdateStatus(ctx context.Context, id string, status enum.IdentityStatus) error
}

type sendingIdentityRepository struct {
	db *gorm.DB
}

func NewSendingIdentityRepository(db *gorm.DB) SendingIdentityRepository {
	return &sendingIdentityRepository{db: db}
}

func (r *sendingIdentityRepository) Create(ctx context.Context, identity *models.SendingIdentity) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "SendingIdentityRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagTenant(span, identity.Tenant)

	err := r.db.WithContext(ctx).Create(identity).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}

func (r *sendingIdentityRepository) GetByID(ctx context.Context, id string) (*models.SendingIdentity, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "SendingIdentityRepository.GetByID")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, id)

	var identity models.SendingIdentity
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&identity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	return &identity, nil
}

func (r *sendingIdentityRepository) GetActive(ctx context.Context, tenant string) ([]models.SendingIdentity, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "SendingIdentityRepository.GetActive")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagTenant(span, tenant)

	var identities []models.SendingIdentity
	err := r.db.WithContext(ctx).
		Where("tenant = ? AND status IN ?", tenant, []enum.IdentityStatus{enum.IdentityStatusActive, enum.IdentityStatusWarming}).
		Find(&identities).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	return identities, nil
}

func (r *sendingIdentityRepository) GetAllInWarmup(ctx context.Context) ([]models.SendingIdentity, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "SendingIdentityRepository.GetAllInWarmup")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var identities []models.SendingIdentity
	err := r.db.WithContext(ctx).
		Where("warmup_stage <> ?", enum.WarmupStageEstablished).
		Where("status IN ?", []enum.IdentityStatus{enum.IdentityStatusActive, enum.IdentityStatusWarming}).
		Find(&identities).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	return identities, nil
}

func (r *sendingIdentityRepository) Save(ctx context.Context, identity *models.SendingIdentity) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "SendingIdentityRepository.Save")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, identity.ID)

	identity.UpdatedAt = utils.Now()
	err := r.db.WithContext(ctx).Save(identity).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}

func (r *sendingIdentityRepository) ReserveDailySend(ctx context.Context, id string) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "SendingIdentityRepository.ReserveDailySend")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, id)

	// The WHERE clause guards the increment; the database serializes
	// concurrent reservations on the row.
	result := r.db.WithContext(ctx).
		Model(&models.SendingIdentity{}).
		Where("id = ? AND current_daily_count < daily_limit", id).
		UpdateColumn("current_daily_count", gorm.Expr("current_daily_count + 1")).
		UpdateColumn("total_sent", gorm.Expr("total_sent + 1")).
		UpdateColumn("updated_at", utils.Now())
	if result.Error != nil {
		tracing.TraceErr(span, errors.Wrap(result.Error, "db error"))
		return result.Error
	}
	if result.RowsAffected == 0 {
		span.LogFields(tracingLog.Bool("result.reserved", false))
		return ErrDailyLimitSpent
	}

	span.LogFields(tracingLog.Bool("result.reserved", true))
	return nil
}

func (r *sendingIdentityRepository) ReleaseDailySend(ctx context.Context, id string) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "SendingIdentityRepository.ReleaseDailySend")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, id)

	err := r.db.WithContext(ctx).
		Model(&models.SendingIdentity{}).
		Where("id = ? AND current_daily_count > 0", id).
		UpdateColumn("current_daily_count", gorm.Expr("current_daily_count - 1")).
		UpdateColumn("total_sent", gorm.Expr("GREATEST(total_sent - 1, 0)")).
		UpdateColumn("updated_at", utils.Now()).
		Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}

func (r *sendingIdentityRepository) ResetDailyCounts(ctx context.Context) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "SendingIdentityRepository.ResetDailyCounts")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	now := utils.Now()
	err := r.db.WithContext(ctx).
		Model(&models.SendingIdentity{}).
		Where("current_daily_count > 0").
		UpdateColumn("current_daily_count", 0).
		UpdateColumn("count_reset_at", now).
		UpdateColumn("updated_at", now).
		Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}

func (r *sendingIdentityRepository) UpdateHealthScore(ctx context.Context, id string, score int) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "SendingIdentityRepository.UpdateHealthScore")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, id)
	span.LogKV("score", score)

	err := r.db.WithContext(ctx).
		Model(&models.SendingIdentity{}).
		Where("id = ?", id).
		UpdateColumn("health_score", score).
		UpdateColumn("updated_at", utils.Now()).
		Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}

func (r *sendingIdentityRepository) UpdateDeliverability(ctx context.Context, identity *models.SendingIdentity) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "SendingIdentityRepository.UpdateDeliverability")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, identity.ID)

	err := r.db.WithContext(ctx).
		Model(&models.SendingIdentity{}).
		Where("id = ?", identity.ID).
		UpdateColumns(map[string]interface{}{
			"hard_bounces":     identity.HardBounces,
			"soft_bounces":     identity.SoftBounces,
			"complaints":       identity.Complaints,
			"opens":            identity.Opens,
			"clicks":           identity.Clicks,
			"replies":          identity.Replies,
			"hard_bounce_rate": identity.HardBounceRate,
			"soft_bounce_rate": identity.SoftBounceRate,
			"complaint_rate":   identity.ComplaintRate,
			"open_rate":        identity.OpenRate,
			"click_rate":       identity.ClickRate,
			"reply_rate":       identity.ReplyRate,
			"updated_at":       utils.Now(),
		}).
		Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}

func (r *sendingIdentityRepository) UpdateWarmup(ctx context.Context, id string, stage enum.WarmupStage, dailyLimit int) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "SendingIdentityRepository.UpdateWarmup")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, id)
	span.LogKV("stage", stage, "dailyLimit", dailyLimit)

	err := r.db.WithContext(ctx).
		Model(&models.SendingIdentity{}).
		Where("id = ?", id).
		UpdateColumn("warmup_stage", stage).
		UpdateColumn("daily_limit", dailyLimit).
		UpdateColumn("updated_at", utils.Now()).
		Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}

func (r *sendingIdentityRepository) UpdateAuthentication(ctx context.Context, id string, spf, dkim, dmarc bool, dkimSelectors []string) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "SendingIdentityRepository.UpdateAuthentication")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, id)

	err := r.db.WithContext(ctx).
		Model(&models.SendingIdentity{}).
		Where("id = ?", id).
		UpdateColumn("spf_valid", spf).
		UpdateColumn("dkim_valid", dkim).
		UpdateColumn("dkim_selectors", pq.StringArray(dkimSelectors)).
		UpdateColumn("dmarc_valid", dmarc).
		UpdateColumn("updated_at", utils.Now()).
		Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}

func (r *sendingIdentityRepository) UpdateStatus(ctx context.Context, id string, status enum.IdentityStatus) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "SendingIdentityRepository.UpdateStatus")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, id)
	span.LogKV("status", status)

	err := r.db.WithContext(ctx).
		Model(&models.SendingIdentity{}).
		Where("id = ?", id).
		UpdateColumn("status", status).
		UpdateColumn("updated_at", utils.Now()).
		Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}
