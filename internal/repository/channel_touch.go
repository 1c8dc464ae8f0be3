package repository

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/customeros/outreachstack/internal/enum"
	"github.com/customeros/outreachstack/internal/models"
	"github.com/customeros/outreachstack/internal/tracing"
	"github.com/customeros/outreachstack/internal/utils"
)

type ChannelTouchRepository interface {
	Create(ctx context.Context, touch *models.ChannelTouch) error
	GetByID(ctx context.Context, id string) (*models.ChannelTouch, error)
	GetRecentByProspect(ctx context.Context, tenant, prospectID string, limit int) ([]models.ChannelTouch, error)
	MarkScheduled(ctx context.Context, id string) error
	MarkDispatched(ctx context.Context, id string, at time.Time) error
	MarkFailed(ctx context.Context, id string, reason string) error
	MarkCancelled(ctx context.Context, id string, reason string) error
	CountByProspect(ctx context.Context, tenant, prospectID string) (int64, error)
}

type channelTouchRepository struct {
	db *gorm.DB
}

func NewChannelTouchRepository(db *gorm.DB) ChannelTouchRepository {
	return &channelTouchRepository{db: db}
}

func (r *channelTouchRepository) Create(ctx context.Context, touch *models.ChannelTouch) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "ChannelTouchRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagTenant(span, touch.Tenant)

	err := r.db.WithContext(ctx).Create(touch).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}

func (r *channelTouchRepository) GetByID(ctx context.Context, id string) (*models.ChannelTouch, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "ChannelTouchRepository.GetByID")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, id)

	var touch models.ChannelTouch
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&touch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	return &touch, nil
}

// GetRecentByProspect returns the prospect's latest touches, newest
// first. Channel switching reads these.
func (r *channelTouchRepository) GetRecentByProspect(ctx context.Context, tenant, prospectID string, limit int) ([]models.ChannelTouch, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "ChannelTouchRepository.GetRecentByProspect")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagTenant(span, tenant)
	span.LogKV("prospectId", prospectID)

	var touches []models.ChannelTouch
	err := r.db.WithContext(ctx).
		Where("tenant = ? AND prospect_id = ?", tenant, prospectID).
		Order("created_at DESC").
		Limit(limit).
		Find(&touches).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	return touches, nil
}

func (r *channelTouchRepository) MarkScheduled(ctx context.Context, id string) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "ChannelTouchRepository.MarkScheduled")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, id)

	err := r.db.WithContext(ctx).
		Model(&models.ChannelTouch{}).
		Where("id = ?", id).
		UpdateColumn("status", enum.TouchStatusScheduled).
		UpdateColumn("updated_at", utils.Now()).
		Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}

func (r *channelTouchRepository) MarkDispatched(ctx context.Context, id string, at time.Time) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "ChannelTouchRepository.MarkDispatched")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, id)

	err := r.db.WithContext(ctx).
		Model(&models.ChannelTouch{}).
		Where("id = ?", id).
		UpdateColumn("status", enum.TouchStatusDispatched).
		UpdateColumn("dispatched_at", at).
		UpdateColumn("updated_at", utils.Now()).
		Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}

func (r *channelTouchRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "ChannelTouchRepository.MarkFailed")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, id)

	err := r.db.WithContext(ctx).
		Model(&models.ChannelTouch{}).
		Where("id = ?", id).
		UpdateColumn("status", enum.TouchStatusFailed).
		UpdateColumn("failure_reason", reason).
		UpdateColumn("updated_at", utils.Now()).
		Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}

func (r *channelTouchRepository) MarkCancelled(ctx context.Context, id string, reason string) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "ChannelTouchRepository.MarkCancelled")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, id)

	err := r.db.WithContext(ctx).
		Model(&models.ChannelTouch{}).
		Where("id = ?", id).
		UpdateColumn("status", enum.TouchStatusCancelled).
		UpdateColumn("failure_reason", reason).
		UpdateColumn("updated_at", utils.Now()).
		Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}

func (r *channelTouchRepository) CountByProspect(ctx context.Context, tenant, prospectID string) (int64, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "ChannelTouchRepository.CountByProspect")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagTenant(span, tenant)

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ChannelTouch{}).
		Where("tenant = ? AND prospect_id = ?", tenant, prospectID).
		Count(&count).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return 0, err
	}

	return count, nil
}
