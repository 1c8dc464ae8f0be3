package repository

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/customeros/outreachstack/internal/enum"
	"github.com/customeros/outreachstack/internal/models"
	"github.com/customeros/outreachstack/internal/tracing"
)

type ChannelPerformanceRepository interface {
	GetLatestByChannel(ctx context.Context, tenant string, channel enum.Channel) (*models.ChannelPerformance, error)
	GetLatestAll(ctx context.Context, tenant string) ([]models.ChannelPerformance, error)
	Upsert(ctx context.Context, performance *models.ChannelPerformance) error
}

type channelPerformanceRepository struct {
	db *gorm.DB
}

func NewChannelPerformanceRepository(db *gorm.DB) ChannelPerformanceRepository {
	return &channelPerformanceRepository{db: db}
}

func (r *channelPerformanceRepository) GetLatestByChannel(ctx context.Context, tenant string, channel enum.Channel) (*models.ChannelPerformance, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "ChannelPerformanceRepository.GetLatestByChannel")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagTenant(span, tenant)
	span.LogKV("channel", channel)

	var performance models.ChannelPerformance
	err := r.db.WithContext(ctx).
		Where("tenant = ? AND channel = ?", tenant, channel).
		Order("window_end DESC").
		First(&performance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	return &performance, nil
}

func (r *channelPerformanceRepository) GetLatestAll(ctx context.Context, tenant string) ([]models.ChannelPerformance, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "ChannelPerformanceRepository.GetLatestAll")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagTenant(span, tenant)

	// Latest window per channel.
	var performances []models.ChannelPerformance
	err := r.db.WithContext(ctx).
		Raw(`SELECT DISTINCT ON (channel) *
		     FROM channel_performance
		     WHERE tenant = ?
		     ORDER BY channel, window_end DESC`, tenant).
		Scan(&performances).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	return performances, nil
}

func (r *channelPerformanceRepository) Upsert(ctx context.Context, performance *models.ChannelPerformance) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "ChannelPerformanceRepository.Upsert")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagTenant(span, performance.Tenant)

	err := r.db.WithContext(ctx).Save(performance).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}
