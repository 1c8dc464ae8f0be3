package repository

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/customeros/outreachstack/internal/models"
	"github.com/customeros/outreachstack/internal/tracing"
	"github.com/customeros/outreachstack/internal/utils"
)

type ReputationSnapshotRepository interface {
	Create(ctx context.Context, tenant string, snapshot *models.ReputationSnapshot) error
	GetByIdentity(ctx context.Context, tenant, identityID string, limit int) ([]models.ReputationSnapshot, error)
}

type reputationSnapshotRepository struct {
	db *gorm.DB
}

func NewReputationSnapshotRepository(db *gorm.DB) ReputationSnapshotRepository {
	return &reputationSnapshotRepository{db: db}
}

func (r *reputationSnapshotRepository) Create(ctx context.Context, tenant string, snapshot *models.ReputationSnapshot) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "ReputationSnapshotRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagTenant(span, tenant)

	snapshot.Tenant = tenant
	snapshot.CreatedAt = utils.Now()

	err := r.db.WithContext(ctx).Create(snapshot).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}

func (r *reputationSnapshotRepository) GetByIdentity(ctx context.Context, tenant, identityID string, limit int) ([]models.ReputationSnapshot, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "ReputationSnapshotRepository.GetByIdentity")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagTenant(span, tenant)
	tracing.TagEntity(span, identityID)

	var snapshots []models.ReputationSnapshot
	err := r.db.WithContext(ctx).
		Where("tenant = ? AND identity_id = ?", tenant, identityID).
		Order("created_at DESC").
		Limit(limit).
		Find(&snapshots).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	return snapshots, nil
}
