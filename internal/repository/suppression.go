package repository

import (
	"context"
	"strings"

	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/customeros/outreachstack/internal/models"
	"github.com/customeros/outreachstack/internal/tracing"
)

type SuppressionRepository interface {
	Create(ctx context.Context, suppression *models.Suppression) error
	IsSuppressed(ctx context.Context, tenant, email string) (bool, error)
	GetByEmail(ctx context.Context, tenant, email string) (*models.Suppression, error)
	Delete(ctx context.Context, tenant, email string) error
}

type suppressionRepository struct {
	db *gorm.DB
}

func NewSuppressionRepository(db *gorm.DB) SuppressionRepository {
	return &suppressionRepository{db: db}
}

func (r *suppressionRepository) Create(ctx context.Context, suppression *models.Suppression) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "SuppressionRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagTenant(span, suppression.Tenant)

	suppression.EmailAddress = strings.ToLower(strings.TrimSpace(suppression.EmailAddress))

	// A recipient already on the list stays on it with the original reason.
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(suppression).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}

func (r *suppressionRepository) IsSuppressed(ctx context.Context, tenant, email string) (bool, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "SuppressionRepository.IsSuppressed")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagTenant(span, tenant)

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Suppression{}).
		Where("tenant = ? AND email_address = ?", tenant, strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return false, err
	}

	span.LogFields(tracingLog.Bool("result.suppressed", count > 0))
	return count > 0, nil
}

func (r *suppressionRepository) GetByEmail(ctx context.Context, tenant, email string) (*models.Suppression, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "SuppressionRepository.GetByEmail")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagTenant(span, tenant)

	var suppression models.Suppression
	err := r.db.WithContext(ctx).
		Where("tenant = ? AND email_address = ?", tenant, strings.ToLower(strings.TrimSpace(email))).
		First(&suppression).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	return &suppression, nil
}

func (r *suppressionRepository) Delete(ctx context.Context, tenant, email string) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "SuppressionRepository.Delete")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagTenant(span, tenant)

	err := r.db.WithContext(ctx).
		Where("tenant = ? AND email_address = ?", tenant, strings.ToLower(strings.TrimSpace(email))).
		Delete(&models.Suppression{}).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}
