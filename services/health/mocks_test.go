package health

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/customeros/outreachstack/interfaces"
	"github.com/customeros/outreachstack/internal/enum"
	"github.com/customeros/outreachstack/internal/logger"
	"github.com/customeros/outreachstack/internal/models"
)

func getLogger() logger.Logger {
	appLogger := logger.NewAppLogger(&logger.Config{
		DevMode: true,
	})
	appLogger.InitLogger()
	return appLogger
}

type mockIdentityRepository struct {
	mock.Mock
}

func (m *mockIdentityRepository) Create(ctx context.Context, identity *models.SendingIdentity) error {
	args := m.Called(ctx, identity)
	return args.Error(0)
}

func (m *mockIdentityRepository) GetByID(ctx context.Context, id string) (*models.SendingIdentity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SendingIdentity), args.Error(1)
}

func (m *mockIdentityRepository) GetActive(ctx context.Context, tenant string) ([]models.SendingIdentity, error) {
	args := m.Called(ctx, tenant)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SendingIdentity), args.Error(1)
}

func (m *mockIdentityRepository) GetAllInWarmup(ctx context.Context) ([]models.SendingIdentity, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SendingIdentity), args.Error(1)
}

func (m *mockIdentityRepository) Save(ctx context.Context, identity *models.SendingIdentity) error {
	args := m.Called(ctx, identity)
	return args.Error(0)
}

func (m *mockIdentityRepository) ReserveDailySend(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockIdentityRepository) ReleaseDailySend(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockIdentityRepository) ResetDailyCounts(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockIdentityRepository) UpdateHealthScore(ctx context.Context, id string, score int) error {
	args := m.Called(ctx, id, score)
	return args.Error(0)
}

func (m *mockIdentityRepository) UpdateDeliverability(ctx context.Context, identity *models.SendingIdentity) error {
	args := m.Called(ctx, identity)
	return args.Error(0)
}

func (m *mockIdentityRepository) UpdateWarmup(ctx context.Context, id string, stage enum.WarmupStage, dailyLimit int) error {
	args := m.Called(ctx, id, stage, dailyLimit)
	return args.Error(0)
}

func (m *mockIdentityRepository) UpdateAuthentication(ctx context.Context, id string, spf, dkim, dmarc bool, dkimSelectors []string) error {
	args := m.Called(ctx, id, spf, dkim, dmarc, dkimSelectors)
	return args.Error(0)
}

func (m *mockIdentityRepository) UpdateStatus(ctx context.Context, id string, status enum.IdentityStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type mockSuppressionRepository struct {
	mock.Mock
}

func (m *mockSuppressionRepository) Create(ctx context.Context, suppression *models.Suppression) error {
	args := m.Called(ctx, suppression)
	return args.Error(0)
}

func (m *mockSuppressionRepository) IsSuppressed(ctx context.Context, tenant, email string) (bool, error) {
	args := m.Called(ctx, tenant, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockSuppressionRepository) GetByEmail(ctx context.Context, tenant, email string) (*models.Suppression, error) {
	args := m.Called(ctx, tenant, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Suppression), args.Error(1)
}

func (m *mockSuppressionRepository) Delete(ctx context.Context, tenant, email string) error {
	args := m.Called(ctx, tenant, email)
	return args.Error(0)
}

type mockReputationSnapshotRepository struct {
	mock.Mock
}

func (m *mockReputationSnapshotRepository) Create(ctx context.Context, tenant string, snapshot *models.ReputationSnapshot) error {
	args := m.Called(ctx, tenant, snapshot)
	return args.Error(0)
}

func (m *mockReputationSnapshotRepository) GetByIdentity(ctx context.Context, tenant, identityID string, limit int) ([]models.ReputationSnapshot, error) {
	args := m.Called(ctx, tenant, identityID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReputationSnapshot), args.Error(1)
}

type mockEventsPublisher struct {
	mock.Mock
}

func (m *mockEventsPublisher) PublishEvent(ctx context.Context, entityId string, entityType enum.EntityType, message interface{}) error {
	args := m.Called(ctx, entityId, entityType, message)
	return args.Error(0)
}

func (m *mockEventsPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

type mockAuthChecker struct {
	mock.Mock
}

func (m *mockAuthChecker) CheckDomain(ctx context.Context, domain string) (interfaces.AuthenticationResult, error) {
	args := m.Called(ctx, domain)
	return args.Get(0).(interfaces.AuthenticationResult), args.Error(1)
}

func warmingIdentity(startedDaysAgo int) models.SendingIdentity {
	started := time.Now().UTC().Add(-time.Duration(startedDaysAgo*24) * time.Hour)
	return models.SendingIdentity{
		ID:              "sid_test",
		Tenant:          "acme",
		Domain:          "mail.acme.com",
		EmailAddress:    "sales@mail.acme.com",
		HealthScore:     100,
		DailyLimit:      10,
		WarmupStage:     enum.WarmupStageNew,
		WarmupStartedAt: &started,
		Status:          enum.IdentityStatusWarming,
		SPFValid:        true,
		DKIMValid:       true,
		DMARCValid:      true,
	}
}
