package channels

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/customeros/outreachstack/internal/enum"
	"github.com/customeros/outreachstack/internal/logger"
	"github.com/customeros/outreachstack/internal/models"
	"github.com/customeros/outreachstack/internal/utils"
)

func getLogger() logger.Logger {
	appLogger := logger.NewAppLogger(&logger.Config{
		DevMode: true,
	})
	appLogger.InitLogger()
	return appLogger
}

func tenantContext() context.Context {
	return utils.WithCustomContext(context.Background(), &utils.CustomContext{Tenant: "acme"})
}

type mockTouchRepository struct {
	mock.Mock
}

func (m *mockTouchRepository) Create(ctx context.Context, touch *models.ChannelTouch) error {
	args := m.Called(ctx, touch)
	return args.Error(0)
}

func (m *mockTouchRepository) GetByID(ctx context.Context, id string) (*models.ChannelTouch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChannelTouch), args.Error(1)
}

func (m *mockTouchRepository) GetRecentByProspect(ctx context.Context, tenant, prospectID string, limit int) ([]models.ChannelTouch, error) {
	args := m.Called(ctx, tenant, prospectID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ChannelTouch), args.Error(1)
}

func (m *mockTouchRepository) MarkScheduled(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockTouchRepository) MarkDispatched(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *mockTouchRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *mockTouchRepository) MarkCancelled(ctx context.Context, id string, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *mockTouchRepository) CountByProspect(ctx context.Context, tenant, prospectID string) (int64, error) {
	args := m.Called(ctx, tenant, prospectID)
	return args.Get(0).(int64), args.Error(1)
}

type mockPerformanceRepository struct {
	mock.Mock
}

func (m *mockPerformanceRepository) GetLatestByChannel(ctx context.Context, tenant string, channel enum.Channel) (*models.ChannelPerformance, error) {
	args := m.Called(ctx, tenant, channel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChannelPerformance), args.Error(1)
}

func (m *mockPerformanceRepository) GetLatestAll(ctx context.Context, tenant string) ([]models.ChannelPerformance, error) {
	args := m.Called(ctx, tenant)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ChannelPerformance), args.Error(1)
}

func (m *mockPerformanceRepository) Upsert(ctx context.Context, performance *models.ChannelPerformance) error {
	args := m.Called(ctx, performance)
	return args.Error(0)
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
