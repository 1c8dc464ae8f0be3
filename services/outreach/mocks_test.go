package outreach

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/customeros/outreachstack/dto"
	"github.com/customeros/outreachstack/interfaces"
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
	if touch.ID == "" {
		touch.ID = "touch_generated"
	}
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

type mockHealthService struct {
	mock.Mock
}

func (m *mockHealthService) CanSend(ctx context.Context, identityID string) (dto.SendDecision, error) {
	args := m.Called(ctx, identityID)
	return args.Get(0).(dto.SendDecision), args.Error(1)
}

func (m *mockHealthService) CanSendAndReserve(ctx context.Context, identityID string) (dto.SendDecision, error) {
	args := m.Called(ctx, identityID)
	return args.Get(0).(dto.SendDecision), args.Error(1)
}

func (m *mockHealthService) CalculateHealthScore(identity *models.SendingIdentity) int {
	args := m.Called(identity)
	return args.Int(0)
}

func (m *mockHealthService) RecomputeHealthScore(ctx context.Context, identityID string) (int, error) {
	args := m.Called(ctx, identityID)
	return args.Int(0), args.Error(1)
}

func (m *mockHealthService) GetScheduleForDay(day int) int {
	args := m.Called(day)
	return args.Int(0)
}

func (m *mockHealthService) RampUpIdentities(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockHealthService) TrackBounce(ctx context.Context, identityID, recipient, detail string, bounceType enum.BounceType) error {
	args := m.Called(ctx, identityID, recipient, detail, bounceType)
	return args.Error(0)
}

func (m *mockHealthService) TrackComplaint(ctx context.Context, identityID, recipient, detail string) error {
	args := m.Called(ctx, identityID, recipient, detail)
	return args.Error(0)
}

func (m *mockHealthService) TrackEngagement(ctx context.Context, identityID, recipient string, kind enum.EngagementType) error {
	args := m.Called(ctx, identityID, recipient, kind)
	return args.Error(0)
}

func (m *mockHealthService) RefreshAuthentication(ctx context.Context, identityID string) error {
	args := m.Called(ctx, identityID)
	return args.Error(0)
}

func (m *mockHealthService) ResetWarmup(ctx context.Context, identityID string) error {
	args := m.Called(ctx, identityID)
	return args.Error(0)
}

func (m *mockHealthService) ResetDailyCounters(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type mockSpamCheckService struct {
	mock.Mock
}

func (m *mockSpamCheckService) CheckSpamScore(message dto.OutreachMessage) dto.SpamCheckResult {
	args := m.Called(message)
	return args.Get(0).(dto.SpamCheckResult)
}

type mockSendTimeService struct {
	mock.Mock
}

func (m *mockSendTimeService) CalculateOptimalSendTime(recipient *dto.Prospect, constraints dto.SendTimeConstraints) (dto.OptimalSendTime, error) {
	args := m.Called(recipient, constraints)
	return args.Get(0).(dto.OptimalSendTime), args.Error(1)
}

type mockEmailVerifier struct {
	mock.Mock
}

func (m *mockEmailVerifier) Verify(ctx context.Context, email string) (enum.VerificationStatus, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(enum.VerificationStatus), args.Error(1)
}

type mockComplianceService struct {
	mock.Mock
}

func (m *mockComplianceService) CanContact(ctx context.Context, email string) (interfaces.ComplianceDecision, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(interfaces.ComplianceDecision), args.Error(1)
}

func (m *mockComplianceService) ProcessUnsubscribe(ctx context.Context, email, source string) error {
	args := m.Called(ctx, email, source)
	return args.Error(0)
}

type mockTemplateRenderer struct {
	mock.Mock
}

func (m *mockTemplateRenderer) Render(ctx context.Context, templateID string, variables map[string]string) (interfaces.RenderedContent, error) {
	args := m.Called(ctx, templateID, variables)
	return args.Get(0).(interfaces.RenderedContent), args.Error(1)
}

type mockJobScheduler struct {
	mock.Mock
}

func (m *mockJobScheduler) Schedule(ctx context.Context, scheduledFor time.Time, touchID string) error {
	args := m.Called(ctx, scheduledFor, touchID)
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

type mockChannelSender struct {
	mock.Mock
	channel enum.Channel
}

func (m *mockChannelSender) Channel() enum.Channel {
	return m.channel
}

func (m *mockChannelSender) Dispatch(ctx context.Context, touch *models.ChannelTouch, message *dto.OutreachMessage) error {
	args := m.Called(ctx, touch, message)
	return args.Error(0)
}

type mockEmailGateway struct {
	mock.Mock
}

func (m *mockEmailGateway) Send(ctx context.Context, identityID, recipient string, message *dto.OutreachMessage) error {
	args := m.Called(ctx, identityID, recipient, message)
	return args.Error(0)
}
