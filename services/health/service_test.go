package health

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/customeros/outreachstack/config"
	"github.com/customeros/outreachstack/interfaces"
	"github.com/customeros/outreachstack/internal/enum"
	"github.com/customeros/outreachstack/internal/models"
	"github.com/customeros/outreachstack/internal/repository"
)

type healthTestFixture struct {
	service      interfaces.HealthService
	identities   *mockIdentityRepository
	suppressions *mockSuppressionRepository
	snapshots    *mockReputationSnapshotRepository
	events       *mockEventsPublisher
	authChecker  *mockAuthChecker
}

func newHealthFixture() *healthTestFixture {
	identities := &mockIdentityRepository{}
	suppressions := &mockSuppressionRepository{}
	snapshots := &mockReputationSnapshotRepository{}
	events := &mockEventsPublisher{}
	authChecker := &mockAuthChecker{}

	repos := &repository.Repositories{
		SendingIdentityRepository:    identities,
		SuppressionRepository:        suppressions,
		ReputationSnapshotRepository: snapshots,
	}

	service := NewHealthService(getLogger(), repos, authChecker, events, &config.WarmupConfig{MaxDailyVolume: 1000})

	return &healthTestFixture{
		service:      service,
		identities:   identities,
		suppressions: suppressions,
		snapshots:    snapshots,
		events:       events,
		authChecker:  authChecker,
	}
}

func TestCanSend_AllowsHealthyIdentity(t *testing.T) {
	// Arrange
	fixture := newHealthFixture()
	identity := warmingIdentity(3)
	identity.CurrentDailyCount = 2
	fixture.identities.On("GetByID", mock.Anything, identity.ID).Return(&identity, nil)

	// Act
	decision, err := fixture.service.CanSend(context.Background(), identity.ID)

	// Assert
	require.NoError(t, err)
	assert.True(t, decision.CanSend)
}

func TestCanSend_DeniesWhenDailyLimitReached(t *testing.T) {
	// Arrange
	fixture := newHealthFixture()
	identity := warmingIdentity(3)
	identity.DailyLimit = 10
	identity.CurrentDailyCount = 10
	fixture.identities.On("GetByID", mock.Anything, identity.ID).Return(&identity, nil)

	// Act
	decision, err := fixture.service.CanSend(context.Background(), identity.ID)

	// Assert
	require.NoError(t, err)
	assert.False(t, decision.CanSend)
	assert.Contains(t, decision.Reason, "daily limit")
	require.NotNil(t, decision.WaitUntil)
	assert.Equal(t, 0, decision.WaitUntil.Hour())
}

func TestCanSend_DeniesPausedIdentity(t *testing.T) {
	// Arrange
	fixture := newHealthFixture()
	identity := warmingIdentity(3)
	identity.Status = enum.IdentityStatusPaused
	fixture.identities.On("GetByID", mock.Anything, identity.ID).Return(&identity, nil)

	// Act
	decision, err := fixture.service.CanSend(context.Background(), identity.ID)

	// Assert
	require.NoError(t, err)
	assert.False(t, decision.CanSend)
	assert.Contains(t, decision.Reason, "paused")
}

func TestCanSend_DeniesBlacklistedIdentity(t *testing.T) {
	// Arrange
	fixture := newHealthFixture()
	identity := warmingIdentity(3)
	identity.Status = enum.IdentityStatusBlacklisted
	fixture.identities.On("GetByID", mock.Anything, identity.ID).Return(&identity, nil)

	// Act
	decision, err := fixture.service.CanSend(context.Background(), identity.ID)

	// Assert
	require.NoError(t, err)
	assert.False(t, decision.CanSend)
	assert.Contains(t, decision.Reason, "blacklisted")
}

func TestCanSend_DeniesLowHealthScore(t *testing.T) {
	// Arrange
	fixture := newHealthFixture()
	identity := warmingIdentity(3)
	identity.HealthScore = 49
	fixture.identities.On("GetByID", mock.Anything, identity.ID).Return(&identity, nil)

	// Act
	decision, err := fixture.service.CanSend(context.Background(), identity.ID)

	// Assert
	require.NoError(t, err)
	assert.False(t, decision.CanSend)
	assert.Contains(t, decision.Reason, "health score")
}

func TestCanSend_DeniesHighHardBounceRate(t *testing.T) {
	// Arrange
	fixture := newHealthFixture()
	identity := warmingIdentity(3)
	identity.HardBounceRate = 5.5
	fixture.identities.On("GetByID", mock.Anything, identity.ID).Return(&identity, nil)

	// Act
	decision, err := fixture.service.CanSend(context.Background(), identity.ID)

	// Assert
	require.NoError(t, err)
	assert.False(t, decision.CanSend)
	assert.Contains(t, decision.Reason, "bounce rate")
}

func TestCanSendAndReserve_ClaimsOneSend(t *testing.T) {
	// Arrange
	fixture := newHealthFixture()
	identity := warmingIdentity(3)
	fixture.identities.On("GetByID", mock.Anything, identity.ID).Return(&identity, nil)
	fixture.identities.On("ReserveDailySend", mock.Anything, identity.ID).Return(nil)

	// Act
	decision, err := fixture.service.CanSendAndReserve(context.Background(), identity.ID)

	// Assert
	require.NoError(t, err)
	assert.True(t, decision.CanSend)
	fixture.identities.AssertCalled(t, "ReserveDailySend", mock.Anything, identity.ID)
}

func TestCanSendAndReserve_DeniesWhenLimitSpent(t *testing.T) {
	// Arrange
	fixture := newHealthFixture()
	identity := warmingIdentity(3)
	fixture.identities.On("GetByID", mock.Anything, identity.ID).Return(&identity, nil)
	fixture.identities.On("ReserveDailySend", mock.Anything, identity.ID).Return(repository.ErrDailyLimitSpent)

	// Act
	decision, err := fixture.service.CanSendAndReserve(context.Background(), identity.ID)

	// Assert
	require.NoError(t, err)
	assert.False(t, decision.CanSend)
	assert.Contains(t, decision.Reason, "daily limit")
	assert.NotNil(t, decision.WaitUntil)
}

func TestCanSendAndReserve_DoesNotReserveForGatedIdentity(t *testing.T) {
	// Arrange
	fixture := newHealthFixture()
	identity := warmingIdentity(3)
	identity.Status = enum.IdentityStatusPaused
	fixture.identities.On("GetByID", mock.Anything, identity.ID).Return(&identity, nil)

	// Act
	decision, err := fixture.service.CanSendAndReserve(context.Background(), identity.ID)

	// Assert
	require.NoError(t, err)
	assert.False(t, decision.CanSend)
	fixture.identities.AssertNotCalled(t, "ReserveDailySend", mock.Anything, mock.Anything)
}

func TestRecomputeHealthScore_PersistsScoreAndSnapshot(t *testing.T) {
	// Arrange
	fixture := newHealthFixture()
	identity := warmingIdentity(3)
	identity.SPFValid = false
	fixture.identities.On("GetByID", mock.Anything, identity.ID).Return(&identity, nil)
	fixture.identities.On("UpdateHealthScore", mock.Anything, identity.ID, 90).Return(nil)
	fixture.snapshots.On("Create", mock.Anything, identity.Tenant, mock.MatchedBy(func(snapshot *models.ReputationSnapshot) bool {
		return snapshot.HealthScore == 90 && snapshot.AuthPenalty == 10
	})).Return(nil)

	// Act
	score, err := fixture.service.RecomputeHealthScore(context.Background(), identity.ID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 90, score)
	fixture.identities.AssertExpectations(t)
	fixture.snapshots.AssertExpectations(t)
}

func TestRampUpIdentities_AdvancesScheduleAndStage(t *testing.T) {
	// Arrange
	fixture := newHealthFixture()
	identity := warmingIdentity(9) // warmup day 10
	identity.DailyLimit = 60
	fixture.identities.On("GetAllInWarmup", mock.Anything).Return([]models.SendingIdentity{identity}, nil)
	fixture.identities.On("UpdateWarmup", mock.Anything, identity.ID, enum.WarmupStageWarming, 120).Return(nil)

	// Act
	err := fixture.service.RampUpIdentities(context.Background())

	// Assert
	require.NoError(t, err)
	fixture.identities.AssertExpectations(t)
}

func TestRampUpIdentities_ActivatesEstablishedIdentity(t *testing.T) {
	// Arrange
	fixture := newHealthFixture()
	identity := warmingIdentity(29) // warmup day 30
	identity.WarmupStage = enum.WarmupStageWarm
	identity.DailyLimit = 975
	fixture.identities.On("GetAllInWarmup", mock.Anything).Return([]models.SendingIdentity{identity}, nil)
	fixture.identities.On("UpdateWarmup", mock.Anything, identity.ID, enum.WarmupStageEstablished, 1000).Return(nil)
	fixture.identities.On("UpdateStatus", mock.Anything, identity.ID, enum.IdentityStatusActive).Return(nil)

	// Act
	err := fixture.service.RampUpIdentities(context.Background())

	// Assert
	require.NoError(t, err)
	fixture.identities.AssertExpectations(t)
}

func TestRampUpIdentities_NeverRegressesStage(t *testing.T) {
	// Arrange
	fixture := newHealthFixture()
	identity := warmingIdentity(9) // schedule says warming
	identity.WarmupStage = enum.WarmupStageWarm
	identity.DailyLimit = 400
	fixture.identities.On("GetAllInWarmup", mock.Anything).Return([]models.SendingIdentity{identity}, nil)
	fixture.identities.On("UpdateWarmup", mock.Anything, identity.ID, enum.WarmupStageWarm, 120).Return(nil)

	// Act
	err := fixture.service.RampUpIdentities(context.Background())

	// Assert
	require.NoError(t, err)
	fixture.identities.AssertExpectations(t)
}

func TestResetWarmup_RestartsTimeline(t *testing.T) {
	// Arrange
	fixture := newHealthFixture()
	identity := warmingIdentity(25)
	identity.WarmupStage = enum.WarmupStageEstablished
	identity.DailyLimit = 850
	fixture.identities.On("GetByID", mock.Anything, identity.ID).Return(&identity, nil)
	fixture.identities.On("Save", mock.Anything, mock.MatchedBy(func(saved *models.SendingIdentity) bool {
		return saved.WarmupStage == enum.WarmupStageNew &&
			saved.DailyLimit == 10 &&
			saved.CurrentDailyCount == 0 &&
			saved.Status == enum.IdentityStatusWarming
	})).Return(nil)

	// Act
	err := fixture.service.ResetWarmup(context.Background(), identity.ID)

	// Assert
	require.NoError(t, err)
	fixture.identities.AssertExpectations(t)
}

func TestRefreshAuthentication_BlocksBlacklistedDomain(t *testing.T) {
	// Arrange
	fixture := newHealthFixture()
	identity := warmingIdentity(3)
	fixture.identities.On("GetByID", mock.Anything, identity.ID).Return(&identity, nil)
	fixture.authChecker.On("CheckDomain", mock.Anything, identity.Domain).Return(interfaces.AuthenticationResult{
		SPFValid:      true,
		DKIMValid:     true,
		DKIMSelectors: []string{"cos"},
		DMARCValid:    false,
		Blacklisted:   true,
	}, nil)
	fixture.identities.On("UpdateAuthentication", mock.Anything, identity.ID, true, true, false, []string{"cos"}).Return(nil)
	fixture.identities.On("UpdateStatus", mock.Anything, identity.ID, enum.IdentityStatusBlacklisted).Return(nil)
	fixture.identities.On("UpdateHealthScore", mock.Anything, identity.ID, mock.Anything).Return(nil)
	fixture.snapshots.On("Create", mock.Anything, identity.Tenant, mock.Anything).Return(nil)

	// Act
	err := fixture.service.RefreshAuthentication(context.Background(), identity.ID)

	// Assert
	require.NoError(t, err)
	fixture.identities.AssertExpectations(t)
}
