package health

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/customeros/outreachstack/internal/enum"
	"github.com/customeros/outreachstack/internal/models"
)

func TestTrackBounce_HardBounceSuppressesRecipient(t *testing.T) {
	// Arrange
	fixture := newHealthFixture()
	identity := warmingIdentity(3)
	identity.TotalSent = 100
	fixture.identities.On("GetByID", mock.Anything, identity.ID).Return(&identity, nil)
	fixture.identities.On("UpdateDeliverability", mock.Anything, &identity).Return(nil)
	fixture.events.On("PublishEvent", mock.Anything, identity.ID, enum.IDENTITY, mock.Anything).Return(nil)
	fixture.suppressions.On("Create", mock.Anything, mock.MatchedBy(func(suppression *models.Suppression) bool {
		return suppression.EmailAddress == "dead@example.com" && suppression.Reason == enum.SuppressionHardBounce
	})).Return(nil)
	fixture.events.On("PublishEvent", mock.Anything, "dead@example.com", enum.SUPPRESSION, mock.Anything).Return(nil)
	fixture.identities.On("UpdateHealthScore", mock.Anything, identity.ID, mock.Anything).Return(nil)
	fixture.snapshots.On("Create", mock.Anything, identity.Tenant, mock.Anything).Return(nil)

	// Act
	err := fixture.service.TrackBounce(context.Background(), identity.ID, "dead@example.com", "550 user unknown", enum.BounceHard)

	// Assert
	require.NoError(t, err)
	fixture.suppressions.AssertExpectations(t)
	fixture.identities.AssertCalled(t, "UpdateHealthScore", mock.Anything, identity.ID, mock.Anything)
}

func TestTrackBounce_HardBouncesLowerScoreAndBlockSending(t *testing.T) {
	// Arrange
	fixture := newHealthFixture()
	identity := warmingIdentity(3)
	identity.TotalSent = 100
	fixture.identities.On("GetByID", mock.Anything, identity.ID).Return(&identity, nil)
	fixture.identities.On("UpdateDeliverability", mock.Anything, &identity).Return(nil)
	fixture.identities.On("UpdateHealthScore", mock.Anything, identity.ID, mock.Anything).Return(nil)
	fixture.snapshots.On("Create", mock.Anything, identity.Tenant, mock.Anything).Return(nil)
	fixture.suppressions.On("Create", mock.Anything, mock.Anything).Return(nil)
	fixture.events.On("PublishEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	// Act
	for i := 0; i < 10; i++ {
		recipient := fmt.Sprintf("dead%d@example.com", i)
		require.NoError(t, fixture.service.TrackBounce(context.Background(), identity.ID, recipient, "550 user unknown", enum.BounceHard))
	}

	// Assert
	assert.Equal(t, int64(10), identity.HardBounces)
	assert.InDelta(t, 10.0, identity.HardBounceRate, 0.001)
	// 10% hard bounce rate hits the capped bounce penalty of 30.
	fixture.identities.AssertCalled(t, "UpdateHealthScore", mock.Anything, identity.ID, 70)

	decision, err := fixture.service.CanSend(context.Background(), identity.ID)
	require.NoError(t, err)
	assert.False(t, decision.CanSend)
	assert.Contains(t, decision.Reason, "hard bounce rate")
}

func TestTrackBounce_SoftBounceDoesNotSuppress(t *testing.T) {
	// Arrange
	fixture := newHealthFixture()
	identity := warmingIdentity(3)
	identity.TotalSent = 50
	fixture.identities.On("GetByID", mock.Anything, identity.ID).Return(&identity, nil)
	fixture.identities.On("UpdateDeliverability", mock.Anything, &identity).Return(nil)
	fixture.events.On("PublishEvent", mock.Anything, identity.ID, enum.IDENTITY, mock.Anything).Return(nil)
	fixture.identities.On("UpdateHealthScore", mock.Anything, identity.ID, mock.Anything).Return(nil)
	fixture.snapshots.On("Create", mock.Anything, identity.Tenant, mock.Anything).Return(nil)

	// Act
	err := fixture.service.TrackBounce(context.Background(), identity.ID, "full@example.com", "452 mailbox full", enum.BounceSoft)

	// Assert
	require.NoError(t, err)
	fixture.suppressions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Equal(t, int64(1), identity.SoftBounces)
	assert.InDelta(t, 2.0, identity.SoftBounceRate, 0.001)
	// 2% soft bounce rate costs 4 points.
	fixture.identities.AssertCalled(t, "UpdateHealthScore", mock.Anything, identity.ID, 96)
}

func TestTrackBounce_ClassifiesHardFromSMTPStatus(t *testing.T) {
	// Arrange
	fixture := newHealthFixture()
	identity := warmingIdentity(3)
	identity.TotalSent = 100
	fixture.identities.On("GetByID", mock.Anything, identity.ID).Return(&identity, nil)
	fixture.identities.On("UpdateDeliverability", mock.Anything, &identity).Return(nil)
	fixture.events.On("PublishEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	fixture.suppressions.On("Create", mock.Anything, mock.MatchedBy(func(suppression *models.Suppression) bool {
		return suppression.Reason == enum.SuppressionHardBounce
	})).Return(nil)
	fixture.identities.On("UpdateHealthScore", mock.Anything, identity.ID, mock.Anything).Return(nil)
	fixture.snapshots.On("Create", mock.Anything, identity.Tenant, mock.Anything).Return(nil)

	// Act
	err := fixture.service.TrackBounce(context.Background(), identity.ID, "gone@example.com", "550 5.1.1 no such user", "")

	// Assert
	require.NoError(t, err)
	fixture.suppressions.AssertExpectations(t)
	assert.Equal(t, int64(1), identity.HardBounces)
}

func TestTrackBounce_ClassifiesSoftWhenStatusIsTransient(t *testing.T) {
	// Arrange
	fixture := newHealthFixture()
	identity := warmingIdentity(3)
	identity.TotalSent = 100
	fixture.identities.On("GetByID", mock.Anything, identity.ID).Return(&identity, nil)
	fixture.identities.On("UpdateDeliverability", mock.Anything, &identity).Return(nil)
	fixture.events.On("PublishEvent", mock.Anything, identity.ID, enum.IDENTITY, mock.Anything).Return(nil)
	fixture.identities.On("UpdateHealthScore", mock.Anything, identity.ID, mock.Anything).Return(nil)
	fixture.snapshots.On("Create", mock.Anything, identity.Tenant, mock.Anything).Return(nil)

	// Act
	err := fixture.service.TrackBounce(context.Background(), identity.ID, "busy@example.com", "421 service not available, try later", "")

	// Assert
	require.NoError(t, err)
	fixture.suppressions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Equal(t, int64(1), identity.SoftBounces)
	assert.Equal(t, int64(0), identity.HardBounces)
}

func TestTrackComplaint_SuppressesAndRaisesComplaintRate(t *testing.T) {
	// Arrange
	fixture := newHealthFixture()
	identity := warmingIdentity(3)
	identity.TotalSent = 50
	fixture.identities.On("GetByID", mock.Anything, identity.ID).Return(&identity, nil)
	fixture.identities.On("UpdateDeliverability", mock.Anything, &identity).Return(nil)
	fixture.events.On("PublishEvent", mock.Anything, identity.ID, enum.IDENTITY, mock.Anything).Return(nil)
	fixture.suppressions.On("Create", mock.Anything, mock.MatchedBy(func(suppression *models.Suppression) bool {
		return suppression.Reason == enum.SuppressionComplaint
	})).Return(nil)
	fixture.events.On("PublishEvent", mock.Anything, "angry@example.com", enum.SUPPRESSION, mock.Anything).Return(nil)
	fixture.identities.On("UpdateHealthScore", mock.Anything, identity.ID, mock.Anything).Return(nil)
	fixture.snapshots.On("Create", mock.Anything, identity.Tenant, mock.Anything).Return(nil)

	// Act
	err := fixture.service.TrackComplaint(context.Background(), identity.ID, "angry@example.com", "marked as spam")

	// Assert
	require.NoError(t, err)
	fixture.suppressions.AssertExpectations(t)
	assert.InDelta(t, 2.0, identity.ComplaintRate, 0.001)
	// 2% complaint rate hits the capped complaint penalty of 20.
	fixture.identities.AssertCalled(t, "UpdateHealthScore", mock.Anything, identity.ID, 80)
}

func TestTrackEngagement_RepliesRaiseTheScoreBonus(t *testing.T) {
	// Arrange
	fixture := newHealthFixture()
	identity := warmingIdentity(3)
	identity.TotalSent = 10
	identity.DMARCValid = false
	fixture.identities.On("GetByID", mock.Anything, identity.ID).Return(&identity, nil)
	fixture.identities.On("UpdateDeliverability", mock.Anything, &identity).Return(nil)
	fixture.events.On("PublishEvent", mock.Anything, identity.ID, enum.IDENTITY, mock.Anything).Return(nil)
	fixture.identities.On("UpdateHealthScore", mock.Anything, identity.ID, mock.Anything).Return(nil)
	fixture.snapshots.On("Create", mock.Anything, identity.Tenant, mock.Anything).Return(nil)

	// Act
	err := fixture.service.TrackEngagement(context.Background(), identity.ID, "fan@example.com", enum.EngagementReply)

	// Assert
	require.NoError(t, err)
	assert.InDelta(t, 10.0, identity.ReplyRate, 0.001)
	// Missing DMARC costs 10; a 10% reply rate earns the 10 back.
	fixture.identities.AssertCalled(t, "UpdateHealthScore", mock.Anything, identity.ID, 100)
}
