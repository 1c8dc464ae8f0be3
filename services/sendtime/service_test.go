package sendtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/customeros/outreachstack/dto"
	"github.com/customeros/outreachstack/internal/enum"
	er "github.com/customeros/outreachstack/internal/errors"
	"github.com/customeros/outreachstack/internal/logger"
)

func getLogger() logger.Logger {
	appLogger := logger.NewAppLogger(&logger.Config{
		DevMode: true,
	})
	appLogger.InitLogger()
	return appLogger
}

// mondayMidnight is a fixed Monday 00:00 UTC so weekday math in tests
// is stable.
var mondayMidnight = time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)

func newTestService() *sendTimeService {
	service := NewSendTimeService(getLogger()).(*sendTimeService)
	service.now = func() time.Time { return mondayMidnight }
	return service
}

func prospect() *dto.Prospect {
	return &dto.Prospect{
		ID:           "p_1",
		EmailAddress: "alex@example.com",
		Persona:      "manager",
		Industry:     "technology",
	}
}

func engagementAtHour(hour, count int) []dto.EngagementEvent {
	var events []dto.EngagementEvent
	for i := 0; i < count; i++ {
		events = append(events, dto.EngagementEvent{
			OccurredAt: time.Date(2026, time.February, 2+i, hour, 30, 0, 0, time.UTC),
			Type:       "open",
		})
	}
	return events
}

func TestCalculateOptimalSendTime_StaysWithinBounds(t *testing.T) {
	// Arrange
	service := newTestService()
	constraints := dto.SendTimeConstraints{MinHoursFromNow: 4, MaxHoursFromNow: 24}

	// Act
	result, err := service.CalculateOptimalSendTime(prospect(), constraints)

	// Assert
	require.NoError(t, err)
	selected := result.Time.UTC()
	assert.False(t, selected.Before(mondayMidnight.Add(4*time.Hour)))
	assert.False(t, selected.After(mondayMidnight.Add(24*time.Hour)))
}

func TestCalculateOptimalSendTime_RejectsInvertedBounds(t *testing.T) {
	// Arrange
	service := newTestService()
	constraints := dto.SendTimeConstraints{MinHoursFromNow: 24, MaxHoursFromNow: 4}

	// Act
	_, err := service.CalculateOptimalSendTime(prospect(), constraints)

	// Assert
	var validationErr *er.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestCalculateOptimalSendTime_SparseHistoryContributesZero(t *testing.T) {
	// Arrange
	service := newTestService()
	recipient := prospect()
	recipient.EngagementHistory = engagementAtHour(15, 4) // below the 5-event minimum

	// Act
	result, err := service.CalculateOptimalSendTime(recipient, dto.SendTimeConstraints{MaxHoursFromNow: 24})

	// Assert
	require.NoError(t, err)
	for _, factor := range result.Factors {
		if factor.Name == "historical_engagement" {
			assert.Equal(t, 0.0, factor.Score)
		}
	}
}

func TestCalculateOptimalSendTime_RichHistoryDrivesSelection(t *testing.T) {
	// Arrange
	service := newTestService()
	recipient := prospect()
	recipient.EngagementHistory = engagementAtHour(15, 8)

	// Act
	result, err := service.CalculateOptimalSendTime(recipient, dto.SendTimeConstraints{MaxHoursFromNow: 48})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 15, result.Time.Hour())
	for _, factor := range result.Factors {
		if factor.Name == "historical_engagement" {
			assert.Equal(t, 1.0, factor.Score)
		}
	}
}

func TestCalculateOptimalSendTime_TiesResolveToEarliestSlot(t *testing.T) {
	// Arrange: no history, normal urgency, a three-day window. The same
	// daily pattern repeats, so the first day's best slot must win.
	service := newTestService()
	recipient := &dto.Prospect{ID: "p_1", EmailAddress: "alex@example.com"}

	// Act
	result, err := service.CalculateOptimalSendTime(recipient, dto.SendTimeConstraints{MaxHoursFromNow: 71})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, mondayMidnight.Day(), result.Time.UTC().Day())
}

func TestCalculateOptimalSendTime_ConvertsToRecipientTimezone(t *testing.T) {
	// Arrange
	service := newTestService()
	recipient := prospect()
	recipient.Timezone = "America/New_York"

	// Act
	result, err := service.CalculateOptimalSendTime(recipient, dto.SendTimeConstraints{MaxHoursFromNow: 24})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", result.Time.Location().String())
}

func TestCalculateOptimalSendTime_UnknownTimezoneFallsBackToUTC(t *testing.T) {
	// Arrange
	service := newTestService()
	recipient := prospect()
	recipient.Timezone = "Mars/Olympus_Mons"

	// Act
	result, err := service.CalculateOptimalSendTime(recipient, dto.SendTimeConstraints{MaxHoursFromNow: 24})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, time.UTC, result.Time.Location())
}

func TestCalculateOptimalSendTime_UrgencyShiftsSelection(t *testing.T) {
	// Arrange
	service := newTestService()
	recipient := prospect()
	constraints := dto.SendTimeConstraints{MaxHoursFromNow: 71}

	// Act
	constraints.Urgency = enum.UrgencyHigh
	urgent, err := service.CalculateOptimalSendTime(recipient, constraints)
	require.NoError(t, err)

	constraints.Urgency = enum.UrgencyLow
	relaxed, err := service.CalculateOptimalSendTime(recipient, constraints)
	require.NoError(t, err)

	// Assert
	assert.False(t, urgent.Time.After(relaxed.Time.UTC()))
}

func TestCalculateOptimalSendTime_ConfidenceInUnitRange(t *testing.T) {
	// Arrange
	service := newTestService()
	recipient := prospect()
	recipient.EngagementHistory = engagementAtHour(10, 10)

	// Act
	result, err := service.CalculateOptimalSendTime(recipient, dto.SendTimeConstraints{MaxHoursFromNow: 48})

	// Assert
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.Confidence, 0.0)
	assert.LessOrEqual(t, result.Confidence, 1.0)
}
