package sendtime

import (
	"time"

	"github.com/customeros/outreachstack/dto"
	"github.com/customeros/outreachstack/interfaces"
	"github.com/customeros/outreachstack/internal/enum"
	er "github.com/customeros/outreachstack/internal/errors"
	"github.com/customeros/outreachstack/internal/logger"
	"github.com/customeros/outreachstack/internal/utils"
)

// Factor weights; they sum to 1 so the winning total doubles as the
// returned confidence.
const (
	historyWeight  = 0.4
	personaWeight  = 0.2
	industryWeight = 0.2
	avoidWeight    = 0.15
	urgencyWeight  = 0.05

	// Recipient history only counts once it carries enough signal.
	minHistoryEvents = 5

	defaultMaxHoursFromNow = 72
)

type sendTimeService struct {
	log logger.Logger
	now func() time.Time
}

func NewSendTimeService(log logger.Logger) interfaces.SendTimeService {
	return &sendTimeService{log: log, now: utils.Now}
}

// CalculateOptimalSendTime scores every hourly slot within the bounds
// and returns the best one, converted to the recipient's timezone.
// Ties resolve to the earliest slot.
func (s *sendTimeService) CalculateOptimalSendTime(recipient *dto.Prospect, constraints dto.SendTimeConstraints) (dto.OptimalSendTime, error) {
	if recipient == nil {
		return dto.OptimalSendTime{}, er.NewValidationError("recipient", "is required")
	}

	minHours := constraints.MinHoursFromNow
	if minHours < 0 {
		minHours = 0
	}
	maxHours := constraints.MaxHoursFromNow
	if maxHours <= 0 {
		maxHours = defaultMaxHoursFromNow
	}
	if maxHours < minHours {
		return dto.OptimalSendTime{}, er.NewValidationError("maxHoursFromNow", "is before minHoursFromNow")
	}

	location := s.recipientLocation(recipient)
	histogram := engagementHourHistogram(recipient.EngagementHistory, location)
	persona := personaPreference(recipient.Persona)
	industry := industryPreference(recipient.Industry)

	now := s.now()
	totalSlots := maxHours - minHours + 1

	var best dto.OptimalSendTime
	for offset := minHours; offset <= maxHours; offset++ {
		candidate := now.Add(time.Duration(offset) * time.Hour)
		local := candidate.In(location)

		factors := []dto.TimeFactor{
			{Name: "historical_engagement", Weight: historyWeight, Score: historyScore(histogram, len(recipient.EngagementHistory), local)},
			{Name: "persona_preference", Weight: personaWeight, Score: preferenceScore(persona, local)},
			{Name: "industry_preference", Weight: industryWeight, Score: preferenceScore(industry, local)},
			{Name: "avoid_windows", Weight: avoidWeight, Score: avoidScore(local)},
			{Name: "urgency", Weight: urgencyWeight, Score: urgencyScore(constraints.Urgency, offset-minHours, totalSlots)},
		}

		total := 0.0
		for _, factor := range factors {
			total += factor.Weight * factor.Score
		}

		// Strict comparison keeps the earliest slot on ties.
		if best.Factors == nil || total > best.Confidence {
			best = dto.OptimalSendTime{
				Time:       local,
				Confidence: total,
				Factors:    factors,
			}
		}
	}

	return best, nil
}

func (s *sendTimeService) recipientLocation(recipient *dto.Prospect) *time.Location {
	if recipient.Timezone == "" {
		return time.UTC
	}
	location, err := time.LoadLocation(recipient.Timezone)
	if err != nil {
		s.log.Warnf("unknown timezone %q for prospect %s, using UTC", recipient.Timezone, recipient.ID)
		return time.UTC
	}
	return location
}

// engagementHourHistogram buckets the recipient's engagement events by
// local hour of day.
func engagementHourHistogram(events []dto.EngagementEvent, location *time.Location) [24]int {
	var histogram [24]int
	for _, event := range events {
		histogram[event.OccurredAt.In(location).Hour()]++
	}
	return histogram
}

// historyScore contributes 0 until the recipient has at least five
// historical data points.
func historyScore(histogram [24]int, eventCount int, slot time.Time) float64 {
	if eventCount < minHistoryEvents {
		return 0
	}

	max := 0
	for _, count := range histogram {
		if count > max {
			max = count
		}
	}
	if max == 0 {
		return 0
	}
	return float64(histogram[slot.Hour()]) / float64(max)
}

func avoidScore(slot time.Time) float64 {
	if inAvoidWindow(slot) {
		return 0
	}
	return 1
}

// urgencyScore favors sooner slots for high urgency and later slots
// for low urgency; normal urgency is indifferent.
func urgencyScore(urgency enum.Urgency, position, totalSlots int) float64 {
	if totalSlots <= 1 {
		return 0.5
	}
	progress := float64(position) / float64(totalSlots-1)
	switch urgency {
	case enum.UrgencyHigh:
		return 1 - progress
	case enum.UrgencyLow:
		return progress
	default:
		return 0.5
	}
}
