package spamcheck

import (
	"github.com/customeros/outreachstack/dto"
	"github.com/customeros/outreachstack/interfaces"
)

const (
	maxSpamScore  = 10.0
	passThreshold = 5.0
)

type spamCheckService struct{}

func NewSpamCheckService() interfaces.SpamCheckService {
	return &spamCheckService{}
}

// CheckSpamScore sums the independent sub-scorers and caps the total at
// 10. Passed iff the total stays below 5. No I/O; identical input
// always yields the identical result.
func (s *spamCheckService) CheckSpamScore(message dto.OutreachMessage) dto.SpamCheckResult {
	text := bodyText(message.Body)

	// Fixed evaluation order keeps the issue list deterministic.
	subScores := []struct {
		name  string
		score subScore
	}{
		{"subject", scoreSubject(message.Subject)},
		{"body", scoreBody(message.Body, text)},
		{"media", scoreMedia(message.Body, text)},
		{"sender", scoreSender(message)},
		{"structure", scoreStructure(message.Body, text)},
	}

	result := dto.SpamCheckResult{
		SubScores: make(map[string]float64, len(subScores)),
	}

	total := 0.0
	for _, sub := range subScores {
		result.SubScores[sub.name] = sub.score.points
		result.Issues = append(result.Issues, sub.score.issues...)
		total += sub.score.points
	}

	if total > maxSpamScore {
		total = maxSpamScore
	}
	result.Score = total
	result.Passed = total < passThreshold

	return result
}
