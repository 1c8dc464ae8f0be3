package dto

import "github.com/customeros/outreachstack/internal/enum"

// SpamCheckResult is immutable, derived purely from message content.
// Score is in [0,10]; Passed iff Score < 5.
type SpamCheckResult struct {
	Score     float64            `json:"score"`
	Passed    bool               `json:"passed"`
	Issues    []SpamIssue        `json:"issues"`
	SubScores map[string]float64 `json:"subScores"`
}

type SpamIssue struct {
	Severity enum.IssueSeverity `json:"severity"`
	Message  string             `json:"message"`
	Points   float64            `json:"points"`
}
