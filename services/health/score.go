package health

import (
	"math"

	"github.com/customeros/outreachstack/internal/models"
)

const (
	missingAuthPenalty = 10

	hardBouncePenaltyPerPct = 6.0
	hardBouncePenaltyCap    = 30.0
	softBouncePenaltyPerPct = 2.0
	softBouncePenaltyCap    = 10.0

	complaintPenaltyPerPct = 20.0
	complaintPenaltyCap    = 20.0

	openRateBonusWeight  = 0.3
	clickRateBonusWeight = 0.5
	replyRateBonusWeight = 1.0
	engagementBonusCap   = 20.0
)

type scoreBreakdown struct {
	authPenalty      int
	bouncePenalty    int
	complaintPenalty int
	engagementBonus  int
	score            int
}

// healthScoreBreakdown implements the reputation formula. Rates are
// percentages (5.0 means 5%). The result is always clamped to [0,100],
// whatever the inputs.
func healthScoreBreakdown(identity *models.SendingIdentity) scoreBreakdown {
	var breakdown scoreBreakdown

	if !identity.SPFValid {
		breakdown.authPenalty += missingAuthPenalty
	}
	if !identity.DKIMValid {
		breakdown.authPenalty += missingAuthPenalty
	}
	if !identity.DMARCValid {
		breakdown.authPenalty += missingAuthPenalty
	}

	hardPenalty := math.Min(identity.HardBounceRate*hardBouncePenaltyPerPct, hardBouncePenaltyCap)
	softPenalty := math.Min(identity.SoftBounceRate*softBouncePenaltyPerPct, softBouncePenaltyCap)
	breakdown.bouncePenalty = int(math.Round(hardPenalty + softPenalty))

	breakdown.complaintPenalty = int(math.Round(math.Min(identity.ComplaintRate*complaintPenaltyPerPct, complaintPenaltyCap)))

	bonus := identity.OpenRate*openRateBonusWeight +
		identity.ClickRate*clickRateBonusWeight +
		identity.ReplyRate*replyRateBonusWeight
	breakdown.engagementBonus = int(math.Round(math.Min(bonus, engagementBonusCap)))

	score := 100 - breakdown.authPenalty - breakdown.bouncePenalty - breakdown.complaintPenalty + breakdown.engagementBonus
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	breakdown.score = score

	return breakdown
}
