package channels

import (
	"fmt"
	"strings"

	"github.com/customeros/outreachstack/dto"
	"github.com/customeros/outreachstack/internal/enum"
	"github.com/customeros/outreachstack/internal/models"
)

const (
	emailBaseScore    = 50.0
	linkedinBaseScore = 40.0
	phoneBaseScore    = 30.0

	teamReplyRateBonusCap = 20.0

	highValueDealThreshold = 50000.0
	highIntentThreshold    = 70
)

var seniorityKeywords = []string{
	"chief", "ceo", "cto", "cfo", "coo", "founder", "owner",
	"vp", "vice president", "president", "head of", "director",
}

func hasSeniorityKeyword(title string) bool {
	lowered := strings.ToLower(title)
	for _, keyword := range seniorityKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

const industryAffinityBonus = 10.0

// industryChannelAffinity nudges scoring toward the channel a vertical
// typically answers on: desk-bound verticals read email, relationship
// verticals live on linkedin, field verticals pick up the phone.
var industryChannelAffinity = map[enum.Channel][]string{
	enum.ChannelEmail:    {"software", "saas", "technology", "ecommerce", "e-commerce", "media"},
	enum.ChannelLinkedIn: {"finance", "banking", "consulting", "recruiting", "insurance", "legal"},
	enum.ChannelPhone:    {"construction", "manufacturing", "logistics", "real estate", "healthcare"},
}

func hasIndustryAffinity(channel enum.Channel, industry string) bool {
	lowered := strings.ToLower(industry)
	if lowered == "" {
		return false
	}
	for _, keyword := range industryChannelAffinity[channel] {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

// teamReplyBonus converts the team's historical reply rate on a channel
// into score points, capped so history never drowns prospect signals.
func teamReplyBonus(performance *models.ChannelPerformance) float64 {
	if performance == nil {
		return 0
	}
	bonus := performance.ReplyRate() * 100
	if bonus > teamReplyRateBonusCap {
		bonus = teamReplyRateBonusCap
	}
	return bonus
}

func scoreEmail(prospect *dto.Prospect, performance *models.ChannelPerformance) dto.ChannelScore {
	score := emailBaseScore
	var reasons []string

	if prospect.PriorOpens > 0 {
		score += 20
		reasons = append(reasons, fmt.Sprintf("%d prior email opens", prospect.PriorOpens))
	}
	if prospect.PriorBounces > 0 {
		score -= 30
		reasons = append(reasons, fmt.Sprintf("%d prior bounces", prospect.PriorBounces))
	}
	if prospect.InboundEngagement && prospect.CurrentChannel == enum.ChannelEmail {
		score += 10
		reasons = append(reasons, "prior inbound engagement over email")
	}
	if hasIndustryAffinity(enum.ChannelEmail, prospect.Industry) {
		score += industryAffinityBonus
		reasons = append(reasons, fmt.Sprintf("%s industry reads email", prospect.Industry))
	}
	if bonus := teamReplyBonus(performance); bonus > 0 {
		score += bonus
		reasons = append(reasons, "team reply history on email")
	}

	return dto.ChannelScore{Channel: enum.ChannelEmail, Score: score, Reason: joinReasons(reasons, "standard first-touch channel")}
}

func scoreLinkedIn(prospect *dto.Prospect, performance *models.ChannelPerformance) dto.ChannelScore {
	score := linkedinBaseScore
	var reasons []string

	if prospect.LinkedInURL != "" {
		score += 15
		reasons = append(reasons, "profile on file")
	}
	if hasSeniorityKeyword(prospect.Title) {
		score += 15
		reasons = append(reasons, "senior title responds well on social")
	}
	if prospect.InboundEngagement && prospect.CurrentChannel == enum.ChannelLinkedIn {
		score += 10
		reasons = append(reasons, "prior inbound engagement on linkedin")
	}
	if hasIndustryAffinity(enum.ChannelLinkedIn, prospect.Industry) {
		score += industryAffinityBonus
		reasons = append(reasons, fmt.Sprintf("%s industry responds on linkedin", prospect.Industry))
	}
	if bonus := teamReplyBonus(performance); bonus > 0 {
		score += bonus
		reasons = append(reasons, "team reply history on linkedin")
	}

	return dto.ChannelScore{Channel: enum.ChannelLinkedIn, Score: score, Reason: joinReasons(reasons, "no strong social signals")}
}

func scorePhone(prospect *dto.Prospect, performance *models.ChannelPerformance) dto.ChannelScore {
	score := phoneBaseScore
	var reasons []string

	if prospect.PhoneNumber != "" {
		score += 15
		reasons = append(reasons, "direct number on file")
	}
	if prospect.DealValue > highValueDealThreshold {
		score += 15
		reasons = append(reasons, "high-value deal warrants a call")
	}
	if prospect.IntentScore >= highIntentThreshold {
		score += 10
		reasons = append(reasons, "strong intent signal")
	}
	if prospect.InboundEngagement && prospect.CurrentChannel == enum.ChannelPhone {
		score += 10
		reasons = append(reasons, "prior inbound engagement by phone")
	}
	if hasIndustryAffinity(enum.ChannelPhone, prospect.Industry) {
		score += industryAffinityBonus
		reasons = append(reasons, fmt.Sprintf("%s industry answers the phone", prospect.Industry))
	}
	if bonus := teamReplyBonus(performance); bonus > 0 {
		score += bonus
		reasons = append(reasons, "team reply history on phone")
	}

	return dto.ChannelScore{Channel: enum.ChannelPhone, Score: score, Reason: joinReasons(reasons, "fallback channel")}
}

func joinReasons(reasons []string, fallback string) string {
	if len(reasons) == 0 {
		return fallback
	}
	return strings.Join(reasons, "; ")
}
