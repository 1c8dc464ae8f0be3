package spamcheck

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"github.com/customeros/outreachstack/dto"
	"github.com/customeros/outreachstack/internal/enum"
)

const (
	maxSubjectLength    = 70
	maxBodyLinks        = 5
	minBodyTextLength   = 50
	minTextMarkupRatio  = 0.3
	textPerImageMinimum = 100
)

var (
	dollarAmountPattern = regexp.MustCompile(`\$\s?\d[\d,]*(\.\d+)?|\b\d+\s?(dollars|usd)\b`)
	linkPattern         = regexp.MustCompile(`https?://[^\s"'<>]+`)
	exclamationPattern  = regexp.MustCompile(`!{2,}|!.*!`)
)

type subScore struct {
	points float64
	issues []dto.SpamIssue
}

func (s *subScore) add(severity enum.IssueSeverity, points float64, message string) {
	s.points += points
	s.issues = append(s.issues, dto.SpamIssue{Severity: severity, Message: message, Points: points})
}

// bodyText strips markup from an HTML body. Plain-text bodies pass
// through unchanged apart from whitespace normalization.
func bodyText(body string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return body
	}
	return strings.TrimSpace(doc.Text())
}

func countTriggerWords(text string, words []string) []string {
	lowered := strings.ToLower(text)
	var found []string
	for _, word := range words {
		if strings.Contains(lowered, word) {
			found = append(found, word)
		}
	}
	return found
}

func isAllCaps(text string) bool {
	letters := 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return letters >= 3
}

func scoreSubject(subject string) subScore {
	var score subScore

	if len(subject) > maxSubjectLength {
		score.add(enum.SeverityWarning, 0.5, fmt.Sprintf("subject exceeds %d characters", maxSubjectLength))
	}
	if isAllCaps(subject) {
		score.add(enum.SeverityWarning, 1.5, "subject is all caps")
	}
	if exclamationPattern.MatchString(subject) {
		score.add(enum.SeverityWarning, 1, "subject has excessive exclamation marks")
	}
	for _, word := range countTriggerWords(subject, criticalTriggerWords) {
		score.add(enum.SeverityCritical, 2, fmt.Sprintf("subject contains trigger phrase %q", word))
	}
	for _, word := range countTriggerWords(subject, warningTriggerWords) {
		score.add(enum.SeverityWarning, 0.5, fmt.Sprintf("subject contains phrase %q", word))
	}

	return score
}

func scoreBody(body, text string) subScore {
	var score subScore

	for _, word := range countTriggerWords(text, criticalTriggerWords) {
		score.add(enum.SeverityCritical, 1.5, fmt.Sprintf("body contains trigger phrase %q", word))
	}
	for _, word := range countTriggerWords(text, warningTriggerWords) {
		score.add(enum.SeverityWarning, 0.5, fmt.Sprintf("body contains phrase %q", word))
	}

	if dollarAmountPattern.MatchString(text) {
		score.add(enum.SeverityWarning, 1, "body mentions dollar amounts")
	}

	links := linkPattern.FindAllString(body, -1)
	if len(links) > maxBodyLinks {
		score.add(enum.SeverityWarning, 1, fmt.Sprintf("body has %d links, more than %d", len(links), maxBodyLinks))
	}

	// Only meaningful when the body actually carries markup.
	if len(body) > 0 && strings.Contains(body, "<") {
		ratio := float64(len(text)) / float64(len(body))
		if ratio < minTextMarkupRatio {
			score.add(enum.SeverityWarning, 1, "low text to markup ratio")
		}
	}

	return score
}

func scoreMedia(body, text string) subScore {
	var score subScore

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err == nil {
		images := doc.Find("img").Length()
		if images > 0 && len(text) < images*textPerImageMinimum {
			score.add(enum.SeverityWarning, 1.5, "high image to text ratio")
		}
	}

	for _, link := range linkPattern.FindAllString(body, -1) {
		if containsShortenedDomain(link) {
			score.add(enum.SeverityCritical, 2.5, "body contains a shortened URL")
			break
		}
	}

	return score
}

func containsShortenedDomain(link string) bool {
	lowered := strings.ToLower(link)
	for _, domain := range shortenedURLDomains {
		if strings.Contains(lowered, domain) {
			return true
		}
	}
	return false
}

func scoreSender(message dto.OutreachMessage) subScore {
	var score subScore

	if message.ReplyTo != "" && !strings.EqualFold(message.ReplyTo, message.FromEmail) {
		score.add(enum.SeverityWarning, 1, "reply-to does not match from address")
	}

	fromDomain := strings.ToLower(message.FromEmail)
	if at := strings.LastIndex(fromDomain, "@"); at >= 0 {
		fromDomain = fromDomain[at+1:]
	}
	for _, tld := range suspiciousTLDs {
		if strings.HasSuffix(fromDomain, tld) {
			score.add(enum.SeverityWarning, 1.5, fmt.Sprintf("sender domain uses suspicious TLD %s", tld))
			break
		}
	}

	return score
}

func scoreStructure(body, text string) subScore {
	var score subScore

	if !hasUnsubscribeMarker(body) {
		score.add(enum.SeverityCritical, 2, "no unsubscribe link")
	}
	if len(text) < minBodyTextLength {
		score.add(enum.SeverityWarning, 0.5, "body text is very short")
	}

	return score
}

func hasUnsubscribeMarker(body string) bool {
	lowered := strings.ToLower(body)
	for _, marker := range unsubscribeMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}
