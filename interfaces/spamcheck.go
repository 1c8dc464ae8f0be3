package interfaces

import "github.com/customeros/outreachstack/dto"

// SpamCheckService scores message content for spam-filter risk. Pure:
// no I/O, deterministic for identical input.
type SpamCheckService interface {
	CheckSpamScore(message dto.OutreachMessage) dto.SpamCheckResult
}
