package interfaces

import (
	"context"
	"time"

	"github.com/customeros/outreachstack/dto"
	"github.com/customeros/outreachstack/internal/enum"
)

// External collaborators. The core consumes these contracts; their
// implementations live outside this module except where a default is
// provided (AuthenticationChecker).

type ComplianceDecision struct {
	Allowed bool
	Reason  string
}

type ComplianceService interface {
	CanContact(ctx context.Context, email string) (ComplianceDecision, error)
	ProcessUnsubscribe(ctx context.Context, email, source string) error
}

type EmailVerifier interface {
	Verify(ctx context.Context, email string) (enum.VerificationStatus, error)
}

type RenderedContent struct {
	Subject string
	Body    string
}

type TemplateRenderer interface {
	Render(ctx context.Context, templateID string, variables map[string]string) (RenderedContent, error)
}

// AuthenticationResult carries the outcomes of DNS authentication and
// blacklist lookups for a domain. DKIMSelectors lists the selectors
// with a published key.
type AuthenticationResult struct {
	SPFValid      bool
	DKIMValid     bool
	DKIMSelectors []string
	DMARCValid    bool
	Blacklisted   bool
}

type AuthenticationChecker interface {
	CheckDomain(ctx context.Context, domain string) (AuthenticationResult, error)
}

// Delivery gateways are the provider edges behind each channel sender.
// The senders own resilience (rate limits, retries, circuit breaking);
// gateways only carry the payload.

type EmailGateway interface {
	Send(ctx context.Context, identityID, recipient string, message *dto.OutreachMessage) error
}

type LinkedInGateway interface {
	SendMessage(ctx context.Context, profileURL string, body string) error
}

type PhoneGateway interface {
	QueueCall(ctx context.Context, phoneNumber string, script string) error
}

// JobScheduler accepts a future dispatch and invokes the registered
// callback at or after the scheduled time. The core never runs its own
// timer loop for future touches.
type JobScheduler interface {
	Schedule(ctx context.Context, scheduledFor time.Time, touchID string) error
}
