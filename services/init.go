package services

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/customeros/outreachstack/config"
	"github.com/customeros/outreachstack/interfaces"
	"github.com/customeros/outreachstack/internal/logger"
	"github.com/customeros/outreachstack/internal/repository"
	"github.com/customeros/outreachstack/services/authcheck"
	"github.com/customeros/outreachstack/services/channels"
	"github.com/customeros/outreachstack/services/compliance"
	"github.com/customeros/outreachstack/services/content"
	"github.com/customeros/outreachstack/services/events"
	"github.com/customeros/outreachstack/services/gateway"
	"github.com/customeros/outreachstack/services/health"
	"github.com/customeros/outreachstack/services/outreach"
	"github.com/customeros/outreachstack/services/resilience"
	"github.com/customeros/outreachstack/services/sendtime"
	"github.com/customeros/outreachstack/services/spamcheck"
	"github.com/customeros/outreachstack/services/verify"
)

type Services struct {
	EventsService *events.EventsService

	RateLimiter     interfaces.RateLimiter
	CircuitBreakers interfaces.CircuitBreakerRegistry
	RetryExecutor   interfaces.RetryExecutor

	AuthChecker         interfaces.AuthenticationChecker
	HealthService       interfaces.HealthService
	EmailVerifier       interfaces.EmailVerifier
	SpamCheckService    interfaces.SpamCheckService
	SendTimeService     interfaces.SendTimeService
	ComplianceService   interfaces.ComplianceService
	TemplateRenderer    interfaces.TemplateRenderer
	ChannelOrchestrator interfaces.ChannelOrchestrator
	TouchScheduler      interfaces.JobScheduler
	OutreachService     interfaces.OutreachService
}

func InitServices(cfg *config.Config, log logger.Logger, repos *repository.Repositories) (*Services, error) {
	eventsService, err := events.NewEventsService(cfg.AppConfig.RabbitMQURL, log, nil)
	if err != nil {
		return nil, err
	}
	publisher := eventsService.Publisher

	rc := cfg.ResilienceConfig
	window := time.Duration(rc.RateLimitWindowSec) * time.Second

	// Rate limit windows live in Redis when one is configured so that
	// every instance counts against the same budget.
	windowStore, err := newWindowStore(cfg.AppConfig.RedisURL)
	if err != nil {
		return nil, err
	}
	rateLimiter := resilience.NewRateLimiter(log, windowStore)
	for scope, limit := range map[string]int{
		outreach.ScopeEmailSend:       rc.RateLimitEmailSends,
		outreach.ScopeLinkedInMessage: rc.RateLimitLinkedInMessages,
		outreach.ScopePhoneCall:       rc.RateLimitPhoneCalls,
	} {
		if limit > 0 {
			rateLimiter.ConfigureScope(scope, limit, window)
		}
	}

	circuitBreakers := resilience.NewCircuitBreakerRegistry(
		log,
		rc.CircuitFailureThreshold,
		time.Duration(rc.CircuitOpenTimeoutSec)*time.Second,
	)
	retryExecutor := resilience.NewRetryExecutor(log)
	retryConfig := interfaces.RetryConfig{
		MaxRetries:        rc.RetryMaxAttempts,
		InitialDelay:      time.Duration(rc.RetryBaseDelayMs) * time.Millisecond,
		MaxDelay:          time.Duration(rc.RetryMaxDelayMs) * time.Millisecond,
		BackoffMultiplier: 2,
	}
	kit := outreach.NewResilienceKit(rateLimiter, circuitBreakers, retryExecutor, retryConfig)

	authChecker := authcheck.NewAuthenticationChecker(log, cfg.AuthCheckConfig)
	healthService := health.NewHealthService(log, repos, authChecker, publisher, cfg.WarmupConfig)
	complianceService := compliance.NewComplianceService(log, cfg.CustomerOSAPI, repos, publisher)

	senders := []interfaces.ChannelSender{
		outreach.NewEmailSender(log, gateway.NewSMTPEmailGateway(log, cfg.SMTPConfig), kit),
		outreach.NewLinkedInSender(log, gateway.NewLinkedInGateway(log, cfg.ProviderAPI), kit),
		outreach.NewPhoneSender(log, gateway.NewPhoneGateway(log, cfg.ProviderAPI), kit),
	}

	touchScheduler := events.NewTouchScheduler(publisher)
	spamCheckService := spamcheck.NewSpamCheckService()
	sendTimeService := sendtime.NewSendTimeService(log)
	emailVerifier := verify.NewEmailVerifier(log)
	templateRenderer := content.NewTemplateRenderer(log, cfg.CustomerOSAPI)

	outreachService := outreach.NewOutreachService(
		log,
		repos,
		healthService,
		spamCheckService,
		sendTimeService,
		emailVerifier,
		complianceService,
		templateRenderer,
		touchScheduler,
		publisher,
		senders,
	)

	return &Services{
		EventsService:       eventsService,
		RateLimiter:         rateLimiter,
		CircuitBreakers:     circuitBreakers,
		RetryExecutor:       retryExecutor,
		AuthChecker:         authChecker,
		HealthService:       healthService,
		EmailVerifier:       emailVerifier,
		SpamCheckService:    spamCheckService,
		SendTimeService:     sendTimeService,
		ComplianceService:   complianceService,
		TemplateRenderer:    templateRenderer,
		ChannelOrchestrator: channels.NewChannelOrchestrator(log, repos, publisher),
		TouchScheduler:      touchScheduler,
		OutreachService:     outreachService,
	}, nil
}

func newWindowStore(redisURL string) (resilience.WindowStore, error) {
	if redisURL == "" {
		return resilience.NewInMemoryWindowStore(), nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return resilience.NewRedisWindowStore(redis.NewClient(opts)), nil
}
