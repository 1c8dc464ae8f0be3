package compliance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/customeros/outreachstack/config"
	"github.com/customeros/outreachstack/dto"
	"github.com/customeros/outreachstack/interfaces"
	"github.com/customeros/outreachstack/internal/enum"
	"github.com/customeros/outreachstack/internal/logger"
	"github.com/customeros/outreachstack/internal/metrics"
	"github.com/customeros/outreachstack/internal/models"
	"github.com/customeros/outreachstack/internal/repository"
	"github.com/customeros/outreachstack/internal/tracing"
	"github.com/customeros/outreachstack/internal/utils"
)

// complianceService answers whether a recipient may be contacted. The
// local suppression list is checked first and always wins; consent
// rules (regional opt-in, do-not-contact flags) live in the CRM and are
// consulted over its API when one is configured.
type complianceService struct {
	log          logger.Logger
	cfg          *config.CustomerOSAPIConfig
	repositories *repository.Repositories
	events       interfaces.EventsPublisher
	httpClient   *http.Client
}

func NewComplianceService(
	log logger.Logger,
	cfg *config.CustomerOSAPIConfig,
	repositories *repository.Repositories,
	events interfaces.EventsPublisher,
) interfaces.ComplianceService {
	return &complianceService{
		log:          log,
		cfg:          cfg,
		repositories: repositories,
		events:       events,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type consentCheckRequest struct {
	Email string `json:"email"`
}

type consentCheckResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

func (s *complianceService) CanContact(ctx context.Context, email string) (interfaces.ComplianceDecision, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ComplianceService.CanContact")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	tenant := utils.GetTenantFromContext(ctx)

	suppressed, err := s.repositories.SuppressionRepository.IsSuppressed(ctx, tenant, email)
	if err != nil {
		tracing.TraceErr(span, err)
		return interfaces.ComplianceDecision{}, err
	}
	if suppressed {
		return interfaces.ComplianceDecision{Allowed: false, Reason: "recipient is on the suppression list"}, nil
	}

	if s.cfg.Url == "" {
		return interfaces.ComplianceDecision{Allowed: true}, nil
	}

	decision, err := s.checkConsent(ctx, tenant, email)
	if err != nil {
		tracing.TraceErr(span, err)
		return interfaces.ComplianceDecision{}, err
	}
	return decision, nil
}

func (s *complianceService) checkConsent(ctx context.Context, tenant, email string) (interfaces.ComplianceDecision, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ComplianceService.checkConsent")
	defer span.Finish()

	payload, err := json.Marshal(consentCheckRequest{Email: email})
	if err != nil {
		return interfaces.ComplianceDecision{}, errors.Wrap(err, "failed to marshal payload")
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.cfg.Url+"/internal/v1/checkConsent", bytes.NewBuffer(payload))
	if err != nil {
		return interfaces.ComplianceDecision{}, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Openline-API-KEY", s.cfg.ApiKey)
	req.Header.Set("X-Openline-Tenant", tenant)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return interfaces.ComplianceDecision{}, errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return interfaces.ComplianceDecision{}, errors.Wrap(err, "unable to read response body")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return interfaces.ComplianceDecision{}, fmt.Errorf("consent check failed with status code %d: %s", resp.StatusCode, string(body))
	}

	var response consentCheckResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return interfaces.ComplianceDecision{}, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return interfaces.ComplianceDecision{Allowed: response.Allowed, Reason: response.Reason}, nil
}

// ProcessUnsubscribe puts the recipient on the suppression list. The
// operation is idempotent; an already suppressed recipient keeps the
// original reason.
func (s *complianceService) ProcessUnsubscribe(ctx context.Context, email, source string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ComplianceService.ProcessUnsubscribe")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.LogKV("source", source)

	tenant := utils.GetTenantFromContext(ctx)
	if err := utils.ValidateTenant(ctx); err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	err := s.repositories.SuppressionRepository.Create(ctx, &models.Suppression{
		Tenant:       tenant,
		EmailAddress: email,
		Reason:       enum.SuppressionUnsubscribe,
		Detail:       source,
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	metrics.SuppressionsTotal.WithLabelValues(enum.SuppressionUnsubscribe.String()).Inc()

	err = s.events.PublishEvent(ctx, email, enum.SUPPRESSION, dto.RecipientSuppressed{
		EmailAddress: email,
		Reason:       enum.SuppressionUnsubscribe,
	})
	if err != nil {
		tracing.TraceErr(span, err)
		s.log.Errorf("failed to publish suppression event for %s: %v", email, err)
	}

	return nil
}
