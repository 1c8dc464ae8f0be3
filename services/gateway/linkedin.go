package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/customeros/outreachstack/config"
	"github.com/customeros/outreachstack/interfaces"
	er "github.com/customeros/outreachstack/internal/errors"
	"github.com/customeros/outreachstack/internal/logger"
	"github.com/customeros/outreachstack/internal/tracing"
)

type linkedInGateway struct {
	log        logger.Logger
	cfg        *config.ProviderAPIConfig
	httpClient *http.Client
}

func NewLinkedInGateway(log logger.Logger, cfg *config.ProviderAPIConfig) interfaces.LinkedInGateway {
	return &linkedInGateway{
		log: log,
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type linkedInMessageRequest struct {
	ProfileURL string `json:"profileUrl"`
	Message    string `json:"message"`
}

func (g *linkedInGateway) SendMessage(ctx context.Context, profileURL, body string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "LinkedInGateway.SendMessage")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	if g.cfg.LinkedInAPIURL == "" {
		return errors.New("linkedin provider is not configured")
	}

	payload, err := json.Marshal(linkedInMessageRequest{ProfileURL: profileURL, Message: body})
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "failed to marshal payload")
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.cfg.LinkedInAPIURL+"/v1/messages", bytes.NewBuffer(payload))
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", g.cfg.LinkedInAPIKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	if err := providerResponseError(resp); err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	return nil
}

// providerResponseError maps provider HTTP status codes onto the error
// types the retry and circuit machinery classifies on.
func providerResponseError(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := 30 * time.Second
		if header := resp.Header.Get("Retry-After"); header != "" {
			if seconds, err := strconv.Atoi(header); err == nil {
				retryAfter = time.Duration(seconds) * time.Second
			}
		}
		return &er.RetryAfterError{
			After: retryAfter,
			Err:   errors.New("provider rate limit exceeded"),
		}
	}

	if resp.StatusCode >= 500 {
		return &er.TransientError{
			StatusCode: resp.StatusCode,
			Err:        errors.Errorf("provider request failed: %s", string(body)),
		}
	}

	return errors.Errorf("provider request failed with status code %d: %s", resp.StatusCode, string(body))
}
