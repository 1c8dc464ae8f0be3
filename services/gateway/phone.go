package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/customeros/outreachstack/config"
	"github.com/customeros/outreachstack/interfaces"
	"github.com/customeros/outreachstack/internal/logger"
	"github.com/customeros/outreachstack/internal/tracing"
)

type phoneGateway struct {
	log        logger.Logger
	cfg        *config.ProviderAPIConfig
	httpClient *http.Client
}

func NewPhoneGateway(log logger.Logger, cfg *config.ProviderAPIConfig) interfaces.PhoneGateway {
	return &phoneGateway{
		log: log,
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type dialerCallRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Script      string `json:"script"`
}

// QueueCall places the call on the dialer's queue. The dialer owns the
// actual call timing, so a 2xx here means queued, not connected.
func (g *phoneGateway) QueueCall(ctx context.Context, phoneNumber, script string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "PhoneGateway.QueueCall")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	if g.cfg.DialerAPIURL == "" {
		return errors.New("dialer provider is not configured")
	}

	payload, err := json.Marshal(dialerCallRequest{PhoneNumber: phoneNumber, Script: script})
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "failed to marshal payload")
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.cfg.DialerAPIURL+"/v1/calls", bytes.NewBuffer(payload))
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", g.cfg.DialerAPIKey)

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
