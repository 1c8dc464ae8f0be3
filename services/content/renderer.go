package content

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
	"github.com/customeros/outreachstack/interfaces"
	"github.com/customeros/outreachstack/internal/logger"
	"github.com/customeros/outreachstack/internal/tracing"
	"github.com/customeros/outreachstack/internal/utils"
)

// templateRenderer renders outreach templates through the CRM's
// rendering API, which owns templates and personalization tokens.
type templateRenderer struct {
	log        logger.Logger
	cfg        *config.CustomerOSAPIConfig
	httpClient *http.Client
}

func NewTemplateRenderer(log logger.Logger, cfg *config.CustomerOSAPIConfig) interfaces.TemplateRenderer {
	return &templateRenderer{
		log: log,
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type renderTemplateRequest struct {
	TemplateID string            `json:"templateId"`
	Variables  map[string]string `json:"variables"`
}

type renderTemplateResponse struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (r *templateRenderer) Render(ctx context.Context, templateID string, variables map[string]string) (interfaces.RenderedContent, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TemplateRenderer.Render")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.LogKV("templateId", templateID)

	if r.cfg.Url == "" {
		return interfaces.RenderedContent{}, errors.New("template rendering api is not configured")
	}

	payload, err := json.Marshal(renderTemplateRequest{TemplateID: templateID, Variables: variables})
	if err != nil {
		tracing.TraceErr(span, err)
		return interfaces.RenderedContent{}, errors.Wrap(err, "failed to marshal payload")
	}

	req, err := http.NewRequestWithContext(ctx, "POST", r.cfg.Url+"/internal/v1/renderTemplate", bytes.NewBuffer(payload))
	if err != nil {
		tracing.TraceErr(span, err)
		return interfaces.RenderedContent{}, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Openline-API-KEY", r.cfg.ApiKey)
	req.Header.Set("X-Openline-Tenant", utils.GetTenantFromContext(ctx))

	resp, err := r.httpClient.Do(req)
	if err != nil {
		tracing.TraceErr(span, err)
		return interfaces.RenderedContent{}, errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		tracing.TraceErr(span, err)
		return interfaces.RenderedContent{}, errors.Wrap(err, "unable to read response body")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err = fmt.Errorf("template render failed with status code %d: %s", resp.StatusCode, string(body))
		tracing.TraceErr(span, err)
		return interfaces.RenderedContent{}, err
	}

	var response renderTemplateResponse
	if err := json.Unmarshal(body, &response); err != nil {
		tracing.TraceErr(span, err)
		return interfaces.RenderedContent{}, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if response.Subject == "" && response.Body == "" {
		return interfaces.RenderedContent{}, errors.Errorf("template %s rendered empty content", templateID)
	}

	return interfaces.RenderedContent{Subject: response.Subject, Body: response.Body}, nil
}
