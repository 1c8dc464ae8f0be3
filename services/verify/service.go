package verify

import (
	"context"

	"github.com/customeros/mailsherpa/mailvalidate"
	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"

	"github.com/customeros/outreachstack/interfaces"
	"github.com/customeros/outreachstack/internal/enum"
	"github.com/customeros/outreachstack/internal/logger"
	"github.com/customeros/outreachstack/internal/tracing"
)

// verifyService is the default EmailVerifier. It is a syntax-level
// check; deliverability probing stays with the external verification
// collaborator when one is configured.
type verifyService struct {
	log logger.Logger
}

func NewEmailVerifier(log logger.Logger) interfaces.EmailVerifier {
	return &verifyService{log: log}
}

func (s *verifyService) Verify(ctx context.Context, email string) (enum.VerificationStatus, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "VerifyService.Verify")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	if email == "" {
		return enum.VerificationInvalid, nil
	}

	validation := mailvalidate.ValidateEmailSyntax(email)

	status := enum.VerificationValid
	switch {
	case !validation.IsValid:
		status = enum.VerificationInvalid
	case validation.IsSystemGenerated || validation.IsRoleAccount:
		status = enum.VerificationRisky
	}

	span.LogFields(tracingLog.String("result.status", status.String()))
	return status, nil
}
