package gateway

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"time"

	"github.com/customeros/mailsherpa/mailvalidate"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/customeros/outreachstack/config"
	"github.com/customeros/outreachstack/dto"
	"github.com/customeros/outreachstack/interfaces"
	"github.com/customeros/outreachstack/internal/logger"
	"github.com/customeros/outreachstack/internal/tracing"
	"github.com/customeros/outreachstack/internal/utils"
)

// smtpEmailGateway delivers rendered messages over SMTP. One relay
// serves all sending identities; the From header carries the identity's
// address.
type smtpEmailGateway struct {
	log logger.Logger
	cfg *config.SMTPConfig
}

func NewSMTPEmailGateway(log logger.Logger, cfg *config.SMTPConfig) interfaces.EmailGateway {
	return &smtpEmailGateway{log: log, cfg: cfg}
}

func (g *smtpEmailGateway) Send(ctx context.Context, identityID, recipient string, message *dto.OutreachMessage) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "SMTPEmailGateway.Send")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, identityID)

	if g.cfg.Server == "" {
		return errors.New("smtp server is not configured")
	}
	if message.FromEmail == "" {
		return errors.New("message has no from address")
	}
	validation := mailvalidate.ValidateEmailSyntax(message.FromEmail)
	if !validation.IsValid {
		return errors.New("from address is not valid")
	}

	buffer := buildMessage(validation.Domain, recipient, message)

	addr := fmt.Sprintf("%s:%d", g.cfg.Server, g.cfg.Port)
	auth := smtp.PlainAuth("", g.cfg.Username, g.cfg.Password, g.cfg.Server)

	var err error
	if g.cfg.Security == "starttls" {
		err = g.sendWithSTARTTLS(ctx, addr, auth, message.FromEmail, recipient, buffer)
	} else {
		err = smtp.SendMail(addr, auth, message.FromEmail, []string{recipient}, buffer.Bytes())
	}
	if err != nil {
		err = fmt.Errorf("failed to send email: %w", err)
		tracing.TraceErr(span, err)
		return err
	}

	return nil
}

// buildMessage assembles the raw RFC 5322 message. The unsubscribe
// header is always present; the body carries its own unsubscribe link.
func buildMessage(fromDomain, recipient string, message *dto.OutreachMessage) *bytes.Buffer {
	from := message.FromEmail
	if message.FromName != "" {
		from = fmt.Sprintf("%s <%s>", message.FromName, message.FromEmail)
	}

	headers := map[string]string{
		"From":             from,
		"To":               recipient,
		"Subject":          message.Subject,
		"Message-ID":       fmt.Sprintf("<%s@%s>", utils.GenerateNanoIDWithPrefix("msg", 21), fromDomain),
		"Date":             utils.Now().Format(time.RFC1123Z),
		"MIME-Version":     "1.0",
		"Content-Type":     "text/html; charset=UTF-8",
		"List-Unsubscribe": fmt.Sprintf("<mailto:unsubscribe@%s>", fromDomain),
	}
	if message.ReplyTo != "" {
		headers["Reply-To"] = message.ReplyTo
	}

	buffer := bytes.NewBuffer(nil)
	for k, v := range headers {
		buffer.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	buffer.WriteString("\r\n")
	buffer.WriteString(message.Body)
	return buffer
}

func (g *smtpEmailGateway) sendWithSTARTTLS(ctx context.Context, addr string, auth smtp.Auth, from, recipient string, buffer *bytes.Buffer) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "SMTPEmailGateway.sendWithSTARTTLS")
	defer span.Finish()
	span.LogKV("smtp_server", g.cfg.Server)
	span.LogKV("from_address", from)

	// Connect to the server without TLS first
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		err = fmt.Errorf("failed to connect to SMTP server: %w", err)
		tracing.TraceErr(span, err)
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, g.cfg.Server)
	if err != nil {
		err = fmt.Errorf("failed to create SMTP client: %w", err)
		tracing.TraceErr(span, err)
		return err
	}
	defer client.Close()

	tlsConfig := &tls.Config{
		ServerName: g.cfg.Server,
	}
	if err = client.StartTLS(tlsConfig); err != nil {
		err = fmt.Errorf("failed to start TLS: %w", err)
		tracing.TraceErr(span, err)
		return err
	}

	// Authenticate after TLS is established
	if err = client.Auth(auth); err != nil {
		err = fmt.Errorf("SMTP authentication failed: %w", err)
		tracing.TraceErr(span, err)
		return err
	}

	if err = client.Mail(from); err != nil {
		err = fmt.Errorf("SMTP MAIL command failed: %w", err)
		tracing.TraceErr(span, err)
		return err
	}
	if err = client.Rcpt(recipient); err != nil {
		err = fmt.Errorf("SMTP RCPT command failed for %s: %w", recipient, err)
		tracing.TraceErr(span, err)
		return err
	}

	dataWriter, err := client.Data()
	if err != nil {
		err = fmt.Errorf("SMTP DATA command failed: %w", err)
		tracing.TraceErr(span, err)
		return err
	}

	_, err = dataWriter.Write(buffer.Bytes())
	if err != nil {
		err = fmt.Errorf("failed to write email data: %w", err)
		tracing.TraceErr(span, err)
		return err
	}
	if err = dataWriter.Close(); err != nil {
		err = fmt.Errorf("failed to close data writer: %w", err)
		tracing.TraceErr(span, err)
		return err
	}

	return client.Quit()
}
