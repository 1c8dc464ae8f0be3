package authcheck

import (
	"context"
	"strings"
	"time"

	"github.com/customeros/mailwatcher/blscan"
	"github.com/miekg/dns"
	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"

	"github.com/customeros/outreachstack/config"
	"github.com/customeros/outreachstack/interfaces"
	"github.com/customeros/outreachstack/internal/logger"
	"github.com/customeros/outreachstack/internal/tracing"
)

// authCheckService is the default AuthenticationChecker. SPF, DKIM and
// DMARC are read straight from DNS TXT records; blacklist membership
// comes from the mailwatcher scanners.
type authCheckService struct {
	log       logger.Logger
	resolver  string
	selectors []string
	timeout   time.Duration

	lookupTXT      func(ctx context.Context, name string) ([]string, error)
	scanBlacklists func(domain string) bool
}

func NewAuthenticationChecker(log logger.Logger, cfg *config.AuthCheckConfig) interfaces.AuthenticationChecker {
	service := &authCheckService{
		log:      log,
		resolver: cfg.DNSResolver,
		timeout:  time.Duration(cfg.TimeoutSec) * time.Second,
	}
	for _, selector := range strings.Split(cfg.DKIMSelectors, ",") {
		selector = strings.TrimSpace(selector)
		if selector != "" {
			service.selectors = append(service.selectors, selector)
		}
	}
	service.lookupTXT = service.dnsLookupTXT
	service.scanBlacklists = scanMajorBlacklists
	return service
}

func (s *authCheckService) CheckDomain(ctx context.Context, domain string) (interfaces.AuthenticationResult, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "AuthCheckService.CheckDomain")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.LogKV("domain", domain)

	selectors := s.checkDKIM(ctx, domain)
	result := interfaces.AuthenticationResult{
		SPFValid:      s.checkSPF(ctx, domain),
		DKIMValid:     len(selectors) > 0,
		DKIMSelectors: selectors,
		DMARCValid:    s.checkDMARC(ctx, domain),
		Blacklisted:   s.scanBlacklists(domain),
	}

	span.LogFields(
		tracingLog.Bool("result.spfValid", result.SPFValid),
		tracingLog.Bool("result.dkimValid", result.DKIMValid),
		tracingLog.Bool("result.dmarcValid", result.DMARCValid),
		tracingLog.Bool("result.blacklisted", result.Blacklisted),
	)
	return result, nil
}

func (s *authCheckService) checkSPF(ctx context.Context, domain string) bool {
	records, err := s.lookupTXT(ctx, domain)
	if err != nil {
		s.log.Warnf("SPF lookup failed for %s: %v", domain, err)
		return false
	}
	for _, record := range records {
		if strings.HasPrefix(strings.ToLower(record), "v=spf1") {
			return true
		}
	}
	return false
}

func (s *authCheckService) checkDMARC(ctx context.Context, domain string) bool {
	records, err := s.lookupTXT(ctx, "_dmarc."+domain)
	if err != nil {
		s.log.Warnf("DMARC lookup failed for %s: %v", domain, err)
		return false
	}
	for _, record := range records {
		if strings.HasPrefix(strings.ToLower(record), "v=dmarc1") {
			return true
		}
	}
	return false
}

// checkDKIM probes the configured selectors and returns the ones with
// a published key; one is enough to pass.
func (s *authCheckService) checkDKIM(ctx context.Context, domain string) []string {
	var valid []string
	for _, selector := range s.selectors {
		records, err := s.lookupTXT(ctx, selector+"._domainkey."+domain)
		if err != nil {
			continue
		}
		for _, record := range records {
			lowered := strings.ToLower(record)
			if strings.Contains(lowered, "v=dkim1") || strings.Contains(lowered, "p=") {
				valid = append(valid, selector)
				break
			}
		}
	}
	return valid
}

func (s *authCheckService) dnsLookupTXT(ctx context.Context, name string) ([]string, error) {
	client := &dns.Client{Timeout: s.timeout}
	message := &dns.Msg{}
	message.SetQuestion(dns.Fqdn(name), dns.TypeTXT)

	response, _, err := client.ExchangeContext(ctx, message, s.resolver)
	if err != nil {
		return nil, err
	}

	var records []string
	for _, answer := range response.Answer {
		if txt, ok := answer.(*dns.TXT); ok {
			records = append(records, strings.Join(txt.Txt, ""))
		}
	}
	return records, nil
}

// scanMajorBlacklists treats major and spam-trap list hits as
// blacklisted; minor lists alone do not block an identity.
func scanMajorBlacklists(domain string) bool {
	blacklists := blscan.ScanBlacklists(domain, "domain")
	return blacklists.MajorLists > 0 || blacklists.SpamTrapLists > 0
}
