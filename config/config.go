package config

import (
	"github.com/customeros/outreachstack/internal/logger"
	"github.com/customeros/outreachstack/internal/tracing"
)

type AppConfig struct {
	APIPort     string `env:"PORT,required" envDefault:"12333"`
	APIKey      string `env:"API_KEY,required"`
	RabbitMQURL string `env:"RABBITMQ_URL"`
	RedisURL    string `env:"REDIS_URL"`
	Logger      *logger.Config
	Tracing     *tracing.JaegerConfig
}

type DatabaseConfig struct {
	Host            string `env:"OUTREACH_POSTGRES_HOST,required"`
	Port            string `env:"OUTREACH_POSTGRES_PORT,required"`
	User            string `env:"OUTREACH_POSTGRES_USER,required"`
	DBName          string `env:"OUTREACH_POSTGRES_DB_NAME,required"`
	Password        string `env:"OUTREACH_POSTGRES_PASSWORD,required"`
	MaxConn         int    `env:"OUTREACH_POSTGRES_DB_MAX_CONN"`
	MaxIdleConn     int    `env:"OUTREACH_POSTGRES_DB_MAX_IDLE_CONN"`
	ConnMaxLifetime int    `env:"OUTREACH_POSTGRES_DB_CONN_MAX_LIFETIME"`
	LogLevel        string `env:"OUTREACH_POSTGRES_LOG_LEVEL" envDefault:"WARN"`
	SSLMode         string `env:"OUTREACH_POSTGRES_SSL_MODE"`
}

type ResilienceConfig struct {
	RetryMaxAttempts        int `env:"RETRY_MAX_ATTEMPTS" envDefault:"3"`
	RetryBaseDelayMs        int `env:"RETRY_BASE_DELAY_MS" envDefault:"1000"`
	RetryMaxDelayMs         int `env:"RETRY_MAX_DELAY_MS" envDefault:"30000"`
	CircuitFailureThreshold int `env:"CIRCUIT_FAILURE_THRESHOLD" envDefault:"5"`
	CircuitOpenTimeoutSec   int `env:"CIRCUIT_OPEN_TIMEOUT_SEC" envDefault:"60"`
	RateLimitWindowSec      int `env:"RATE_LIMIT_WINDOW_SEC" envDefault:"60"`
	// Per-window dispatch caps per channel; 0 leaves the channel uncapped.
	RateLimitEmailSends       int `env:"RATE_LIMIT_EMAIL_SENDS" envDefault:"100"`
	RateLimitLinkedInMessages int `env:"RATE_LIMIT_LINKEDIN_MESSAGES" envDefault:"25"`
	RateLimitPhoneCalls       int `env:"RATE_LIMIT_PHONE_CALLS" envDefault:"50"`
}

type WarmupConfig struct {
	MaxDailyVolume int `env:"WARMUP_MAX_DAILY_VOLUME" envDefault:"1000"`
}

type SMTPConfig struct {
	Server   string `env:"OUTREACH_SMTP_SERVER"`
	Port     int    `env:"OUTREACH_SMTP_PORT" envDefault:"587"`
	Username string `env:"OUTREACH_SMTP_USERNAME"`
	Password string `env:"OUTREACH_SMTP_PASSWORD"`
	// none | starttls | tls
	Security string `env:"OUTREACH_SMTP_SECURITY" envDefault:"starttls"`
}

// ProviderAPIConfig points at the social-selling and dialer providers
// behind the linkedin and phone channels.
type ProviderAPIConfig struct {
	LinkedInAPIURL string `env:"LINKEDIN_PROVIDER_API_URL"`
	LinkedInAPIKey string `env:"LINKEDIN_PROVIDER_API_KEY"`
	DialerAPIURL   string `env:"DIALER_API_URL"`
	DialerAPIKey   string `env:"DIALER_API_KEY"`
}

// CustomerOSAPIConfig is the CRM-side API used for compliance lookups
// and template rendering.
type CustomerOSAPIConfig struct {
	Url    string `env:"CUSTOMEROS_API_URL"`
	ApiKey string `env:"CUSTOMEROS_API_KEY"`
}

type AuthCheckConfig struct {
	DNSResolver   string `env:"AUTH_CHECK_DNS_RESOLVER" envDefault:"1.1.1.1:53"`
	DKIMSelectors string `env:"AUTH_CHECK_DKIM_SELECTORS" envDefault:"default,mail,s1"`
	TimeoutSec    int    `env:"AUTH_CHECK_TIMEOUT_SEC" envDefault:"5"`
}
