package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/customeros/outreachstack/internal/logger"
	"github.com/customeros/outreachstack/internal/tracing"
)

type Config struct {
	AppConfig        *AppConfig
	Logger           *logger.Config
	Tracing          *tracing.JaegerConfig
	DatabaseConfig   *DatabaseConfig
	ResilienceConfig *ResilienceConfig
	WarmupConfig     *WarmupConfig
	AuthCheckConfig  *AuthCheckConfig
	SMTPConfig       *SMTPConfig
	ProviderAPI      *ProviderAPIConfig
	CustomerOSAPI    *CustomerOSAPIConfig
}

func InitConfig() (*Config, error) {
	config := &Config{
		AppConfig:        &AppConfig{},
		Logger:           &logger.Config{},
		Tracing:          &tracing.JaegerConfig{},
		DatabaseConfig:   &DatabaseConfig{},
		ResilienceConfig: &ResilienceConfig{},
		WarmupConfig:     &WarmupConfig{},
		AuthCheckConfig:  &AuthCheckConfig{},
		SMTPConfig:       &SMTPConfig{},
		ProviderAPI:      &ProviderAPIConfig{},
		CustomerOSAPI:    &CustomerOSAPIConfig{},
	}

	err := godotenv.Load()
	if err != nil {
		log.Print("Unable to load .env file")
	}

	err = env.Parse(config)
	if err != nil {
		log.Fatalf("Error loading outreachstack config: %v", err)
	}

	return config, nil
}
