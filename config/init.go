package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/sponsorengage/mailer/internal/logger"
	"github.com/sponsorengage/mailer/internal/tracing"
)

type Config struct {
	AppConfig      *AppConfig
	Logger         *logger.Config
	Tracing        *tracing.JaegerConfig
	DatabaseConfig *DatabaseConfig
	SESConfig      *SESConfig
	MailerConfig   *MailerConfig
	MonitorConfig  *MonitorConfig
}

func InitConfig() (*Config, error) {
	config := &Config{
		AppConfig:      &AppConfig{},
		Logger:         &logger.Config{},
		Tracing:        &tracing.JaegerConfig{},
		DatabaseConfig: &DatabaseConfig{},
		SESConfig:      &SESConfig{},
		MailerConfig:   &MailerConfig{},
		MonitorConfig:  &MonitorConfig{},
	}

	err := godotenv.Load()
	if err != nil {
		log.Print("Unable to load .env file")
	}

	err = env.Parse(config)
	if err != nil {
		log.Fatalf("Error loading mailer config: %v", err)
	}

	return config, nil
}
