package config

import (
	"github.com/sponsorengage/mailer/internal/logger"
	"github.com/sponsorengage/mailer/internal/tracing"
)

type AppConfig struct {
	APIPort     string `env:"PORT,required" envDefault:"12333"`
	APIKey      string `env:"API_KEY,required"`
	RabbitMQURL string `env:"RABBITMQ_URL"`
	SignInURL   string `env:"SIGN_IN_URL" envDefault:"https://assessments.nihr.ac.uk/auth/signin"`
	Logger      *logger.Config
	Tracing     *tracing.JaegerConfig
}

type DatabaseConfig struct {
	Host            string `env:"POSTGRES_HOST,required"`
	Port            string `env:"POSTGRES_PORT,required"`
	User            string `env:"POSTGRES_USER,required"`
	DBName          string `env:"POSTGRES_DB_NAME,required"`
	Password        string `env:"POSTGRES_PASSWORD,required"`
	MaxConn         int    `env:"POSTGRES_DB_MAX_CONN"`
	MaxIdleConn     int    `env:"POSTGRES_DB_MAX_IDLE_CONN"`
	ConnMaxLifetime int    `env:"POSTGRES_DB_CONN_MAX_LIFETIME"`
	LogLevel        string `env:"POSTGRES_LOG_LEVEL" envDefault:"WARN"`
	SSLMode         string `env:"POSTGRES_SSL_MODE"`
}

type SESConfig struct {
	Region          string `env:"AWS_SES_REGION" envDefault:"eu-west-2"`
	AccessKeyID     string `env:"AWS_SES_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SES_SECRET_ACCESS_KEY"`
	FromAddress     string `env:"MAILER_FROM_ADDRESS,required"`
}

type MailerConfig struct {
	MaxRetries          int `env:"MAILER_MAX_RETRIES" envDefault:"3"`
	RetryBackoffSeconds int `env:"MAILER_RETRY_BACKOFF_SECONDS" envDefault:"1"`
	MaxConcurrentSends  int `env:"MAILER_MAX_CONCURRENT_SENDS" envDefault:"3"`
}

type MonitorConfig struct {
	FailureAgeThresholdHours int `env:"MONITOR_FAILURE_AGE_THRESHOLD_HOURS" envDefault:"72"`
}
