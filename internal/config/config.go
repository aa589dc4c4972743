package config

import (
	"fmt"
	"time"

	"github.com/Netflix/go-env"
)

type Config struct {
	DatabaseDSN          string  `env:"DATABASE_DSN,required=true"`
	DBMaxOpenConns       int     `env:"DB_MAX_OPEN_CONNS,default=25"`
	DBMaxIdleConns       int     `env:"DB_MAX_IDLE_CONNS,default=5"`
	RedisURL             string  `env:"REDIS_URL,required=true"`
	RabbitMQURL          string  `env:"RABBITMQ_URL"`
	SMSGatewayURL        string  `env:"SMS_GATEWAY_URL,required=true"`
	EmailGatewayURL      string  `env:"EMAIL_GATEWAY_URL,required=true"`
	SMSCostPerMessage    float64 `env:"SMS_COST_PER_MESSAGE,default=35"`
	EmailCostPerMessage  float64 `env:"EMAIL_COST_PER_MESSAGE,default=0"`
	SMSEnabled           bool    `env:"FEATURE_SMS_REMINDERS,default=true"`
	EmailEnabled         bool    `env:"FEATURE_EMAIL_REMINDERS,default=true"`
	SMSRateLimitPerSec   int     `env:"SMS_RATE_LIMIT_PER_SEC,default=10"`
	EmailRateLimitPerSec int     `env:"EMAIL_RATE_LIMIT_PER_SEC,default=20"`
	SendDelayMillis      int     `env:"SEND_DELAY_MS,default=200"`
	SendTimeoutSeconds   int     `env:"SEND_TIMEOUT_SECONDS,default=15"`
	JobRetentionMinutes  int     `env:"JOB_RETENTION_MINUTES,default=60"`
	SweepIntervalMins    int     `env:"JOB_SWEEP_INTERVAL_MINUTES,default=5"`
	APIPort              int     `env:"API_PORT,default=8080"`
	AdminToken           string  `env:"ADMIN_TOKEN"`
	LogLevel             string  `env:"LOG_LEVEL,default=info"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.SendTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("failed to load config: SEND_TIMEOUT_SECONDS must be > 0")
	}
	return &cfg, nil
}

func (c *Config) SendDelay() time.Duration {
	if c.SendDelayMillis <= 0 {
		return 0
	}
	return time.Duration(c.SendDelayMillis) * time.Millisecond
}

func (c *Config) SendTimeout() time.Duration {
	return time.Duration(c.SendTimeoutSeconds) * time.Second
}

func (c *Config) JobRetention() time.Duration {
	return time.Duration(c.JobRetentionMinutes) * time.Minute
}

func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalMins) * time.Minute
}
