package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Auth       AuthConfig
	Email      EmailConfig
	RabbitMQ   RabbitMQConfig
	Rollbar    RollbarConfig
	Log        LogConfig
	Consulting ConsultingConfig
}

type ServerConfig struct {
	Address         string        `env:"SERVER_ADDRESS" env-default:":6060"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
}

type DatabaseConfig struct {
	Driver string `env:"DB_DRIVER" env-default:"sqlite"` // sqlite | postgres
	DSN    string `env:"DB_DSN" env-default:"./database.db"`
}

type AuthConfig struct {
	Mode          string `env:"AUTH_MODE" env-default:"jwt"` // jwt | cognito
	JWTSecret     string `env:"AUTH_JWT_SECRET"`
	JWTIssuer     string `env:"AUTH_JWT_ISSUER" env-default:"formconsult"`
	CognitoRegion string `env:"AWS_REGION"`
}

type EmailConfig struct {
	Provider        string `env:"EMAIL_PROVIDER" env-default:"console"` // console | sendgrid
	SendgridAPIKey  string `env:"SENDGRID_API_KEY"`
	FromAddress     string `env:"EMAIL_FROM_ADDRESS" env-default:"noreply@formconsult.local"`
	FromName        string `env:"EMAIL_FROM_NAME" env-default:"FormConsult"`
	FrontendBaseURL string `env:"FRONTEND_BASE_URL" env-default:"http://localhost:3000"`
}

type RabbitMQConfig struct {
	Enabled  bool   `env:"RABBITMQ_ENABLED" env-default:"false"`
	URL      string `env:"RABBITMQ_URL"`
	Exchange string `env:"RABBITMQ_EXCHANGE" env-default:"formconsult.events"`
}

type RollbarConfig struct {
	Token       string `env:"ROLLBAR_TOKEN"`
	Environment string `env:"ROLLBAR_ENV" env-default:"development"`
}

type LogConfig struct {
	Level string `env:"LOG_LEVEL" env-default:"info"`
}

type ConsultingConfig struct {
	SideEffectTimeout  time.Duration `env:"SIDE_EFFECT_TIMEOUT" env-default:"5s"`
	CompanyCacheSize   int           `env:"COMPANY_CACHE_SIZE" env-default:"256"`
	CompanyCacheTTL    time.Duration `env:"COMPANY_CACHE_TTL" env-default:"10m"`
	TrackConsumedHours bool          `env:"CONSULTING_TRACK_CONSUMED_HOURS" env-default:"false"`
}

// Load reads a .env file when one exists, then fills Config from the
// environment. Variables already set in the environment win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	c.Auth.Mode = strings.ToLower(strings.TrimSpace(c.Auth.Mode))
	switch c.Auth.Mode {
	case "jwt":
		if c.Auth.JWTSecret == "" {
			return errors.New("AUTH_JWT_SECRET is required when AUTH_MODE=jwt")
		}
	case "cognito":
		if c.Auth.CognitoRegion == "" {
			return errors.New("AWS_REGION is required when AUTH_MODE=cognito")
		}
	default:
		return fmt.Errorf("unsupported AUTH_MODE %q", c.Auth.Mode)
	}

	c.Email.Provider = strings.ToLower(strings.TrimSpace(c.Email.Provider))
	switch c.Email.Provider {
	case "console":
	case "sendgrid":
		if c.Email.SendgridAPIKey == "" {
			return errors.New("SENDGRID_API_KEY is required when EMAIL_PROVIDER=sendgrid")
		}
	default:
		return fmt.Errorf("unsupported EMAIL_PROVIDER %q", c.Email.Provider)
	}

	if c.RabbitMQ.Enabled && c.RabbitMQ.URL == "" {
		return errors.New("RABBITMQ_URL is required when RABBITMQ_ENABLED=true")
	}
	if c.Consulting.SideEffectTimeout <= 0 {
		return errors.New("SIDE_EFFECT_TIMEOUT must be positive")
	}
	if c.Consulting.CompanyCacheSize <= 0 {
		return errors.New("COMPANY_CACHE_SIZE must be positive")
	}
	if c.Consulting.CompanyCacheTTL <= 0 {
		return errors.New("COMPANY_CACHE_TTL must be positive")
	}
	return nil
}
