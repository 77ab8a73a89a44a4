package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Database:   DatabaseConfig{Driver: "sqlite", DSN: ":memory:"},
		Auth:       AuthConfig{Mode: "jwt", JWTSecret: "secret"},
		Email:      EmailConfig{Provider: "console"},
		Consulting: ConsultingConfig{SideEffectTimeout: time.Second, CompanyCacheSize: 16, CompanyCacheTTL: time.Minute},
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "driver is normalized", mutate: func(c *Config) { c.Database.Driver = " Postgres " }},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: "DB_DRIVER"},
		{name: "jwt without secret", mutate: func(c *Config) { c.Auth.JWTSecret = "" }, wantErr: "AUTH_JWT_SECRET"},
		{name: "cognito without region", mutate: func(c *Config) { c.Auth.Mode = "cognito" }, wantErr: "AWS_REGION"},
		{name: "cognito with region", mutate: func(c *Config) { c.Auth.Mode = "cognito"; c.Auth.CognitoRegion = "eu-west-3" }},
		{name: "unknown auth mode", mutate: func(c *Config) { c.Auth.Mode = "basic" }, wantErr: "AUTH_MODE"},
		{name: "sendgrid without key", mutate: func(c *Config) { c.Email.Provider = "sendgrid" }, wantErr: "SENDGRID_API_KEY"},
		{name: "unknown email provider", mutate: func(c *Config) { c.Email.Provider = "smtp" }, wantErr: "EMAIL_PROVIDER"},
		{name: "rabbitmq without url", mutate: func(c *Config) { c.RabbitMQ.Enabled = true }, wantErr: "RABBITMQ_URL"},
		{name: "zero timeout", mutate: func(c *Config) { c.Consulting.SideEffectTimeout = 0 }, wantErr: "SIDE_EFFECT_TIMEOUT"},
		{name: "zero cache", mutate: func(c *Config) { c.Consulting.CompanyCacheSize = 0 }, wantErr: "COMPANY_CACHE_SIZE"},
		{name: "zero cache ttl", mutate: func(c *Config) { c.Consulting.CompanyCacheTTL = 0 }, wantErr: "COMPANY_CACHE_TTL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "from-env")
	t.Setenv("SIDE_EFFECT_TIMEOUT", "2s")
	t.Setenv("CONSULTING_TRACK_CONSUMED_HOURS", "true")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, "jwt", cfg.Auth.Mode)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 2*time.Second, cfg.Consulting.SideEffectTimeout)
	assert.True(t, cfg.Consulting.TrackConsumedHours)
	assert.Equal(t, ":6060", cfg.Server.Address)
}
