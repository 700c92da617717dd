package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Token: TokenConfig{
			AccessSecret:       "access-secret",
			AccessTTL:          15 * time.Minute,
			RefreshSecret:      "refresh-secret",
			RefreshTTL:         7 * 24 * time.Hour,
			VerificationSecret: "verification-secret",
			VerificationTTL:    24 * time.Hour,
		},
		SMTP: SMTPConfig{
			Host:     "smtp.example.com",
			Port:     587,
			Account:  "noreply@example.com",
			Password: "smtp-password",
			From:     "noreply@example.com",
		},
	}
}

func TestValidate_AcceptsCompleteConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected valid config to pass, got: %v", err)
	}
}

func TestValidate_MissingRequiredValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"access secret", func(c *Config) { c.Token.AccessSecret = "" }, "TOKEN_ACCESS_SECRET"},
		{"refresh secret", func(c *Config) { c.Token.RefreshSecret = "" }, "TOKEN_REFRESH_SECRET"},
		{"verification secret", func(c *Config) { c.Token.VerificationSecret = "" }, "TOKEN_VERIFICATION_SECRET"},
		{"smtp host", func(c *Config) { c.SMTP.Host = "" }, "SMTP_HOST"},
		{"smtp account", func(c *Config) { c.SMTP.Account = "" }, "SMTP_ACCOUNT"},
		{"smtp password", func(c *Config) { c.SMTP.Password = "" }, "SMTP_PASSWORD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not name %s", err, tt.want)
			}
		})
	}
}

func TestValidate_ReportsAllMissingAtOnce(t *testing.T) {
	cfg := validConfig()
	cfg.Token.AccessSecret = ""
	cfg.SMTP.Host = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"TOKEN_ACCESS_SECRET", "SMTP_HOST"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not name %s", err, want)
		}
	}
}

func TestValidate_RejectsSharedSecrets(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *Config)
	}{
		{
			name:   "access and refresh",
			mutate: func(cfg *Config) { cfg.Token.RefreshSecret = cfg.Token.AccessSecret },
		},
		{
			name:   "verification and access",
			mutate: func(cfg *Config) { cfg.Token.VerificationSecret = cfg.Token.AccessSecret },
		},
		{
			name:   "verification and refresh",
			mutate: func(cfg *Config) { cfg.Token.VerificationSecret = cfg.Token.RefreshSecret },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			if err := cfg.Validate(); err == nil {
				t.Fatal("expected shared signing secrets to be rejected")
			}
		})
	}
}

func TestValidate_RejectsNonPositiveTTL(t *testing.T) {
	cfg := validConfig()
	cfg.Token.AccessTTL = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected zero TTL to be rejected")
	}
}
