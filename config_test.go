package goTodo

import (
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{
			name:      "baseline valid",
			mutate:    func(c *Config) {},
			wantValid: true,
		},
		{
			name: "hs256 without secret invalid",
			mutate: func(c *Config) {
				c.Token.PrivateKey = nil
			},
			wantValid: false,
		},
		{
			name: "signing method invalid",
			mutate: func(c *Config) {
				c.Token.SigningMethod = "rs256"
			},
			wantValid: false,
		},
		{
			name: "ed25519 without public key invalid",
			mutate: func(c *Config) {
				c.Token.SigningMethod = "ed25519"
			},
			wantValid: false,
		},
		{
			name: "max future iat negative invalid",
			mutate: func(c *Config) {
				c.Token.MaxFutureIAT = -time.Second
			},
			wantValid: false,
		},
		{
			name: "password memory too low invalid",
			mutate: func(c *Config) {
				c.Password.Memory = 1024
			},
			wantValid: false,
		},
		{
			name: "password min length zero invalid",
			mutate: func(c *Config) {
				c.Password.MinLength = 0
			},
			wantValid: false,
		},
		{
			name: "password max below min invalid",
			mutate: func(c *Config) {
				c.Password.MinLength = 8
				c.Password.MaxLength = 4
			},
			wantValid: false,
		},
		{
			name: "key prefix blank invalid",
			mutate: func(c *Config) {
				c.Store.KeyPrefix = "  "
			},
			wantValid: false,
		},
		{
			name: "key prefix with space invalid",
			mutate: func(c *Config) {
				c.Store.KeyPrefix = "to do"
			},
			wantValid: false,
		},
		{
			name: "login throttle valid",
			mutate: func(c *Config) {
				c.Security.EnableLoginThrottle = true
			},
			wantValid: true,
		},
		{
			name: "login throttle zero attempts invalid",
			mutate: func(c *Config) {
				c.Security.EnableLoginThrottle = true
				c.Security.MaxLoginAttempts = 0
			},
			wantValid: false,
		},
		{
			name: "registration budget without cooldown invalid",
			mutate: func(c *Config) {
				c.Security.MaxRegistrationsPerIP = 3
				c.Security.RegistrationCooldown = 0
			},
			wantValid: false,
		},
		{
			name: "audit zero buffer invalid",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.BufferSize = 0
			},
			wantValid: false,
		},
		{
			name: "latency without metrics invalid",
			mutate: func(c *Config) {
				c.Metrics.EnableLatencyHistograms = true
			},
			wantValid: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantValid && err != nil {
				t.Fatalf("expected valid config, got %v", err)
			}
			if !tc.wantValid && err == nil {
				t.Fatal("expected invalid config, got nil")
			}
		})
	}
}

func TestCloneConfigDetachesKeyMaterial(t *testing.T) {
	cfg := testConfig()
	cfg.Token.VerifyKeys = map[string][]byte{"k1": []byte("abc")}

	clone := cloneConfig(cfg)
	cfg.Token.PrivateKey[0] = 'X'
	cfg.Token.VerifyKeys["k1"][0] = 'X'

	if clone.Token.PrivateKey[0] == 'X' {
		t.Fatal("private key shares memory with source")
	}
	if clone.Token.VerifyKeys["k1"][0] == 'X' {
		t.Fatal("verify keys share memory with source")
	}
}
