/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"testing"
	"time"

	"github.com/Seednode/triviabox/trivia"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		bind:           "127.0.0.1",
		port:           8080,
		maxPlayers:     10,
		minPlayers:     3,
		maxAttempts:    3,
		points:         10,
		timeLimit:      60 * time.Second,
		sessionTimeout: time.Hour,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"tls pair", func(c *Config) { c.tlsCert, c.tlsKey = "cert.pem", "key.pem" }, false},
		{"cert without key", func(c *Config) { c.tlsCert = "cert.pem" }, true},
		{"key without cert", func(c *Config) { c.tlsKey = "key.pem" }, true},
		{"port zero", func(c *Config) { c.port = 0 }, true},
		{"port too high", func(c *Config) { c.port = 70000 }, true},
		{"sub-second limit", func(c *Config) { c.timeLimit = 500 * time.Millisecond }, true},
		{"fractional limit", func(c *Config) { c.timeLimit = 1500 * time.Millisecond }, true},
		{"one second limit", func(c *Config) { c.timeLimit = time.Second }, false},
		{"no min players", func(c *Config) { c.minPlayers = 0 }, true},
		{"max below min", func(c *Config) { c.maxPlayers = 2 }, true},
		{"max equals min", func(c *Config) { c.maxPlayers = 3 }, false},
		{"no attempts", func(c *Config) { c.maxAttempts = 0 }, true},
		{"negative points", func(c *Config) { c.points = -1 }, true},
		{"zero points", func(c *Config) { c.points = 0 }, false},
		{"reaper disabled", func(c *Config) { c.sessionTimeout = 0 }, false},
		{"negative timeout", func(c *Config) { c.sessionTimeout = -time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSettingsFromConfig(t *testing.T) {
	cfg := validConfig()
	cfg.timeLimit = 45 * time.Second
	cfg.points = 5

	assert.Equal(t, trivia.Settings{
		MaxPlayers:  10,
		MinPlayers:  3,
		MaxAttempts: 3,
		Points:      5,
		TimeLimit:   45,
	}, cfg.settings())
}

func TestFlagDefaults(t *testing.T) {
	cfg := &Config{}
	cmd := newCmd(cfg)

	require.NoError(t, cmd.ParseFlags(nil))

	assert.Equal(t, 8080, cfg.port)
	assert.Equal(t, trivia.DefaultSettings(), cfg.settings())
	assert.Equal(t, time.Hour, cfg.sessionTimeout)
	assert.NoError(t, cfg.validate())
}

func TestFlagsFromEnvironment(t *testing.T) {
	t.Setenv("TRIVIABOX_MIN_PLAYERS", "2")
	t.Setenv("TRIVIABOX_TIME_LIMIT", "30s")
	t.Setenv("TRIVIABOX_ORIGINS", "https://a.example,https://b.example")

	cfg := &Config{}
	cmd := newCmd(cfg)

	require.NoError(t, cmd.ParseFlags(nil))

	assert.Equal(t, 2, cfg.minPlayers)
	assert.Equal(t, 30*time.Second, cfg.timeLimit)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.origins)
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("TRIVIABOX_POINTS", "7")

	cfg := &Config{}
	cmd := newCmd(cfg)

	require.NoError(t, cmd.ParseFlags([]string{"--points", "3"}))

	assert.Equal(t, 3, cfg.points)
}

func TestScheme(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "http", cfg.scheme())

	cfg.tlsCert, cfg.tlsKey = "cert.pem", "key.pem"
	assert.Equal(t, "https", cfg.scheme())
}
