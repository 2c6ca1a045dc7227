package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_PATH", "REFRESH_INTERVAL", "MAX_UPLOAD_BYTES", "RESUME_API_URL", "ADMIN_USERNAME", "ADMIN_PASSWORD"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "webresume.db", cfg.DBPath)
	assert.Equal(t, 5*time.Second, cfg.RefreshInterval)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.Empty(t, cfg.ResumeAPIURL)
	assert.True(t, cfg.DefaultAdminCredentials())
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("REFRESH_INTERVAL", "30s")
	t.Setenv("MAX_UPLOAD_BYTES", "not-a-number")
	t.Setenv("SESSION_TTL", "-5m")
	t.Setenv("ADMIN_USERNAME", "root")
	t.Setenv("ADMIN_PASSWORD", "secret")

	cfg := Load()
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.RefreshInterval)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.False(t, cfg.DefaultAdminCredentials())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantError bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "empty port", mutate: func(c *Config) { c.Port = "" }, wantError: true},
		{name: "empty db", mutate: func(c *Config) { c.DBPath = "" }, wantError: true},
		{name: "telegram token only", mutate: func(c *Config) { c.TelegramBotToken = "t" }, wantError: true},
		{name: "telegram complete", mutate: func(c *Config) { c.TelegramBotToken = "t"; c.TelegramChatID = "1" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Port: "8080", DBPath: "x.db", AdminUsername: "a", AdminPassword: "b"}
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRelayToggles(t *testing.T) {
	cfg := Config{}
	assert.False(t, cfg.SMTPEnabled())
	assert.False(t, cfg.TelegramEnabled())

	cfg = Config{SMTPUser: "u", SMTPPass: "p", ToEmail: "me@example.com", TelegramBotToken: "t", TelegramChatID: "1"}
	assert.True(t, cfg.SMTPEnabled())
	assert.True(t, cfg.TelegramEnabled())
}
