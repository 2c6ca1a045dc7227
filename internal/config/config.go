// Package config reads the site configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// DefaultPersona is the chat system prompt used when CHAT_PERSONA is unset.
const DefaultPersona = `You are the owner of this resume site, a full-stack developer and DevOps engineer.

IMPORTANT: Always reply in the language the visitor writes in.

You're friendly but straightforward, occasionally use humor, and type quickly and informally, like a real chat conversation. Keep answers short.`

type Config struct {
	Port          string
	DBPath        string
	MediaDir      string
	TemplatesGlob string

	// Admin
	AdminUsername string
	AdminPassword string

	// Resume polling. Empty ResumeAPIURL polls the local database.
	ResumeAPIURL    string
	RefreshInterval time.Duration

	SessionTTL       time.Duration
	MaxUploadBytes   int64
	VisitorRetention time.Duration

	// Chat completion
	ChatAPIURL  string
	ChatAPIKey  string
	ChatModel   string
	ChatPersona string

	// Contact relay
	TelegramBotToken string
	TelegramChatID   string
	SMTPHost         string
	SMTPPort         string
	SMTPUser         string
	SMTPPass         string
	ToEmail          string
}

// Load reads configuration from environment variables, applying defaults.
func Load() Config {
	cfg := Config{
		Port:          envOr("PORT", "8080"),
		DBPath:        envOr("DB_PATH", "webresume.db"),
		MediaDir:      envOr("MEDIA_DIR", "media"),
		TemplatesGlob: envOr("TEMPLATES_GLOB", "templates/*"),

		AdminUsername: envOr("ADMIN_USERNAME", "admin"),
		AdminPassword: envOr("ADMIN_PASSWORD", "admin123"),

		ResumeAPIURL:    os.Getenv("RESUME_API_URL"),
		RefreshInterval: envDuration("REFRESH_INTERVAL", 5*time.Second),

		SessionTTL:       envDuration("SESSION_TTL", time.Hour),
		MaxUploadBytes:   envInt64("MAX_UPLOAD_BYTES", 10<<20),
		VisitorRetention: envDuration("VISITOR_RETENTION", 365*24*time.Hour),

		ChatAPIURL:  envOr("CHAT_API_URL", "https://openrouter.ai/api/v1/chat/completions"),
		ChatAPIKey:  os.Getenv("CHAT_API_KEY"),
		ChatModel:   envOr("CHAT_MODEL", "openai/gpt-3.5-turbo"),
		ChatPersona: envOr("CHAT_PERSONA", DefaultPersona),

		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   os.Getenv("TELEGRAM_CHAT_ID"),
		SMTPHost:         envOr("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:         envOr("SMTP_PORT", "587"),
		SMTPUser:         os.Getenv("SMTP_USER"),
		SMTPPass:         os.Getenv("SMTP_PASS"),
		ToEmail:          os.Getenv("TO_EMAIL"),
	}

	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = 5 * time.Second
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = time.Hour
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	if cfg.VisitorRetention <= 0 {
		cfg.VisitorRetention = 365 * 24 * time.Hour
	}

	return cfg
}

// Validate reports configuration that cannot work.
func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT must not be empty")
	}
	if c.DBPath == "" {
		return errors.New("DB_PATH must not be empty")
	}
	if c.AdminUsername == "" || c.AdminPassword == "" {
		return errors.New("ADMIN_USERNAME and ADMIN_PASSWORD must not be empty")
	}
	if (c.TelegramBotToken == "") != (c.TelegramChatID == "") {
		return errors.New("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set together")
	}
	return nil
}

// DefaultAdminCredentials reports whether the development admin login is in use.
func (c Config) DefaultAdminCredentials() bool {
	return os.Getenv("ADMIN_USERNAME") == "" || os.Getenv("ADMIN_PASSWORD") == ""
}

// SMTPEnabled reports whether contact e-mail can be sent.
func (c Config) SMTPEnabled() bool {
	return c.SMTPUser != "" && c.SMTPPass != "" && c.ToEmail != ""
}

// TelegramEnabled reports whether contact messages are relayed to Telegram.
func (c Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
