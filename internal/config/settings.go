// Package config loads process settings from the environment and the
// editable application configuration from disk.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Development fallbacks. Release builds refuse to start with them.
const (
	DefaultJWTSecret     = "devcraft-dev-secret-change-me"
	DefaultAdminPassword = "password123"
)

// ErrInsecureDefaults is returned by Check in release mode.
var ErrInsecureDefaults = errors.New("insecure default credentials")

// Settings are read once at startup.
type Settings struct {
	Port          string
	GinMode       string
	LogLevel      slog.Level
	AppConfigPath string

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	JWTSecret     string
	AdminUsername string
	AdminPassword string
	AdminEmail    string

	TwilioAccountSID        string
	TwilioAuthToken         string
	TwilioPhoneNumber       string
	NotificationPhoneNumber string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string
	AdminMailTo  string

	SubmitTimeout time.Duration
	SessionTTL    time.Duration
}

// Load reads an optional .env file and then the environment.
func Load(logger *slog.Logger) *Settings {
	if logger == nil {
		logger = slog.Default()
	}
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found, using environment variables")
	}

	return &Settings{
		Port:          getEnv("PORT", "8080"),
		GinMode:       getEnv("GIN_MODE", "debug"),
		LogLevel:      parseLevel(getEnv("LOG_LEVEL", "info")),
		AppConfigPath: getEnv("APP_CONFIG_PATH", "config/app_config.yaml"),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),

		JWTSecret:     getEnv("JWT_SECRET", DefaultJWTSecret),
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", DefaultAdminPassword),
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@example.com"),

		TwilioAccountSID:        os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:         os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioPhoneNumber:       os.Getenv("TWILIO_PHONE_NUMBER"),
		NotificationPhoneNumber: getEnv("NOTIFICATION_PHONE_NUMBER", "5877074990"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     getEnv("MAIL_FROM", "DevCraft Studio <info@devcraftstudio.com>"),
		AdminMailTo:  getEnv("ADMIN_MAIL_TO", "admin@devcraftstudio.com"),

		SubmitTimeout: getEnvDuration("SUBMIT_TIMEOUT", 30*time.Second),
		SessionTTL:    getEnvDuration("SESSION_TTL", 2*time.Hour),
	}
}

// InsecureDefaults names the credential settings left at their development
// fallbacks.
func (s *Settings) InsecureDefaults() []string {
	var out []string
	if s.JWTSecret == DefaultJWTSecret {
		out = append(out, "JWT_SECRET")
	}
	if s.AdminPassword == DefaultAdminPassword {
		out = append(out, "ADMIN_PASSWORD")
	}
	return out
}

// Check warns about every credential left at its fallback and fails in
// release mode.
func (s *Settings) Check(logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	insecure := s.InsecureDefaults()
	for _, key := range insecure {
		logger.Warn("using development default, set it before deploying", "setting", key)
	}
	if len(insecure) > 0 && s.GinMode == "release" {
		return fmt.Errorf("%w: %s", ErrInsecureDefaults, strings.Join(insecure, ", "))
	}
	return nil
}

// SMSConfigured reports whether every Twilio setting is present.
func (s *Settings) SMSConfigured() bool {
	return s.TwilioAccountSID != "" && s.TwilioAuthToken != "" && s.TwilioPhoneNumber != ""
}

// MailConfigured reports whether an SMTP relay is set.
func (s *Settings) MailConfigured() bool {
	return s.SMTPHost != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}
