/*
Package config assembles the runtime configuration from the environment.

PURPOSE:
  One explicit Config value built at startup and passed down by the
  caller - nothing in the rest of the codebase reads the environment or
  holds ambient global state. A .env file is loaded best-effort for
  local development (godotenv); real deployments set variables directly.

VARIABLES:
  PORT                          HTTP port (default 8787)
  DB_PATH                       SQLite file (default ./data/vacations.db)
  MANAGER_TOKEN_GAMYBA          explicit production token override
    (aliases: MANAGER_TOKEN_PRODUCTION, MANAGER_TOKEN)
  MANAGER_TOKEN_ADMINISTRACIJA  explicit administration token override
    (alias: MANAGER_TOKEN_ADMINISTRATION)
  EMAIL_NOTIFICATIONS_ENABLED   default true
  SMTP_HOST / SMTP_PORT / SMTP_USER / SMTP_PASS / SMTP_FROM / SMTP_SECURE
  MANAGER_NOTIFICATION_EMAIL    reminder recipient
    (alias: NOTIFICATION_EMAIL)
  REMINDER_INTERVAL             sweep interval, Go duration (default 1h)
  CORS_ORIGINS                  comma-separated allowed origins
*/
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/eigida/vacations/vacation"
)

// SMTP holds the email transport settings.
type SMTP struct {
	Host   string
	Port   int
	User   string
	Pass   string
	From   string
	To     string
	Secure bool
}

// Complete reports whether enough is configured to attempt sending.
func (s SMTP) Complete() bool {
	return s.Host != "" && s.User != "" && s.Pass != "" && s.From != "" && s.To != ""
}

// Config is the full runtime configuration.
type Config struct {
	Port   int
	DBPath string

	// TokenOverrides carries operator-supplied manager tokens; empty
	// entries mean "keep the stored/generated one".
	TokenOverrides map[vacation.Department]string

	EmailEnabled     bool
	SMTP             SMTP
	ReminderInterval time.Duration

	CORSOrigins []string
}

// Load builds the configuration from .env (if present) and the process
// environment.
func Load() Config {
	// Missing .env is the normal case outside local development.
	_ = godotenv.Load()

	smtpPort := intEnv("SMTP_PORT", 587)

	cfg := Config{
		Port:   intEnv("PORT", 8787),
		DBPath: stringEnv("DB_PATH", "./data/vacations.db"),
		TokenOverrides: map[vacation.Department]string{
			vacation.DepartmentProduction: firstEnv(
				"MANAGER_TOKEN_GAMYBA", "MANAGER_TOKEN_PRODUCTION", "MANAGER_TOKEN"),
			vacation.DepartmentAdministration: firstEnv(
				"MANAGER_TOKEN_ADMINISTRACIJA", "MANAGER_TOKEN_ADMINISTRATION"),
		},
		EmailEnabled: ParseBool(os.Getenv("EMAIL_NOTIFICATIONS_ENABLED"), true),
		SMTP: SMTP{
			Host:   stringEnv("SMTP_HOST", ""),
			Port:   smtpPort,
			User:   stringEnv("SMTP_USER", ""),
			Pass:   stringEnv("SMTP_PASS", ""),
			From:   stringEnv("SMTP_FROM", os.Getenv("SMTP_USER")),
			To:     firstEnv("MANAGER_NOTIFICATION_EMAIL", "NOTIFICATION_EMAIL"),
			Secure: ParseBool(os.Getenv("SMTP_SECURE"), smtpPort == 465),
		},
		ReminderInterval: durationEnv("REMINDER_INTERVAL", time.Hour),
		CORSOrigins:      listEnv("CORS_ORIGINS", []string{"http://localhost:5173", "http://localhost:8787"}),
	}

	return cfg
}

// ParseBool interprets the usual truthy/falsy spellings, falling back
// for anything unrecognized.
func ParseBool(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	}
	return fallback
}

func stringEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return ""
}

func intEnv(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func listEnv(key string, fallback []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
