package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the timeclock
// service.
type Config struct {
	HTTPPort           int
	SQLiteDSN          string
	Timezone           string
	SessionTTL         time.Duration
	PaidBreakMinutes   int
	UnpaidBreakMinutes int
	AdminUsername      string
	AdminPassword      string
}

// Load parses configuration values from the current process environment.
//
// Optional fields fall back to sensible defaults; the admin credentials are
// required so the service never starts with an unreachable admin surface.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:           8080,
		SQLiteDSN:          "file:timeclock.db",
		Timezone:           "Local",
		SessionTTL:         12 * time.Hour,
		PaidBreakMinutes:   15,
		UnpaidBreakMinutes: 30,
	}

	missing := make([]string, 0, 2)
	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("TIMECLOCK_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "TIMECLOCK_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("TIMECLOCK_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if tz := strings.TrimSpace(os.Getenv("TIMECLOCK_TIMEZONE")); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			invalid = append(invalid, "TIMECLOCK_TIMEZONE")
		} else {
			cfg.Timezone = tz
		}
	}

	if ttlValue := strings.TrimSpace(os.Getenv("TIMECLOCK_SESSION_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "TIMECLOCK_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if value := strings.TrimSpace(os.Getenv("TIMECLOCK_PAID_BREAK_LIMIT")); value != "" {
		minutes, err := strconv.Atoi(value)
		if err != nil || minutes < 0 {
			invalid = append(invalid, "TIMECLOCK_PAID_BREAK_LIMIT")
		} else {
			cfg.PaidBreakMinutes = minutes
		}
	}

	if value := strings.TrimSpace(os.Getenv("TIMECLOCK_UNPAID_BREAK_LIMIT")); value != "" {
		minutes, err := strconv.Atoi(value)
		if err != nil || minutes < 0 {
			invalid = append(invalid, "TIMECLOCK_UNPAID_BREAK_LIMIT")
		} else {
			cfg.UnpaidBreakMinutes = minutes
		}
	}

	if username := strings.TrimSpace(os.Getenv("TIMECLOCK_ADMIN_USERNAME")); username == "" {
		missing = append(missing, "TIMECLOCK_ADMIN_USERNAME")
	} else {
		cfg.AdminUsername = username
	}

	if password := os.Getenv("TIMECLOCK_ADMIN_PASSWORD"); password == "" {
		missing = append(missing, "TIMECLOCK_ADMIN_PASSWORD")
	} else {
		cfg.AdminPassword = password
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables are not set: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("environment variables carry invalid values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

// Location resolves the configured timezone. Load already validated it.
func (c Config) Location() *time.Location {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local
	}
	location, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return location
}
