package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoader_ParseEnvironment(t *testing.T) {

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		unset := []string{
			"TIMECLOCK_HTTP_PORT",
			"TIMECLOCK_SQLITE_DSN",
			"TIMECLOCK_TIMEZONE",
			"TIMECLOCK_SESSION_TTL",
			"TIMECLOCK_PAID_BREAK_LIMIT",
			"TIMECLOCK_UNPAID_BREAK_LIMIT",
		}
		for _, key := range unset {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}

		t.Setenv("TIMECLOCK_ADMIN_USERNAME", "admin")
		t.Setenv("TIMECLOCK_ADMIN_PASSWORD", "correct horse")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:timeclock.db" {
			t.Fatalf("unexpected default DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.SessionTTL != 12*time.Hour {
			t.Fatalf("expected default session TTL 12h, got %s", cfg.SessionTTL)
		}
		if cfg.PaidBreakMinutes != 15 || cfg.UnpaidBreakMinutes != 30 {
			t.Fatalf("unexpected default break limits: %d, %d", cfg.PaidBreakMinutes, cfg.UnpaidBreakMinutes)
		}
	})

	t.Run("errors when admin credentials are missing", func(t *testing.T) {
		for _, key := range []string{
			"TIMECLOCK_ADMIN_USERNAME",
			"TIMECLOCK_ADMIN_PASSWORD",
		} {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error when admin credentials are missing")
		}
		if !strings.Contains(err.Error(), "TIMECLOCK_ADMIN_USERNAME") ||
			!strings.Contains(err.Error(), "TIMECLOCK_ADMIN_PASSWORD") {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("parses duration and numeric fields", func(t *testing.T) {
		t.Setenv("TIMECLOCK_ADMIN_USERNAME", "admin")
		t.Setenv("TIMECLOCK_ADMIN_PASSWORD", "correct horse")
		t.Setenv("TIMECLOCK_HTTP_PORT", "9090")
		t.Setenv("TIMECLOCK_SQLITE_DSN", "file:/tmp/timeclock.db")
		t.Setenv("TIMECLOCK_SESSION_TTL", "8h")
		t.Setenv("TIMECLOCK_PAID_BREAK_LIMIT", "20")
		t.Setenv("TIMECLOCK_UNPAID_BREAK_LIMIT", "45")
		t.Setenv("TIMECLOCK_TIMEZONE", "UTC")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected HTTP port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.SessionTTL != 8*time.Hour {
			t.Fatalf("expected session TTL 8h, got %s", cfg.SessionTTL)
		}
		if cfg.PaidBreakMinutes != 20 || cfg.UnpaidBreakMinutes != 45 {
			t.Fatalf("unexpected break limits: %d, %d", cfg.PaidBreakMinutes, cfg.UnpaidBreakMinutes)
		}
		if cfg.Location() != time.UTC {
			t.Fatalf("expected UTC location, got %v", cfg.Location())
		}
	})

	t.Run("rejects malformed values", func(t *testing.T) {
		t.Setenv("TIMECLOCK_ADMIN_USERNAME", "admin")
		t.Setenv("TIMECLOCK_ADMIN_PASSWORD", "correct horse")
		t.Setenv("TIMECLOCK_HTTP_PORT", "not-a-port")
		t.Setenv("TIMECLOCK_TIMEZONE", "Mars/Olympus")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error for malformed values")
		}
		if !strings.Contains(err.Error(), "TIMECLOCK_HTTP_PORT") ||
			!strings.Contains(err.Error(), "TIMECLOCK_TIMEZONE") {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})
}
