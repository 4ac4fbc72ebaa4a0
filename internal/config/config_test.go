package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("QUEUE_BACKEND", "")
	t.Setenv("MAIL_BACKEND", "")
	t.Setenv("APP_TIMEZONE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Queue.Backend != "memory" {
		t.Fatalf("expected memory queue, got %q", cfg.Queue.Backend)
	}
	if cfg.Mail.Backend != "log" {
		t.Fatalf("expected log mail backend, got %q", cfg.Mail.Backend)
	}
	if cfg.Pets.MaxPerOwner != 5 {
		t.Fatalf("expected 5 pets per owner, got %d", cfg.Pets.MaxPerOwner)
	}
	if got := cfg.Reminders.LeadTimes["medication"]; got != 2*time.Hour {
		t.Fatalf("expected medication lead 2h, got %s", got)
	}
	if got := cfg.Reminders.LeadTimes["feeding"]; got != time.Minute {
		t.Fatalf("expected feeding lead 1m, got %s", got)
	}
}

func TestLoad_LeadTimeOverride(t *testing.T) {
	t.Setenv("REMINDER_LEAD_WALK", "45m")
	t.Setenv("REMINDER_LEAD_FEEDING", "300")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got := cfg.Reminders.LeadTimes["walk"]; got != 45*time.Minute {
		t.Fatalf("expected walk lead 45m, got %s", got)
	}
	if got := cfg.Reminders.LeadTimes["feeding"]; got != 5*time.Minute {
		t.Fatalf("expected feeding lead 5m (seconds form), got %s", got)
	}
}

func TestLoad_RejectsBadTimezone(t *testing.T) {
	t.Setenv("APP_TIMEZONE", "Mars/Olympus_Mons")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown timezone")
	}
}

func TestLoad_SMTPRequiresHost(t *testing.T) {
	t.Setenv("MAIL_BACKEND", "smtp")
	t.Setenv("SMTP_HOST", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when SMTP_HOST is missing")
	}
}
