package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_TRACKER_EMAIL", "me@example.com")
	path := writeConfig(t, `
data_dir: /tmp/tracker
imap:
  email: ${TEST_TRACKER_EMAIL}
  password: hunter2
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.IMAP.Email != "me@example.com" {
		t.Errorf("email = %q, want expanded env value", cfg.IMAP.Email)
	}
	if cfg.IMAP.Password != "hunter2" {
		t.Errorf("password = %q", cfg.IMAP.Password)
	}
}

func TestLoadLeavesUnsetVarsVerbatim(t *testing.T) {
	path := writeConfig(t, `
imap:
  email: ${DEFINITELY_NOT_SET_ANYWHERE_42}
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.IMAP.Email != "${DEFINITELY_NOT_SET_ANYWHERE_42}" {
		t.Errorf("email = %q, want the unexpanded reference", cfg.IMAP.Email)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "data_dir: /srv/tracker\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.IMAP.Folder != "INBOX" {
		t.Errorf("folder = %q", cfg.IMAP.Folder)
	}
	if cfg.Gemini.Model != "gemini-1.5-flash" {
		t.Errorf("model = %q", cfg.Gemini.Model)
	}
	if cfg.GeminiTimeout() != 20*time.Second {
		t.Errorf("timeout = %v", cfg.GeminiTimeout())
	}
	if cfg.Fetch.LookbackDays != 14 || cfg.Fetch.MaxEmails != 500 {
		t.Errorf("fetch defaults = %+v", cfg.Fetch)
	}
	if cfg.Features.SubjectFeatures != 1000 || cfg.Features.BodyFeatures != 5000 || cfg.Features.TopDomains != 50 {
		t.Errorf("feature defaults = %+v", cfg.Features)
	}
	if cfg.Pipeline.Concurrency != 4 {
		t.Errorf("concurrency = %d", cfg.Pipeline.Concurrency)
	}

	if got := cfg.DBPath(); got != filepath.Join("/srv/tracker", "intern.db") {
		t.Errorf("DBPath = %q", got)
	}
	if got := cfg.ModelPath(); got != filepath.Join("/srv/tracker", "model.json") {
		t.Errorf("ModelPath = %q", got)
	}
	if got := cfg.SheetPath(); got != filepath.Join("/srv/tracker", "tracker.csv") {
		t.Errorf("SheetPath = %q", got)
	}
}

func TestAbsoluteFileOverridesDataDir(t *testing.T) {
	cfg, err := Load(writeConfig(t, "db_file: /var/lib/tracker/emails.db\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.DBPath(); got != "/var/lib/tracker/emails.db" {
		t.Errorf("DBPath = %q", got)
	}
}

func TestEnvFallbacksFillCredentials(t *testing.T) {
	t.Setenv("IMAP_EMAIL", "env@example.com")
	t.Setenv("IMAP_PASSWORD", "env-pass")
	t.Setenv("GEMINI_API_KEY", "env-key")

	cfg := Default()
	if cfg.IMAP.Email != "env@example.com" || cfg.IMAP.Password != "env-pass" {
		t.Errorf("imap fallbacks = %q, %q", cfg.IMAP.Email, cfg.IMAP.Password)
	}
	if !cfg.AIEnabled() {
		t.Error("AIEnabled = false with GEMINI_API_KEY set")
	}
	if err := cfg.RequireIMAP(); err != nil {
		t.Errorf("RequireIMAP: %v", err)
	}
}

func TestAIDisabledWithoutKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	if Default().AIEnabled() {
		t.Error("AIEnabled = true with no API key")
	}
}

func TestRequireIMAPRejectsMissingCredentials(t *testing.T) {
	t.Setenv("IMAP_EMAIL", "")
	t.Setenv("IMAP_PASSWORD", "")

	cfg := Default()
	if err := cfg.RequireIMAP(); err == nil {
		t.Error("expected error with no email")
	}

	cfg.IMAP.Email = "me@example.com"
	if err := cfg.RequireIMAP(); err == nil {
		t.Error("expected error with no password or token")
	}

	cfg.IMAP.AccessToken = "ya29.token"
	if err := cfg.RequireIMAP(); err != nil {
		t.Errorf("token should satisfy credentials: %v", err)
	}

	cfg.IMAP.AccessToken = ""
	cfg.IMAP.OAuth.RefreshToken = "1//refresh"
	if err := cfg.RequireIMAP(); err != nil {
		t.Errorf("refresh token should satisfy credentials: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
