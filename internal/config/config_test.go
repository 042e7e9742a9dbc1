package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"RSV_API_URL", "VITE_API_BASE_URL", "RSV_POLL_INTERVAL", "RSV_ZONE", "RSV_TOKEN", "RSV_INBOX_DRIVER"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFrom(t.TempDir())
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("APIURL = %q, want %q", cfg.APIURL, DefaultAPIURL)
	}
	if cfg.PollInterval != 10*time.Second {
		t.Errorf("PollInterval = %v, want 10s", cfg.PollInterval)
	}
	if cfg.WaitlistInterval != time.Minute {
		t.Errorf("WaitlistInterval = %v, want 1m", cfg.WaitlistInterval)
	}
	if cfg.RequestTimeout != 0 {
		t.Errorf("RequestTimeout = %v, want 0 (no timeout)", cfg.RequestTimeout)
	}
	if cfg.CloseDelay != 1500*time.Millisecond {
		t.Errorf("CloseDelay = %v, want 1.5s", cfg.CloseDelay)
	}
	if cfg.InboxDriver != DefaultInboxDriver {
		t.Errorf("InboxDriver = %q, want %q", cfg.InboxDriver, DefaultInboxDriver)
	}
}

func TestLoadPriority(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	if err := WriteFile(dir, &File{APIURL: "http://file:3000/", PollInterval: "20s", Zone: "TERRAZA"}); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadFrom(dir)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.APIURL != "http://file:3000" {
		t.Errorf("APIURL = %q, want file value without trailing slash", cfg.APIURL)
	}
	if cfg.PollInterval != 20*time.Second {
		t.Errorf("PollInterval = %v, want 20s from file", cfg.PollInterval)
	}

	t.Setenv("RSV_API_URL", "http://env:4000")
	t.Setenv("RSV_POLL_INTERVAL", "5s")
	cfg, err = LoadFrom(dir)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.APIURL != "http://env:4000" {
		t.Errorf("APIURL = %q, want env value", cfg.APIURL)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Errorf("PollInterval = %v, want 5s from env", cfg.PollInterval)
	}
	if cfg.Zone != "TERRAZA" {
		t.Errorf("Zone = %q, want TERRAZA", cfg.Zone)
	}
}

func TestLegacyBaseURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("VITE_API_BASE_URL", "https://api.example.com/")
	cfg, err := LoadFrom(t.TempDir())
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.APIURL != "https://api.example.com" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
}

func TestSet(t *testing.T) {
	dir := t.TempDir()

	if err := Set(dir, "poll_interval", "15s"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := Set(dir, "webhook.url", "https://hooks.example.com/x"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := Set(dir, "poll_interval", "soon"); err == nil {
		t.Error("expected error for invalid duration")
	}
	if err := Set(dir, "nope", "1"); err == nil {
		t.Error("expected error for unknown key")
	}
	if err := Set(dir, "inbox_driver", "sqlite3"); err != nil {
		t.Fatalf("Set inbox_driver: %v", err)
	}
	if err := Set(dir, "inbox_driver", "postgres"); err == nil {
		t.Error("expected error for unknown inbox driver")
	}

	f, err := ReadFile(dir)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if f.PollInterval != "15s" {
		t.Errorf("PollInterval = %q, want 15s", f.PollInterval)
	}
	if f.Webhook.URL != "https://hooks.example.com/x" {
		t.Errorf("Webhook.URL = %q", f.Webhook.URL)
	}
	if f.InboxDriver != "sqlite3" {
		t.Errorf("InboxDriver = %q, want sqlite3", f.InboxDriver)
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "config-*.json.tmp"))
	if len(matches) != 0 {
		t.Errorf("temp files left behind: %v", matches)
	}
}
