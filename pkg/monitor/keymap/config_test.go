package keymap

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigNonExistent(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), FileName))
	if err != nil {
		t.Errorf("LoadConfig should not error on nonexistent file: %v", err)
	}
	if cfg == nil || cfg.Bindings == nil {
		t.Fatal("LoadConfig should return an initialized config")
	}
}

func TestLoadConfigAndApply(t *testing.T) {
	dir := t.TempDir()
	path := ConfigPath(dir)
	data := `{"bindings": {"main:ctrl+s": "cycle-status", "z": "quit"}}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Bindings["main:ctrl+s"] != "cycle-status" {
		t.Errorf("main:ctrl+s = %q, want %q", cfg.Bindings["main:ctrl+s"], "cycle-status")
	}

	r := NewRegistry()
	RegisterDefaults(r)
	ApplyConfig(r, cfg)

	if cmd, found := r.Lookup(runes("z"), ContextFloor); !found || cmd != CmdQuit {
		t.Errorf("global override z = (%s, %v), want (%s, true)", cmd, found, CmdQuit)
	}
}

func TestLoadConfigInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestParseBinding(t *testing.T) {
	tests := []struct {
		in      string
		wantCtx Context
		wantKey string
	}{
		{"main:j", ContextMain, "j"},
		{"floor:ctrl+x", ContextFloor, "ctrl+x"},
		{"q", ContextGlobal, "q"},
	}
	for _, tt := range tests {
		ctx, key := parseBinding(tt.in)
		if ctx != tt.wantCtx || key != tt.wantKey {
			t.Errorf("parseBinding(%q) = (%q, %q), want (%q, %q)", tt.in, ctx, key, tt.wantCtx, tt.wantKey)
		}
	}
}

func TestApplyConfigSkipsUnknown(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	skipped := ApplyConfig(r, &Config{Bindings: map[string]string{
		"main:Z":    "launch-rockets",
		"kitchen:Z": "quit",
		"main:":     "quit",
		"main:W":    "panel-waitlist",
	}})
	if len(skipped) != 3 {
		t.Fatalf("skipped = %v, want 3 entries", skipped)
	}
	if cmd, found := r.Lookup(runes("Z"), ContextMain); found {
		t.Errorf("unknown command should not be bound, got %s", cmd)
	}
	if cmd, found := r.Lookup(runes("W"), ContextMain); !found || cmd != CmdPanelWaitlist {
		t.Errorf("main:W = (%s, %v), want (%s, true)", cmd, found, CmdPanelWaitlist)
	}
}
