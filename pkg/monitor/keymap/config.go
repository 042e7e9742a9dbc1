// Package keymap provides user-configurable key bindings for the dashboard,
// loaded from keymap.json in the rsv config directory.
package keymap

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileName is the keymap file inside the config directory
const FileName = "keymap.json"

// Config holds user overrides: "context:key" (or a bare key for every
// context) to a command, e.g. {"main:ctrl+s": "cycle-status", "x": "quit"}.
type Config struct {
	Bindings map[string]string `json:"bindings"`
}

// ConfigPath returns the keymap file in configDir
func ConfigPath(configDir string) string {
	return filepath.Join(configDir, FileName)
}

// LoadConfig reads overrides from path. A missing file is an empty config.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{Bindings: map[string]string{}}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	if cfg.Bindings == nil {
		cfg.Bindings = map[string]string{}
	}
	return cfg, nil
}

// ApplyConfig installs the overrides and returns the entries it skipped:
// an empty key, an unknown context or a command nothing can dispatch.
func ApplyConfig(r *Registry, cfg *Config) []string {
	var skipped []string
	for binding, name := range cfg.Bindings {
		ctx, key := parseBinding(binding)
		cmd := Command(strings.TrimSpace(name))
		switch {
		case key == "":
			skipped = append(skipped, fmt.Sprintf("%q: empty key", binding))
		case !r.KnownContext(ctx):
			skipped = append(skipped, fmt.Sprintf("%q: unknown context %q", binding, ctx))
		case !r.KnownCommand(cmd):
			skipped = append(skipped, fmt.Sprintf("%q: unknown command %q", binding, name))
		default:
			r.SetUserOverride(ctx, key, cmd)
		}
	}
	sort.Strings(skipped)
	return skipped
}

// parseBinding splits "context:key"; without a colon the key is global
func parseBinding(s string) (Context, string) {
	if ctx, key, ok := strings.Cut(s, ":"); ok {
		return Context(ctx), key
	}
	return ContextGlobal, s
}
