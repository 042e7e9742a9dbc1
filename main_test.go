package main

import (
	"runtime/debug"
	"testing"
)

func TestBuildVersion(t *testing.T) {
	tests := []struct {
		name     string
		injected string
		info     *debug.BuildInfo
		want     string
	}{
		{name: "injected wins", injected: "v1.2.0", info: &debug.BuildInfo{Main: debug.Module{Version: "v0.9.0"}}, want: "v1.2.0"},
		{name: "no build info", injected: "dev", want: "dev"},
		{name: "module version", injected: "dev", info: &debug.BuildInfo{Main: debug.Module{Version: "v0.3.1"}}, want: "v0.3.1"},
		{
			name:     "vcs revision",
			injected: "dev",
			info: &debug.BuildInfo{
				Main: debug.Module{Version: "(devel)"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "0123456789abcdef"},
					{Key: "vcs.modified", Value: "true"},
				},
			},
			want: "devel+0123456789ab+dirty",
		},
		{name: "nothing recorded", injected: "dev", info: &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, want: "dev"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildVersion(tt.injected, tt.info); got != tt.want {
				t.Errorf("buildVersion() = %q, want %q", got, tt.want)
			}
		})
	}
}
