package main

import (
	"runtime/debug"

	"github.com/marcus/rsv/cmd"
)

// Version is injected with -ldflags "-X main.Version=v1.2.3"
var Version = "dev"

// buildVersion falls back to the module version or VCS revision recorded by
// the Go toolchain when no version was injected.
func buildVersion(injected string, info *debug.BuildInfo) string {
	if injected != "" && injected != "dev" {
		return injected
	}
	if info == nil {
		return injected
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}

	rev, dirty := "", false
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if rev == "" {
		return injected
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	v := "devel+" + rev
	if dirty {
		v += "+dirty"
	}
	return v
}

func main() {
	info, _ := debug.ReadBuildInfo()
	cmd.SetVersion(buildVersion(Version, info))
	cmd.Execute()
}
