package version

import (
	"runtime/debug"
	"testing"
)

func TestResolvePrefersLdflags(t *testing.T) {
	t.Parallel()

	bi := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.9.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "ffffffffffffffffffff"},
		},
	}
	info := resolve("v1.2.0", "0123456789abcdef", "", bi)
	if info.Version != "v1.2.0" {
		t.Fatalf("version: got %q want %q", info.Version, "v1.2.0")
	}
	if got := info.String(); got != "v1.2.0 (0123456789ab)" {
		t.Fatalf("string: got %q", got)
	}
}

func TestResolveFallsBackToBuildInfo(t *testing.T) {
	t.Parallel()

	bi := &debug.BuildInfo{
		Main: debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	}
	info := resolve("", "", "", bi)
	if info.Version != "dev" || info.Commit != "abc123" || info.BuildTime != "2026-01-02T03:04:05Z" {
		t.Fatalf("info: got %+v", info)
	}
	if resolve("", "", "", nil).String() != "dev" {
		t.Fatalf("expected dev without build info")
	}
}
