package version

import (
	"strings"
	"testing"
)

func saveAndRestore() func() {
	origVersion, origCommit, origBranch, origBuildTime, origGoVersion :=
		Version, GitCommit, GitBranch, BuildTime, GoVersion
	return func() {
		Version = origVersion
		GitCommit = origCommit
		GitBranch = origBranch
		BuildTime = origBuildTime
		GoVersion = origGoVersion
	}
}

func TestGetVersionInfoDefaults(t *testing.T) {
	defer saveAndRestore()()
	Version = "dev"
	GitCommit = ""
	GitBranch = ""
	BuildTime = ""
	GoVersion = ""

	info := GetVersionInfo()
	if info == nil {
		t.Fatal("expected non-nil Info")
	}
	if info.Version != "dev" {
		t.Errorf("expected version 'dev', got %q", info.Version)
	}
	if info.IsRelease {
		t.Error("dev should not be a release")
	}
	if info.BuildDate.IsZero() {
		t.Error("expected a build date fallback")
	}
}

func TestGetVersionInfoRelease(t *testing.T) {
	defer saveAndRestore()()
	Version = "1.2.3"
	BuildTime = "2026-01-15T10:00:00Z"

	info := GetVersionInfo()
	if !info.IsRelease {
		t.Error("expected release for tagged version")
	}
	if info.BuildDate.Year() != 2026 {
		t.Errorf("expected parsed build date, got %v", info.BuildDate)
	}
}

func TestGetShortVersion(t *testing.T) {
	defer saveAndRestore()()
	Version = "1.2.3"
	GitCommit = "abc1234"

	short := GetShortVersion()
	if !strings.HasPrefix(short, "1.2.3-") {
		t.Errorf("expected short version with commit suffix, got %q", short)
	}
}
