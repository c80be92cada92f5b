package buildinfo

import (
	"runtime/debug"
	"testing"
)

func withBuildInfo(t *testing.T, settings ...debug.BuildSetting) {
	t.Helper()
	old := readBuildInfo
	oldVersion, oldCommit, oldDate := Version, Commit, Date
	t.Cleanup(func() {
		readBuildInfo = old
		Version, Commit, Date = oldVersion, oldCommit, oldDate
	})
	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Settings: settings}, true
	}
}

func TestSummaryDefaults(t *testing.T) {
	withBuildInfo(t)
	Version, Commit, Date = "", "", ""
	if got := Summary(); got != "dev" {
		t.Fatalf("unexpected summary: %q", got)
	}
}

func TestSummaryUsesEmbeddedRevision(t *testing.T) {
	withBuildInfo(t, debug.BuildSetting{Key: "vcs.revision", Value: "0123456789abcdef"})
	Version, Commit, Date = "1.2.3", "", "2026-02-09"
	if got := Summary(); got != "1.2.3 (commit=0123456, date=2026-02-09)" {
		t.Fatalf("unexpected summary: %q", got)
	}
}

func TestCommitWinsOverEmbeddedRevision(t *testing.T) {
	withBuildInfo(t, debug.BuildSetting{Key: "vcs.revision", Value: "ffffffffff"})
	Commit = "abc"
	if got := Revision(); got != "abc" {
		t.Fatalf("unexpected revision: %q", got)
	}
}
