package version

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/flarebyte/nebula/internal/buildinfo"
)

func runVersion(t *testing.T, short, asJSON bool) (string, string) {
	t.Helper()
	oldVersion, oldCommit, oldDate := buildinfo.Version, buildinfo.Commit, buildinfo.Date
	oldShort, oldJSON := flagShort, flagJSON
	defer func() {
		buildinfo.Version, buildinfo.Commit, buildinfo.Date = oldVersion, oldCommit, oldDate
		flagShort, flagJSON = oldShort, oldJSON
		VersionCmd.SetOut(nil)
		VersionCmd.SetErr(nil)
	}()

	buildinfo.Version = ""
	buildinfo.Commit = ""
	buildinfo.Date = ""
	flagShort = short
	flagJSON = asJSON

	var stdout, stderr bytes.Buffer
	VersionCmd.SetOut(&stdout)
	VersionCmd.SetErr(&stderr)
	if err := VersionCmd.RunE(VersionCmd, nil); err != nil {
		t.Fatalf("run: %v", err)
	}
	return stdout.String(), stderr.String()
}

func TestVersionDefaultOutputStable(t *testing.T) {
	got, _ := runVersion(t, false, false)
	if got != "nebula dev\n" {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestVersionShortWinsOverJSON(t *testing.T) {
	got, _ := runVersion(t, true, true)
	if got != "nebula dev\n" {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestVersionJSON(t *testing.T) {
	stdout, stderr := runVersion(t, false, true)
	var out map[string]any
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("decode: %v (%q)", err, stdout)
	}
	for _, k := range []string{"version", "commit", "date", "go", "go_os", "go_arch", "timestamp"} {
		if _, ok := out[k]; !ok {
			t.Fatalf("missing key %q in %v", k, out)
		}
	}
	if stderr != "nebula version: dev\n" {
		t.Fatalf("unexpected stderr: %q", stderr)
	}
}
