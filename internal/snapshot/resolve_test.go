package snapshot

import (
	"errors"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"testing"

	"github.com/flarebyte/nebula/internal/testutil"
)

func canon(t *testing.T, p string) string {
	t.Helper()
	r, err := filepath.EvalSymlinks(p)
	if err != nil {
		t.Fatalf("eval %s: %v", p, err)
	}
	return r
}

func TestResolveAbsoluteDirectory(t *testing.T) {
	dir := t.TempDir()
	got, err := Resolve(dir)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != canon(t, dir) {
		t.Fatalf("got %q want %q", got, canon(t, dir))
	}
}

func TestResolveFailures(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{"file.txt": "x"})
	cases := []struct {
		name string
		path string
		want error
	}{
		{"missing", filepath.Join(dir, "nope"), ErrPathNotFound},
		{"file", filepath.Join(dir, "file.txt"), ErrNotADirectory},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Resolve(tc.path)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestResolveFollowsSymlink(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{"real/": ""})
	link := filepath.Join(dir, "link")
	if err := os.Symlink(filepath.Join(dir, "real"), link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	got, err := Resolve(link)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != canon(t, filepath.Join(dir, "real")) {
		t.Fatalf("got %q", got)
	}
}

func TestResolveHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	testutil.WriteTree(t, home, map[string]string{"docs/": ""})
	got, err := Resolve("~/docs")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != canon(t, filepath.Join(home, "docs")) {
		t.Fatalf("got %q", got)
	}
}

func TestResolveNamedUserHome(t *testing.T) {
	u, err := user.Current()
	if err != nil || u.Username == "" || strings.ContainsAny(u.Username, `/\`) {
		t.Skip("current user unavailable")
	}
	if info, err := os.Stat(u.HomeDir); err != nil || !info.IsDir() {
		t.Skip("home directory unavailable")
	}
	got, err := Resolve("~" + u.Username)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != canon(t, u.HomeDir) {
		t.Fatalf("got %q, want %q", got, u.HomeDir)
	}

	_, err = Resolve("~nebula-no-such-user-7f3a/docs")
	if !errors.Is(err, ErrPathNotFound) {
		t.Fatalf("unknown user: expected ErrPathNotFound, got %v", err)
	}
}

func TestResolverConfinedToRoot(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{"shared/": ""})
	r := Resolver{Root: root}

	got, err := r.Resolve("shared")
	if err != nil {
		t.Fatalf("resolve relative: %v", err)
	}
	if got != canon(t, filepath.Join(root, "shared")) {
		t.Fatalf("got %q", got)
	}

	got, err = r.Resolve("")
	if err != nil || got != canon(t, root) {
		t.Fatalf("empty path should be the root, got %q, %v", got, err)
	}

	if _, err := r.Resolve("../escape"); !errors.Is(err, ErrOutsideRoot) {
		t.Fatalf("expected ErrOutsideRoot, got %v", err)
	}

	if err := os.Symlink(outside, filepath.Join(root, "out")); err == nil {
		if _, err := r.Resolve("out"); !errors.Is(err, ErrOutsideRoot) {
			t.Fatalf("symlink escape: expected ErrOutsideRoot, got %v", err)
		}
	}

	// Absolute paths are not confined.
	if _, err := r.Resolve(outside); err != nil {
		t.Fatalf("absolute path: %v", err)
	}
}

func TestErrorMessageIsSingleLine(t *testing.T) {
	err := newError(ErrAccessDenied, "a/b", errors.New("line one\n  line two"))
	if got := err.Error(); got != "access denied: a/b: line one line two" {
		t.Fatalf("unexpected message: %q", got)
	}
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("kind not matched")
	}
}
