package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// compileCUE loads and compiles a CUE file at the given path.
func compileCUE(path string) (cue.Value, error) {
	if filepath.Ext(path) != ".cue" {
		return cue.Value{}, errors.New("unsupported config format: expected .cue")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cue.Value{}, fmt.Errorf("failed to read config: %w", err)
	}
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data)
	if err := v.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("invalid config: %v", err)
	}
	return v, nil
}

func lookup(v cue.Value, path string) (cue.Value, bool) {
	f := v.LookupPath(cue.ParsePath(path))
	return f, f.Exists()
}

func lookupString(v cue.Value, path string) (string, bool, error) {
	f, ok := lookup(v, path)
	if !ok {
		return "", false, nil
	}
	if f.Kind() != cue.StringKind {
		return "", false, fmt.Errorf("invalid type for field: %s (expected string)", path)
	}
	var s string
	if err := f.Decode(&s); err != nil {
		return "", false, fmt.Errorf("invalid value for %s: %v", path, err)
	}
	return s, true, nil
}

func lookupInt(v cue.Value, path string) (int, bool, error) {
	f, ok := lookup(v, path)
	if !ok {
		return 0, false, nil
	}
	if f.Kind() != cue.IntKind {
		return 0, false, fmt.Errorf("invalid type for field: %s (expected int)", path)
	}
	var n int
	if err := f.Decode(&n); err != nil {
		return 0, false, fmt.Errorf("invalid value for %s: %v", path, err)
	}
	return n, true, nil
}

func lookupBool(v cue.Value, path string) (bool, bool, error) {
	f, ok := lookup(v, path)
	if !ok {
		return false, false, nil
	}
	if f.Kind() != cue.BoolKind {
		return false, false, fmt.Errorf("invalid type for field: %s (expected bool)", path)
	}
	var b bool
	if err := f.Decode(&b); err != nil {
		return false, false, fmt.Errorf("invalid value for %s: %v", path, err)
	}
	return b, true, nil
}

func lookupStrings(v cue.Value, path string) ([]string, bool, error) {
	f, ok := lookup(v, path)
	if !ok {
		return nil, false, nil
	}
	if f.Kind() != cue.ListKind {
		return nil, false, fmt.Errorf("invalid type for field: %s (expected list of strings)", path)
	}
	var out []string
	if err := f.Decode(&out); err != nil {
		return nil, false, fmt.Errorf("invalid value for %s: %v", path, err)
	}
	return out, true, nil
}

func lookupStringMap(v cue.Value, path string) (map[string]string, bool, error) {
	f, ok := lookup(v, path)
	if !ok {
		return nil, false, nil
	}
	if f.Kind() != cue.StructKind {
		return nil, false, fmt.Errorf("invalid type for field: %s (expected struct of strings)", path)
	}
	var out map[string]string
	if err := f.Decode(&out); err != nil {
		return nil, false, fmt.Errorf("invalid value for %s: %v", path, err)
	}
	return out, true, nil
}
