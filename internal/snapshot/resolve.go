package snapshot

import (
	"errors"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"
)

// Resolve expands a leading "~", makes raw absolute against the working
// directory, follows symlinks and requires the result to be a directory.
func Resolve(raw string) (string, error) {
	return Resolver{}.Resolve(raw)
}

// Resolver resolves caller-supplied paths, optionally confined to Root.
//
// With a Root, an empty path means Root itself and relative paths are joined
// onto Root and must stay inside it. Absolute paths are taken as given.
type Resolver struct {
	Root string
}

// Resolve returns the canonical absolute directory for raw.
func (r Resolver) Resolve(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	expanded, err := expandHome(raw)
	if err != nil {
		return "", newError(ErrPathNotFound, raw, err)
	}

	var candidate string
	confined := false
	switch {
	case r.Root != "" && expanded == "":
		root, err := r.root()
		if err != nil {
			return "", err
		}
		return root, nil
	case filepath.IsAbs(expanded):
		candidate = filepath.Clean(expanded)
	case r.Root != "":
		root, err := r.root()
		if err != nil {
			return "", err
		}
		clean := filepath.Clean(expanded)
		if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
			return "", newError(ErrOutsideRoot, raw, nil)
		}
		candidate = filepath.Join(root, clean)
		confined = true
	default:
		if expanded == "" {
			expanded = "."
		}
		abs, err := filepath.Abs(expanded)
		if err != nil {
			return "", newError(ErrPathNotFound, raw, err)
		}
		candidate = abs
	}

	resolved, err := canonicalDir(candidate)
	if err != nil {
		return "", err
	}
	if confined {
		root, _ := r.root()
		if !hasPathPrefix(resolved, root) {
			return "", newError(ErrOutsideRoot, raw, nil)
		}
	}
	return resolved, nil
}

func (r Resolver) root() (string, error) {
	expanded, err := expandHome(r.Root)
	if err != nil {
		return "", newError(ErrPathNotFound, r.Root, err)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", newError(ErrPathNotFound, r.Root, err)
	}
	return canonicalDir(abs)
}

func canonicalDir(p string) (string, error) {
	resolved, err := filepath.EvalSymlinks(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", newError(ErrPathNotFound, p, nil)
		}
		return "", newError(ErrAccessDenied, p, err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", newError(ErrPathNotFound, p, nil)
		}
		return "", newError(ErrAccessDenied, p, err)
	}
	if !info.IsDir() {
		return "", newError(ErrNotADirectory, p, nil)
	}
	return resolved, nil
}

// expandHome expands "~" and "~/..." to the current user's home and
// "~name" and "~name/..." to the home of user name.
func expandHome(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	name, rest := p[1:], ""
	if i := strings.IndexAny(name, `/`+string(filepath.Separator)); i >= 0 {
		name, rest = name[:i], name[i+1:]
	}

	var home string
	if name == "" {
		h, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		home = h
	} else {
		u, err := user.Lookup(name)
		if err != nil {
			return "", err
		}
		home = u.HomeDir
	}
	if rest == "" {
		return home, nil
	}
	return filepath.Join(home, rest), nil
}

func hasPathPrefix(path, root string) bool {
	path = filepath.Clean(path)
	root = filepath.Clean(root)
	if runtime.GOOS == "windows" {
		path = strings.ToLower(path)
		root = strings.ToLower(root)
	}
	if path == root {
		return true
	}
	sep := string(os.PathSeparator)
	if !strings.HasSuffix(root, sep) {
		root += sep
	}
	return strings.HasPrefix(path, root)
}
