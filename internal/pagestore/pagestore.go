// Package pagestore persists rendered snapshot pages.
package pagestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

// Store writes one named page document and returns where it ended up.
type Store interface {
	Put(ctx context.Context, name string, data []byte) (string, error)
}

// ErrInvalidName rejects names that would escape the store root.
var ErrInvalidName = errors.New("invalid page name")

// Dir stores pages as files below Root. Prepare or the first Put creates
// the directory.
type Dir struct {
	Root string
}

// Prepare creates Root if needed.
func (d Dir) Prepare(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := d.ensureRoot()
	return err
}

func (d Dir) Put(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := checkName(name); err != nil {
		return "", err
	}
	root, err := d.ensureRoot()
	if err != nil {
		return "", err
	}
	if err := writeFileAtomic(root, name, data, 0o644); err != nil {
		return "", fmt.Errorf("write page %s: %w", name, err)
	}
	return filepath.Join(root, name), nil
}

func (d Dir) ensureRoot() (string, error) {
	root, err := filepath.Abs(d.Root)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", fmt.Errorf("create page dir: %w", err)
	}
	return root, nil
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// writeFileAtomic writes through a temp file in dir and renames it over the
// target, so readers never see a partial page.
func writeFileAtomic(dir, name string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil && runtime.GOOS != "windows" {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, filepath.Join(dir, name)); err != nil {
		return err
	}
	syncDirBestEffort(dir)
	return nil
}

func syncDirBestEffort(dir string) {
	if runtime.GOOS == "windows" {
		return
	}
	f, err := os.Open(dir)
	if err != nil {
		return
	}
	defer f.Close()
	_ = f.Sync()
}

// Mirror writes to Primary and then copies the page to each secondary.
// Only the primary result counts; secondary failures are logged.
type Mirror struct {
	Primary     Store
	Secondaries []Store
	Logger      logrus.FieldLogger
}

// Prepare prepares the primary store when it supports it. Secondaries are
// best effort and are not checked.
func (m Mirror) Prepare(ctx context.Context) error {
	if p, ok := m.Primary.(interface{ Prepare(context.Context) error }); ok {
		return p.Prepare(ctx)
	}
	return nil
}

func (m Mirror) Put(ctx context.Context, name string, data []byte) (string, error) {
	loc, err := m.Primary.Put(ctx, name, data)
	if err != nil {
		return "", err
	}
	for _, s := range m.Secondaries {
		mloc, err := s.Put(ctx, name, data)
		if m.Logger == nil {
			continue
		}
		if err != nil {
			m.Logger.WithError(err).WithField("page", name).Warn("mirror write failed")
			continue
		}
		m.Logger.WithFields(logrus.Fields{"page": name, "location": mloc}).Debug("page mirrored")
	}
	return loc, nil
}

// Memory keeps pages in a map. Useful for dry runs and tests.
type Memory struct {
	Pages map[string][]byte
	Order []string
}

func NewMemory() *Memory { return &Memory{Pages: map[string][]byte{}} }

func (m *Memory) Put(_ context.Context, name string, data []byte) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	m.Pages[name] = append([]byte(nil), data...)
	m.Order = append(m.Order, name)
	return "memory://" + name, nil
}

// WriteTo copies every stored page to w in write order, one after another.
func (m *Memory) WriteTo(w io.Writer) (int64, error) {
	var n int64
	for _, name := range m.Order {
		k, err := w.Write(m.Pages[name])
		n += int64(k)
		if err != nil {
			return n, err
		}
	}
	return n, nil
}
