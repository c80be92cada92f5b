package pagestore

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func TestDirPutCreatesRootAndReplaces(t *testing.T) {
	root := filepath.Join(t.TempDir(), "snapshots", "nested")
	d := Dir{Root: root}

	loc, err := d.Put(context.Background(), "a.json", []byte("one"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "a.json"), loc)

	_, err = d.Put(context.Background(), "a.json", []byte("two"))
	require.NoError(t, err)
	b, err := os.ReadFile(loc)
	require.NoError(t, err)
	require.Equal(t, "two", string(b))

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
}

func TestDirPutRejectsTraversal(t *testing.T) {
	d := Dir{Root: t.TempDir()}
	for _, name := range []string{"", "..", "../x.json", "sub/x.json"} {
		_, err := d.Put(context.Background(), name, nil)
		require.ErrorIs(t, err, ErrInvalidName, name)
	}
}

func TestDirPutFailsWhenRootIsAFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "taken")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err := Dir{Root: file}.Put(context.Background(), "a.json", []byte("{}"))
	require.Error(t, err)
}

func TestDirPrepare(t *testing.T) {
	root := filepath.Join(t.TempDir(), "snapshots", "nested")
	require.NoError(t, Dir{Root: root}.Prepare(context.Background()))
	info, err := os.Stat(root)
	require.NoError(t, err)
	require.True(t, info.IsDir())

	file := filepath.Join(t.TempDir(), "taken")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	require.Error(t, Dir{Root: file}.Prepare(context.Background()))
	require.Error(t, Mirror{Primary: Dir{Root: file}}.Prepare(context.Background()))
	require.NoError(t, Mirror{Primary: NewMemory()}.Prepare(context.Background()))
}

type failingStore struct{}

func (failingStore) Put(context.Context, string, []byte) (string, error) {
	return "", errors.New("offline")
}

func TestMirrorIgnoresSecondaryFailures(t *testing.T) {
	logger, hook := test.NewNullLogger()
	primary := NewMemory()
	copyStore := NewMemory()
	m := Mirror{Primary: primary, Secondaries: []Store{failingStore{}, copyStore}, Logger: logger}

	loc, err := m.Put(context.Background(), "p.json", []byte("{}"))
	require.NoError(t, err)
	require.Equal(t, "memory://p.json", loc)
	require.Equal(t, []byte("{}"), copyStore.Pages["p.json"])
	require.Len(t, hook.Entries, 1)
	require.Equal(t, "mirror write failed", hook.LastEntry().Message)
}

func TestMirrorPrimaryFailureIsFatal(t *testing.T) {
	copyStore := NewMemory()
	m := Mirror{Primary: failingStore{}, Secondaries: []Store{copyStore}}
	_, err := m.Put(context.Background(), "p.json", []byte("{}"))
	require.Error(t, err)
	require.Empty(t, copyStore.Pages)
}

func TestMemoryWriteToKeepsOrder(t *testing.T) {
	m := NewMemory()
	_, _ = m.Put(context.Background(), "b.json", []byte("B"))
	_, _ = m.Put(context.Background(), "a.json", []byte("A"))
	var buf bytes.Buffer
	n, err := m.WriteTo(&buf)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
	require.Equal(t, "BA", buf.String())
}
