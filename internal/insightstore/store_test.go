package insightstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/flarebyte/nebula/internal/insight"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := Open(filepath.Join(t.TempDir(), "cache", "insights.db"))
	require.NoError(t, err)
	defer s.Close()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Put(ctx, "k1", insight.New([]string{"a", "b"}, "cap")))
	require.NoError(t, s.Put(ctx, "k1", insight.New([]string{"c"}, "")))

	in, ok, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []string{"c"}, in.Highlights)
	require.Empty(t, in.Caption)
}

func TestStoreReopenAndPrune(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "insights.db")
	s, err := Open(path)
	require.NoError(t, err)
	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return old }
	require.NoError(t, s.Put(ctx, "old", insight.New([]string{"x"}, "")))
	s.now = func() time.Time { return old.Add(48 * time.Hour) }
	require.NoError(t, s.Put(ctx, "new", nil))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	n, err := s.Prune(ctx, old.Add(24*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	_, ok, err := s.Get(ctx, "old")
	require.NoError(t, err)
	require.False(t, ok)
	in, ok, err := s.Get(ctx, "new")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, in.Empty())
}
