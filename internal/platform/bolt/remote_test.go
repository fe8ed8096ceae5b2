package bolt

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tallybook/backend/internal/domain/errors"
)

func openRemote(t *testing.T) *Remote {
	t.Helper()

	r, err := Open(filepath.Join(t.TempDir(), "tallybook.db"), "main")
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func TestRemote_FetchMissing(t *testing.T) {
	r := openRemote(t)

	content, version, exists, err := r.Fetch(context.Background())
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Empty(t, version)
	assert.Empty(t, content)
}

func TestRemote_CreateThenFetch(t *testing.T) {
	r := openRemote(t)
	ctx := context.Background()

	version, err := r.Write(ctx, []byte("hello"), "")
	require.NoError(t, err)
	assert.Equal(t, "1", version)

	content, version, exists, err := r.Fetch(ctx)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "1", version)
	assert.Equal(t, "hello", string(content))
}

func TestRemote_ConditionalWrite(t *testing.T) {
	r := openRemote(t)
	ctx := context.Background()

	_, err := r.Write(ctx, []byte("v1"), "")
	require.NoError(t, err)

	version, err := r.Write(ctx, []byte("v2"), "1")
	require.NoError(t, err)
	assert.Equal(t, "2", version)

	// Stale token loses.
	_, err = r.Write(ctx, []byte("v3"), "1")
	require.Error(t, err)
	assert.True(t, apperrors.IsVersionConflict(err))

	// Creating over an existing resource loses too.
	_, err = r.Write(ctx, []byte("v3"), "")
	require.Error(t, err)
	assert.True(t, apperrors.IsVersionConflict(err))

	content, version, _, err := r.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2", version)
	assert.Equal(t, "v2", string(content))
}

func TestRemote_LedgersAreIsolated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tallybook.db")

	a, err := Open(path, "store-a")
	require.NoError(t, err)
	ctx := context.Background()

	_, err = a.Write(ctx, []byte("a-content"), "")
	require.NoError(t, err)
	require.NoError(t, a.Close())

	b, err := Open(path, "store-b")
	require.NoError(t, err)
	defer func() { _ = b.Close() }()

	_, _, exists, err := b.Fetch(ctx)
	require.NoError(t, err)
	assert.False(t, exists)
}
