package ledger_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/tallybook/backend/internal/domain/errors"
	"github.com/tallybook/backend/internal/domain/ledger"
	"github.com/tallybook/backend/internal/platform/memory"
)

// mockRemote lets a test script the remote behaviour per call.
type mockRemote struct {
	FetchFn func(ctx context.Context) ([]byte, string, bool, error)
	WriteFn func(ctx context.Context, content []byte, expectedVersion string) (string, error)
}

func (m *mockRemote) Fetch(ctx context.Context) ([]byte, string, bool, error) {
	return m.FetchFn(ctx)
}

func (m *mockRemote) Write(ctx context.Context, content []byte, expectedVersion string) (string, error) {
	return m.WriteFn(ctx, content, expectedVersion)
}

func row(item, amount string) ledger.Row {
	return ledger.Row{
		Date:     "2026-08-28",
		Time:     "14:30",
		Invoice:  "INV-1001",
		Customer: "Lee",
		Item:     item,
		Amount:   decimal.RequireFromString(amount),
		Status:   ledger.StatusPending,
	}
}

func TestStore_FetchMissingResource(t *testing.T) {
	store := ledger.NewStore(memory.NewRemote(), zap.NewNop())

	snapshot, err := store.Fetch(context.Background())
	require.NoError(t, err)
	assert.False(t, snapshot.Exists)
	assert.Empty(t, snapshot.Version)
	assert.Empty(t, snapshot.Rows)
}

func TestStore_FirstAppendCreatesResource(t *testing.T) {
	store := ledger.NewStore(memory.NewRemote(), zap.NewNop())
	ctx := context.Background()

	snapshot, err := store.Fetch(ctx)
	require.NoError(t, err)

	commit, err := store.Append(ctx, snapshot, []ledger.Row{row("shirt", "16.66")})
	require.NoError(t, err)
	assert.Equal(t, "1", commit.Version)
	assert.Equal(t, 1, commit.RowCount)

	snapshot, err = store.Fetch(ctx)
	require.NoError(t, err)
	assert.True(t, snapshot.Exists)
	assert.Equal(t, "1", snapshot.Version)
	require.Len(t, snapshot.Rows, 1)
	assert.Equal(t, "shirt", snapshot.Rows[0].Item)
}

func TestStore_AppendPreservesOrder(t *testing.T) {
	store := ledger.NewStore(memory.NewRemote(), zap.NewNop())
	ctx := context.Background()

	snapshot, err := store.Fetch(ctx)
	require.NoError(t, err)
	_, err = store.Append(ctx, snapshot, []ledger.Row{row("a", "1"), row("b", "2")})
	require.NoError(t, err)

	snapshot, err = store.Fetch(ctx)
	require.NoError(t, err)
	_, err = store.Append(ctx, snapshot, []ledger.Row{row("c", "3")})
	require.NoError(t, err)

	snapshot, err = store.Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, snapshot.Rows, 3)
	assert.Equal(t, "a", snapshot.Rows[0].Item)
	assert.Equal(t, "b", snapshot.Rows[1].Item)
	assert.Equal(t, "c", snapshot.Rows[2].Item)
}

func TestStore_StaleSnapshotLosesTheRace(t *testing.T) {
	remote := memory.NewRemote()
	store := ledger.NewStore(remote, zap.NewNop())
	ctx := context.Background()

	stale, err := store.Fetch(ctx)
	require.NoError(t, err)

	// Another writer commits in between.
	fresh, err := store.Fetch(ctx)
	require.NoError(t, err)
	_, err = store.Append(ctx, fresh, []ledger.Row{row("winner", "1")})
	require.NoError(t, err)

	_, err = store.Append(ctx, stale, []ledger.Row{row("loser", "2")})
	require.Error(t, err)
	assert.True(t, apperrors.IsVersionConflict(err))

	// The losing batch must not have landed.
	snapshot, err := store.Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, snapshot.Rows, 1)
	assert.Equal(t, "winner", snapshot.Rows[0].Item)
}

func TestStore_DeleteByPosition(t *testing.T) {
	store := ledger.NewStore(memory.NewRemote(), zap.NewNop())
	ctx := context.Background()

	snapshot, err := store.Fetch(ctx)
	require.NoError(t, err)
	_, err = store.Append(ctx, snapshot, []ledger.Row{row("a", "1"), row("b", "2"), row("c", "3")})
	require.NoError(t, err)

	snapshot, err = store.Fetch(ctx)
	require.NoError(t, err)
	commit, err := store.Delete(ctx, snapshot, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, commit.RowCount)

	snapshot, err = store.Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, snapshot.Rows, 2)
	assert.Equal(t, "a", snapshot.Rows[0].Item)
	assert.Equal(t, "c", snapshot.Rows[1].Item)
}

func TestStore_DeleteOutOfRange(t *testing.T) {
	store := ledger.NewStore(memory.NewRemote(), zap.NewNop())
	ctx := context.Background()

	snapshot, err := store.Fetch(ctx)
	require.NoError(t, err)
	_, err = store.Append(ctx, snapshot, []ledger.Row{row("a", "1")})
	require.NoError(t, err)

	snapshot, err = store.Fetch(ctx)
	require.NoError(t, err)

	for _, position := range []int{-1, 1, 99} {
		_, err = store.Delete(ctx, snapshot, position)
		require.Error(t, err, "position %d", position)
		assert.ErrorIs(t, err, apperrors.NewNotFoundError(""))
	}
}

func TestStore_AppendNothing(t *testing.T) {
	store := ledger.NewStore(memory.NewRemote(), zap.NewNop())

	_, err := store.Append(context.Background(), &ledger.Snapshot{}, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestStore_BadRowNeverReachesRemote(t *testing.T) {
	writes := 0
	remote := &mockRemote{
		FetchFn: func(ctx context.Context) ([]byte, string, bool, error) {
			return nil, "", false, nil
		},
		WriteFn: func(ctx context.Context, content []byte, expectedVersion string) (string, error) {
			writes++
			return "1", nil
		},
	}
	store := ledger.NewStore(remote, zap.NewNop())
	ctx := context.Background()

	snapshot, err := store.Fetch(ctx)
	require.NoError(t, err)

	bad := row("first\nsecond", "1")
	_, err = store.Append(ctx, snapshot, []ledger.Row{row("ok", "1"), bad})
	require.Error(t, err)
	assert.True(t, apperrors.IsEncoding(err))
	assert.Zero(t, writes)
}

func TestStore_FetchSurfacesCorruptContent(t *testing.T) {
	remote := &mockRemote{
		FetchFn: func(ctx context.Context) ([]byte, string, bool, error) {
			return []byte("not,the,ledger,header,at,all,x\n"), "7", true, nil
		},
	}
	store := ledger.NewStore(remote, zap.NewNop())

	_, err := store.Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsEncoding(err))
}
