package ledger

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	apperrors "github.com/tallybook/backend/internal/domain/errors"
)

// Store implements the optimistic-concurrency read-modify-write protocol
// over a Remote. Every mutation is built from a snapshot the caller fetched
// immediately beforehand and is submitted conditioned on that snapshot's
// version token; a losing writer gets a version-conflict error and must
// start over from a fresh Fetch. The store never retries on its own.
type Store struct {
	remote Remote
	logger *zap.Logger
}

// NewStore creates a store over the given remote resource.
func NewStore(remote Remote, logger *zap.Logger) *Store {
	return &Store{
		remote: remote,
		logger: logger,
	}
}

// Fetch retrieves the current ledger snapshot. A remote resource that does
// not exist yet comes back as an empty snapshot with an empty version token,
// signalling create-on-first-commit.
func (s *Store) Fetch(ctx context.Context) (*Snapshot, error) {
	content, version, exists, err := s.remote.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if !exists {
		return &Snapshot{}, nil
	}
	rows, err := Decode(content)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Rows: rows, Version: version, Exists: true}, nil
}

// Append commits snapshot.Rows ++ rows, preserving order, conditioned on the
// snapshot's version token. Rows that cannot be safely serialized are
// rejected before the remote write is attempted.
func (s *Store) Append(ctx context.Context, snapshot *Snapshot, rows []Row) (*CommitResult, error) {
	if len(rows) == 0 {
		return nil, apperrors.NewValidationError("no rows to append")
	}
	if err := ValidateRows(rows); err != nil {
		return nil, err
	}

	candidate := make([]Row, 0, len(snapshot.Rows)+len(rows))
	candidate = append(candidate, snapshot.Rows...)
	candidate = append(candidate, rows...)
	return s.commit(ctx, snapshot, candidate)
}

// Delete commits the snapshot content with the row at position removed,
// conditioned on the snapshot's version token.
func (s *Store) Delete(ctx context.Context, snapshot *Snapshot, position int) (*CommitResult, error) {
	if position < 0 || position >= len(snapshot.Rows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no ledger row at position %d", position))
	}

	candidate := make([]Row, 0, len(snapshot.Rows)-1)
	candidate = append(candidate, snapshot.Rows[:position]...)
	candidate = append(candidate, snapshot.Rows[position+1:]...)
	return s.commit(ctx, snapshot, candidate)
}

func (s *Store) commit(ctx context.Context, snapshot *Snapshot, candidate []Row) (*CommitResult, error) {
	content, err := Encode(candidate)
	if err != nil {
		return nil, err
	}

	version, err := s.remote.Write(ctx, content, snapshot.Version)
	if err != nil {
		if apperrors.IsVersionConflict(err) {
			s.logger.Warn("ledger commit rejected, version changed since fetch",
				zap.String("staleVersion", snapshot.Version))
		}
		return nil, err
	}

	return &CommitResult{Version: version, RowCount: len(candidate)}, nil
}
