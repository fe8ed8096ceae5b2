// Package recorder provides the use-case layer: it runs a paste through the
// batch ingestor and commits the result to the shared ledger.
package recorder

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tallybook/backend/internal/common/utils"
	"github.com/tallybook/backend/internal/domain/batch"
	apperrors "github.com/tallybook/backend/internal/domain/errors"
	"github.com/tallybook/backend/internal/domain/events"
	"github.com/tallybook/backend/internal/domain/ledger"
)

// Service ties the ingestor, the ledger store and the event publisher
// together. It holds no mutable state between calls.
type Service struct {
	ingestor   *batch.Ingestor
	store      *ledger.Store
	publisher  events.Publisher
	logger     *zap.Logger
	ledgerName string
}

// NewService creates a recorder service for one named ledger.
func NewService(ingestor *batch.Ingestor, store *ledger.Store, publisher events.Publisher, logger *zap.Logger, ledgerName string) *Service {
	return &Service{
		ingestor:   ingestor,
		store:      store,
		publisher:  publisher,
		logger:     logger,
		ledgerName: ledgerName,
	}
}

// SubmitResult is the outcome of one paste submission. Committed is false
// when the batch produced no rows, in which case the ledger was not touched.
type SubmitResult struct {
	BatchID  string
	Rows     []ledger.Row
	NetTotal decimal.Decimal
	Failures []batch.LineFailure

	Committed bool
	Version   string
}

// SubmitBatch ingests a paste and appends the parsed rows to the ledger.
// The snapshot is fetched immediately before the candidate content is built
// to keep the version-conflict window as small as possible; on a conflict
// the typed error is returned for the caller to re-fetch and retry.
func (s *Service) SubmitBatch(ctx context.Context, raw string, bctx batch.Context) (*SubmitResult, error) {
	if err := utils.ValidateRequiredString(bctx.Invoice, "invoice"); err != nil {
		return nil, err
	}
	if err := utils.ValidateRequiredString(bctx.Customer, "customer"); err != nil {
		return nil, err
	}
	if bctx.Status == "" {
		bctx.Status = ledger.StatusPending
	}
	if bctx.Timestamp.IsZero() {
		bctx.Timestamp = time.Now()
	}

	result := s.ingestor.Ingest(raw, bctx)
	submit := &SubmitResult{
		BatchID:  result.BatchID,
		Rows:     result.Rows,
		NetTotal: result.NetTotal,
		Failures: result.Failures,
	}

	if len(result.Rows) == 0 {
		// Nothing parsed; there may still be failures to report, but there
		// is no commit to attempt.
		return submit, nil
	}

	snapshot, err := s.store.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	commit, err := s.store.Append(ctx, snapshot, result.Rows)
	if err != nil {
		return nil, err
	}

	submit.Committed = true
	submit.Version = commit.Version
	s.logger.Info("batch committed",
		zap.String("batchId", result.BatchID),
		zap.Int("rows", len(result.Rows)),
		zap.Int("failures", len(result.Failures)),
		zap.String("netTotal", result.NetTotal.String()),
		zap.String("version", commit.Version))

	s.publish(ctx, events.CommitEvent{
		EventID:     uuid.NewString(),
		Ledger:      s.ledgerName,
		BatchID:     result.BatchID,
		Operation:   events.OperationAppend,
		RowCount:    len(result.Rows),
		NetTotal:    result.NetTotal.String(),
		Version:     commit.Version,
		CommittedAt: time.Now().UTC(),
	})
	return submit, nil
}

// Ledger returns the current ledger snapshot for display. The version token
// in the snapshot is what clients send back as a precondition on deletes.
func (s *Service) Ledger(ctx context.Context) (*ledger.Snapshot, error) {
	return s.store.Fetch(ctx)
}

// DeleteRow removes the row at position. expectedVersion is the token the
// client last saw; when set, a mismatch with the freshly fetched snapshot is
// a version conflict, because the position may point at a different row now.
func (s *Service) DeleteRow(ctx context.Context, position int, expectedVersion string) (*ledger.CommitResult, error) {
	snapshot, err := s.store.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if expectedVersion != "" && expectedVersion != snapshot.Version {
		return nil, apperrors.NewVersionConflictError("ledger changed since it was last read")
	}

	commit, err := s.store.Delete(ctx, snapshot, position)
	if err != nil {
		return nil, err
	}

	s.logger.Info("row deleted",
		zap.Int("position", position),
		zap.String("version", commit.Version))

	s.publish(ctx, events.CommitEvent{
		EventID:     uuid.NewString(),
		Ledger:      s.ledgerName,
		Operation:   events.OperationDelete,
		RowCount:    commit.RowCount,
		Version:     commit.Version,
		CommittedAt: time.Now().UTC(),
	})
	return commit, nil
}

// ExportCSV returns the ledger in its document format together with the
// version it was read at.
func (s *Service) ExportCSV(ctx context.Context) (content []byte, version string, err error) {
	snapshot, err := s.store.Fetch(ctx)
	if err != nil {
		return nil, "", err
	}
	content, err = ledger.Encode(snapshot.Rows)
	if err != nil {
		return nil, "", err
	}
	return content, snapshot.Version, nil
}

func (s *Service) publish(ctx context.Context, event events.CommitEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		// The commit already happened; a lost event must not fail it.
		s.logger.Warn("could not publish commit event",
			zap.String("eventId", event.EventID),
			zap.Error(err))
	}
}
