// Package events defines the commit-event contract the ledger service emits
// on. Publishing is best-effort and never blocks a commit from succeeding.
package events

import (
	"context"
	"time"
)

// CommitEvent records one successful ledger commit.
type CommitEvent struct {
	EventID     string    `json:"event_id"`
	Ledger      string    `json:"ledger"`
	BatchID     string    `json:"batch_id,omitempty"`
	Operation   string    `json:"operation"`
	RowCount    int       `json:"row_count"`
	NetTotal    string    `json:"net_total,omitempty"`
	Version     string    `json:"version"`
	CommittedAt time.Time `json:"committed_at"`
}

// Commit operations.
const (
	OperationAppend = "append"
	OperationDelete = "delete"
)

// Publisher emits commit events to an external stream.
type Publisher interface {
	Publish(ctx context.Context, event CommitEvent) error
}

// NoopPublisher discards every event. Used when no broker is configured.
type NoopPublisher struct{}

// Publish implements Publisher.
func (NoopPublisher) Publish(ctx context.Context, event CommitEvent) error {
	return nil
}
