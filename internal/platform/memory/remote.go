// Package memory provides an in-process implementation of the ledger Remote
// contract. It is the reference implementation of the conditional-write
// semantics and the backend the tests run against.
package memory

import (
	"context"
	"strconv"
	"sync"

	apperrors "github.com/tallybook/backend/internal/domain/errors"
)

// Remote holds the ledger document in memory behind a mutex so the
// compare-and-write is atomic.
type Remote struct {
	mu       sync.Mutex
	content  []byte
	revision int64
	exists   bool
}

// NewRemote creates an empty remote: the resource does not exist until the
// first successful write.
func NewRemote() *Remote {
	return &Remote{}
}

// Fetch implements ledger.Remote.
func (r *Remote) Fetch(ctx context.Context) ([]byte, string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.exists {
		return nil, "", false, nil
	}
	content := make([]byte, len(r.content))
	copy(content, r.content)
	return content, strconv.FormatInt(r.revision, 10), true, nil
}

// Write implements ledger.Remote.
func (r *Remote) Write(ctx context.Context, content []byte, expectedVersion string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := ""
	if r.exists {
		current = strconv.FormatInt(r.revision, 10)
	}
	if expectedVersion != current {
		return "", apperrors.NewVersionConflictError("ledger changed since fetch")
	}

	r.content = make([]byte, len(content))
	copy(r.content, content)
	r.revision++
	r.exists = true
	return strconv.FormatInt(r.revision, 10), nil
}
