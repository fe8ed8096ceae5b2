package ledger

import (
	"context"
)

// Remote is the conditional-write contract the ledger document lives behind.
// The concrete transport does not matter to the protocol as long as the
// version check holds.
type Remote interface {
	// Fetch returns the current document content and version token.
	// A resource that does not exist yet is reported with exists false and
	// an empty token, not an error.
	Fetch(ctx context.Context) (content []byte, version string, exists bool, err error)

	// Write stores new content if and only if the resource's current
	// version still equals expectedVersion; the compare and the write must
	// be a single atomic operation on the remote side. An empty
	// expectedVersion asserts the resource does not exist yet. A failed
	// version check is reported as a version-conflict error.
	Write(ctx context.Context, content []byte, expectedVersion string) (newVersion string, err error)
}
