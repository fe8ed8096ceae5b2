// Package bolt stores the ledger document in a local bbolt file. Meant for
// single-host and development deployments; the revision check runs inside
// one bolt update transaction, which makes the conditional write atomic.
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	bolt "go.etcd.io/bbolt"

	apperrors "github.com/tallybook/backend/internal/domain/errors"
)

const bucketLedgers = "ledgers"

// record is the stored shape of one ledger document.
type record struct {
	Content   string    `json:"content"`
	Revision  int64     `json:"revision"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Remote implements the ledger Remote contract over a bbolt database.
type Remote struct {
	db         *bolt.DB
	ledgerName string
}

// Open opens (creating if needed) the database at path and prepares the
// ledger bucket.
func Open(path, ledgerName string) (*Remote, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketLedgers))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create bucket %s: %w", bucketLedgers, err)
	}

	return &Remote{db: db, ledgerName: ledgerName}, nil
}

// Close closes the database.
func (r *Remote) Close() error {
	return r.db.Close()
}

// Fetch implements ledger.Remote.
func (r *Remote) Fetch(ctx context.Context) (content []byte, version string, exists bool, err error) {
	err = r.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(bucketLedgers)).Get([]byte(r.ledgerName))
		if raw == nil {
			return nil
		}
		var rec record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return apperrors.NewInternalError("could not decode stored ledger record", err)
		}
		content = []byte(rec.Content)
		version = strconv.FormatInt(rec.Revision, 10)
		exists = true
		return nil
	})
	if err != nil {
		if _, ok := err.(apperrors.AppError); ok {
			return nil, "", false, err
		}
		return nil, "", false, apperrors.NewUnavailableError("could not read ledger database", err)
	}
	return content, version, exists, nil
}

// Write implements ledger.Remote. The version check and the put share one
// update transaction.
func (r *Remote) Write(ctx context.Context, content []byte, expectedVersion string) (string, error) {
	var newVersion string
	err := r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketLedgers))

		current := ""
		var revision int64
		if raw := b.Get([]byte(r.ledgerName)); raw != nil {
			var rec record
			if err := json.Unmarshal(raw, &rec); err != nil {
				return apperrors.NewInternalError("could not decode stored ledger record", err)
			}
			revision = rec.Revision
			current = strconv.FormatInt(rec.Revision, 10)
		}
		if expectedVersion != current {
			return apperrors.NewVersionConflictError("ledger changed since fetch")
		}

		rec := record{
			Content:   string(content),
			Revision:  revision + 1,
			UpdatedAt: time.Now().UTC(),
		}
		raw, err := json.Marshal(rec)
		if err != nil {
			return apperrors.NewInternalError("could not encode ledger record", err)
		}
		if err := b.Put([]byte(r.ledgerName), raw); err != nil {
			return err
		}
		newVersion = strconv.FormatInt(rec.Revision, 10)
		return nil
	})
	if err != nil {
		if _, ok := err.(apperrors.AppError); ok {
			return "", err
		}
		return "", apperrors.NewUnavailableError("could not write ledger database", err)
	}
	return newVersion, nil
}
