// Package ledger owns the shared ledger document: its row model, the
// delimited-text serialization, and the read-modify-write protocol against a
// version-stamped remote resource.
package ledger

import (
	"github.com/shopspring/decimal"
)

// Status tags how a row is being handled. The set is open-ended: these are
// the values the input form offers, but unknown tags round-trip untouched.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusDone     Status = "Done"
	StatusExchange Status = "Exchange"
	StatusRebate   Status = "Rebate"
	StatusOverpaid Status = "Overpaid"
)

// Row is one ledger entry. Rows are immutable once created; the only way to
// remove one is an explicit delete by position against the snapshot it
// belongs to. A positive amount is a charge, a negative amount a refund.
type Row struct {
	Date     string          `json:"date"`
	Time     string          `json:"time,omitempty"`
	Invoice  string          `json:"invoice"`
	Customer string          `json:"customer"`
	Item     string          `json:"item"`
	Amount   decimal.Decimal `json:"amount"`
	Status   Status          `json:"status"`
}

// Snapshot is the full ordered ledger content together with the opaque
// version token it was read at. A snapshot is fetched fresh before every
// mutation and discarded once the mutation commits or fails; it is never
// mutated in place.
type Snapshot struct {
	Rows []Row
	// Version is the remote resource's version token. Empty means the
	// resource does not exist yet and the first commit creates it.
	Version string
	Exists  bool
}

// CommitResult reports a successful conditional write.
type CommitResult struct {
	Version  string `json:"version"`
	RowCount int    `json:"rowCount"`
}
