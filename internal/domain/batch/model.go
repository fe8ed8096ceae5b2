// Package batch drives the line parser over a multi-line paste and
// assembles the resulting ledger rows.
package batch

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tallybook/backend/internal/domain/ledger"
)

// Context carries the operator-supplied fields stamped onto every row of a
// batch. The core holds no session state of its own; everything contextual
// comes in through this record.
type Context struct {
	Invoice       string
	Customer      string
	Status        ledger.Status
	ForceNegative bool
	Timestamp     time.Time
}

// LineFailure reports one input line that could not be parsed. Failures are
// collected, never fatal: the rest of the batch still goes through.
type LineFailure struct {
	Line   string `json:"line"`
	Reason string `json:"reason"`
}

// Result is the outcome of ingesting one paste. Rows preserve input line
// order and NetTotal is the exact decimal sum of the row amounts.
type Result struct {
	BatchID  string
	Rows     []ledger.Row
	NetTotal decimal.Decimal
	Failures []LineFailure
}

// Empty reports a batch with nothing to submit and nothing to report:
// every input line was blank.
func (r *Result) Empty() bool {
	return len(r.Rows) == 0 && len(r.Failures) == 0
}
