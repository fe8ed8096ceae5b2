package batch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallybook/backend/internal/domain/ledger"
	"github.com/tallybook/backend/internal/domain/parse"
)

func newIngestor() *Ingestor {
	return NewIngestor(parse.NewParser(), parse.NewInferencer(parse.DefaultKeywords))
}

func testContext() Context {
	return Context{
		Invoice:   "INV-1001",
		Customer:  "黄小明",
		Status:    ledger.StatusPending,
		Timestamp: time.Date(2026, 8, 28, 14, 30, 0, 0, time.UTC),
	}
}

func TestIngest_StampsContextOntoEveryRow(t *testing.T) {
	result := newIngestor().Ingest("T044 TSHIRT RM16.66\nKeychain RM5 x3", testContext())

	require.Len(t, result.Rows, 2)
	require.Empty(t, result.Failures)
	assert.NotEmpty(t, result.BatchID)

	for _, row := range result.Rows {
		assert.Equal(t, "2026-08-28", row.Date)
		assert.Equal(t, "14:30", row.Time)
		assert.Equal(t, "INV-1001", row.Invoice)
		assert.Equal(t, "黄小明", row.Customer)
		assert.Equal(t, ledger.StatusPending, row.Status)
	}
	assert.Equal(t, "T044 TSHIRT", result.Rows[0].Item)
	assert.Equal(t, "16.66", result.Rows[0].Amount.String())
	assert.Equal(t, "Keychain", result.Rows[1].Item)
	assert.Equal(t, "15", result.Rows[1].Amount.String())
}

func TestIngest_PreservesLineOrderAndSkipsBlanks(t *testing.T) {
	raw := "\n  first RM1  \n\n\t\nsecond RM2\nthird RM3\n\n"
	result := newIngestor().Ingest(raw, testContext())

	require.Len(t, result.Rows, 3)
	assert.Equal(t, "first", result.Rows[0].Item)
	assert.Equal(t, "second", result.Rows[1].Item)
	assert.Equal(t, "third", result.Rows[2].Item)
	assert.Empty(t, result.Failures)
}

func TestIngest_CollectsFailuresWithoutAborting(t *testing.T) {
	raw := "T044 TSHIRT RM16.66\ngarbled###\nKeychain RM5"
	result := newIngestor().Ingest(raw, testContext())

	require.Len(t, result.Rows, 2)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "garbled###", result.Failures[0].Line)
	assert.Equal(t, "unparsable", result.Failures[0].Reason)
}

func TestIngest_NetTotalIsExactDecimalSum(t *testing.T) {
	raw := "a 0.1\nb 0.2\nrefund c 0.05"
	result := newIngestor().Ingest(raw, testContext())

	require.Len(t, result.Rows, 3)
	assert.Equal(t, "0.25", result.NetTotal.String())
}

func TestIngest_RefundModeForcesNegative(t *testing.T) {
	bctx := testContext()
	bctx.ForceNegative = true
	result := newIngestor().Ingest("T044 TSHIRT RM16.66\nKeychain RM5", bctx)

	require.Len(t, result.Rows, 2)
	assert.Equal(t, "-16.66", result.Rows[0].Amount.String())
	assert.Equal(t, "-5", result.Rows[1].Amount.String())
	assert.Equal(t, "-21.66", result.NetTotal.String())
}

func TestIngest_KeywordLinesGoNegative(t *testing.T) {
	result := newIngestor().Ingest("退款 RM50\nT044 TSHIRT RM16.66", testContext())

	require.Len(t, result.Rows, 2)
	assert.Equal(t, "-50", result.Rows[0].Amount.String())
	assert.Equal(t, "16.66", result.Rows[1].Amount.String())
}

func TestIngest_EmptyPaste(t *testing.T) {
	result := newIngestor().Ingest("   \n\n\t\n", testContext())

	assert.True(t, result.Empty())
	assert.True(t, result.NetTotal.IsZero())
}

func TestIngest_BatchIDsAreUnique(t *testing.T) {
	ing := newIngestor()
	a := ing.Ingest("x 1", testContext())
	b := ing.Ingest("x 1", testContext())
	assert.NotEqual(t, a.BatchID, b.BatchID)
}
