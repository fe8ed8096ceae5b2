package batch

import (
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	"github.com/tallybook/backend/internal/domain/ledger"
	"github.com/tallybook/backend/internal/domain/parse"
)

const reasonUnparsable = "unparsable"

// Ingestor converts one raw paste into ledger rows, collecting per-line
// failures without ever aborting the batch.
type Ingestor struct {
	parser *parse.Parser
	signs  *parse.Inferencer
}

// NewIngestor creates an ingestor over the given parser and sign inferencer.
func NewIngestor(parser *parse.Parser, signs *parse.Inferencer) *Ingestor {
	return &Ingestor{
		parser: parser,
		signs:  signs,
	}
}

// Ingest splits raw into trimmed non-empty lines and parses each one. Blank
// lines are skipped silently, unparsable lines become failure entries, and
// every matched line becomes a row stamped from the batch context.
func (ing *Ingestor) Ingest(raw string, bctx Context) *Result {
	result := &Result{
		BatchID:  ulid.Make().String(),
		NetTotal: decimal.Zero,
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parsed := ing.parser.Parse(line)
		if !parsed.Matched {
			result.Failures = append(result.Failures, LineFailure{Line: line, Reason: reasonUnparsable})
			continue
		}

		amount := ing.signs.Apply(parsed.Description, parsed.Amount, bctx.ForceNegative)
		result.Rows = append(result.Rows, ledger.Row{
			Date:     bctx.Timestamp.Format("2006-01-02"),
			Time:     bctx.Timestamp.Format("15:04"),
			Invoice:  bctx.Invoice,
			Customer: bctx.Customer,
			Item:     parsed.Description,
			Amount:   amount,
			Status:   bctx.Status,
		})
		result.NetTotal = result.NetTotal.Add(amount)
	}

	return result
}
