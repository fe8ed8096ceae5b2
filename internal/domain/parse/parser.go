// Package parse turns free-form sale/refund lines into item descriptions and
// signed amounts. Lines arrive pre-trimmed and non-empty; splitting a paste
// into lines is the batch ingestor's job.
package parse

import (
	"github.com/shopspring/decimal"
)

// ParsedLine is the result of running one raw line through the parser.
// Matched is false when no extraction strategy applied; Description and
// Amount are only meaningful when Matched is true.
type ParsedLine struct {
	Description string
	Amount      decimal.Decimal
	Matched     bool
}

// strategy attempts one extraction pattern against a line. ok reports a
// structural match; err reports a structurally matched line whose numeric
// token could not be parsed, which fails the whole line.
type strategy func(line string) (parsed ParsedLine, ok bool, err error)

// Parser extracts a description and amount from a single line by trying an
// ordered list of strategies and committing to the first that matches.
type Parser struct {
	strategies []strategy
}

// NewParser creates a parser with the standard strategy order: trailing
// amount first, leading amount as the fallback.
func NewParser() *Parser {
	return &Parser{
		strategies: []strategy{
			parseTrailingAmount,
			parseLeadingAmount,
		},
	}
}

// Parse runs the strategies in order and returns the first match. It never
// panics; an unparsable line comes back with Matched set to false.
func (p *Parser) Parse(line string) ParsedLine {
	for _, try := range p.strategies {
		parsed, ok, err := try(line)
		if err != nil {
			// A matched pattern with a malformed numeric token fails the
			// whole line rather than falling through to a weaker strategy.
			return ParsedLine{}
		}
		if ok {
			parsed.Matched = true
			return parsed
		}
	}
	return ParsedLine{}
}
