package ledger

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	apperrors "github.com/tallybook/backend/internal/domain/errors"
)

// columns is the fixed column order of the ledger document. The header row
// names them so the file stays self-describing for spreadsheet consumers.
var columns = []string{"date", "time", "invoice", "customer", "item", "amount", "status"}

// Encode serializes rows into the ledger document format: a header row
// followed by one CSV record per row in the given order. The encoding
// round-trips byte-for-byte through Decode for every encodable row,
// including multi-byte text fields.
func Encode(rows []Row) ([]byte, error) {
	if err := ValidateRows(rows); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(columns); err != nil {
		return nil, apperrors.NewInternalError("could not write ledger header", err)
	}
	for _, r := range rows {
		record := []string{r.Date, r.Time, r.Invoice, r.Customer, r.Item, r.Amount.String(), string(r.Status)}
		if err := w.Write(record); err != nil {
			return nil, apperrors.NewInternalError("could not write ledger row", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, apperrors.NewInternalError("could not flush ledger content", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a ledger document back into rows. Content written by Encode
// always decodes; anything else that violates the header or column count is
// reported as an encoding error so the caller can tell a corrupt resource
// from an unavailable one.
func Decode(content []byte) ([]Row, error) {
	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = len(columns)

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewEncodingError(fmt.Sprintf("could not read ledger header: %v", err))
	}
	if !equalFields(header, columns) {
		return nil, apperrors.NewEncodingError(fmt.Sprintf("unexpected ledger header %q", strings.Join(header, ",")))
	}

	var rows []Row
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewEncodingError(fmt.Sprintf("could not read ledger row %d: %v", len(rows)+1, err))
		}
		amount, err := decimal.NewFromString(record[5])
		if err != nil {
			return nil, apperrors.NewEncodingError(fmt.Sprintf("ledger row %d has malformed amount %q", len(rows)+1, record[5]))
		}
		rows = append(rows, Row{
			Date:     record[0],
			Time:     record[1],
			Invoice:  record[2],
			Customer: record[3],
			Item:     record[4],
			Amount:   amount,
			Status:   Status(record[6]),
		})
	}
	return rows, nil
}

// ValidateRows rejects rows whose text fields cannot round-trip through the
// document format. The check runs before any remote write so a bad row never
// corrupts the ledger or aborts rows already committed ahead of it.
func ValidateRows(rows []Row) error {
	for i, r := range rows {
		fields := map[string]string{
			"date":     r.Date,
			"time":     r.Time,
			"invoice":  r.Invoice,
			"customer": r.Customer,
			"item":     r.Item,
			"status":   string(r.Status),
		}
		for name, value := range fields {
			if !utf8.ValidString(value) {
				return apperrors.NewEncodingError(fmt.Sprintf("row %d field %s is not valid UTF-8", i, name)).
					WithDetail("position", i)
			}
			if strings.ContainsAny(value, "\x00\r\n") {
				return apperrors.NewEncodingError(fmt.Sprintf("row %d field %s contains control characters", i, name)).
					WithDetail("position", i)
			}
		}
	}
	return nil
}

func equalFields(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
