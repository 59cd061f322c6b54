package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/fintrackhq/fintrack/internal/models"
	"github.com/shopspring/decimal"
)

// Mapping binds semantic fields to column header names chosen by the user.
// Date, Description and Amount are required; ExternalID is optional.
type Mapping struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	ExternalID  string `json:"external_id,omitempty"`
}

// Accepted input date layouts. Whatever comes in, records carry the
// canonical YYYY-MM-DD form so lexical sort matches chronological sort.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02.01.2006",
	"20060102",
	"Jan 2, 2006",
	time.RFC3339,
}

const canonicalDate = "2006-01-02"

// MapRows turns parsed rows into candidate transactions for the given
// account. If any required field has no matching column the whole import is
// rejected before a single row is read. Rows failing validation are dropped
// and reported in the returned RowError slice; surviving records keep their
// input order.
func MapRows(headers []string, rows [][]string, mapping Mapping, accountID int64) ([]models.Transaction, []models.RowError, error) {
	idxDate, err := requiredColumn(headers, "date", mapping.Date)
	if err != nil {
		return nil, nil, err
	}
	idxDesc, err := requiredColumn(headers, "description", mapping.Description)
	if err != nil {
		return nil, nil, err
	}
	idxAmount, err := requiredColumn(headers, "amount", mapping.Amount)
	if err != nil {
		return nil, nil, err
	}
	idxExternal := -1
	if mapping.ExternalID != "" {
		idxExternal = indexOf(headers, mapping.ExternalID)
	}

	var records []models.Transaction
	var dropped []models.RowError
	for i, row := range rows {
		postedAt, err := parseDate(cell(row, idxDate))
		if err != nil {
			dropped = append(dropped, models.RowError{Row: i, Reason: "invalid date"})
			continue
		}

		description := strings.TrimSpace(cell(row, idxDesc))
		if description == "" {
			dropped = append(dropped, models.RowError{Row: i, Reason: "empty description"})
			continue
		}

		amount, err := parseAmount(cell(row, idxAmount))
		if err != nil {
			dropped = append(dropped, models.RowError{Row: i, Reason: "invalid amount"})
			continue
		}

		records = append(records, models.Transaction{
			AccountID:   accountID,
			PostedAt:    postedAt,
			Description: description,
			Amount:      amount,
			ExternalID:  cell(row, idxExternal), // opaque, carried verbatim
		})
	}
	return records, dropped, nil
}

// MappingError rejects a whole import before any row is processed: a
// required semantic field has no usable column. It is the caller's fault,
// not the store's, and callers report it as such.
type MappingError struct {
	Field  string
	Column string
}

func (e *MappingError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("no column mapped for required field %q", e.Field)
	}
	return fmt.Sprintf("column %q mapped to field %q not found", e.Column, e.Field)
}

func requiredColumn(headers []string, field, name string) (int, error) {
	if name == "" {
		return -1, &MappingError{Field: field}
	}
	idx := indexOf(headers, name)
	if idx < 0 {
		return -1, &MappingError{Field: field, Column: name}
	}
	return idx, nil
}

func indexOf(headers []string, name string) int {
	for i, h := range headers {
		if h == name {
			return i
		}
	}
	return -1
}

// cell returns the i-th cell of a possibly ragged row, "" when absent
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func parseDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(canonicalDate), nil
		}
	}
	return "", fmt.Errorf("unrecognized date %q", s)
}

// parseAmount parses a signed decimal amount, tolerating thousands
// separators
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}
	return decimal.NewFromString(s)
}
