package models

import "github.com/shopspring/decimal"

// Transaction represents a financial transaction. PostedAt carries a
// calendar date in YYYY-MM-DD form, no time component. Amount is signed:
// positive for inflows, negative for outflows.
type Transaction struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"user_id"`
	AccountID   int64           `json:"account_id"`
	PostedAt    string          `json:"posted_at"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	ExternalID  string          `json:"external_id,omitempty"`
	ImportJobID string          `json:"import_job_id,omitempty"`
	CreatedAt   string          `json:"created_at"`
}
