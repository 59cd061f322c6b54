package models

import "github.com/shopspring/decimal"

// Holding represents a position in a listed security
type Holding struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	AccountID int64           `json:"account_id"`
	Symbol    string          `json:"symbol"`
	Quantity  decimal.Decimal `json:"quantity"`
	CreatedAt string          `json:"created_at"`
}
