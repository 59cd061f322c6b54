package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceQuote is the last known price for a symbol. Quotes are shared across
// all users: one row per symbol, overwritten on every successful fetch.
type PriceQuote struct {
	Symbol   string          `json:"symbol"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency"`
	AsOf     time.Time       `json:"asof"`
}
