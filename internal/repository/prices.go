package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/fintrackhq/fintrack/internal/models"
	"github.com/lib/pq"
)

// GetQuotes returns the cached quote for each symbol found, keyed by
// symbol. Symbols with no cache entry are simply absent from the map.
func (r *Repository) GetQuotes(ctx context.Context, symbols []string) (map[string]models.PriceQuote, error) {
	query := `
		SELECT symbol, price, currency, asof
		FROM prices
		WHERE symbol = ANY($1)`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(symbols))
	if err != nil {
		return nil, fmt.Errorf("failed to read price cache: %w", err)
	}
	defer rows.Close()

	quotes := make(map[string]models.PriceQuote)
	for rows.Next() {
		var q models.PriceQuote
		if err := rows.Scan(&q.Symbol, &q.Price, &q.Currency, &q.AsOf); err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		quotes[q.Symbol] = q
	}
	return quotes, rows.Err()
}

// UpsertQuotes writes quotes into the cache in one statement, one row per
// symbol. An existing row for the same symbol is overwritten: last write
// wins, the new asof supersedes the old.
func (r *Repository) UpsertQuotes(ctx context.Context, quotes []models.PriceQuote) error {
	if len(quotes) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO prices (symbol, price, currency, asof) VALUES `)
	args := make([]interface{}, 0, len(quotes)*4)
	for i, q := range quotes {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 4
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4)
		args = append(args, q.Symbol, q.Price, q.Currency, q.AsOf)
	}
	sb.WriteString(` ON CONFLICT (symbol) DO UPDATE SET price = EXCLUDED.price, currency = EXCLUDED.currency, asof = EXCLUDED.asof`)

	if _, err := r.db.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("failed to upsert quotes: %w", err)
	}
	return nil
}
