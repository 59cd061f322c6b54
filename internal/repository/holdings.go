package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/fintrackhq/fintrack/internal/models"
)

// CreateHolding creates a new holding in the database
func (r *Repository) CreateHolding(ctx context.Context, holding *models.Holding) error {
	holding.Symbol = strings.ToUpper(strings.TrimSpace(holding.Symbol))
	query := `
		INSERT INTO holdings (user_id, account_id, symbol, quantity, created_at)
		VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)
		RETURNING id, created_at::text`
	err := r.db.QueryRowContext(ctx, query, holding.UserID, holding.AccountID, holding.Symbol, holding.Quantity).
		Scan(&holding.ID, &holding.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create holding: %w", err)
	}
	return nil
}

// ListHoldings returns all holdings belonging to a user
func (r *Repository) ListHoldings(ctx context.Context, userID int64) ([]models.Holding, error) {
	query := `
		SELECT id, user_id, account_id, symbol, quantity, created_at::text
		FROM holdings
		WHERE user_id = $1
		ORDER BY symbol`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}
	defer rows.Close()

	var holdings []models.Holding
	for rows.Next() {
		var h models.Holding
		if err := rows.Scan(&h.ID, &h.UserID, &h.AccountID, &h.Symbol, &h.Quantity, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}

// ListHeldSymbols returns every distinct symbol held by any user. The
// scheduled quote refresh uses it to keep the shared cache warm.
func (r *Repository) ListHeldSymbols(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT symbol FROM holdings ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("failed to list held symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		symbols = append(symbols, s)
	}
	return symbols, rows.Err()
}
