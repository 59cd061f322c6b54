package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/fintrackhq/fintrack/internal/models"
	"github.com/shopspring/decimal"
)

// InsertTransactionChunk writes one chunk of imported transactions as a
// single multi-row insert, tagging every row with the owning user and
// import job. With skipDuplicates, rows whose (user, external id) pair
// already exists are silently dropped by the store.
func (r *Repository) InsertTransactionChunk(ctx context.Context, userID int64, jobID string, records []models.Transaction, skipDuplicates bool) error {
	if len(records) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO transactions (user_id, account_id, posted_at, description, amount, external_id, import_job_id) VALUES `)
	args := make([]interface{}, 0, len(records)*7)
	for i, rec := range records {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * 7
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7)
		args = append(args, userID, rec.AccountID, rec.PostedAt, rec.Description, rec.Amount, nullString(rec.ExternalID), jobID)
	}
	if skipDuplicates {
		sb.WriteString(" ON CONFLICT (user_id, external_id) WHERE external_id IS NOT NULL DO NOTHING")
	}

	if _, err := r.db.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("failed to insert transaction chunk: %w", err)
	}
	return nil
}

// TransactionFilter narrows ListTransactions. Zero values mean "no bound".
type TransactionFilter struct {
	AccountID int64
	From      string // YYYY-MM-DD, inclusive
	To        string // YYYY-MM-DD, inclusive
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
}

// ListTransactions returns a user's transactions, newest first
func (r *Repository) ListTransactions(ctx context.Context, userID int64, filter TransactionFilter) ([]models.Transaction, error) {
	query := `
		SELECT id, user_id, account_id, posted_at::text, description, amount, COALESCE(external_id, ''), COALESCE(import_job_id, ''), created_at::text
		FROM transactions
		WHERE user_id = $1`
	args := []interface{}{userID}

	if filter.AccountID != 0 {
		args = append(args, filter.AccountID)
		query += fmt.Sprintf(" AND account_id = $%d", len(args))
	}
	if filter.From != "" {
		args = append(args, filter.From)
		query += fmt.Sprintf(" AND posted_at >= $%d", len(args))
	}
	if filter.To != "" {
		args = append(args, filter.To)
		query += fmt.Sprintf(" AND posted_at <= $%d", len(args))
	}
	if filter.MinAmount != nil {
		args = append(args, *filter.MinAmount)
		query += fmt.Sprintf(" AND amount >= $%d", len(args))
	}
	if filter.MaxAmount != nil {
		args = append(args, *filter.MaxAmount)
		query += fmt.Sprintf(" AND amount <= $%d", len(args))
	}
	query += " ORDER BY posted_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.AccountID, &t.PostedAt, &t.Description, &t.Amount, &t.ExternalID, &t.ImportJobID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
