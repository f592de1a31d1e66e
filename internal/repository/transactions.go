package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dan9191/bank-api/internal/models"
)

const transactionColumns = "id, account_id, occurred_at, amount, type"

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	t := &models.Transaction{}
	err := row.Scan(&t.ID, &t.AccountID, &t.Date, &t.Amount, &t.Type)
	return t, err
}

func (r *Repository) queryTransactions(ctx context.Context, query string, args ...any) ([]*models.Transaction, error) {
	rows, err := r.q.QueryContext(ctx, r.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	transactions := []*models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return transactions, nil
}

// FindAllTransactions returns every transaction ordered by id.
func (r *Repository) FindAllTransactions(ctx context.Context) ([]*models.Transaction, error) {
	return r.queryTransactions(ctx, "SELECT "+transactionColumns+" FROM transactions ORDER BY id")
}

// FindTransactionsByAccountID returns the account's transactions oldest first.
// An unknown account yields an empty slice.
func (r *Repository) FindTransactionsByAccountID(ctx context.Context, accountID int64) ([]*models.Transaction, error) {
	return r.queryTransactions(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE account_id = ? ORDER BY occurred_at, id", accountID)
}

// FindTransactionByID retrieves a transaction by id
func (r *Repository) FindTransactionByID(ctx context.Context, id int64) (*models.Transaction, error) {
	t, err := scanTransaction(r.q.QueryRowContext(ctx,
		r.rebind("SELECT "+transactionColumns+" FROM transactions WHERE id = ?"), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("transaction", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}
	return t, nil
}

// SaveTransaction inserts the transaction when ID is zero and assigns the new id,
// otherwise it overwrites the stored row including its account. Dates are
// stored in UTC; sqlite cannot scan back timestamps written with an offset.
func (r *Repository) SaveTransaction(ctx context.Context, t *models.Transaction) error {
	t.Date = t.Date.UTC()

	if t.ID == 0 {
		err := r.q.QueryRowContext(ctx, r.rebind(`
			INSERT INTO transactions (account_id, occurred_at, amount, type)
			VALUES (?, ?, ?, ?)
			RETURNING id`),
			t.AccountID, t.Date, t.Amount, t.Type,
		).Scan(&t.ID)
		if err != nil {
			return fmt.Errorf("failed to create transaction: %w", err)
		}
		return nil
	}

	res, err := r.q.ExecContext(ctx, r.rebind(`
		UPDATE transactions
		SET account_id = ?, occurred_at = ?, amount = ?, type = ?
		WHERE id = ?`),
		t.AccountID, t.Date, t.Amount, t.Type, t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return affected(res, "transaction", t.ID)
}

// DeleteTransactionByID removes a single transaction.
func (r *Repository) DeleteTransactionByID(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, r.rebind("DELETE FROM transactions WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return affected(res, "transaction", id)
}

// DeleteTransactionsByAccountID removes every transaction of the account and
// returns how many rows went away.
func (r *Repository) DeleteTransactionsByAccountID(ctx context.Context, accountID int64) (int64, error) {
	res, err := r.q.ExecContext(ctx, r.rebind("DELETE FROM transactions WHERE account_id = ?"), accountID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete transactions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n, nil
}
