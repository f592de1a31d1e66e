package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dan9191/bank-api/internal/models"
)

const accountColumns = "id, user_id, number, type, balance"

func scanAccount(row rowScanner) (*models.Account, error) {
	account := &models.Account{}
	err := row.Scan(&account.ID, &account.UserID, &account.Number, &account.Type, &account.Balance)
	return account, err
}

func (r *Repository) queryAccounts(ctx context.Context, query string, args ...any) ([]*models.Account, error) {
	rows, err := r.q.QueryContext(ctx, r.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []*models.Account{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}
	return accounts, nil
}

// FindAllAccounts returns every account ordered by id.
func (r *Repository) FindAllAccounts(ctx context.Context) ([]*models.Account, error) {
	return r.queryAccounts(ctx, "SELECT "+accountColumns+" FROM accounts ORDER BY id")
}

// FindAccountsByUserID returns the user's accounts. An unknown user yields an empty slice.
func (r *Repository) FindAccountsByUserID(ctx context.Context, userID int64) ([]*models.Account, error) {
	return r.queryAccounts(ctx, "SELECT "+accountColumns+" FROM accounts WHERE user_id = ? ORDER BY id", userID)
}

// FindAccountByID retrieves an account by id
func (r *Repository) FindAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	account, err := scanAccount(r.q.QueryRowContext(ctx,
		r.rebind("SELECT "+accountColumns+" FROM accounts WHERE id = ?"), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("account", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return account, nil
}

// SaveAccount inserts the account when ID is zero and assigns the new id,
// otherwise it overwrites the stored row including its owner.
func (r *Repository) SaveAccount(ctx context.Context, account *models.Account) error {
	if account.ID == 0 {
		err := r.q.QueryRowContext(ctx, r.rebind(`
			INSERT INTO accounts (user_id, number, type, balance)
			VALUES (?, ?, ?, ?)
			RETURNING id`),
			account.UserID, account.Number, account.Type, account.Balance,
		).Scan(&account.ID)
		if err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}
		return nil
	}

	res, err := r.q.ExecContext(ctx, r.rebind(`
		UPDATE accounts
		SET user_id = ?, number = ?, type = ?, balance = ?
		WHERE id = ?`),
		account.UserID, account.Number, account.Type, account.Balance, account.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return affected(res, "account", account.ID)
}

// DeleteAccountByID removes a single account row.
func (r *Repository) DeleteAccountByID(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, r.rebind("DELETE FROM accounts WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return affected(res, "account", id)
}
