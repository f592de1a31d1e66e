package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Dan9191/bank-api/internal/models"
	"github.com/Dan9191/bank-api/internal/repository"
)

// AccountInput carries the writable fields of an account.
type AccountInput struct {
	Number  string          `json:"number"`
	Type    string          `json:"type"`
	Balance decimal.Decimal `json:"balance"`
}

// ListAccounts returns every account.
func (s *Service) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	return s.repo.FindAllAccounts(ctx)
}

// ListAccountsByUser returns the user's accounts, empty when there are none.
func (s *Service) ListAccountsByUser(ctx context.Context, userID int64) ([]*models.Account, error) {
	return s.repo.FindAccountsByUserID(ctx, userID)
}

// GetAccount returns the account or a NotFound error.
func (s *Service) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	return s.repo.FindAccountByID(ctx, id)
}

// AddAccount creates a new account owned by the given user
func (s *Service) AddAccount(ctx context.Context, userID int64, in AccountInput) (*models.Account, error) {
	account := &models.Account{
		UserID:  userID,
		Number:  in.Number,
		Type:    in.Type,
		Balance: in.Balance,
	}
	if account.Number == "" {
		number, err := newAccountNumber()
		if err != nil {
			return nil, err
		}
		account.Number = number
	}

	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		if _, err := tx.FindUserByID(ctx, userID); err != nil {
			return err
		}
		return tx.SaveAccount(ctx, account)
	})
	if err != nil {
		return nil, err
	}

	s.log.Infof("Account created for user %d: %d (%s)", userID, account.ID, account.Number)
	return account, nil
}

// ReplaceAccount overwrites number, type and balance. An empty number keeps
// the current one. The owner is preserved.
func (s *Service) ReplaceAccount(ctx context.Context, id int64, in AccountInput) (*models.Account, error) {
	var account *models.Account
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		var err error
		if account, err = tx.FindAccountByID(ctx, id); err != nil {
			return err
		}

		if in.Number != "" {
			account.Number = in.Number
		}
		account.Type = in.Type
		account.Balance = in.Balance
		return tx.SaveAccount(ctx, account)
	})
	if err != nil {
		return nil, err
	}

	s.log.Infof("Account replaced: %d", account.ID)
	return account, nil
}

// DeleteAccount removes the account and all of its transactions in one
// database transaction.
func (s *Service) DeleteAccount(ctx context.Context, id int64) error {
	var transactions int64
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		var err error
		transactions, err = deleteAccountCascade(ctx, tx, id)
		return err
	})
	if err != nil {
		return err
	}

	s.log.Infof("Account deleted: %d (%d transactions)", id, transactions)
	return nil
}

// deleteAccountCascade deletes the account's transactions before the account
// itself and returns the number of transactions removed. tx must be bound to
// an open database transaction.
func deleteAccountCascade(ctx context.Context, tx *repository.Repository, id int64) (int64, error) {
	if _, err := tx.FindAccountByID(ctx, id); err != nil {
		return 0, err
	}

	n, err := tx.DeleteTransactionsByAccountID(ctx, id)
	if err != nil {
		return 0, err
	}

	if err := tx.DeleteAccountByID(ctx, id); err != nil {
		return 0, err
	}
	return n, nil
}
