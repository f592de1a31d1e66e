package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Dan9191/bank-api/internal/models"
	"github.com/Dan9191/bank-api/internal/repository"
)

// TransactionInput carries the writable fields of a transaction.
type TransactionInput struct {
	Date   time.Time       `json:"date"`
	Amount decimal.Decimal `json:"amount"`
	Type   string          `json:"type"`
}

// ListTransactions returns every transaction.
func (s *Service) ListTransactions(ctx context.Context) ([]*models.Transaction, error) {
	return s.repo.FindAllTransactions(ctx)
}

// ListTransactionsByAccount returns the account's transactions, empty when there are none.
func (s *Service) ListTransactionsByAccount(ctx context.Context, accountID int64) ([]*models.Transaction, error) {
	return s.repo.FindTransactionsByAccountID(ctx, accountID)
}

// GetTransaction returns the transaction or a NotFound error.
func (s *Service) GetTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	return s.repo.FindTransactionByID(ctx, id)
}

// AddTransaction records a transaction against an existing account.
// The account balance is left as stored.
func (s *Service) AddTransaction(ctx context.Context, accountID int64, in TransactionInput) (*models.Transaction, error) {
	t := &models.Transaction{
		AccountID: accountID,
		Date:      in.Date,
		Amount:    in.Amount,
		Type:      in.Type,
	}
	if t.Date.IsZero() {
		t.Date = s.now().UTC()
	}

	var account *models.Account
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		var err error
		if account, err = tx.FindAccountByID(ctx, accountID); err != nil {
			return err
		}
		return tx.SaveTransaction(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	s.log.Infof("Transaction created for account %d: %d (%s %s)", accountID, t.ID, t.Type, t.Amount)
	s.notify(ctx, account, t)
	return t, nil
}

// notify emails the account owner. Failures are logged only, the transaction
// is already committed.
func (s *Service) notify(ctx context.Context, account *models.Account, t *models.Transaction) {
	if s.notifier == nil {
		return
	}
	user, err := s.repo.FindUserByID(ctx, account.UserID)
	if err != nil {
		s.log.WithError(err).Warnf("Skipping notification for transaction %d", t.ID)
		return
	}
	if user.Email == "" {
		return
	}
	if err := s.notifier.SendTransactionNotification(user.Email, user.Username, account.ID, t.Amount, t.Type, account.Balance); err != nil {
		s.log.WithError(err).Warnf("Notification for transaction %d failed", t.ID)
	}
}

// ReplaceTransaction overwrites type, amount and date. The account is preserved.
func (s *Service) ReplaceTransaction(ctx context.Context, id int64, in TransactionInput) (*models.Transaction, error) {
	var t *models.Transaction
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		var err error
		if t, err = tx.FindTransactionByID(ctx, id); err != nil {
			return err
		}

		t.Type = in.Type
		t.Amount = in.Amount
		if !in.Date.IsZero() {
			t.Date = in.Date
		}
		return tx.SaveTransaction(ctx, t)
	})
	if err != nil {
		return nil, err
	}

	s.log.Infof("Transaction replaced: %d", t.ID)
	return t, nil
}

// DeleteTransaction removes a single transaction.
func (s *Service) DeleteTransaction(ctx context.Context, id int64) error {
	if err := s.repo.DeleteTransactionByID(ctx, id); err != nil {
		return err
	}

	s.log.Infof("Transaction deleted: %d", id)
	return nil
}
