// Package seed loads demo users, accounts and transactions into an empty database.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/Dan9191/bank-api/internal/models"
	"github.com/Dan9191/bank-api/internal/repository"
)

type seedUser struct {
	user     models.User
	password string
	accounts []seedAccount
}

type seedAccount struct {
	number       string
	accountType  string
	balance      int64
	transactions []seedTransaction
}

type seedTransaction struct {
	txType string
	amount int64
}

var fixtures = []seedUser{
	{
		user:     models.User{Username: "username1", Email: "username1@gmail.com", FirstName: "name1", LastName: "lastName2"},
		password: "123",
		accounts: []seedAccount{
			{number: "123456", accountType: "Checking", balance: 1000, transactions: []seedTransaction{
				{"Deposit", 100},
				{"Withdrawal", 50},
			}},
			{number: "654321", accountType: "Savings", balance: 5000, transactions: []seedTransaction{
				{"Deposit", 200},
			}},
		},
	},
	{
		user:     models.User{Username: "username2", Email: "username2@gmail.com", FirstName: "name2", LastName: "lastName2"},
		password: "password2",
		accounts: []seedAccount{
			{number: "789012", accountType: "Checking", balance: 2000, transactions: []seedTransaction{
				{"Withdrawal", 150},
			}},
		},
	},
}

// Load inserts the demo data in a single transaction. It does nothing when
// any user already exists, so restarts do not duplicate rows. It reports
// whether data was inserted.
func Load(ctx context.Context, repo *repository.Repository, log *logrus.Logger) (bool, error) {
	count, err := repo.CountUsers(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		log.Debugf("Skipping seed data, %d users present", count)
		return false, nil
	}

	now := time.Now().UTC()
	err = repo.WithTx(ctx, func(tx *repository.Repository) error {
		for _, f := range fixtures {
			hashed, err := bcrypt.GenerateFromPassword([]byte(f.password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			user := f.user
			user.PasswordHash = string(hashed)
			if err := tx.SaveUser(ctx, &user); err != nil {
				return fmt.Errorf("failed to seed user %s: %w", user.Username, err)
			}

			for _, a := range f.accounts {
				account := &models.Account{
					UserID:  user.ID,
					Number:  a.number,
					Type:    a.accountType,
					Balance: decimal.NewFromInt(a.balance),
				}
				if err := tx.SaveAccount(ctx, account); err != nil {
					return fmt.Errorf("failed to seed account %s: %w", a.number, err)
				}

				for _, t := range a.transactions {
					if err := tx.SaveTransaction(ctx, &models.Transaction{
						AccountID: account.ID,
						Date:      now,
						Amount:    decimal.NewFromInt(t.amount),
						Type:      t.txType,
					}); err != nil {
						return fmt.Errorf("failed to seed transaction on %s: %w", a.number, err)
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	log.Info("Database has been initialized with sample data")
	return true, nil
}
