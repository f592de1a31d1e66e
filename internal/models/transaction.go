package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents a financial transaction recorded against an account
type Transaction struct {
	ID        int64           `json:"id"`
	AccountID int64           `json:"account_id"`
	Date      time.Time       `json:"date"`
	Amount    decimal.Decimal `json:"amount"`
	Type      string          `json:"type"` // free-form, e.g. "Deposit" or "Withdrawal"
}
