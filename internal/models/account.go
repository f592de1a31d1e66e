package models

import "github.com/shopspring/decimal"

// Account belongs to exactly one user and owns its transactions.
//
// Balance is a stored value. It is never recomputed from the account's
// transactions, so the two may disagree.
type Account struct {
	ID      int64           `json:"id"`
	UserID  int64           `json:"user_id"`
	Number  string          `json:"number"`
	Type    string          `json:"type"`
	Balance decimal.Decimal `json:"balance"`
}
