// Package statement renders account statements as XML and mails them on a schedule.
package statement

import (
	"fmt"
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	"github.com/Dan9191/bank-api/internal/models"
)

// Render builds the XML statement for an account and its transactions.
//
// The document lists the stored balance next to the sum of the listed
// transactions. The two are independent values and are not reconciled.
func Render(account *models.Account, transactions []*models.Transaction, generatedAt time.Time) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("Statement")
	root.CreateAttr("generatedAt", generatedAt.UTC().Format(time.RFC3339))

	acc := root.CreateElement("Account")
	acc.CreateAttr("id", strconv.FormatInt(account.ID, 10))
	acc.CreateElement("Number").SetText(account.Number)
	acc.CreateElement("Type").SetText(account.Type)
	acc.CreateElement("Balance").SetText(account.Balance.StringFixed(2))

	list := root.CreateElement("Transactions")
	list.CreateAttr("count", strconv.Itoa(len(transactions)))
	net := decimal.Zero
	for _, t := range transactions {
		el := list.CreateElement("Transaction")
		el.CreateAttr("id", strconv.FormatInt(t.ID, 10))
		el.CreateElement("Date").SetText(t.Date.UTC().Format(time.RFC3339))
		el.CreateElement("Type").SetText(t.Type)
		el.CreateElement("Amount").SetText(t.Amount.StringFixed(2))
		net = net.Add(signed(t))
	}
	root.CreateElement("NetMovement").SetText(net.StringFixed(2))

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to write statement: %w", err)
	}
	return out, nil
}

// signed treats withdrawals as outgoing money. Every other type counts as incoming.
func signed(t *models.Transaction) decimal.Decimal {
	if t.Type == "Withdrawal" {
		return t.Amount.Neg()
	}
	return t.Amount
}
