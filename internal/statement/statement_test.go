package statement

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/bank-api/internal/models"
)

func TestRender(t *testing.T) {
	account := &models.Account{ID: 3, UserID: 1, Number: "123456", Type: "Checking", Balance: decimal.NewFromInt(1000)}
	date := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	transactions := []*models.Transaction{
		{ID: 1, AccountID: 3, Date: date, Amount: decimal.NewFromInt(100), Type: "Deposit"},
		{ID: 2, AccountID: 3, Date: date, Amount: decimal.NewFromInt(50), Type: "Withdrawal"},
	}

	out, err := Render(account, transactions, date)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(out); err != nil {
		t.Fatalf("output is not valid XML: %v", err)
	}

	if got := doc.FindElement("//Account/Number").Text(); got != "123456" {
		t.Errorf("Number = %q, want 123456", got)
	}
	if got := doc.FindElement("//Account/Balance").Text(); got != "1000.00" {
		t.Errorf("Balance = %q, want 1000.00", got)
	}
	if got := len(doc.FindElements("//Transactions/Transaction")); got != 2 {
		t.Errorf("got %d transactions, want 2", got)
	}
	if got := doc.FindElement("//Transactions").SelectAttrValue("count", ""); got != "2" {
		t.Errorf("count = %q, want 2", got)
	}
	if got := doc.FindElement("//NetMovement").Text(); got != "50.00" {
		t.Errorf("NetMovement = %q, want 50.00", got)
	}
}

func TestRenderEmpty(t *testing.T) {
	out, err := Render(&models.Account{ID: 1, Number: "1"}, nil, time.Now())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(out); err != nil {
		t.Fatalf("output is not valid XML: %v", err)
	}
	if got := len(doc.FindElements("//Transaction")); got != 0 {
		t.Errorf("got %d transactions, want 0", got)
	}
}

type fakeSource struct {
	users        []*models.User
	accounts     map[int64][]*models.Account
	transactions map[int64][]*models.Transaction
}

func (f *fakeSource) ListUsers(ctx context.Context) ([]*models.User, error) {
	return f.users, nil
}

func (f *fakeSource) ListAccountsByUser(ctx context.Context, userID int64) ([]*models.Account, error) {
	return f.accounts[userID], nil
}

func (f *fakeSource) ListTransactionsByAccount(ctx context.Context, accountID int64) ([]*models.Transaction, error) {
	return f.transactions[accountID], nil
}

type sentStatement struct {
	to, username, number string
}

type fakeSender struct {
	sent   []sentStatement
	failOn string
}

func (f *fakeSender) SendStatement(to, username, accountNumber string, statement []byte) error {
	if accountNumber == f.failOn {
		return errors.New("smtp down")
	}
	f.sent = append(f.sent, sentStatement{to, username, accountNumber})
	return nil
}

func TestSchedulerRunOnce(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	src := &fakeSource{
		users: []*models.User{
			{ID: 1, Username: "alice", Email: "alice@example.com"},
			{ID: 2, Username: "bob"}, // no email, skipped
		},
		accounts: map[int64][]*models.Account{
			1: {{ID: 10, UserID: 1, Number: "111"}, {ID: 11, UserID: 1, Number: "222"}},
			2: {{ID: 20, UserID: 2, Number: "333"}},
		},
		transactions: map[int64][]*models.Transaction{},
	}

	t.Run("sends one statement per account", func(t *testing.T) {
		sender := &fakeSender{}
		s, err := NewScheduler("@monthly", src, sender, logger)
		if err != nil {
			t.Fatalf("NewScheduler failed: %v", err)
		}

		n, err := s.RunOnce(context.Background())
		if err != nil {
			t.Fatalf("RunOnce failed: %v", err)
		}
		if n != 2 {
			t.Errorf("sent %d statements, want 2", n)
		}
		for _, st := range sender.sent {
			if st.to != "alice@example.com" {
				t.Errorf("statement sent to %q", st.to)
			}
		}
	})

	t.Run("continues after a failed send", func(t *testing.T) {
		sender := &fakeSender{failOn: "111"}
		s, _ := NewScheduler("@monthly", src, sender, logger)

		n, err := s.RunOnce(context.Background())
		if err == nil {
			t.Error("expected joined error, got nil")
		}
		if n != 1 || len(sender.sent) != 1 || sender.sent[0].number != "222" {
			t.Errorf("unexpected sends: n=%d sent=%+v", n, sender.sent)
		}
	})

	t.Run("rejects invalid schedule", func(t *testing.T) {
		if _, err := NewScheduler("not a schedule", src, &fakeSender{}, logger); err == nil {
			t.Error("expected error, got nil")
		}
	})
}
