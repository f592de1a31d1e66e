package statement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/bank-api/internal/models"
)

// Source provides the data a statement run needs.
type Source interface {
	ListUsers(ctx context.Context) ([]*models.User, error)
	ListAccountsByUser(ctx context.Context, userID int64) ([]*models.Account, error)
	ListTransactionsByAccount(ctx context.Context, accountID int64) ([]*models.Transaction, error)
}

// Sender delivers a rendered statement.
type Sender interface {
	SendStatement(to, username, accountNumber string, statement []byte) error
}

// Scheduler mails every account statement to its owner on a cron schedule
type Scheduler struct {
	cron   *cron.Cron
	src    Source
	sender Sender
	log    *logrus.Logger
	now    func() time.Time
}

// NewScheduler registers the statement job under the given cron spec.
func NewScheduler(spec string, src Source, sender Sender, log *logrus.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:   cron.New(),
		src:    src,
		sender: sender,
		log:    log,
		now:    time.Now,
	}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("invalid statement schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("Statement scheduler started")
}

// Stop halts the scheduler and waits for a running job to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	sent, err := s.RunOnce(ctx)
	if err != nil {
		s.log.WithError(err).Errorf("Statement run finished with errors after %d statements", sent)
		return
	}
	s.log.Infof("Statement run sent %d statements", sent)
}

// RunOnce sends one statement per account to every user with an email address.
// A failure for one account does not stop the others; all failures are joined.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	users, err := s.src.ListUsers(ctx)
	if err != nil {
		return 0, err
	}

	var errs []error
	sent := 0
	for _, user := range users {
		if user.Email == "" {
			continue
		}
		accounts, err := s.src.ListAccountsByUser(ctx, user.ID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, account := range accounts {
			transactions, err := s.src.ListTransactionsByAccount(ctx, account.ID)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			doc, err := Render(account, transactions, s.now())
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if err := s.sender.SendStatement(user.Email, user.Username, account.Number, doc); err != nil {
				errs = append(errs, err)
				continue
			}
			sent++
		}
	}
	return sent, errors.Join(errs...)
}
