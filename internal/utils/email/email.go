package email

import (
	"bytes"
	"fmt"
	"net/smtp"
	"time"

	"github.com/Dan9191/bank-api/internal/config"
	"github.com/jordan-wright/email"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
	send   func(e *email.Email) error
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	s := &Sender{
		cfg:    cfg,
		logger: logger,
	}
	s.send = s.sendSMTP
	return s
}

func (s *Sender) sendSMTP(e *email.Email) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	return e.Send(addr, auth)
}

// SendTransactionNotification tells the account owner that a transaction was recorded
func (s *Sender) SendTransactionNotification(to, username string, accountID int64, amount decimal.Decimal, transactionType string, balance decimal.Decimal) error {
	e := s.transactionMessage(to, username, accountID, amount, transactionType, balance, time.Now())

	if err := s.send(e); err != nil {
		s.logger.Errorf("Failed to send %s notification to %s: %v", transactionType, to, err)
		return fmt.Errorf("failed to send %s notification: %w", transactionType, err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}

// SendStatement mails an account statement as an XML attachment
func (s *Sender) SendStatement(to, username, accountNumber string, statement []byte) error {
	e, err := s.statementMessage(to, username, accountNumber, statement)
	if err != nil {
		return err
	}

	if err := s.send(e); err != nil {
		s.logger.Errorf("Failed to send statement to %s: %v", to, err)
		return fmt.Errorf("failed to send statement: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}

func (s *Sender) transactionMessage(to, username string, accountID int64, amount decimal.Decimal, transactionType string, balance decimal.Decimal, at time.Time) *email.Email {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = fmt.Sprintf("%s Notification", transactionType)

	body := fmt.Sprintf("Dear %s,\n\n", username)
	switch transactionType {
	case "Deposit":
		body += fmt.Sprintf("Your account %d has been credited with %s.\n", accountID, amount.StringFixed(2))
	case "Withdrawal":
		body += fmt.Sprintf("An amount of %s has been withdrawn from your account %d.\n", amount.StringFixed(2), accountID)
	default:
		body += fmt.Sprintf("A %s of %s has been recorded on your account %d.\n", transactionType, amount.StringFixed(2), accountID)
	}
	body += fmt.Sprintf(
		"Transaction time: %s\n"+
			"Current balance: %s\n",
		at.Format("2006-01-02 15:04:05"), balance.StringFixed(2),
	)
	body += "\nBest regards,\nBank Service"
	e.Text = []byte(body)
	return e
}

func (s *Sender) statementMessage(to, username, accountNumber string, statement []byte) (*email.Email, error) {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = fmt.Sprintf("Statement for account %s", accountNumber)
	e.Text = []byte(fmt.Sprintf(
		"Dear %s,\n\nPlease find attached the statement for your account %s.\n\nBest regards,\nBank Service",
		username, accountNumber,
	))

	filename := fmt.Sprintf("statement-%s.xml", accountNumber)
	if _, err := e.Attach(bytes.NewReader(statement), filename, "application/xml"); err != nil {
		return nil, fmt.Errorf("failed to attach statement: %w", err)
	}
	return e, nil
}
