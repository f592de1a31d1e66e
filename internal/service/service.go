package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/Dan9191/bank-api/internal/config"
	"github.com/Dan9191/bank-api/internal/models"
	"github.com/Dan9191/bank-api/internal/repository"
	"github.com/Dan9191/bank-api/internal/statement"
	"github.com/Dan9191/bank-api/internal/utils"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// TokenTTL is how long issued login tokens stay valid.
const TokenTTL = 24 * time.Hour

// Notifier is told about recorded transactions.
type Notifier interface {
	SendTransactionNotification(to, username string, accountID int64, amount decimal.Decimal, transactionType string, balance decimal.Decimal) error
}

// Service handles business logic
type Service struct {
	repo     *repository.Repository
	log      *logrus.Logger
	config   *config.Config
	notifier Notifier
	now      func() time.Time
}

// NewService initializes a new service
func NewService(repo *repository.Repository, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{repo: repo, log: log, config: cfg, now: time.Now}
}

// SetNotifier enables transaction notifications. A nil notifier disables them.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// Ping reports whether the backing store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// Login authenticates a user and returns a signed JWT
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.repo.FindUserByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(user.ID, 10),
		IssuedAt:  jwt.NewNumericDate(s.now()),
		ExpiresAt: jwt.NewNumericDate(s.now().Add(TokenTTL)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Username)
	return tokenString, nil
}

// Statement renders the XML statement of an account
func (s *Service) Statement(ctx context.Context, accountID int64) ([]byte, error) {
	var (
		account      *models.Account
		transactions []*models.Transaction
	)
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		var err error
		if account, err = tx.FindAccountByID(ctx, accountID); err != nil {
			return err
		}
		transactions, err = tx.FindTransactionsByAccountID(ctx, accountID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return statement.Render(account, transactions, s.now())
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func newAccountNumber() (string, error) {
	number, err := utils.GenerateAccountNumber("", utils.AccountNumberLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate account number: %w", err)
	}
	return number, nil
}
