package service

import (
	"context"
	"fmt"

	"github.com/Dan9191/bank-api/internal/models"
	"github.com/Dan9191/bank-api/internal/repository"
)

// UserInput carries the writable fields of a user.
type UserInput struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ListUsers returns every user.
func (s *Service) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.repo.FindAllUsers(ctx)
}

// GetUser returns the user or a NotFound error.
func (s *Service) GetUser(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.FindUserByID(ctx, id)
}

// CreateUser creates a new user with hashed password
func (s *Service) CreateUser(ctx context.Context, in UserInput) (*models.User, error) {
	if in.Username == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}

	hashed, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     in.Username,
		PasswordHash: hashed,
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
	}
	if err := s.repo.SaveUser(ctx, user); err != nil {
		return nil, err
	}

	s.log.Infof("User created: %d (%s)", user.ID, user.Username)
	return user, nil
}

// ReplaceUser overwrites the user's profile fields. An empty password keeps
// the current one. Accounts are not touched.
func (s *Service) ReplaceUser(ctx context.Context, id int64, in UserInput) (*models.User, error) {
	if in.Username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}

	var user *models.User
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		var err error
		if user, err = tx.FindUserByID(ctx, id); err != nil {
			return err
		}

		user.Username = in.Username
		user.Email = in.Email
		user.FirstName = in.FirstName
		user.LastName = in.LastName
		if in.Password != "" {
			if user.PasswordHash, err = hashPassword(in.Password); err != nil {
				return err
			}
		}
		return tx.SaveUser(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	s.log.Infof("User replaced: %d", user.ID)
	return user, nil
}

// DeleteUser removes the user together with every account it owns and every
// transaction of those accounts, in one database transaction.
func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	var accounts, transactions int64
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		if _, err := tx.FindUserByID(ctx, id); err != nil {
			return err
		}

		owned, err := tx.FindAccountsByUserID(ctx, id)
		if err != nil {
			return err
		}
		for _, account := range owned {
			n, err := deleteAccountCascade(ctx, tx, account.ID)
			if err != nil {
				return err
			}
			accounts++
			transactions += n
		}

		return tx.DeleteUserByID(ctx, id)
	})
	if err != nil {
		return err
	}

	s.log.Infof("User deleted: %d (%d accounts, %d transactions)", id, accounts, transactions)
	return nil
}
