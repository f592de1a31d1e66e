package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dan9191/bank-api/internal/models"
)

const userColumns = "id, username, password_hash, email, first_name, last_name"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Email, &user.FirstName, &user.LastName)
	return user, err
}

// FindAllUsers returns every user ordered by id.
func (r *Repository) FindAllUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := r.q.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

// FindUserByID retrieves a user by id
func (r *Repository) FindUserByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := scanUser(r.q.QueryRowContext(ctx,
		r.rebind("SELECT "+userColumns+" FROM users WHERE id = ?"), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("user", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// FindUserByUsername retrieves a user by username. A missing user yields ErrNotFound.
func (r *Repository) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := scanUser(r.q.QueryRowContext(ctx,
		r.rebind("SELECT "+userColumns+" FROM users WHERE username = ?"), username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// CountUsers returns the number of stored users.
func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := r.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

// SaveUser inserts the user when ID is zero and assigns the new id,
// otherwise it overwrites the stored row.
func (r *Repository) SaveUser(ctx context.Context, user *models.User) error {
	if user.ID == 0 {
		err := r.q.QueryRowContext(ctx, r.rebind(`
			INSERT INTO users (username, password_hash, email, first_name, last_name)
			VALUES (?, ?, ?, ?, ?)
			RETURNING id`),
			user.Username, user.PasswordHash, user.Email, user.FirstName, user.LastName,
		).Scan(&user.ID)
		if isUniqueViolation(err) {
			return fmt.Errorf("username %q: %w", user.Username, ErrDuplicate)
		}
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	}

	res, err := r.q.ExecContext(ctx, r.rebind(`
		UPDATE users
		SET username = ?, password_hash = ?, email = ?, first_name = ?, last_name = ?
		WHERE id = ?`),
		user.Username, user.PasswordHash, user.Email, user.FirstName, user.LastName, user.ID,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("username %q: %w", user.Username, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return affected(res, "user", user.ID)
}

// DeleteUserByID removes a single user row. Callers that need the account
// cascade should go through the service.
func (r *Repository) DeleteUserByID(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx, r.rebind("DELETE FROM users WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return affected(res, "user", id)
}
