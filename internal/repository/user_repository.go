package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/motopark/api/internal/database"
	"github.com/stwalsh4118/motopark/api/internal/models"
)

// UserRepository defines the data access operations for accounts.
type UserRepository interface {
	// Create inserts a user. A duplicate email surfaces as a unique
	// violation from the driver.
	Create(ctx context.Context, user models.NewUser) (*models.User, error)

	// FindByEmail returns nil, nil when no user has the email.
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByID returns nil, nil when the user does not exist.
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type userRepository struct {
	db *database.Database
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *database.Database) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, password_hash, is_anonymous, is_admin, is_active, created_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.IsAnonymous,
		&u.IsAdmin,
		&u.IsActive,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) Create(ctx context.Context, user models.NewUser) (*models.User, error) {
	query := `
		INSERT INTO users (email, password_hash, is_anonymous, is_admin)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns

	created, err := scanUser(r.db.Pool.QueryRow(ctx, query,
		user.Email,
		user.PasswordHash,
		user.IsAnonymous,
		user.IsAdmin,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create user %s: %w", user.Email, err)
	}
	return created, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.Pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query user by email: %w", err)
	}
	return user, nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query user %s: %w", id, err)
	}
	return user, nil
}
