// Package repository provides persistence implementations for the user
// and image services against a PostgreSQL database.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iamlokanath/imagehub/internal/models"
	"github.com/lib/pq"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when registering an email that is taken.
var ErrDuplicateEmail = errors.New("email already registered")

// PostgresUserRepository implements user persistence using a PostgreSQL database.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository with the given
// database connection. db must be a valid *sql.DB connected to a PostgreSQL instance.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

// CreateUser inserts a new user row with the given password hash.
// Returns ErrDuplicateEmail if the email is already registered.
func (r *PostgresUserRepository) CreateUser(ctx context.Context, user models.User, passwordHash string) error {
	_, err := r.DB.ExecContext(
		ctx,
		`INSERT INTO users (id, name, email, password_hash, role) VALUES ($1, $2, $3, $4, $5)`,
		user.ID, user.Name, user.Email, passwordHash, string(user.Role),
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return ErrDuplicateEmail
	}
	return err
}

// GetByEmail fetches a user and their password hash by email.
// Returns ErrNotFound if no such user exists.
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (models.User, string, error) {
	var (
		u    models.User
		hash string
		role string
	)
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT id, name, email, password_hash, role FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Name, &u.Email, &hash, &role)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, "", ErrNotFound
	}
	if err != nil {
		return models.User{}, "", fmt.Errorf("GetByEmail: %w", err)
	}
	u.Role, err = models.ParseRole(role)
	if err != nil {
		return models.User{}, "", fmt.Errorf("GetByEmail: %w", err)
	}
	return u, hash, nil
}

// GetByID fetches a user by id. Returns ErrNotFound if no such user exists.
func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	var (
		u    models.User
		role string
	)
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT id, name, email, role FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Name, &u.Email, &role)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("GetByID: %w", err)
	}
	u.Role, err = models.ParseRole(role)
	if err != nil {
		return models.User{}, fmt.Errorf("GetByID: %w", err)
	}
	return u, nil
}
