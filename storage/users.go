// Package storage persists user records in Postgres.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	// Registers the "pgx" database/sql driver.
	_ "github.com/jackc/pgx/v5/stdlib"

	"lotcheck/types"
)

// ErrUserExists is returned by Create when the username is taken.
var ErrUserExists = errors.New("user already exists")

// ErrEmptyUsername is returned by Create for a blank username.
var ErrEmptyUsername = errors.New("username is required")

const schema = `
	CREATE TABLE IF NOT EXISTS users (
		id       BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE
	)
`

// UserStore is the create/list contract used by the HTTP layer.
type UserStore interface {
	List(ctx context.Context) ([]types.User, error)
	Create(ctx context.Context, username string) (*types.User, error)
}

// Users handles user records.
type Users struct {
	db *sql.DB
}

// Open connects to Postgres at url and verifies the connection.
func Open(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// NewUsers creates a store over db.
func NewUsers(db *sql.DB) *Users {
	return &Users{db: db}
}

// EnsureSchema creates the users table if it does not exist.
func (u *Users) EnsureSchema(ctx context.Context) error {
	if _, err := u.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (u *Users) Ping(ctx context.Context) error {
	return u.db.PingContext(ctx)
}

// List returns every user ordered by id.
func (u *Users) List(ctx context.Context) ([]types.User, error) {
	rows, err := u.db.QueryContext(ctx, `SELECT id, username FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []types.User{}
	for rows.Next() {
		var user types.User
		if err := rows.Scan(&user.ID, &user.Username); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Create inserts a user, storing username verbatim. A taken username returns
// ErrUserExists and leaves the table unchanged. A blank username is rejected.
func (u *Users) Create(ctx context.Context, username string) (*types.User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, ErrEmptyUsername
	}

	query := `
		INSERT INTO users (username)
		VALUES ($1)
		ON CONFLICT (username) DO NOTHING
		RETURNING id
	`

	var id int64
	err := u.db.QueryRowContext(ctx, query, username).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserExists
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &types.User{ID: id, Username: username}, nil
}
