package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/useraccounts/apiserver/types"
)

// Unique constraint names from the users migration. The insert path relies
// on them to tell which field collided when a concurrent registration loses
// the race.
const (
	constraintUsersEmail    = "users_email_key"
	constraintUsersUsername = "users_username_key"
)

const pqUniqueViolation = "23505"

// UserRepository handles persistence for users.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `user_id, username, email, first_name, last_name, role,
		address, phone_number, social_links, password_hash, created_at, updated_at`

func scanUser(row *sql.Row) (types.User, error) {
	var user types.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.Role,
		&user.Address,
		&user.PhoneNumber,
		&user.SocialLinks,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, unavailable(err)
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (types.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE user_id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (types.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE username = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, username))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

// Create inserts a fully populated user record. The unique indexes on
// username and email are the authoritative duplicate check: a violation is
// mapped back to the matching sentinel error.
func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	const query = `
		INSERT INTO users (user_id, username, email, first_name, last_name, role,
			address, phone_number, social_links, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		user.ID,
		user.Username,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Role,
		user.Address,
		user.PhoneNumber,
		user.SocialLinks,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if dup := duplicateError(err); dup != nil {
			return types.User{}, dup
		}
		return types.User{}, unavailable(err)
	}
	return user, nil
}

// Update persists the mutable profile fields. Identity fields (username,
// email, role, password hash) are not touched here.
func (r *UserRepository) Update(ctx context.Context, user types.User) (types.User, error) {
	const query = `
		UPDATE users
		SET first_name = $1,
			last_name = $2,
			address = $3,
			phone_number = $4,
			social_links = $5,
			updated_at = $6
		WHERE user_id = $7`
	result, err := r.db.ExecContext(
		ctx,
		query,
		user.FirstName,
		user.LastName,
		user.Address,
		user.PhoneNumber,
		user.SocialLinks,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return types.User{}, unavailable(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.User{}, unavailable(err)
	}
	if affected == 0 {
		return types.User{}, ErrNotFound
	}
	return user, nil
}

func duplicateError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || string(pqErr.Code) != pqUniqueViolation {
		return nil
	}
	switch pqErr.Constraint {
	case constraintUsersEmail:
		return ErrDuplicateEmail
	case constraintUsersUsername:
		return ErrDuplicateUsername
	default:
		return nil
	}
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
