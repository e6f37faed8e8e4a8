package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/leavehub/leavehub-backend-go/internal/domain/user"
	"github.com/leavehub/leavehub-backend-go/internal/pkg/database"
)

type userRepositoryImpl struct {
	db *database.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

const userColumns = `
	id, email, full_name, password_hash, oauth_provider, oauth_provider_id,
	email_verified, created_at, updated_at
`

func scanUser(row pgx.Row, u *user.User) error {
	return row.Scan(
		&u.ID, &u.Email, &u.FullName, &u.PasswordHash,
		&u.OAuthProvider, &u.OAuthProviderID, &u.EmailVerified,
		&u.CreatedAt, &u.UpdatedAt,
	)
}

// GetByEmail implements user.UserRepository.
func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	var u user.User
	err := scanUser(q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email), &u)
	if err != nil {
		if err == pgx.ErrNoRows {
			return u, user.ErrUserNotFound
		}
		return u, fmt.Errorf("failed to get user by email: %w", err)
	}

	return u, nil
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	var u user.User
	err := scanUser(q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id), &u)
	if err != nil {
		if err == pgx.ErrNoRows {
			return u, user.ErrUserNotFound
		}
		return u, fmt.Errorf("failed to get user by id: %w", err)
	}

	return u, nil
}

// Create implements user.UserRepository.
func (r *userRepositoryImpl) Create(ctx context.Context, newUser user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO users (id, email, full_name, password_hash, oauth_provider, oauth_provider_id, email_verified)
		VALUES ($1, lower($2), $3, $4, $5, $6, $7)
		RETURNING ` + userColumns

	var created user.User
	err := scanUser(q.QueryRow(ctx, query,
		newUser.ID, newUser.Email, newUser.FullName, newUser.PasswordHash,
		newUser.OAuthProvider, newUser.OAuthProviderID, newUser.EmailVerified,
	), &created)
	if err != nil {
		return user.User{}, err
	}

	return created, nil
}

// LinkGoogleAccount implements user.UserRepository.
func (r *userRepositoryImpl) LinkGoogleAccount(ctx context.Context, googleID string, email string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE users
		SET oauth_provider = 'google', oauth_provider_id = $1, email_verified = true, updated_at = NOW()
		WHERE lower(email) = lower($2)
		RETURNING ` + userColumns

	var updated user.User
	err := scanUser(q.QueryRow(ctx, query, googleID, email), &updated)
	if err != nil {
		if err == pgx.ErrNoRows {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to link google account: %w", err)
	}

	return updated, nil
}
