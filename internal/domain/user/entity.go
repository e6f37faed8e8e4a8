package user

import "time"

// User is an authenticated identity. Organization roles live on memberships,
// not on the user: one account can belong to many organizations.
type User struct {
	ID              string
	Email           string
	FullName        string
	PasswordHash    *string
	OAuthProvider   *string
	OAuthProviderID *string
	EmailVerified   bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasPassword reports whether the account can log in with credentials
// (OAuth-only accounts have no password hash).
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}
