package auth

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/leavehub/leavehub-backend-go/internal/domain/auth"
	"github.com/leavehub/leavehub-backend-go/internal/domain/user"
	"github.com/leavehub/leavehub-backend-go/internal/pkg/jwt"
	"github.com/leavehub/leavehub-backend-go/internal/pkg/oauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
)

const (
	testSecret     = "test-secret-key-for-jwt"
	testAccessExp  = "1h"
	testRefreshExp = "24h"
)

type passTxRunner struct{}

func (passTxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeUserRepo struct {
	byEmail   map[string]user.User
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: make(map[string]user.User)}
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (f *fakeUserRepo) Create(ctx context.Context, newUser user.User) (user.User, error) {
	if f.createErr != nil {
		return user.User{}, f.createErr
	}
	if _, exists := f.byEmail[newUser.Email]; exists {
		return user.User{}, &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	}
	f.byEmail[newUser.Email] = newUser
	return newUser, nil
}

func (f *fakeUserRepo) LinkGoogleAccount(ctx context.Context, googleID, email string) (user.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	provider := "google"
	u.OAuthProvider = &provider
	u.OAuthProviderID = &googleID
	u.EmailVerified = true
	f.byEmail[email] = u
	return u, nil
}

type fakeJWTRepo struct {
	saved   []string
	revoked map[string]bool
}

func newFakeJWTRepo() *fakeJWTRepo {
	return &fakeJWTRepo{revoked: make(map[string]bool)}
}

func (f *fakeJWTRepo) CreateRefreshToken(ctx context.Context, userID, token string, expiresAt int64) error {
	f.saved = append(f.saved, token)
	return nil
}

func (f *fakeJWTRepo) IsRefreshTokenRevoked(ctx context.Context, token string) (bool, error) {
	return f.revoked[token], nil
}

func (f *fakeJWTRepo) RevokeRefreshToken(ctx context.Context, token string) error {
	f.revoked[token] = true
	return nil
}

type fakeGoogleService struct {
	profile oauth.GoogleProfile
	err     error
}

func (f *fakeGoogleService) AuthCodeURL(state string) string { return "https://accounts.google.test" }

func (f *fakeGoogleService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &oauth2.Token{AccessToken: "google-access-token"}, nil
}

func (f *fakeGoogleService) FetchProfile(ctx context.Context, token *oauth2.Token) (oauth.GoogleProfile, error) {
	return f.profile, f.err
}

func newAuthTestService(userRepo *fakeUserRepo, jwtRepo *fakeJWTRepo, google oauth.GoogleService) auth.AuthService {
	jwtService := jwt.NewJWTService(testSecret, testAccessExp, testRefreshExp)
	return NewAuthService(passTxRunner{}, userRepo, jwtService, jwtRepo, google)
}

func seedUser(repo *fakeUserRepo, email, password string) user.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	hashStr := string(hash)
	u := user.User{
		ID:           "user-" + email,
		Email:        email,
		FullName:     "Seeded User",
		PasswordHash: &hashStr,
	}
	repo.byEmail[email] = u
	return u
}

func TestAuthService_Register_Success(t *testing.T) {
	ctx := context.Background()
	userRepo := newFakeUserRepo()
	jwtRepo := newFakeJWTRepo()
	svc := newAuthTestService(userRepo, jwtRepo, &fakeGoogleService{})

	resp, err := svc.Register(ctx, auth.RegisterRequest{
		FullName:        "Alice Smith",
		Email:           "  Alice@Example.COM ",
		Password:        "password123",
		ConfirmPassword: "password123",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	// Stored under the normalized email, refresh token persisted
	_, ok := userRepo.byEmail["alice@example.com"]
	assert.True(t, ok)
	assert.Len(t, jwtRepo.saved, 1)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	userRepo := newFakeUserRepo()
	svc := newAuthTestService(userRepo, newFakeJWTRepo(), &fakeGoogleService{})

	seedUser(userRepo, "alice@example.com", "password123")

	_, err := svc.Register(ctx, auth.RegisterRequest{
		FullName:        "Alice Again",
		Email:           "alice@example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
	})

	assert.ErrorIs(t, err, user.ErrUserEmailExists)
}

func TestAuthService_Register_PasswordMismatch(t *testing.T) {
	ctx := context.Background()
	svc := newAuthTestService(newFakeUserRepo(), newFakeJWTRepo(), &fakeGoogleService{})

	_, err := svc.Register(ctx, auth.RegisterRequest{
		FullName:        "Alice Smith",
		Email:           "alice@example.com",
		Password:        "password123",
		ConfirmPassword: "password124",
	})

	assert.Error(t, err)
}

func TestAuthService_Login_Success(t *testing.T) {
	ctx := context.Background()
	userRepo := newFakeUserRepo()
	seedUser(userRepo, "alice@example.com", "password123")
	svc := newAuthTestService(userRepo, newFakeJWTRepo(), &fakeGoogleService{})

	resp, err := svc.Login(ctx, auth.LoginRequest{Email: "Alice@Example.com", Password: "password123"})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	ctx := context.Background()
	userRepo := newFakeUserRepo()
	seedUser(userRepo, "alice@example.com", "password123")
	svc := newAuthTestService(userRepo, newFakeJWTRepo(), &fakeGoogleService{})

	_, err := svc.Login(ctx, auth.LoginRequest{Email: "alice@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAuthService_Login_UnknownEmailIsInvalidCredentials(t *testing.T) {
	ctx := context.Background()
	svc := newAuthTestService(newFakeUserRepo(), newFakeJWTRepo(), &fakeGoogleService{})

	// The caller cannot tell an unknown email from a wrong password
	_, err := svc.Login(ctx, auth.LoginRequest{Email: "ghost@example.com", Password: "password123"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAuthService_Login_OAuthOnlyAccountHasNoPassword(t *testing.T) {
	ctx := context.Background()
	userRepo := newFakeUserRepo()
	provider := "google"
	userRepo.byEmail["alice@example.com"] = user.User{
		ID:            "user-alice",
		Email:         "alice@example.com",
		OAuthProvider: &provider,
	}
	svc := newAuthTestService(userRepo, newFakeJWTRepo(), &fakeGoogleService{})

	_, err := svc.Login(ctx, auth.LoginRequest{Email: "alice@example.com", Password: "password123"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAuthService_LoginWithGoogle_CreatesNewUser(t *testing.T) {
	ctx := context.Background()
	userRepo := newFakeUserRepo()
	google := &fakeGoogleService{profile: oauth.GoogleProfile{
		GoogleID:      "g-123",
		Email:         "Alice@Example.com",
		Name:          "Alice Smith",
		VerifiedEmail: true,
	}}
	svc := newAuthTestService(userRepo, newFakeJWTRepo(), google)

	resp, err := svc.LoginWithGoogle(ctx, "oauth-code")

	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	created, ok := userRepo.byEmail["alice@example.com"]
	require.True(t, ok)
	assert.True(t, created.EmailVerified)
	require.NotNil(t, created.OAuthProvider)
	assert.Equal(t, "google", *created.OAuthProvider)
}

func TestAuthService_LoginWithGoogle_LinksExistingUser(t *testing.T) {
	ctx := context.Background()
	userRepo := newFakeUserRepo()
	seedUser(userRepo, "alice@example.com", "password123")
	google := &fakeGoogleService{profile: oauth.GoogleProfile{
		GoogleID:      "g-123",
		Email:         "alice@example.com",
		Name:          "Alice Smith",
		VerifiedEmail: true,
	}}
	svc := newAuthTestService(userRepo, newFakeJWTRepo(), google)

	_, err := svc.LoginWithGoogle(ctx, "oauth-code")

	require.NoError(t, err)
	linked := userRepo.byEmail["alice@example.com"]
	require.NotNil(t, linked.OAuthProviderID)
	assert.Equal(t, "g-123", *linked.OAuthProviderID)
	// The password login still works after linking
	assert.True(t, linked.HasPassword())
}

func TestAuthService_LoginWithGoogle_UnverifiedEmailRejected(t *testing.T) {
	ctx := context.Background()
	google := &fakeGoogleService{profile: oauth.GoogleProfile{
		GoogleID: "g-123",
		Email:    "alice@example.com",
	}}
	svc := newAuthTestService(newFakeUserRepo(), newFakeJWTRepo(), google)

	_, err := svc.LoginWithGoogle(ctx, "oauth-code")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAuthService_RefreshToken_Success(t *testing.T) {
	ctx := context.Background()
	userRepo := newFakeUserRepo()
	seedUser(userRepo, "alice@example.com", "password123")
	jwtRepo := newFakeJWTRepo()
	svc := newAuthTestService(userRepo, jwtRepo, &fakeGoogleService{})

	login, err := svc.Login(ctx, auth.LoginRequest{Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)

	resp, err := svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: login.RefreshToken})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestAuthService_RefreshToken_RevokedAfterLogout(t *testing.T) {
	ctx := context.Background()
	userRepo := newFakeUserRepo()
	seedUser(userRepo, "alice@example.com", "password123")
	jwtRepo := newFakeJWTRepo()
	svc := newAuthTestService(userRepo, jwtRepo, &fakeGoogleService{})

	login, err := svc.Login(ctx, auth.LoginRequest{Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, login.RefreshToken))

	_, err = svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	assert.ErrorIs(t, err, auth.ErrRefreshTokenRevoked)
}

func TestAuthService_RefreshToken_AccessTokenRejected(t *testing.T) {
	ctx := context.Background()
	userRepo := newFakeUserRepo()
	seedUser(userRepo, "alice@example.com", "password123")
	svc := newAuthTestService(userRepo, newFakeJWTRepo(), &fakeGoogleService{})

	login, err := svc.Login(ctx, auth.LoginRequest{Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)

	// An access token is never a valid refresh token
	_, err = svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: login.AccessToken})
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
