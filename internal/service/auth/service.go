package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/leavehub/leavehub-backend-go/internal/domain/auth"
	"github.com/leavehub/leavehub-backend-go/internal/domain/user"
	"github.com/leavehub/leavehub-backend-go/internal/pkg/database"
	"github.com/leavehub/leavehub-backend-go/internal/pkg/jwt"
	"github.com/leavehub/leavehub-backend-go/internal/pkg/oauth"
	"github.com/leavehub/leavehub-backend-go/internal/pkg/validator"
	"github.com/leavehub/leavehub-backend-go/internal/repository/postgresql"
	"golang.org/x/crypto/bcrypt"
)

type authServiceImpl struct {
	tx         database.TxRunner
	userRepo   user.UserRepository
	jwtService jwt.Service
	jwtRepo    postgresql.JWTRepository
	google     oauth.GoogleService
}

func NewAuthService(
	tx database.TxRunner,
	userRepo user.UserRepository,
	jwtService jwt.Service,
	jwtRepo postgresql.JWTRepository,
	google oauth.GoogleService,
) auth.AuthService {
	return &authServiceImpl{
		tx:         tx,
		userRepo:   userRepo,
		jwtService: jwtService,
		jwtRepo:    jwtRepo,
		google:     google,
	}
}

func (a *authServiceImpl) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Register implements auth.AuthService.
func (a *authServiceImpl) Register(ctx context.Context, req auth.RegisterRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	hashed, err := a.hashPassword(req.Password)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := a.userRepo.Create(ctx, user.User{
		ID:           uuid.New().String(),
		Email:        validator.NormalizeEmail(req.Email),
		FullName:     req.FullName,
		PasswordHash: &hashed,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return auth.TokenResponse{}, user.ErrUserEmailExists
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to create user: %w", err)
	}

	return a.issueTokens(ctx, created)
}

// Login implements auth.AuthService.
func (a *authServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	userData, err := a.userRepo.GetByEmail(ctx, validator.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if !userData.HasPassword() {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*userData.PasswordHash), []byte(req.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	return a.issueTokens(ctx, userData)
}

// LoginWithGoogle implements auth.AuthService.
func (a *authServiceImpl) LoginWithGoogle(ctx context.Context, code string) (auth.TokenResponse, error) {
	oauthToken, err := a.google.Exchange(ctx, code)
	if err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	profile, err := a.google.FetchProfile(ctx, oauthToken)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to fetch google profile: %w", err)
	}
	if !profile.VerifiedEmail {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	userData, err := a.userRepo.LinkGoogleAccount(ctx, profile.GoogleID, profile.Email)
	if errors.Is(err, user.ErrUserNotFound) {
		provider := "google"
		userData, err = a.userRepo.Create(ctx, user.User{
			ID:              uuid.New().String(),
			Email:           validator.NormalizeEmail(profile.Email),
			FullName:        profile.Name,
			OAuthProvider:   &provider,
			OAuthProviderID: &profile.GoogleID,
			EmailVerified:   true,
		})
	}
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to resolve google user: %w", err)
	}

	return a.issueTokens(ctx, userData)
}

// RefreshToken implements auth.AuthService.
func (a *authServiceImpl) RefreshToken(ctx context.Context, req auth.RefreshTokenRequest) (auth.AccessTokenResponse, error) {
	if req.RefreshToken == "" {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}

	userID, err := a.jwtService.DecodeRefreshToken(req.RefreshToken)
	if err != nil {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}

	revoked, err := a.jwtRepo.IsRefreshTokenRevoked(ctx, req.RefreshToken)
	if err != nil {
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to check refresh token: %w", err)
	}
	if revoked {
		return auth.AccessTokenResponse{}, auth.ErrRefreshTokenRevoked
	}

	userData, err := a.userRepo.GetByID(ctx, userID)
	if err != nil {
		return auth.AccessTokenResponse{}, auth.ErrUserNotFound
	}

	accessToken, expiresAt, err := a.jwtService.GenerateAccessToken(userData.ID, userData.Email)
	if err != nil {
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}

	return auth.AccessTokenResponse{
		AccessToken:          accessToken,
		AccessTokenExpiresIn: expiresAt,
	}, nil
}

// Logout implements auth.AuthService.
func (a *authServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return a.jwtRepo.RevokeRefreshToken(ctx, refreshToken)
}

func (a *authServiceImpl) issueTokens(ctx context.Context, userData user.User) (auth.TokenResponse, error) {
	var tokenResponse auth.TokenResponse
	var err error

	tokenResponse.AccessToken, tokenResponse.AccessTokenExpiresIn, err = a.jwtService.GenerateAccessToken(userData.ID, userData.Email)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}
	tokenResponse.RefreshToken, tokenResponse.RefreshTokenExpiresIn, err = a.jwtService.GenerateRefreshToken(userData.ID)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create refresh token: %w", err)
	}

	err = a.tx.RunInTx(ctx, func(txCtx context.Context) error {
		return a.jwtRepo.CreateRefreshToken(txCtx, userData.ID, tokenResponse.RefreshToken, tokenResponse.RefreshTokenExpiresIn)
	})
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to save refresh token: %w", err)
	}

	return tokenResponse, nil
}
