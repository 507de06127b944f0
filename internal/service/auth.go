package service

import (
	"context"
	"regexp"
	"time"

	"github.com/zachbakerdev/open-natter-server/internal/auth"
	"github.com/zachbakerdev/open-natter-server/internal/database"
	"github.com/zachbakerdev/open-natter-server/internal/models"
	"github.com/zachbakerdev/open-natter-server/internal/redis"
	"github.com/zachbakerdev/open-natter-server/internal/snowflake"
)

var usernameRegexp = regexp.MustCompile(`^[a-zA-Z0-9_]{2,32}$`)

// AuthResult carries the token pair and the authenticated user.
type AuthResult struct {
	AccessToken  string
	RefreshToken string
	User         models.User
}

// RefreshResult carries the rotated token pair.
type RefreshResult struct {
	AccessToken  string
	RefreshToken string
}

// AuthService handles registration, login, refresh rotation, and logout.
// Refresh tokens are opaque and live in redis under their own TTL; access
// tokens are stateless JWTs.
type AuthService struct {
	users     database.UserRepository
	tokens    *auth.TokenService
	redis     *redis.Client
	snowflake *snowflake.Generator
}

func NewAuthService(
	users database.UserRepository,
	tokens *auth.TokenService,
	redis *redis.Client,
	sf *snowflake.Generator,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		redis:     redis,
		snowflake: sf,
	}
}

func (s *AuthService) Register(ctx context.Context, username, password string) (*AuthResult, error) {
	if !usernameRegexp.MatchString(username) {
		return nil, BadRequest("INVALID_USERNAME", "username must be 2-32 alphanumeric or underscore characters")
	}
	if len(password) < 6 || len(password) > 128 {
		return nil, BadRequest("INVALID_PASSWORD", "password must be 6-128 characters")
	}

	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if existing != nil {
		return nil, Conflict("USERNAME_TAKEN", "username is already taken")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	user := &models.User{
		ID:           s.snowflake.Generate().Int64(),
		Username:     username,
		DisplayName:  username,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	access, refresh, err := s.issueTokenPair(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{AccessToken: access, RefreshToken: refresh, User: *user}, nil
}

// Login verifies credentials. Unknown usernames and wrong passwords get the
// same response so the endpoint does not leak which usernames exist.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}
	if user == nil {
		return nil, Unauthorized("INVALID_CREDENTIALS", "invalid username or password")
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, Unauthorized("INVALID_CREDENTIALS", "invalid username or password")
	}

	access, refresh, err := s.issueTokenPair(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{AccessToken: access, RefreshToken: refresh, User: *user}, nil
}

// Refresh consumes a refresh token and issues a fresh pair. The old token
// is deleted first; a stolen token can be used at most once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	if refreshToken == "" {
		return nil, BadRequest("MISSING_TOKEN", "refresh_token is required")
	}

	userID, err := s.redis.GetRefreshTokenUserID(ctx, refreshToken)
	if err != nil {
		return nil, Unauthorized("INVALID_TOKEN", "invalid or expired refresh token")
	}
	if err := s.redis.DeleteRefreshToken(ctx, refreshToken); err != nil {
		return nil, Internal("INTERNAL", "internal server error")
	}

	access, refresh, err := s.issueTokenPair(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &RefreshResult{AccessToken: access, RefreshToken: refresh}, nil
}

// Logout invalidates the refresh token. The access token stays valid until
// it expires on its own.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) {
	if refreshToken != "" {
		_ = s.redis.DeleteRefreshToken(ctx, refreshToken)
	}
}

func (s *AuthService) issueTokenPair(ctx context.Context, userID int64) (access, refresh string, err error) {
	access, err = s.tokens.GenerateAccessToken(userID)
	if err != nil {
		return "", "", Internal("INTERNAL", "internal server error")
	}
	refresh, err = s.tokens.GenerateRefreshToken()
	if err != nil {
		return "", "", Internal("INTERNAL", "internal server error")
	}
	if err := s.redis.StoreRefreshToken(ctx, refresh, userID, s.tokens.RefreshExpiry()); err != nil {
		return "", "", Internal("INTERNAL", "internal server error")
	}
	return access, refresh, nil
}
