package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"secure-quiz-service/internal/domain"
)

const tokenIssuer = "secure-quiz-service"

// Claims identify the caller of every authenticated request.
type Claims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// AuthService issues and verifies HS256 bearer tokens.
type AuthService struct {
	users    UserRepository
	denylist TokenDenylist
	hmac     []byte
	ttl      time.Duration
	retry    Retrier
	now      func() time.Time
}

func NewAuthService(users UserRepository, denylist TokenDenylist, secret string, ttl time.Duration, retry Retrier) *AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{
		users:    users,
		denylist: denylist,
		hmac:     []byte(secret),
		ttl:      ttl,
		retry:    retry,
		now:      time.Now,
	}
}

// Session is the login response.
type Session struct {
	AccessToken string      `json:"accessToken"`
	ExpiresAt   time.Time   `json:"expiresAt"`
	UserID      string      `json:"id"`
	Username    string      `json:"username"`
	Role        domain.Role `json:"role"`
}

func (a *AuthService) Login(ctx context.Context, username, password string) (Session, error) {
	user, err := retryValue(ctx, a.retry, "get user", func() (domain.User, error) {
		return a.users.GetUserByUsername(ctx, username)
	})
	if errors.Is(err, domain.ErrNotFound) {
		return Session{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return Session{}, domain.ErrInvalidCredentials
	}

	token, expires, err := a.IssueToken(user)
	if err != nil {
		return Session{}, err
	}
	return Session{
		AccessToken: token,
		ExpiresAt:   expires,
		UserID:      user.ID,
		Username:    user.Username,
		Role:        user.Role,
	}, nil
}

// IssueToken signs a token for user.
func (a *AuthService) IssueToken(user domain.User) (string, time.Time, error) {
	now := a.now()
	expires := now.Add(a.ttl)
	claims := &Claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.NewString(),
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.hmac)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

// Authenticate verifies signature, expiry and revocation.
func (a *AuthService) Authenticate(ctx context.Context, raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return a.hmac, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(a.now))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
	}
	if !claims.Role.Valid() || claims.Subject == "" {
		return nil, fmt.Errorf("%w: incomplete claims", domain.ErrUnauthorized)
	}

	revoked, err := retryValue(ctx, a.retry, "check denylist", func() (bool, error) {
		return a.denylist.IsRevoked(ctx, claims.ID)
	})
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, domain.ErrTokenRevoked
	}
	return claims, nil
}

// Logout revokes the token until its natural expiry.
func (a *AuthService) Logout(ctx context.Context, claims *Claims) error {
	until := a.now().Add(a.ttl)
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	return a.retry.do(ctx, "revoke token", func() error {
		return a.denylist.Revoke(ctx, claims.ID, until)
	})
}
