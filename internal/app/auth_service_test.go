package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"secure-quiz-service/internal/app"
	"secure-quiz-service/internal/domain"
	"secure-quiz-service/internal/infra/memory"
)

const jwtSecret = "jwt-test-secret"

func newAuth(t *testing.T) (*app.AuthService, domain.User) {
	t.Helper()
	store := memory.NewStore()
	user, err := app.NewAdminService(store, app.NoRetry).CreateUser(context.Background(), app.NewUser{
		Username: "ana", Password: "secret1", Role: domain.RoleTeacher,
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return app.NewAuthService(store, memory.NewTokenDenylist(), jwtSecret, time.Hour, app.NoRetry), user
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	auth, user := newAuth(t)

	session, err := auth.Login(ctx, "ana", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.UserID != user.ID || session.Role != domain.RoleTeacher || session.AccessToken == "" {
		t.Fatalf("unexpected session: %+v", session)
	}

	claims, err := auth.Authenticate(ctx, session.AccessToken)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if claims.Subject != user.ID || claims.Role != domain.RoleTeacher || claims.ID == "" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	for _, tc := range []struct{ username, password string }{
		{"ana", "wrong-password"},
		{"nobody", "secret1"},
	} {
		if _, err := auth.Login(ctx, tc.username, tc.password); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("%s: expected invalid credentials, got %v", tc.username, err)
		}
	}
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	ctx := context.Background()
	auth, user := newAuth(t)

	sign := func(secret string, claims *app.Claims) string {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return raw
	}
	claims := func(expires time.Time) *app.Claims {
		return &app.Claims{
			Role: domain.RoleTeacher,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   user.ID,
				ID:        "jti",
				Issuer:    "secure-quiz-service",
				ExpiresAt: jwt.NewNumericDate(expires),
			},
		}
	}

	tokens := map[string]string{
		"garbage":      "not.a.token",
		"wrong secret": sign("other-secret", claims(time.Now().Add(time.Hour))),
		"expired":      sign(jwtSecret, claims(time.Now().Add(-time.Minute))),
	}
	for name, raw := range tokens {
		if _, err := auth.Authenticate(ctx, raw); !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("%s: expected unauthorized, got %v", name, err)
		}
	}

	if _, err := auth.Authenticate(ctx, sign(jwtSecret, claims(time.Now().Add(time.Hour)))); err != nil {
		t.Fatalf("well-formed token rejected: %v", err)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	ctx := context.Background()
	auth, user := newAuth(t)

	first, _, err := auth.IssueToken(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	second, _, err := auth.IssueToken(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := auth.Authenticate(ctx, first)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if err := auth.Logout(ctx, claims); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := auth.Authenticate(ctx, first); !errors.Is(err, domain.ErrTokenRevoked) {
		t.Fatalf("expected revoked, got %v", err)
	}
	if _, err := auth.Authenticate(ctx, second); err != nil {
		t.Fatalf("other sessions must stay valid: %v", err)
	}
}
