package http

import (
	"context"
	"net/http"
	"strings"

	"secure-quiz-service/internal/app"
)

type ctxKey int

const (
	claimsKey ctxKey = iota
	queryTokenKey
)

// queryTokenParam carries the token on websocket handshakes, where browsers cannot set headers.
const queryTokenParam = "access_token"

func withClaims(ctx context.Context, claims *app.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func claimsFrom(ctx context.Context) *app.Claims {
	claims, _ := ctx.Value(claimsKey).(*app.Claims)
	return claims
}

func headerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// StashQueryToken moves access_token out of the URL into the request context, so
// nothing downstream (the access log included) sees it in the URI. Only
// AuthenticatedWS reads the stashed value.
func StashQueryToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		token := query.Get(queryTokenParam)
		if !query.Has(queryTokenParam) {
			next.ServeHTTP(w, r)
			return
		}
		query.Del(queryTokenParam)

		r2 := r.Clone(context.WithValue(r.Context(), queryTokenKey, token))
		r2.URL.RawQuery = query.Encode()
		r2.RequestURI = r2.URL.RequestURI()
		next.ServeHTTP(w, r2)
	})
}

func authenticate(auth *app.AuthService, tokenOf func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := tokenOf(r)
			if raw == "" {
				writeMessage(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			claims, err := auth.Authenticate(r.Context(), raw)
			if err != nil {
				writeError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

// Authenticated verifies the Authorization bearer token and stores its claims in the request context.
func Authenticated(auth *app.AuthService) func(http.Handler) http.Handler {
	return authenticate(auth, headerToken)
}

// AuthenticatedWS also accepts the token stashed by StashQueryToken. Use it on websocket routes only.
func AuthenticatedWS(auth *app.AuthService) func(http.Handler) http.Handler {
	return authenticate(auth, func(r *http.Request) string {
		if raw := headerToken(r); raw != "" {
			return raw
		}
		token, _ := r.Context().Value(queryTokenKey).(string)
		return token
	})
}
