package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestQueryTokenRejectedOnRESTRoutes(t *testing.T) {
	env := newTestEnv(t)
	f := env.setup()

	status, _ := env.do(http.MethodGet, "/api/student/quiz/"+f.assignmentID+"?access_token="+f.studentToken, "", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a query token on a REST route, got %d", status)
	}
	status, _ = env.do(http.MethodGet, "/api/student/quiz/"+f.assignmentID, f.studentToken, nil)
	if status != http.StatusOK {
		t.Fatalf("expected the header token to work, got %d", status)
	}
}

func TestStashQueryTokenHidesTokenFromURI(t *testing.T) {
	var (
		seenURI   string
		seenQuery string
		seenToken string
	)
	h := StashQueryToken(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenURI = r.RequestURI
		seenQuery = r.URL.RawQuery
		seenToken, _ = r.Context().Value(queryTokenKey).(string)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/student/quiz/a1/clock?access_token=secret-jwt&lang=en", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	if strings.Contains(seenURI, "secret-jwt") || strings.Contains(seenQuery, "access_token") {
		t.Fatalf("token leaked into the URI: %q %q", seenURI, seenQuery)
	}
	if seenURI != "/api/student/quiz/a1/clock?lang=en" {
		t.Fatalf("unexpected URI %q", seenURI)
	}
	if seenToken != "secret-jwt" {
		t.Fatalf("expected stashed token, got %q", seenToken)
	}
}

func TestStashQueryTokenPassesPlainRequests(t *testing.T) {
	var seenURI string
	h := StashQueryToken(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenURI = r.RequestURI
	}))
	req := httptest.NewRequest(http.MethodGet, "/healthz?x=1", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seenURI != "/healthz?x=1" {
		t.Fatalf("unexpected URI %q", seenURI)
	}
}
