package api_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/garnizeh/cpdtrack/api"
	"github.com/garnizeh/cpdtrack/internal/identity"
	"github.com/garnizeh/cpdtrack/internal/models"
)

func TestLoggingMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	handler := api.LoggingMiddleware(next)
	req := httptest.NewRequest(http.MethodGet, "/log", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)
	res := w.Result()
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if string(b) != "ok" {
		t.Fatalf("unexpected body: %q", string(b))
	}
}

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := api.CORSMiddleware(next)

	// OPTIONS should return 204 and not call next
	reqOpt := httptest.NewRequest(http.MethodOptions, "/cors", nil)
	wOpt := httptest.NewRecorder()
	handler.ServeHTTP(wOpt, reqOpt)
	resOpt := wOpt.Result()
	defer resOpt.Body.Close()
	if resOpt.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204 for OPTIONS, got %d", resOpt.StatusCode)
	}
	if got := resOpt.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected CORS header set, got %q", got)
	}

	reqGet := httptest.NewRequest(http.MethodGet, "/cors", nil)
	wGet := httptest.NewRecorder()
	handler.ServeHTTP(wGet, reqGet)
	resGet := wGet.Result()
	defer resGet.Body.Close()
	if resGet.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for GET, got %d", resGet.StatusCode)
	}
	got := resGet.Header.Get("Access-Control-Allow-Methods")
	for _, m := range []string{"GET", "PATCH", "DELETE"} {
		if !strings.Contains(got, m) {
			t.Fatalf("expected Allow-Methods to include %s, got %q", m, got)
		}
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	pan := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	handler := api.RecoveryMiddleware(pan)
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	res := w.Result()
	defer res.Body.Close()
	if res.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500 from panic recovery, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), `"error":"internal server error"`) {
		t.Fatalf("unexpected body for recovery: %s", string(b))
	}

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	handler2 := api.RecoveryMiddleware(ok)
	w2 := httptest.NewRecorder()
	handler2.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/ok", nil))
	if w2.Result().StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for normal path, got %d", w2.Result().StatusCode)
	}
}

type fakeAuthenticator struct {
	sessions map[string]*identity.Session
	err      error
}

func (f fakeAuthenticator) Authenticate(_ context.Context, token string) (*identity.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	if s, ok := f.sessions[token]; ok {
		return s, nil
	}
	return nil, models.ErrUnauthorized
}

func TestAuthMiddleware(t *testing.T) {
	alice := &identity.Session{UserID: "alice", Email: "alice@example.com", ExpiresAt: time.Now().Add(time.Hour)}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := api.SessionFromContext(r.Context())
		if !ok {
			t.Errorf("session missing from context")
			w.WriteHeader(http.StatusTeapot)
			return
		}
		_, _ = io.WriteString(w, s.UserID)
	})

	cases := []struct {
		name       string
		auth       fakeAuthenticator
		authHeader string
		wantStatus int
		wantBody   string
	}{
		{name: "MissingHeader", authHeader: "", wantStatus: http.StatusUnauthorized},
		{name: "EmptyBearer", authHeader: "Bearer ", wantStatus: http.StatusUnauthorized},
		{name: "WrongScheme", authHeader: "Basic abc", wantStatus: http.StatusUnauthorized},
		{name: "BadToken", authHeader: "Bearer bad.token.here", wantStatus: http.StatusUnauthorized},
		{
			name:       "StoreFailure",
			auth:       fakeAuthenticator{err: errors.New("db down")},
			authHeader: "Bearer good",
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "ValidToken",
			auth:       fakeAuthenticator{sessions: map[string]*identity.Session{"good": alice}},
			authHeader: "Bearer good",
			wantStatus: http.StatusOK,
			wantBody:   "alice",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			handler := api.AuthMiddleware(c.auth)(next)
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if c.authHeader != "" {
				req.Header.Set("Authorization", c.authHeader)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			if w.Code != c.wantStatus {
				t.Fatalf("expected %d got %d", c.wantStatus, w.Code)
			}
			if c.wantBody != "" && w.Body.String() != c.wantBody {
				t.Fatalf("unexpected body %q", w.Body.String())
			}
		})
	}
}

func TestWithSession(t *testing.T) {
	if _, ok := api.SessionFromContext(context.Background()); ok {
		t.Fatalf("expected no session in empty context")
	}
	ctx := api.WithSession(context.Background(), &identity.Session{UserID: "bob"})
	s, ok := api.SessionFromContext(ctx)
	if !ok || s.UserID != "bob" {
		t.Fatalf("expected bob session, got %+v", s)
	}
}
