package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"log/slog"

	"github.com/gorilla/mux"

	"github.com/garnizeh/cpdtrack/internal/identity"
	"github.com/garnizeh/cpdtrack/internal/models"
)

type ctxKey string

const ctxSession ctxKey = "session"

// package-level logger used by middleware and helpers; can be set via SetLogger from caller
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger installs a logger for the api package. Passing nil is a no-op.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// SessionFromContext returns the session stored by AuthMiddleware.
func SessionFromContext(ctx context.Context) (*identity.Session, bool) {
	s, ok := ctx.Value(ctxSession).(*identity.Session)
	return s, ok && s != nil
}

// WithSession stores s in ctx the same way AuthMiddleware does.
func WithSession(ctx context.Context, s *identity.Session) context.Context {
	return context.WithValue(ctx, ctxSession, s)
}

func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Info("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote", r.RemoteAddr),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic", slog.Any("err", err), slog.String("path", r.URL.Path))
				writeMessage(w, "internal server error", http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

type authenticator interface {
	Authenticate(ctx context.Context, token string) (*identity.Session, error)
}

// AuthMiddleware requires a valid, unrevoked Bearer token and stores its session in the request context.
func AuthMiddleware(auth authenticator) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeMessage(w, "missing Authorization header", http.StatusUnauthorized)
				return
			}

			var tokenString string
			if _, err := fmt.Sscanf(authHeader, "Bearer %s", &tokenString); err != nil {
				logger.Debug("failed to parse Authorization header", slog.Any("err", err))
			}
			if tokenString == "" {
				writeMessage(w, "invalid Authorization header", http.StatusUnauthorized)
				return
			}

			sess, err := auth.Authenticate(r.Context(), tokenString)
			if err != nil {
				if !errors.Is(err, models.ErrUnauthorized) {
					writeError(w, r, err)
					return
				}
				logger.Debug("authentication failed", slog.Any("err", err))
				writeMessage(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

func mustSession(r *http.Request) *identity.Session {
	s, ok := SessionFromContext(r.Context())
	if !ok {
		panic("api: handler mounted without AuthMiddleware")
	}
	return s
}
