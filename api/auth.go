package api

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/garnizeh/cpdtrack/internal/identity"
	"github.com/garnizeh/cpdtrack/internal/models"
)

const (
	signupMessage    = "Check your email for the confirmation link."
	oauthStateCookie = "cpd_oauth_state"
)

type identityService interface {
	SignUp(ctx context.Context, in identity.SignUpInput) (*models.Account, error)
	SignIn(ctx context.Context, email, password string) (string, *identity.Session, error)
	SignOut(ctx context.Context, sess *identity.Session) error
	VerifyEmail(ctx context.Context, token string) error
}

type googleSignIn interface {
	Enabled() bool
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (string, *identity.Session, error)
}

type AuthHandler struct {
	identity   identityService
	google     googleSignIn
	loginURL   string
	successURL string
}

// NewAuthHandler creates a new AuthHandler with required dependencies.
func NewAuthHandler(svc identityService, google googleSignIn, loginURL, successURL string) *AuthHandler {
	return &AuthHandler{identity: svc, google: google, loginURL: loginURL, successURL: successURL}
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

type authResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req identity.SignUpInput
	if !decodeJSON(w, r, &req) {
		return
	}

	a, err := h.identity.SignUp(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, signupResponse{Message: signupMessage, UserID: a.ID}, http.StatusCreated)
}

func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeMessage(w, "missing fields", http.StatusBadRequest)
		return
	}

	tok, sess, err := h.identity.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrEmailNotVerified) {
			writeMessage(w, "email not verified", http.StatusForbidden)
			return
		}
		if errors.Is(err, models.ErrUnauthorized) {
			writeMessage(w, "invalid login credentials", http.StatusUnauthorized)
			return
		}
		writeError(w, r, err)
		return
	}

	writeJSON(w, authResponse{Token: tok, ExpiresAt: sess.ExpiresAt}, http.StatusOK)
}

func (h *AuthHandler) Signout(w http.ResponseWriter, r *http.Request) {
	if err := h.identity.SignOut(r.Context(), mustSession(r)); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, map[string]string{"message": "signed out"}, http.StatusOK)
}

func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, mustSession(r), http.StatusOK)
}

// Verify confirms an email address from the link sent at signup and
// redirects to the login page.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeMessage(w, "missing token", http.StatusBadRequest)
		return
	}

	if err := h.identity.VerifyEmail(r.Context(), token); err != nil {
		writeError(w, r, err)
		return
	}

	http.Redirect(w, r, withQuery(h.loginURL, "verified", "1"), http.StatusSeeOther)
}

func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if h.google == nil || !h.google.Enabled() {
		writeMessage(w, "google sign-in is not configured", http.StatusNotFound)
		return
	}

	state, err := randomState()
	if err != nil {
		writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/v1/auth/google",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.google.AuthCodeURL(state), http.StatusFound)
}

func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.google == nil || !h.google.Enabled() {
		writeMessage(w, "google sign-in is not configured", http.StatusNotFound)
		return
	}

	q := r.URL.Query()
	c, err := r.Cookie(oauthStateCookie)
	if err != nil || c.Value == "" || c.Value != q.Get("state") {
		writeMessage(w, "invalid oauth state", http.StatusBadRequest)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Path: "/v1/auth/google", MaxAge: -1})

	if e := q.Get("error"); e != "" {
		writeMessage(w, "google sign-in cancelled: "+e, http.StatusUnauthorized)
		return
	}

	tok, sess, err := h.google.Exchange(r.Context(), q.Get("code"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	if h.successURL != "" {
		http.Redirect(w, r, withQuery(h.successURL, "token", tok), http.StatusSeeOther)
		return
	}
	writeJSON(w, authResponse{Token: tok, ExpiresAt: sess.ExpiresAt}, http.StatusOK)
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func withQuery(target, key, value string) string {
	u, err := url.Parse(target)
	if err != nil {
		return target
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}
