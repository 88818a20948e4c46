package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/garnizeh/cpdtrack/internal/config"
	"github.com/garnizeh/cpdtrack/internal/models"
)

const googleUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// ErrGoogleDisabled is returned when no Google client is configured.
var ErrGoogleDisabled = errors.New("google sign-in is not configured")

type googleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
}

// Google signs users in through the OAuth2 authorization code flow.
type Google struct {
	svc         *Service
	enabled     bool
	oauth       *oauth2.Config
	userinfoURL string
}

func NewGoogle(svc *Service, cfg config.GoogleConfig) *Google {
	return &Google{
		svc:     svc,
		enabled: cfg.Enabled(),
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		userinfoURL: googleUserinfoURL,
	}
}

// Enabled reports whether the configuration this Google was built from is complete.
func (g *Google) Enabled() bool {
	return g != nil && g.enabled
}

// AuthCodeURL is the consent page the browser is sent to.
func (g *Google) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades an authorization code for an access token of this service,
// creating the account and profile on first sign in.
func (g *Google) Exchange(ctx context.Context, code string) (string, *Session, error) {
	if !g.Enabled() {
		return "", nil, ErrGoogleDisabled
	}

	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		g.svc.log.ErrorContext(ctx, "google oauth token exchange failed", "error", err)
		return "", nil, fmt.Errorf("oauth exchange: %v: %w", err, models.ErrUnauthorized)
	}

	u, err := g.fetchUser(ctx, tok)
	if err != nil {
		return "", nil, err
	}
	if !u.VerifiedEmail {
		return "", nil, fmt.Errorf("google email not verified: %w", models.ErrUnauthorized)
	}

	a, err := g.svc.findOrCreateExternal(ctx, u)
	if err != nil {
		return "", nil, err
	}
	return g.svc.startSession(ctx, a)
}

func (g *Google) fetchUser(ctx context.Context, tok *oauth2.Token) (*googleUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userinfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create userinfo request: %w", err)
	}

	resp, err := g.oauth.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		g.svc.log.ErrorContext(ctx, "google oauth userinfo failed", "status", resp.StatusCode)
		return nil, fmt.Errorf("userinfo status %d: %w", resp.StatusCode, models.ErrUnauthorized)
	}

	var u googleUser
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if u.Email == "" {
		return nil, fmt.Errorf("userinfo without email: %w", models.ErrUnauthorized)
	}
	return &u, nil
}

// findOrCreateExternal links a Google identity to the account with the same email.
func (s *Service) findOrCreateExternal(ctx context.Context, u *googleUser) (*models.Account, error) {
	email := strings.ToLower(strings.TrimSpace(u.Email))
	a, err := s.accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}

	if a == nil {
		a = &models.Account{
			ID:        uuid.NewString(),
			Email:     email,
			FirstName: u.GivenName,
			LastName:  u.FamilyName,
			Verified:  true,
		}
		if err := s.accounts.CreateAccount(ctx, a); err != nil {
			return nil, fmt.Errorf("create account: %w", err)
		}
		s.log.InfoContext(ctx, "account created from google", "user_id", a.ID)
	} else if !a.Verified {
		if err := s.accounts.MarkVerified(ctx, a.ID); err != nil {
			return nil, fmt.Errorf("mark verified: %w", err)
		}
		a.Verified = true
	}

	if _, err := s.GetProfile(ctx, a.ID); err != nil {
		s.log.ErrorContext(ctx, "profile provisioning failed after google sign in", "user_id", a.ID, "error", err)
	}
	return a, nil
}
