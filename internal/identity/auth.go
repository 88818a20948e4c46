package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/garnizeh/cpdtrack/internal/models"
	"github.com/garnizeh/cpdtrack/internal/session"
)

const minPasswordLen = 6

type SignUpInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (in *SignUpInput) Validate() error {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	if in.Email == "" {
		return models.NewValidationError("email", "required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return models.NewValidationError("email", "invalid address")
	}
	if len(in.Password) < minPasswordLen {
		return models.NewValidationError("password", "must be at least 6 characters")
	}
	return nil
}

// SignUp creates the account and its profile, then sends a verification link.
// A failed profile insert is logged and left to lazy creation on first profile
// access; the account itself has been created by then.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (*models.Account, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	a := &models.Account{
		ID:           uuid.NewString(),
		Email:        in.Email,
		PasswordHash: string(hash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
	}
	if err := s.accounts.CreateAccount(ctx, a); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	if err := s.profiles.CreateProfile(ctx, newProfile(a)); err != nil {
		s.log.ErrorContext(ctx, "profile provisioning failed after signup", "user_id", a.ID, "error", err)
	}

	if err := s.sendVerification(ctx, a); err != nil {
		s.log.ErrorContext(ctx, "verification email failed", "user_id", a.ID, "error", err)
	}

	s.log.InfoContext(ctx, "account created", "user_id", a.ID)
	return a, nil
}

func (s *Service) sendVerification(ctx context.Context, a *models.Account) error {
	tok, err := s.IssueVerifyToken(a)
	if err != nil {
		return err
	}
	link := strings.TrimRight(s.opts.PublicURL, "/") + "/v1/auth/verify?token=" + url.QueryEscape(tok)
	return s.mailer.SendVerification(ctx, a.Email, link)
}

// VerifyEmail marks the token's account as verified.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	c, err := s.parse(token, purposeVerify)
	if err != nil {
		return err
	}

	if err := s.accounts.MarkVerified(ctx, c.Subject); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("verify unknown account: %w", models.ErrUnauthorized)
		}
		return fmt.Errorf("mark verified: %w", err)
	}

	s.log.InfoContext(ctx, "email verified", "user_id", c.Subject)
	return nil
}

// SignIn checks credentials and issues an access token.
func (s *Service) SignIn(ctx context.Context, email, password string) (string, *Session, error) {
	a, err := s.accounts.GetAccountByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return "", nil, fmt.Errorf("get account: %w", err)
	}
	if a == nil || a.PasswordHash == "" {
		return "", nil, fmt.Errorf("invalid credentials: %w", models.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return "", nil, fmt.Errorf("invalid credentials: %w", models.ErrUnauthorized)
	}
	if s.opts.RequireVerifiedEmail && !a.Verified {
		return "", nil, ErrEmailNotVerified
	}

	return s.startSession(ctx, a)
}

func (s *Service) startSession(ctx context.Context, a *models.Account) (string, *Session, error) {
	tok, sess, err := s.IssueAccessToken(a)
	if err != nil {
		return "", nil, err
	}

	s.log.InfoContext(ctx, "signed in", "user_id", a.ID)
	s.publish(session.KindSignedIn, a.ID)
	return tok, sess, nil
}

// Authenticate validates an access token and rejects revoked ones.
func (s *Service) Authenticate(ctx context.Context, token string) (*Session, error) {
	c, err := s.parse(token, purposeAccess)
	if err != nil {
		return nil, err
	}

	revoked, err := s.tokens.IsRevoked(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("token revoked: %w", models.ErrUnauthorized)
	}

	return sessionFromClaims(c), nil
}

// SignOut revokes the session's token until it expires.
func (s *Service) SignOut(ctx context.Context, sess *Session) error {
	if sess == nil || sess.TokenID == "" {
		return fmt.Errorf("sign out without session: %w", models.ErrUnauthorized)
	}

	if err := s.tokens.RevokeToken(ctx, sess.TokenID, sess.ExpiresAt.Unix()); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	if _, err := s.tokens.PurgeExpired(ctx, s.now().Unix()); err != nil {
		s.log.WarnContext(ctx, "purge expired revocations failed", "error", err)
	}

	s.log.InfoContext(ctx, "signed out", "user_id", sess.UserID)
	s.publish(session.KindSignedOut, sess.UserID)
	return nil
}
