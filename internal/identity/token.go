package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/garnizeh/cpdtrack/internal/models"
)

const (
	purposeAccess = "access"
	purposeVerify = "verify"
)

type claims struct {
	jwt.RegisteredClaims
	Email   string `json:"email,omitempty"`
	Purpose string `json:"purpose"`
}

// Session describes an authenticated access token.
type Session struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	TokenID   string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Service) issue(userID, email, purpose string, ttl time.Duration) (string, *claims, error) {
	now := s.now()
	c := &claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email:   email,
		Purpose: purpose,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(s.opts.Secret))
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, c, nil
}

func (s *Service) parse(tokenString, purpose string) (*claims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("token is empty: %w", models.ErrUnauthorized)
	}

	c := &claims{}
	token, err := jwt.ParseWithClaims(tokenString, c, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.opts.Secret), nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("parse token: %v: %w", err, models.ErrUnauthorized)
	}
	if c.Purpose != purpose {
		return nil, fmt.Errorf("token purpose %q: %w", c.Purpose, models.ErrUnauthorized)
	}
	if c.Subject == "" {
		return nil, fmt.Errorf("token without subject: %w", models.ErrUnauthorized)
	}
	return c, nil
}

// IssueAccessToken signs a session token for the account.
func (s *Service) IssueAccessToken(a *models.Account) (string, *Session, error) {
	tok, c, err := s.issue(a.ID, a.Email, purposeAccess, s.opts.TokenDuration)
	if err != nil {
		return "", nil, err
	}
	return tok, sessionFromClaims(c), nil
}

// IssueVerifyToken signs an email verification token for the account.
func (s *Service) IssueVerifyToken(a *models.Account) (string, error) {
	tok, _, err := s.issue(a.ID, a.Email, purposeVerify, s.opts.VerifyTokenDuration)
	return tok, err
}

func sessionFromClaims(c *claims) *Session {
	return &Session{UserID: c.Subject, Email: c.Email, TokenID: c.ID, ExpiresAt: c.ExpiresAt.Time}
}
