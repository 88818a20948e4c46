// Package identity manages accounts, access tokens and user profiles.
package identity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/garnizeh/cpdtrack/internal/models"
	"github.com/garnizeh/cpdtrack/internal/session"
)

// ErrEmailNotVerified is returned by SignIn when verification is required and missing.
var ErrEmailNotVerified = fmt.Errorf("email not verified: %w", models.ErrUnauthorized)

type accountRepo interface {
	CreateAccount(ctx context.Context, a *models.Account) error
	GetAccountByID(ctx context.Context, id string) (*models.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	MarkVerified(ctx context.Context, id string) error
}

type profileRepo interface {
	CreateProfile(ctx context.Context, p *models.Profile) error
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, p *models.Profile) error
}

type tokenRepo interface {
	RevokeToken(ctx context.Context, jti string, expires int64) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	PurgeExpired(ctx context.Context, now int64) (int64, error)
}

type publisher interface {
	Publish(ev session.Event)
}

type Options struct {
	Secret               string
	TokenDuration        time.Duration
	VerifyTokenDuration  time.Duration
	RequireVerifiedEmail bool
	// PublicURL is the API base used to build verification links.
	PublicURL string
}

type Service struct {
	log      *slog.Logger
	accounts accountRepo
	profiles profileRepo
	tokens   tokenRepo
	mailer   Mailer
	events   publisher
	opts     Options
	now      func() time.Time
}

func NewService(logger *slog.Logger, accounts accountRepo, profiles profileRepo, tokens tokenRepo, mailer Mailer, events publisher, opts Options) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if mailer == nil {
		mailer = NewLogMailer(logger)
	}
	if opts.TokenDuration <= 0 {
		opts.TokenDuration = time.Hour
	}
	if opts.VerifyTokenDuration <= 0 {
		opts.VerifyTokenDuration = 24 * time.Hour
	}
	return &Service{
		log:      logger.With("service", "identity"),
		accounts: accounts,
		profiles: profiles,
		tokens:   tokens,
		mailer:   mailer,
		events:   events,
		opts:     opts,
		now:      time.Now,
	}
}

func (s *Service) publish(kind session.Kind, userID string) {
	if s.events != nil {
		s.events.Publish(session.Event{Kind: kind, UserID: userID})
	}
}
