package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/garnizeh/cpdtrack/internal/models"
	"github.com/garnizeh/cpdtrack/pkg/repository"
)

var (
	_ repository.AccountRepo = (*mockAccountRepo)(nil)
	_ repository.ProfileRepo = (*mockProfileRepo)(nil)
	_ repository.TokenRepo   = (*mockTokenRepo)(nil)
)

// Test helpers and mocks
type Mocks struct {
	AccountRepo *mockAccountRepo
	ProfRepo    *mockProfileRepo
	TokenRepo   *mockTokenRepo
}

func NewMocks() *Mocks {
	return &Mocks{
		AccountRepo: &mockAccountRepo{byID: map[string]*models.Account{}},
		ProfRepo:    &mockProfileRepo{byID: map[string]*models.Profile{}},
		TokenRepo:   &mockTokenRepo{revoked: map[string]int64{}},
	}
}

type mockAccountRepo struct {
	mu        sync.Mutex
	byID      map[string]*models.Account
	CreateErr error
	GetErr    error
}

func (m *mockAccountRepo) CreateAccount(ctx context.Context, a *models.Account) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	a.Email = strings.ToLower(a.Email)
	for _, existing := range m.byID {
		if existing.Email == a.Email {
			return models.ErrConflict
		}
	}
	cp := *a
	m.byID[a.ID] = &cp
	return nil
}

func (m *mockAccountRepo) GetAccountByID(ctx context.Context, id string) (*models.Account, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if a, ok := m.byID[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (m *mockAccountRepo) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.byID {
		if a.Email == strings.ToLower(email) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockAccountRepo) MarkVerified(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.byID[id]
	if !ok {
		return models.ErrNotFound
	}
	a.Verified = true
	return nil
}

type mockProfileRepo struct {
	mu        sync.Mutex
	byID      map[string]*models.Profile
	CreateErr error
}

func (m *mockProfileRepo) CreateProfile(ctx context.Context, p *models.Profile) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[p.ID]; ok {
		return models.ErrConflict
	}
	cp := *p
	m.byID[p.ID] = &cp
	return nil
}

func (m *mockProfileRepo) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.byID[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (m *mockProfileRepo) UpdateProfile(ctx context.Context, p *models.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[p.ID]; !ok {
		return models.ErrNotFound
	}
	cp := *p
	m.byID[p.ID] = &cp
	return nil
}

type mockTokenRepo struct {
	mu      sync.Mutex
	revoked map[string]int64
	Err     error
}

func (m *mockTokenRepo) RevokeToken(ctx context.Context, jti string, expires int64) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[jti] = expires
	return nil
}

func (m *mockTokenRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[jti]
	return ok, nil
}

func (m *mockTokenRepo) PurgeExpired(ctx context.Context, now int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for jti, exp := range m.revoked {
		if exp < now {
			delete(m.revoked, jti)
			n++
		}
	}
	return n, nil
}
