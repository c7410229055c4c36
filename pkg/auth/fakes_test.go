package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pdishant5/Might-Ampora-Backend/pkg/domain"
)

// fakeAccountStore is an in-memory AccountStore for tests.
type fakeAccountStore struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*domain.Account

	// createHook, when set, runs instead of the normal insert on the next
	// Create call and is then cleared. Used to simulate creation races.
	createHook func(account *domain.Account) error
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{accounts: make(map[uuid.UUID]*domain.Account)}
}

func (s *fakeAccountStore) Create(ctx context.Context, account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.createHook != nil {
		hook := s.createHook
		s.createHook = nil
		return hook(account)
	}

	for _, existing := range s.accounts {
		if account.Email != nil && existing.Email != nil && *account.Email == *existing.Email {
			return domain.ErrDuplicateAccount
		}
		if account.PhoneNumber != nil && existing.PhoneNumber != nil && *account.PhoneNumber == *existing.PhoneNumber {
			return domain.ErrDuplicateAccount
		}
	}
	s.accounts[account.ID] = account
	return nil
}

func (s *fakeAccountStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if account, ok := s.accounts[id]; ok {
		return account, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (s *fakeAccountStore) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return s.find(func(a *domain.Account) bool {
		return a.Email != nil && *a.Email == email
	})
}

func (s *fakeAccountStore) GetByPhone(ctx context.Context, phone string) (*domain.Account, error) {
	return s.find(func(a *domain.Account) bool {
		return a.PhoneNumber != nil && *a.PhoneNumber == phone
	})
}

func (s *fakeAccountStore) GetByProviderID(ctx context.Context, provider domain.Provider, externalID string) (*domain.Account, error) {
	return s.find(func(a *domain.Account) bool {
		id := a.ExternalID(provider)
		return id != nil && *id == externalID
	})
}

func (s *fakeAccountStore) GetByRefreshTokenHash(ctx context.Context, tokenHash string) (*domain.Account, error) {
	return s.find(func(a *domain.Account) bool {
		return a.RefreshTokenHash != nil && *a.RefreshTokenHash == tokenHash
	})
}

func (s *fakeAccountStore) Update(ctx context.Context, account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[account.ID]; !ok {
		return domain.ErrAccountNotFound
	}
	s.accounts[account.ID] = account
	return nil
}

func (s *fakeAccountStore) SetRefreshToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	account.RefreshTokenHash = &tokenHash
	account.RefreshTokenExpiresAt = &expiresAt
	return nil
}

func (s *fakeAccountStore) ReplaceRefreshToken(ctx context.Context, id uuid.UUID, oldHash, newHash string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[id]
	if !ok || account.RefreshTokenHash == nil || *account.RefreshTokenHash != oldHash {
		return domain.ErrInvalidRefreshToken
	}
	account.RefreshTokenHash = &newHash
	account.RefreshTokenExpiresAt = &expiresAt
	return nil
}

func (s *fakeAccountStore) ClearRefreshToken(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if account, ok := s.accounts[id]; ok {
		account.RefreshTokenHash = nil
		account.RefreshTokenExpiresAt = nil
	}
	return nil
}

func (s *fakeAccountStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[id]; !ok {
		return domain.ErrAccountNotFound
	}
	delete(s.accounts, id)
	return nil
}

func (s *fakeAccountStore) find(match func(*domain.Account) bool) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, account := range s.accounts {
		if match(account) {
			return account, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

// fakeSender records dispatched codes and can be told to fail.
type fakeSender struct {
	mu    sync.Mutex
	sent  []string
	codes map[string]string // destination -> last code
	err   error
}

func newFakeSender() *fakeSender {
	return &fakeSender{codes: make(map[string]string)}
}

func (s *fakeSender) Send(ctx context.Context, destination, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, destination)
	s.codes[destination] = code
	return s.err
}

func (s *fakeSender) lastCode(destination string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codes[destination]
}
