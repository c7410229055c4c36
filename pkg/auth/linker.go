package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pdishant5/Might-Ampora-Backend/pkg/domain"
)

// IdentityLinker resolves a verified external identity to exactly one
// account, creating or merging as needed. One parameterized algorithm serves
// every provider; the provider variant only decides which external-id field
// is read and written.
type IdentityLinker struct {
	accounts AccountStore
	logger   *slog.Logger
}

// NewIdentityLinker creates a new identity linker.
func NewIdentityLinker(accounts AccountStore, logger *slog.Logger) *IdentityLinker {
	return &IdentityLinker{accounts: accounts, logger: logger}
}

// ResolveOrCreate finds the account owning any of the identity's keys
// (email first, then the provider external id, then phone) or creates a new
// one. Repeated calls with an identical identity are idempotent.
//
// Token verification and this find-or-create are not one atomic unit, so two
// concurrent first sign-ins can race on creation. The losing writer hits a
// uniqueness violation and retries the lookup once; the winner's row is
// visible by then. A second failure is domain.ErrAccountConflict.
func (l *IdentityLinker) ResolveOrCreate(ctx context.Context, ident ExternalIdentity) (*domain.Account, bool, error) {
	account, err := l.lookup(ctx, ident)
	if err != nil && !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, false, err
	}

	if account != nil {
		if err := l.merge(ctx, account, ident); err != nil {
			return nil, false, err
		}
		return account, false, nil
	}

	account = newAccount(ident)
	err = l.accounts.Create(ctx, account)
	if err == nil {
		return account, true, nil
	}
	if !errors.Is(err, domain.ErrDuplicateAccount) {
		return nil, false, err
	}

	// Lost a creation race: the other writer's record is visible now.
	l.logger.Info("account creation raced, retrying lookup",
		"provider", ident.Provider)
	account, err = l.lookup(ctx, ident)
	if err != nil {
		return nil, false, domain.ErrAccountConflict
	}
	if err := l.merge(ctx, account, ident); err != nil {
		return nil, false, err
	}
	return account, false, nil
}

// lookup resolves in order: email, provider external id, phone number.
func (l *IdentityLinker) lookup(ctx context.Context, ident ExternalIdentity) (*domain.Account, error) {
	if ident.Email != "" {
		account, err := l.accounts.GetByEmail(ctx, ident.Email)
		if err == nil {
			return account, nil
		}
		if !errors.Is(err, domain.ErrAccountNotFound) {
			return nil, err
		}
	}

	account, err := l.accounts.GetByProviderID(ctx, ident.Provider, ident.ExternalID)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}

	if ident.Phone != "" {
		account, err := l.accounts.GetByPhone(ctx, ident.Phone)
		if err == nil {
			return account, nil
		}
		if !errors.Is(err, domain.ErrAccountNotFound) {
			return nil, err
		}
	}

	return nil, domain.ErrAccountNotFound
}

// merge backfills empty fields and unions the provider tag, then persists
// only when something actually changed. Non-empty fields are never
// overwritten.
func (l *IdentityLinker) merge(ctx context.Context, account *domain.Account, ident ExternalIdentity) error {
	changed := false

	if account.ExternalID(ident.Provider) == nil {
		account.SetExternalID(ident.Provider, ident.ExternalID)
		changed = true
	}
	if account.Name == nil && ident.Name != "" {
		name := ident.Name
		account.Name = &name
		changed = true
	}
	if account.PhoneNumber == nil && ident.Phone != "" {
		phone := ident.Phone
		account.PhoneNumber = &phone
		changed = true
	}
	if account.AddProvider(ident.Provider) {
		changed = true
	}

	if !changed {
		return nil
	}

	if err := l.accounts.Update(ctx, account); err != nil {
		return err
	}
	l.logger.Info("merged provider identity into account",
		"account_id", account.ID, "provider", ident.Provider)
	return nil
}

func newAccount(ident ExternalIdentity) *domain.Account {
	now := time.Now()
	account := &domain.Account{
		ID:        uuid.New(),
		Providers: []string{string(ident.Provider)},
		CreatedAt: now,
		UpdatedAt: now,
	}
	account.SetExternalID(ident.Provider, ident.ExternalID)
	if ident.Email != "" {
		email := ident.Email
		account.Email = &email
	}
	if ident.Name != "" {
		name := ident.Name
		account.Name = &name
	}
	if ident.Phone != "" {
		phone := ident.Phone
		account.PhoneNumber = &phone
	}
	return account
}
