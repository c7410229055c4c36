package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/pdishant5/Might-Ampora-Backend/pkg/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestIdentityLinker_CreateNewAccount(t *testing.T) {
	store := newFakeAccountStore()
	linker := NewIdentityLinker(store, testLogger())

	ident := ExternalIdentity{
		Provider:   domain.ProviderGoogle,
		ExternalID: "google-sub-1",
		Email:      "alice@example.com",
		Name:       "Alice",
	}

	account, created, err := linker.ResolveOrCreate(context.Background(), ident)
	if err != nil {
		t.Fatalf("ResolveOrCreate error = %v", err)
	}
	if !created {
		t.Error("expected created = true for first sign-in")
	}
	if account.Email == nil || *account.Email != "alice@example.com" {
		t.Errorf("account email = %v, want alice@example.com", account.Email)
	}
	if got := account.ExternalID(domain.ProviderGoogle); got == nil || *got != "google-sub-1" {
		t.Errorf("google id = %v, want google-sub-1", got)
	}
	if !account.HasProvider(domain.ProviderGoogle) {
		t.Errorf("providers = %v, want google tagged", account.Providers)
	}
}

func TestIdentityLinker_Idempotent(t *testing.T) {
	store := newFakeAccountStore()
	linker := NewIdentityLinker(store, testLogger())
	ctx := context.Background()

	ident := ExternalIdentity{
		Provider:   domain.ProviderGoogle,
		ExternalID: "google-sub-1",
		Email:      "alice@example.com",
		Name:       "Alice",
	}

	first, created, err := linker.ResolveOrCreate(ctx, ident)
	if err != nil || !created {
		t.Fatalf("first ResolveOrCreate = (%v, %v), want created", err, created)
	}

	second, created, err := linker.ResolveOrCreate(ctx, ident)
	if err != nil {
		t.Fatalf("second ResolveOrCreate error = %v", err)
	}
	if created {
		t.Error("second sign-in reported created = true")
	}
	if second.ID != first.ID {
		t.Errorf("second sign-in resolved to %s, want %s", second.ID, first.ID)
	}
	if len(second.Providers) != 1 {
		t.Errorf("providers = %v, want single google tag", second.Providers)
	}
	if len(store.accounts) != 1 {
		t.Errorf("store holds %d accounts, want 1", len(store.accounts))
	}
}

func TestIdentityLinker_MergeByEmail(t *testing.T) {
	store := newFakeAccountStore()
	linker := NewIdentityLinker(store, testLogger())
	ctx := context.Background()

	// Phone-first sign-up, no email yet.
	phoneAccount, _, err := linker.ResolveOrCreate(ctx, ExternalIdentity{
		Provider:   domain.ProviderMobile,
		ExternalID: "+15551234567",
		Phone:      "+15551234567",
	})
	if err != nil {
		t.Fatalf("phone ResolveOrCreate error = %v", err)
	}
	email := "alice@example.com"
	phoneAccount.Email = &email
	if err := store.Update(ctx, phoneAccount); err != nil {
		t.Fatalf("Update error = %v", err)
	}

	// Google sign-in with the same email must land on the same account.
	merged, created, err := linker.ResolveOrCreate(ctx, ExternalIdentity{
		Provider:   domain.ProviderGoogle,
		ExternalID: "google-sub-9",
		Email:      "alice@example.com",
		Name:       "Alice",
	})
	if err != nil {
		t.Fatalf("google ResolveOrCreate error = %v", err)
	}
	if created {
		t.Error("merge reported created = true")
	}
	if merged.ID != phoneAccount.ID {
		t.Errorf("merged into %s, want %s", merged.ID, phoneAccount.ID)
	}
	if got := merged.ExternalID(domain.ProviderGoogle); got == nil || *got != "google-sub-9" {
		t.Errorf("google id = %v, want google-sub-9", got)
	}
	if merged.PhoneNumber == nil || *merged.PhoneNumber != "+15551234567" {
		t.Errorf("phone = %v, must survive the merge", merged.PhoneNumber)
	}
	if !merged.HasProvider(domain.ProviderMobile) || !merged.HasProvider(domain.ProviderGoogle) {
		t.Errorf("providers = %v, want both mobile and google", merged.Providers)
	}
}

func TestIdentityLinker_NeverOverwrites(t *testing.T) {
	store := newFakeAccountStore()
	linker := NewIdentityLinker(store, testLogger())
	ctx := context.Background()

	account, _, err := linker.ResolveOrCreate(ctx, ExternalIdentity{
		Provider:   domain.ProviderGoogle,
		ExternalID: "google-sub-1",
		Email:      "alice@example.com",
		Name:       "Alice Original",
	})
	if err != nil {
		t.Fatalf("ResolveOrCreate error = %v", err)
	}

	// Same account, different display name from the provider.
	merged, _, err := linker.ResolveOrCreate(ctx, ExternalIdentity{
		Provider:   domain.ProviderGoogle,
		ExternalID: "google-sub-1",
		Email:      "alice@example.com",
		Name:       "Alice Renamed",
	})
	if err != nil {
		t.Fatalf("ResolveOrCreate error = %v", err)
	}
	if merged.ID != account.ID {
		t.Fatalf("resolved to %s, want %s", merged.ID, account.ID)
	}
	if merged.Name == nil || *merged.Name != "Alice Original" {
		t.Errorf("name = %v, existing value must not be overwritten", merged.Name)
	}
}

func TestIdentityLinker_CreationRaceRetriesLookup(t *testing.T) {
	store := newFakeAccountStore()
	linker := NewIdentityLinker(store, testLogger())
	ctx := context.Background()

	ident := ExternalIdentity{
		Provider:   domain.ProviderGoogle,
		ExternalID: "google-sub-1",
		Email:      "alice@example.com",
		Name:       "Alice",
	}

	// Simulate a concurrent winner: the create hits a uniqueness violation
	// and the winner's row is visible on the retry lookup.
	var winner *domain.Account
	store.createHook = func(account *domain.Account) error {
		winner = newAccount(ident)
		store.accounts[winner.ID] = winner
		return domain.ErrDuplicateAccount
	}

	account, created, err := linker.ResolveOrCreate(ctx, ident)
	if err != nil {
		t.Fatalf("ResolveOrCreate error = %v", err)
	}
	if created {
		t.Error("race loser reported created = true")
	}
	if account.ID != winner.ID {
		t.Errorf("resolved to %s, want the winner %s", account.ID, winner.ID)
	}
}

func TestIdentityLinker_CreationRaceConflict(t *testing.T) {
	store := newFakeAccountStore()
	linker := NewIdentityLinker(store, testLogger())

	// Uniqueness violation with no visible row afterwards.
	store.createHook = func(account *domain.Account) error {
		return domain.ErrDuplicateAccount
	}

	_, _, err := linker.ResolveOrCreate(context.Background(), ExternalIdentity{
		Provider:   domain.ProviderGoogle,
		ExternalID: "google-sub-1",
		Email:      "alice@example.com",
	})
	if !errors.Is(err, domain.ErrAccountConflict) {
		t.Errorf("error = %v, want ErrAccountConflict", err)
	}
}
