package domain

import (
	"time"

	"github.com/google/uuid"
)

// Provider identifies an external identity source.
type Provider string

const (
	ProviderGoogle   Provider = "google"
	ProviderFacebook Provider = "facebook"
	ProviderMobile   Provider = "mobile"
)

// Valid reports whether p is a known provider.
func (p Provider) Valid() bool {
	switch p {
	case ProviderGoogle, ProviderFacebook, ProviderMobile:
		return true
	}
	return false
}

// Account represents one logical user across all sign-in methods.
// An account is addressable by email, phone number, or any linked
// provider external id; each of those keys is globally unique when set.
type Account struct {
	ID                    uuid.UUID
	Name                  *string
	Email                 *string
	PhoneNumber           *string
	Location              *string
	GoogleID              *string
	FacebookID            *string
	Providers             []string
	RefreshTokenHash      *string
	RefreshTokenExpiresAt *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// ExternalID returns the stored external id for the given provider.
// The mobile provider is keyed by the phone number itself.
func (a *Account) ExternalID(p Provider) *string {
	switch p {
	case ProviderGoogle:
		return a.GoogleID
	case ProviderFacebook:
		return a.FacebookID
	case ProviderMobile:
		return a.PhoneNumber
	}
	return nil
}

// SetExternalID stores the external id for the given provider.
func (a *Account) SetExternalID(p Provider, id string) {
	switch p {
	case ProviderGoogle:
		a.GoogleID = &id
	case ProviderFacebook:
		a.FacebookID = &id
	case ProviderMobile:
		a.PhoneNumber = &id
	}
}

// HasProvider reports whether the provider tag is already linked.
func (a *Account) HasProvider(p Provider) bool {
	for _, tag := range a.Providers {
		if tag == string(p) {
			return true
		}
	}
	return false
}

// AddProvider links the provider tag. Returns false when already present.
func (a *Account) AddProvider(p Provider) bool {
	if a.HasProvider(p) {
		return false
	}
	a.Providers = append(a.Providers, string(p))
	return true
}
