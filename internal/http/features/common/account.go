package common

import (
	"time"

	"github.com/pdishant5/Might-Ampora-Backend/pkg/domain"
)

// AccountResponse is the account summary returned by sign-in and profile
// endpoints. Token state is never exposed.
type AccountResponse struct {
	ID          string    `json:"id"`
	Name        *string   `json:"name,omitempty"`
	Email       *string   `json:"email,omitempty"`
	PhoneNumber *string   `json:"phone_number,omitempty"`
	Location    *string   `json:"location,omitempty"`
	Providers   []string  `json:"providers"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewAccountResponse builds the response view of an account.
func NewAccountResponse(account *domain.Account) AccountResponse {
	return AccountResponse{
		ID:          account.ID.String(),
		Name:        account.Name,
		Email:       account.Email,
		PhoneNumber: account.PhoneNumber,
		Location:    account.Location,
		Providers:   account.Providers,
		CreatedAt:   account.CreatedAt,
	}
}
