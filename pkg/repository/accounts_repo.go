package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/pdishant5/Might-Ampora-Backend/pkg/domain"
)

const accountColumns = `
	id, name, email, phone_number, location, google_id, facebook_id, providers,
	refresh_token_hash, refresh_token_expires_at, created_at, updated_at
`

// AccountsRepository handles account persistence.
type AccountsRepository struct {
	db *sql.DB
}

// NewAccountsRepository creates a new accounts repository.
func NewAccountsRepository(db *sql.DB) *AccountsRepository {
	return &AccountsRepository{db: db}
}

// Create inserts a new account. A violation of any of the uniqueness
// constraints (email, phone_number, google_id, facebook_id) is reported
// as domain.ErrDuplicateAccount so the caller can retry its lookup.
func (r *AccountsRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (id, name, email, phone_number, location, google_id, facebook_id,
		                      providers, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		account.ID, account.Name, account.Email, account.PhoneNumber, account.Location,
		account.GoogleID, account.FacebookID, pq.Array(account.Providers),
		account.CreatedAt, account.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateAccount
	}
	return err
}

// GetByID retrieves an account by id.
func (r *AccountsRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `SELECT` + accountColumns + `FROM accounts WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByEmail retrieves an account by email.
func (r *AccountsRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `SELECT` + accountColumns + `FROM accounts WHERE email = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

// GetByPhone retrieves an account by phone number.
func (r *AccountsRepository) GetByPhone(ctx context.Context, phone string) (*domain.Account, error) {
	query := `SELECT` + accountColumns + `FROM accounts WHERE phone_number = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, phone))
}

// GetByProviderID retrieves an account by a provider's external id.
func (r *AccountsRepository) GetByProviderID(ctx context.Context, provider domain.Provider, externalID string) (*domain.Account, error) {
	var query string
	switch provider {
	case domain.ProviderGoogle:
		query = `SELECT` + accountColumns + `FROM accounts WHERE google_id = $1`
	case domain.ProviderFacebook:
		query = `SELECT` + accountColumns + `FROM accounts WHERE facebook_id = $1`
	case domain.ProviderMobile:
		query = `SELECT` + accountColumns + `FROM accounts WHERE phone_number = $1`
	default:
		return nil, domain.ErrAccountNotFound
	}
	return r.scanOne(r.db.QueryRowContext(ctx, query, externalID))
}

// GetByRefreshTokenHash retrieves the account holding the given live refresh token hash.
func (r *AccountsRepository) GetByRefreshTokenHash(ctx context.Context, tokenHash string) (*domain.Account, error) {
	query := `SELECT` + accountColumns + `FROM accounts WHERE refresh_token_hash = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, tokenHash))
}

// Update persists merged profile and identity fields.
func (r *AccountsRepository) Update(ctx context.Context, account *domain.Account) error {
	query := `
		UPDATE accounts
		SET name = $2, email = $3, phone_number = $4, location = $5,
		    google_id = $6, facebook_id = $7, providers = $8, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		account.ID, account.Name, account.Email, account.PhoneNumber, account.Location,
		account.GoogleID, account.FacebookID, pq.Array(account.Providers),
	)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateAccount
	}
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// SetRefreshToken stores the refresh token hash and expiry, replacing any prior value.
func (r *AccountsRepository) SetRefreshToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error {
	query := `
		UPDATE accounts
		SET refresh_token_hash = $2, refresh_token_expires_at = $3, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id, tokenHash, expiresAt)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// ReplaceRefreshToken swaps the stored refresh token hash only when the
// currently stored hash still equals oldHash. A raced replacement (zero rows)
// is reported as domain.ErrInvalidRefreshToken.
func (r *AccountsRepository) ReplaceRefreshToken(ctx context.Context, id uuid.UUID, oldHash, newHash string, expiresAt time.Time) error {
	query := `
		UPDATE accounts
		SET refresh_token_hash = $3, refresh_token_expires_at = $4, updated_at = NOW()
		WHERE id = $1 AND refresh_token_hash = $2
	`
	result, err := r.db.ExecContext(ctx, query, id, oldHash, newHash, expiresAt)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrInvalidRefreshToken
	}
	return nil
}

// ClearRefreshToken removes the stored refresh token. Idempotent.
func (r *AccountsRepository) ClearRefreshToken(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE accounts
		SET refresh_token_hash = NULL, refresh_token_expires_at = NULL, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// Delete permanently removes an account.
func (r *AccountsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM accounts WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *AccountsRepository) scanOne(row *sql.Row) (*domain.Account, error) {
	account := &domain.Account{}
	var providers pq.StringArray
	err := row.Scan(
		&account.ID, &account.Name, &account.Email, &account.PhoneNumber, &account.Location,
		&account.GoogleID, &account.FacebookID, &providers,
		&account.RefreshTokenHash, &account.RefreshTokenExpiresAt,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	account.Providers = providers
	return account, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique_violation (23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
