package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pdishant5/Might-Ampora-Backend/pkg/domain"
)

const firebaseIssuerPrefix = "https://securetoken.google.com/"

// FirebaseConfig holds Firebase project configuration. Facebook sign-ins
// arrive as Firebase ID tokens minted by the mobile SDK.
type FirebaseConfig struct {
	ProjectID string
}

// firebaseClaims are the claims of a Firebase ID token.
type firebaseClaims struct {
	jwt.RegisteredClaims
	Email       string `json:"email"`
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Firebase    struct {
		SignInProvider string `json:"sign_in_provider"`
	} `json:"firebase"`
}

// FirebaseVerifier verifies Firebase ID tokens carrying Facebook identities.
type FirebaseVerifier struct {
	config FirebaseConfig
}

// NewFirebaseVerifier creates a new Firebase verifier.
func NewFirebaseVerifier(config FirebaseConfig) *FirebaseVerifier {
	return &FirebaseVerifier{config: config}
}

// Verify validates a Firebase ID token and extracts the external identity.
// Note: For production, verify the signature against the securetoken JWKS.
// This implementation does issuer/audience/expiry validation on the claims.
func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (*ExternalIdentity, error) {
	token, _, err := jwt.NewParser().ParseUnverified(idToken, &firebaseClaims{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderTokenInvalid, err)
	}

	claims, ok := token.Claims.(*firebaseClaims)
	if !ok {
		return nil, domain.ErrProviderTokenInvalid
	}

	if claims.Issuer != firebaseIssuerPrefix+v.config.ProjectID {
		return nil, fmt.Errorf("%w: invalid issuer %q", domain.ErrProviderTokenInvalid, claims.Issuer)
	}
	if len(claims.Audience) == 0 || claims.Audience[0] != v.config.ProjectID {
		return nil, fmt.Errorf("%w: invalid audience", domain.ErrProviderTokenInvalid)
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return nil, fmt.Errorf("%w: token expired", domain.ErrProviderTokenInvalid)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", domain.ErrProviderTokenInvalid)
	}
	if claims.Email == "" {
		return nil, domain.ErrEmailRequired
	}

	name := claims.Name
	if name == "" {
		// Facebook accounts do not always expose a display name.
		name = strings.SplitN(claims.Email, "@", 2)[0]
	}

	return &ExternalIdentity{
		Provider:   domain.ProviderFacebook,
		ExternalID: claims.Subject,
		Email:      claims.Email,
		Name:       name,
		Phone:      claims.PhoneNumber,
	}, nil
}
