package auth

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"
)

// Claims is what the rest of the service sees after verification. Subject
// is the Cognito user id and becomes the owner of created transactions.
type Claims struct {
	Subject string
	Raw     jwt.MapClaims
}

// TokenVerifier validates a raw bearer token. The concrete implementation
// talks to the user pool's JWKS; tests substitute fakes.
type TokenVerifier interface {
	Verify(rawToken string) (*Claims, error)
}

// Verifier validates Cognito access tokens against the pool's JWKS.
type Verifier struct {
	jwks         *keyfunc.JWKS
	issuer       string
	clientID     string
	validMethods []string
}

// NewVerifier fetches the JWKS for the pool and returns a Verifier. The key
// set refreshes in the background; unknown kids trigger an early refresh so
// key rotation does not strand fresh tokens.
func NewVerifier(region, userPoolID, clientID string) (*Verifier, error) {
	if region == "" || userPoolID == "" || clientID == "" {
		return nil, errors.New("missing Cognito configuration")
	}

	issuer := fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", region, userPoolID)
	jwks, err := keyfunc.Get(issuer+"/.well-known/jwks.json", keyfunc.Options{
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			log.Printf("jwks refresh error: %v", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("fetch jwks: %w", err)
	}

	return &Verifier{
		jwks:         jwks,
		issuer:       issuer,
		clientID:     clientID,
		validMethods: []string{"RS256"},
	}, nil
}

// Verify checks signature, expiry, issuer, token use and client binding,
// and returns the claims. Everything beyond the subject stays opaque to
// callers.
func (v *Verifier) Verify(rawToken string) (*Claims, error) {
	token, err := jwt.Parse(rawToken, v.jwks.Keyfunc, jwt.WithValidMethods(v.validMethods))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if iss, _ := claims["iss"].(string); iss != v.issuer {
		return nil, errors.New("token issuer mismatch")
	}
	if use, _ := claims["token_use"].(string); use != "access" {
		return nil, errors.New("token is not an access token")
	}
	if cid, _ := claims["client_id"].(string); cid != v.clientID {
		return nil, errors.New("token client mismatch")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, errors.New("token missing subject claim")
	}

	return &Claims{Subject: sub, Raw: claims}, nil
}
