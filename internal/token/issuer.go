// Package token mints and verifies the short-lived rotating session tokens.
//
// A token is a stateless, self-describing capability: an HS256-signed payload
// binding a session id to an issuance instant. Nothing is stored or revoked
// individually; expiry is purely time-based against the freshness window, and
// rotating the signing key invalidates every outstanding token at once.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	id "rollcall/pkg/domain"
)

// Verification failures, mapped to rejection reasons by the orchestrator.
var (
	ErrSignatureInvalid = errors.New("token signature invalid")
	ErrSessionMismatch  = errors.New("token bound to a different session")
	ErrExpired          = errors.New("token outside freshness window")
)

// Claims is the signed token payload.
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Issuer mints and verifies session tokens. The signing key is injected at
// construction; it is process-wide configuration, not a request-scoped value.
type Issuer struct {
	signingKey []byte
	freshness  time.Duration
}

// NewIssuer builds an Issuer with the given signing key and freshness window.
func NewIssuer(signingKey string, freshness time.Duration) *Issuer {
	return &Issuer{
		signingKey: []byte(signingKey),
		freshness:  freshness,
	}
}

// Freshness returns the configured freshness window.
func (i *Issuer) Freshness() time.Duration {
	return i.freshness
}

// Issue mints a signed token for the session, stamped with now. Pure given
// now; callers expose this on a rotation cadence so consumers always hold a
// token younger than the freshness window.
func (i *Issuer) Issue(sessionID id.SessionID, now time.Time) (string, error) {
	claims := Claims{
		SessionID: sessionID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.signingKey)
}

// Verify checks a token against the claimed session at instant now.
// Checks run in order: signature, session binding, freshness. The freshness
// comparison is strict (>): a token aged exactly the window is still valid.
func (i *Issuer) Verify(tokenString string, claimed id.SessionID, now time.Time) error {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return i.signingKey, nil
	})
	if err != nil || !parsed.Valid {
		return ErrSignatureInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || claims.IssuedAt == nil {
		return ErrSignatureInvalid
	}

	if claims.SessionID != claimed.String() {
		return ErrSessionMismatch
	}

	if now.Sub(claims.IssuedAt.Time) > i.freshness {
		return ErrExpired
	}

	return nil
}
