package token

import (
	"errors"
	"fmt"
	"time"

	"civic-portal/app/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Signer issues and verifies the two stateless tokens the portal uses: the
// long-lived citizen bearer (account id only) and the short-lived pending
// federated signup token. Both are HMAC-signed, not encrypted; they prove
// possession, they do not hide their contents.
type Signer struct {
	secret     []byte
	bearerTTL  time.Duration
	pendingTTL time.Duration
	now        func() time.Time
}

// NewSigner creates a token signer. The secret must be non-empty.
func NewSigner(secret string, bearerTTL, pendingTTL time.Duration) (*Signer, error) {
	if secret == "" {
		return nil, fmt.Errorf("token secret is required")
	}
	return &Signer{
		secret:     []byte(secret),
		bearerTTL:  bearerTTL,
		pendingTTL: pendingTTL,
		now:        time.Now,
	}, nil
}

const (
	bearerSubjectPrefix = "bearer"
	pendingAudience     = "pending-signup"
)

type pendingClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// SignBearer issues a citizen bearer token carrying only the account id.
func (s *Signer) SignBearer(accountID uuid.UUID) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   accountID.String(),
		Audience:  jwt.ClaimStrings{bearerSubjectPrefix},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.bearerTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ParseBearer verifies a citizen bearer token and returns its account id.
// Every failure mode (tampering, wrong audience, expiry, malformed subject)
// collapses to ErrUnauthenticated; callers must not be able to distinguish a
// forged token from an expired one.
func (s *Signer) ParseBearer(tokenString string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	if err := s.parse(tokenString, claims, bearerSubjectPrefix); err != nil {
		return uuid.Nil, domain.ErrUnauthenticated
	}
	accountID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, domain.ErrUnauthenticated
	}
	return accountID, nil
}

// SignPending issues a short-lived pending signup token for a federated
// assertion that matched no account. The token is the only place this state
// lives; nothing is written server-side.
func (s *Signer) SignPending(pending domain.PendingSignup) (string, error) {
	now := s.now()
	claims := pendingClaims{
		Email: pending.Email,
		Name:  pending.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   pending.ExternalID,
			Audience:  jwt.ClaimStrings{pendingAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.pendingTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ParsePending verifies a pending signup token. Expiry is reported as
// ErrExpiredToken so the caller can re-prompt the federated flow; any other
// failure is ErrUnauthenticated.
func (s *Signer) ParsePending(tokenString string) (*domain.PendingSignup, error) {
	claims := &pendingClaims{}
	if err := s.parse(tokenString, claims, pendingAudience); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrExpiredToken
		}
		return nil, domain.ErrUnauthenticated
	}
	if claims.Subject == "" || claims.Email == "" {
		return nil, domain.ErrUnauthenticated
	}
	return &domain.PendingSignup{
		ExternalID: claims.Subject,
		Email:      claims.Email,
		Name:       claims.Name,
	}, nil
}

func (s *Signer) parse(tokenString string, claims jwt.Claims, audience string) error {
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	)
	return err
}
