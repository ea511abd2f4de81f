package token

import (
	"testing"
	"time"

	"civic-portal/app/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSigner(t *testing.T) *Signer {
	t.Helper()
	signer, err := NewSigner("test-secret-at-least-32-bytes-long", 7*24*time.Hour, 10*time.Minute)
	require.NoError(t, err)
	return signer
}

func TestNewSignerRequiresSecret(t *testing.T) {
	_, err := NewSigner("", time.Hour, time.Minute)
	assert.Error(t, err)
}

func TestBearerRoundTrip(t *testing.T) {
	signer := newTestSigner(t)
	accountID := uuid.New()

	tok, err := signer.SignBearer(accountID)
	require.NoError(t, err)

	parsed, err := signer.ParseBearer(tok)
	require.NoError(t, err)
	assert.Equal(t, accountID, parsed)
}

func TestParseBearerFailuresAreIndistinguishable(t *testing.T) {
	signer := newTestSigner(t)
	otherSigner, err := NewSigner("a-completely-different-secret-value", time.Hour, time.Minute)
	require.NoError(t, err)

	forged, err := otherSigner.SignBearer(uuid.New())
	require.NoError(t, err)

	expiredSigner := newTestSigner(t)
	expiredSigner.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
	expired, err := expiredSigner.SignBearer(uuid.New())
	require.NoError(t, err)

	// A pending token is not a bearer token.
	pending, err := signer.SignPending(domain.PendingSignup{ExternalID: "ext-1", Email: "a@b.com"})
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"garbage":        "not.a.token",
		"empty":          "",
		"wrong secret":   forged,
		"expired":        expired,
		"wrong audience": pending,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := signer.ParseBearer(tok)
			assert.ErrorIs(t, err, domain.ErrUnauthenticated)
		})
	}
}

func TestPendingRoundTrip(t *testing.T) {
	signer := newTestSigner(t)
	pending := domain.PendingSignup{
		ExternalID: "google-sub-42",
		Email:      "new.citizen@example.com",
		Name:       "New Citizen",
	}

	tok, err := signer.SignPending(pending)
	require.NoError(t, err)

	parsed, err := signer.ParsePending(tok)
	require.NoError(t, err)
	assert.Equal(t, &pending, parsed)
}

func TestParsePendingExpiry(t *testing.T) {
	issuer := newTestSigner(t)
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }

	tok, err := issuer.SignPending(domain.PendingSignup{ExternalID: "ext", Email: "a@b.com"})
	require.NoError(t, err)

	verifier := newTestSigner(t)
	_, err = verifier.ParsePending(tok)
	assert.ErrorIs(t, err, domain.ErrExpiredToken)
}

func TestParsePendingRejectsBearer(t *testing.T) {
	signer := newTestSigner(t)

	bearer, err := signer.SignBearer(uuid.New())
	require.NoError(t, err)

	_, err = signer.ParsePending(bearer)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}
