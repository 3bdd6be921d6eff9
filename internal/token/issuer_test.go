package token

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/apperr"
)

func TestIssueAndParse(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	iss, err := NewIssuer("secret", WithClock(clock))
	require.NoError(t, err)

	tok, exp, err := iss.Issue("42")
	require.NoError(t, err)
	assert.Equal(t, clock.Now().Add(24*time.Hour), exp)

	id, err := iss.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "42", id)
}

func TestMultipleSessionsStayValid(t *testing.T) {
	clock := clockwork.NewFakeClock()
	iss, _ := NewIssuer("secret", WithClock(clock))

	first, _, err := iss.Issue("1")
	require.NoError(t, err)
	clock.Advance(time.Second)
	second, _, err := iss.Issue("1")
	require.NoError(t, err)

	for _, tok := range []string{first, second} {
		id, err := iss.Parse(tok)
		require.NoError(t, err)
		assert.Equal(t, "1", id)
	}
}

func TestParseRejects(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	iss, _ := NewIssuer("secret", WithClock(clock), WithTTL(time.Hour))
	other, _ := NewIssuer("another", WithClock(clock))

	valid, _, err := iss.Issue("1")
	require.NoError(t, err)
	foreign, _, err := other.Issue("1")
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"admin_id": "1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  string
		msg  string
	}{
		{"empty", "", "missing token"},
		{"garbage", "not.a.token", "invalid token"},
		{"wrong secret", foreign, "invalid token"},
		{"alg none", none, "invalid token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := iss.Parse(tt.raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperr.ErrUnauthorized))
			assert.Equal(t, tt.msg, apperr.Message(err))
		})
	}

	clock.Advance(2 * time.Hour)
	_, err = iss.Parse(valid)
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))
	assert.Equal(t, "token expired", apperr.Message(err))
}

func TestNewIssuerRequiresSecret(t *testing.T) {
	_, err := NewIssuer("")
	assert.Error(t, err)
}
