package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestNewTokenService_KeyValidation(t *testing.T) {
	tests := []struct {
		name   string
		keyHex string
		valid  bool
	}{
		{"valid key", testKeyHex, true},
		{"too short", "0001", false},
		{"too long", testKeyHex + "ff", false},
		{"not hex", strings.Repeat("zz", 32), false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := NewTokenService(tt.keyHex, time.Hour)
			if tt.valid {
				require.NoError(t, err)
				assert.NotNil(t, svc)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestSessionToken_RoundTrip(t *testing.T) {
	svc, err := NewTokenService(testKeyHex, time.Hour)
	require.NoError(t, err)

	token, err := svc.GenerateSessionToken("session-abc", "user-xyz")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(token, "v4.local."))

	claims, err := svc.VerifySessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, "session-abc", claims.SessionID)
	assert.Equal(t, "user-xyz", claims.UserID)
	assert.Equal(t, "user-xyz", claims.Subject)
	assert.Equal(t, tokenIssuer, claims.Issuer)
	assert.Equal(t, tokenAudience, claims.Audience)
}

func TestVerifySessionToken_Garbage(t *testing.T) {
	svc, err := NewTokenService(testKeyHex, time.Hour)
	require.NoError(t, err)

	_, err = svc.VerifySessionToken("not-a-token")
	assert.Error(t, err)

	_, err = svc.VerifySessionToken("")
	assert.Error(t, err)
}

func TestVerifySessionToken_WrongKey(t *testing.T) {
	svc, err := NewTokenService(testKeyHex, time.Hour)
	require.NoError(t, err)

	otherKey := "ffeeddccbbaa99887766554433221100ffeeddccbbaa99887766554433221100"
	other, err := NewTokenService(otherKey, time.Hour)
	require.NoError(t, err)

	token, err := svc.GenerateSessionToken("session-abc", "user-xyz")
	require.NoError(t, err)

	_, err = other.VerifySessionToken(token)
	assert.Error(t, err)
}

func TestVerifySessionToken_Expired(t *testing.T) {
	svc, err := NewTokenService(testKeyHex, -time.Minute)
	require.NoError(t, err)

	token, err := svc.GenerateSessionToken("session-abc", "user-xyz")
	require.NoError(t, err)

	_, err = svc.VerifySessionToken(token)
	assert.Error(t, err)
}

func TestSessionDuration(t *testing.T) {
	svc, err := NewTokenService(testKeyHex, 720*time.Hour)
	require.NoError(t, err)

	assert.Equal(t, 720*time.Hour, svc.SessionDuration())
}
