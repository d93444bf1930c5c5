package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecretKeyRoundTrip(t *testing.T) {
	t.Parallel()

	key := SecretKey("night.owl", SecretTOTP)
	assert.Equal(t, "ghost/accounts/night.owl/totp", key)

	id, kind, ok, err := ParseSecretKey(key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, AccountID("night.owl"), id)
	assert.Equal(t, SecretTOTP, kind)

	_, _, ok, err = ParseSecretKey("legacy/night.owl")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidateSecretKey(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		key     string
		wantErr string
	}{
		{name: "account password", key: "ghost/accounts/night.owl/password"},
		{name: "free form ref", key: "instagram/night.owl"},
		{name: "empty", key: " ", wantErr: "secret key is empty"},
		{name: "absolute", key: "/etc/shadow", wantErr: "invalid secret key"},
		{name: "traversal", key: "ghost/../../escape", wantErr: "invalid secret key"},
		{name: "empty segment", key: "ghost//password", wantErr: "invalid secret key"},
		{name: "flag like", key: "-f", wantErr: "invalid secret key"},
		{name: "backslash", key: `ghost\accounts`, wantErr: "invalid secret key"},
		{name: "unknown kind", key: "ghost/accounts/night.owl/cookie", wantErr: "unknown credential kind"},
		{name: "missing kind", key: "ghost/accounts/night.owl", wantErr: "missing credential kind"},
		{name: "nested account path", key: "ghost/accounts/night.owl/password/extra", wantErr: "unknown credential kind"},
		{name: "bad account", key: "ghost/accounts/night owl/password", wantErr: "invalid handle"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateSecretKey(tc.key)
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}
