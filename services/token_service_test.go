package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret")

	token, err := svc.Generate("user-1", "user")
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "user", claims.Role)
}

func TestValidate_RejectsWrongSecret(t *testing.T) {
	token, err := NewTokenService("secret-a").Generate("user-1", "user")
	require.NoError(t, err)

	_, err = NewTokenService("secret-b").Validate(token)
	assert.Error(t, err)
}

func TestValidate_RejectsGarbage(t *testing.T) {
	svc := NewTokenService("test-secret")

	for _, tok := range []string{"", "not.a.jwt", "a.b"} {
		_, err := svc.Validate(tok)
		assert.Error(t, err, "token %q should be rejected", tok)
	}
}

func TestValidate_RejectsTamperedToken(t *testing.T) {
	svc := NewTokenService("test-secret")

	token, err := svc.Generate("user-1", "user")
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = svc.Validate(tampered)
	assert.Error(t, err)
}
