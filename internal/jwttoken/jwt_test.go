package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "clubdesk/pkg/domain-errors"
	"clubdesk/pkg/requestcontext"
)

func TestRoundTrip(t *testing.T) {
	svc := NewService("test-key", "clubdesk-test")

	token, err := svc.GenerateAccessToken(42, requestcontext.RoleAdmin, time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.MemberID)
	assert.Equal(t, requestcontext.RoleAdmin, claims.Role)
}

func TestExpiredTokenRejected(t *testing.T) {
	svc := NewService("test-key", "clubdesk-test")

	token, err := svc.GenerateAccessToken(42, requestcontext.RolePlayer, -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.Is(err, dErrors.CodeUnauthorized))
}

func TestWrongKeyRejected(t *testing.T) {
	issuer := NewService("key-a", "clubdesk-test")
	verifier := NewService("key-b", "clubdesk-test")

	token, err := issuer.GenerateAccessToken(1, requestcontext.RolePlayer, time.Hour)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestGarbageTokenRejected(t *testing.T) {
	svc := NewService("test-key", "clubdesk-test")
	_, err := svc.ValidateToken("not.a.jwt")
	assert.Error(t, err)
}
