package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("secret", "boxdesk-idp")

	token, err := svc.Generate(5, 7, "manager", time.Hour)
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint(5), claims.ActorID)
	assert.Equal(t, uint(7), claims.TenantID)
	assert.Equal(t, "manager", claims.Role)
}

func TestJWTService_Rejects(t *testing.T) {
	svc := NewJWTService("secret", "boxdesk-idp")

	t.Run("wrong secret", func(t *testing.T) {
		token, err := NewJWTService("other", "boxdesk-idp").Generate(5, 7, "manager", time.Hour)
		require.NoError(t, err)
		_, err = svc.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		issuer := NewJWTService("secret", "boxdesk-idp")
		issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, err := issuer.Generate(5, 7, "manager", time.Hour)
		require.NoError(t, err)
		_, err = svc.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		token, err := NewJWTService("secret", "elsewhere").Generate(5, 7, "manager", time.Hour)
		require.NoError(t, err)
		_, err = svc.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing role", func(t *testing.T) {
		token, err := svc.Generate(5, 7, "", time.Hour)
		require.NoError(t, err)
		_, err = svc.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
