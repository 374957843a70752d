package auth

import (
	"testing"
	"time"

	"recruitportal_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken_RoundTrip(t *testing.T) {
	token, err := GenerateToken("secret", "idp", "user-42", models.UserRoleAdmin, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.UserID)
	assert.Equal(t, models.UserRoleAdmin, claims.Role)
}

func TestToken_Rejected(t *testing.T) {
	token, err := GenerateToken("secret", "idp", "user-42", models.UserRoleClient, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken("other-secret", token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := GenerateToken("secret", "idp", "user-42", models.UserRoleClient, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken("secret", expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseToken("secret", "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHasPermission(t *testing.T) {
	assert.True(t, HasPermission(models.UserRoleClient, PermissionRolesWrite))
	assert.False(t, HasPermission(models.UserRoleClient, PermissionLedgerAdmin))
	assert.True(t, HasPermission(models.UserRoleAdmin, PermissionIndexReconcile))
	assert.False(t, HasPermission("guest", PermissionSubscriptionBuy))
}
