package jwt

import (
	"strings"
	"testing"
	"time"

	"doctor-scheduling/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateAccessToken(t *testing.T) {
	service := NewJWTService(config.JWTConfig{Secret: "secret", AccessExpiry: 10 * time.Minute})

	token, tokenID, err := service.GenerateAccessToken("ops@example.com", RoleAdmin)
	require.NoError(t, err)
	assert.NotEmpty(t, tokenID)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", claims.Subject)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.Equal(t, AccessToken, claims.TokenType)
	assert.Equal(t, tokenID, claims.TokenID)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), claims.ExpiresAt.Time, 5*time.Second)

	_, otherID, err := service.GenerateAccessToken("ops@example.com", RoleAdmin)
	require.NoError(t, err)
	assert.NotEqual(t, tokenID, otherID, "every token gets its own id")
}

func TestMissingSecret(t *testing.T) {
	service := NewJWTService(config.JWTConfig{AccessExpiry: time.Minute})

	_, _, err := service.GenerateAccessToken("ops@example.com", RoleAdmin)
	assert.Error(t, err)

	_, err = service.ValidateToken("anything")
	assert.Error(t, err)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	service := NewJWTService(config.JWTConfig{Secret: "secret", AccessExpiry: time.Minute})

	staff, _, err := service.GenerateAccessToken("desk@example.com", RoleStaff)
	require.NoError(t, err)
	admin, _, err := service.GenerateAccessToken("desk@example.com", RoleAdmin)
	require.NoError(t, err)

	// staff signature over admin claims
	staffParts := strings.Split(staff, ".")
	adminParts := strings.Split(admin, ".")
	require.Len(t, staffParts, 3)
	require.Len(t, adminParts, 3)
	forged := strings.Join([]string{adminParts[0], adminParts[1], staffParts[2]}, ".")

	_, err = service.ValidateToken(forged)
	assert.Error(t, err)
}
