package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzansicare/booking-api/internal/model"
)

func testUser() *model.User {
	user := &model.User{
		Email:    "sipho@example.org",
		District: model.DistrictEkurhuleni,
	}
	user.ID = uuid.New()
	return user
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := NewJWTService("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	user := testUser()
	roles := model.RoleList{model.RolePatient, model.RoleHealthWorker}

	token, err := svc.GenerateAccessToken(user, roles)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, user.District, claims.District)
	assert.Equal(t, roles, claims.Roles)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	svc := NewJWTService("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	user := testUser()

	token, err := svc.GenerateRefreshToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	svc := NewJWTService("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	user := testUser()

	access, err := svc.GenerateAccessToken(user, model.RoleList{model.RolePatient})
	require.NoError(t, err)
	refresh, err := svc.GenerateRefreshToken(user)
	require.NoError(t, err)

	// Each token type only verifies against its own secret.
	_, err = svc.ValidateRefreshToken(access)
	assert.Error(t, err)
	_, err = svc.ValidateToken(refresh)
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := NewJWTService("access-secret", "refresh-secret", -time.Minute, 24*time.Hour)

	token, err := svc.GenerateAccessToken(testUser(), model.RoleList{model.RolePatient})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := NewJWTService("access-secret", "refresh-secret", time.Hour, 24*time.Hour)

	_, err := svc.ValidateToken("not.a.token")
	assert.Error(t, err)

	_, err = svc.ValidateToken("")
	assert.Error(t, err)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewJWTService("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	verifier := NewJWTService("other-secret", "refresh-secret", time.Hour, 24*time.Hour)

	token, err := issuer.GenerateAccessToken(testUser(), model.RoleList{model.RolePatient})
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}
