package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/MayuriEngAust/RCM/internal/models"
)

var issuedAt = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func fixedService(t *testing.T) *Service {
	t.Helper()
	s := NewServiceWithSecret("test-secret", time.Hour)
	s.now = func() time.Time { return issuedAt }
	return s
}

func engineer() *models.User {
	return &models.User{ID: primitive.NewObjectID(), Username: "reliability.eng", Role: models.RoleEngineer}
}

func TestNewService(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_EXPIRY", "")
	service, err := NewService()
	require.NoError(t, err)
	assert.Equal(t, []byte(defaultSecret), service.jwtSecret)
	assert.Equal(t, 24*time.Hour, service.tokenExp)

	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_EXPIRY", "90m")
	service, err = NewService()
	require.NoError(t, err)
	assert.Equal(t, []byte("s3cret"), service.jwtSecret)
	assert.Equal(t, 90*time.Minute, service.tokenExp)

	t.Setenv("JWT_EXPIRY", "soon")
	_, err = NewService()
	assert.Error(t, err)
}

func TestService_PasswordHashing(t *testing.T) {
	service := fixedService(t)

	hash, err := service.HashPassword("testpassword123")
	require.NoError(t, err)
	assert.NotEqual(t, "testpassword123", hash)

	assert.True(t, service.CheckPassword("testpassword123", hash))
	assert.False(t, service.CheckPassword("wrongpassword", hash))
}

func TestService_ValidateToken(t *testing.T) {
	service := fixedService(t)
	user := engineer()

	token, err := service.GenerateToken(user)
	require.NoError(t, err)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, user.Username, claims.Username)
	assert.Equal(t, models.RoleEngineer, claims.Role)
	assert.Equal(t, issuedAt.Add(time.Hour).Unix(), claims.Exp)

	_, err = service.ValidateToken("Bearer " + token)
	assert.NoError(t, err)

	_, err = service.ValidateToken("invalid-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_ValidateToken_Expired(t *testing.T) {
	service := fixedService(t)
	token, err := service.GenerateToken(engineer())
	require.NoError(t, err)

	service.now = func() time.Time { return issuedAt.Add(2 * time.Hour) }
	_, err = service.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestService_ValidateToken_Rejects(t *testing.T) {
	service := fixedService(t)

	t.Run("other secret", func(t *testing.T) {
		other := NewServiceWithSecret("other-secret", time.Hour)
		other.now = service.now
		token, err := other.GenerateToken(engineer())
		require.NoError(t, err)
		_, err = service.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	sign := func(claims tokenClaims) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(service.jwtSecret)
		require.NoError(t, err)
		return s
	}
	registered := jwt.RegisteredClaims{
		Issuer:    issuer,
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
	}

	t.Run("unknown role", func(t *testing.T) {
		token := sign(tokenClaims{UserID: "u1", Username: "x", Role: "operator", RegisteredClaims: registered})
		_, err := service.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		r := registered
		r.Issuer = "someone-else"
		token := sign(tokenClaims{UserID: "u1", Username: "x", Role: models.RoleViewer, RegisteredClaims: r})
		_, err := service.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("no expiry", func(t *testing.T) {
		token := sign(tokenClaims{UserID: "u1", Username: "x", Role: models.RoleViewer, RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer}})
		_, err := service.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestService_ExtractTokenFromHeader(t *testing.T) {
	service := fixedService(t)

	extracted, err := service.ExtractTokenFromHeader("Bearer valid-token")
	assert.NoError(t, err)
	assert.Equal(t, "valid-token", extracted)

	for _, header := range []string{"", "InvalidFormat", "Bearer ", "Basic abc"} {
		_, err := service.ExtractTokenFromHeader(header)
		assert.ErrorIs(t, err, ErrInvalidToken, header)
	}
}

func TestService_InputValidation(t *testing.T) {
	service := fixedService(t)

	assert.NoError(t, service.ValidatePassword("validpassword123"))
	assert.ErrorContains(t, service.ValidatePassword("short"), "at least 8 characters")

	assert.NoError(t, service.ValidateEmail("planner@plant.example.com"))
	for _, email := range []string{"testexample.com", "test@", "test", "@example.com", "a.b@localhost"} {
		assert.ErrorContains(t, service.ValidateEmail(email), "invalid email format", email)
	}

	assert.NoError(t, service.ValidateUsername("testuser"))
	assert.ErrorContains(t, service.ValidateUsername("ab"), "at least 3 characters")
	assert.ErrorContains(t, service.ValidateUsername(strings.Repeat("a", 51)), "less than 50 characters")
}

func TestService_GenerateRefreshToken(t *testing.T) {
	service := fixedService(t)

	a, err := service.GenerateRefreshToken()
	require.NoError(t, err)
	b, err := service.GenerateRefreshToken()
	require.NoError(t, err)

	assert.Len(t, a, 44)
	assert.NotEqual(t, a, b)
}
