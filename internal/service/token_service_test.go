package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-planner-api/internal/models"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
)

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims models.JWTClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func studentClaims(issuer string, expires time.Time) models.JWTClaims {
	return models.JWTClaims{
		UserID: "stu-1",
		Role:   models.RoleStudent,
		Email:  "stu@example.edu",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
}

func TestTokenVerifierValid(t *testing.T) {
	verifier := NewTokenVerifier("secret", "registrar")
	token := signToken(t, jwt.SigningMethodHS256, []byte("secret"), studentClaims("registrar", time.Now().Add(time.Hour)))

	claims, err := verifier.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "stu-1", claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestTokenVerifierRejects(t *testing.T) {
	verifier := NewTokenVerifier("secret", "registrar")

	cases := map[string]string{
		"wrong secret": signToken(t, jwt.SigningMethodHS256, []byte("other"), studentClaims("registrar", time.Now().Add(time.Hour))),
		"wrong issuer": signToken(t, jwt.SigningMethodHS256, []byte("secret"), studentClaims("someone", time.Now().Add(time.Hour))),
		"expired":      signToken(t, jwt.SigningMethodHS256, []byte("secret"), studentClaims("registrar", time.Now().Add(-time.Minute))),
		"wrong alg":    signToken(t, jwt.SigningMethodHS512, []byte("secret"), studentClaims("registrar", time.Now().Add(time.Hour))),
		"garbage":      "not-a-token",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := verifier.ValidateToken(token)
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
		})
	}
}

func TestTokenVerifierWithoutIssuer(t *testing.T) {
	verifier := NewTokenVerifier("secret", "")
	token := signToken(t, jwt.SigningMethodHS256, []byte("secret"), studentClaims("anyone", time.Now().Add(time.Hour)))
	_, err := verifier.ValidateToken(token)
	assert.NoError(t, err)
}
