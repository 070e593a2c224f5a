package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParse(t *testing.T) {
	token, err := Generate("s3cret", "u-1", "admin", "storefront", 5)
	require.NoError(t, err)

	userID, role, err := Parse("s3cret", token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)
	assert.Equal(t, "admin", role)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	token, err := Generate("s3cret", "u-1", "customer", "storefront", 5)
	require.NoError(t, err)

	_, _, err = Parse("otro", token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_Expirado(t *testing.T) {
	token, err := Generate("s3cret", "u-1", "customer", "storefront", -5)
	require.NoError(t, err)

	_, _, err = Parse("s3cret", token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func sign(t *testing.T, method jwt.SigningMethod, key any, claims Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return tok
}

func TestParse_RechazaTokensIncompletos(t *testing.T) {
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))

	sinExp := sign(t, jwt.SigningMethodHS256, []byte("s3cret"), Claims{UserID: "u-1", Role: "admin"})
	_, _, err := Parse("s3cret", sinExp)
	assert.ErrorIs(t, err, ErrInvalidToken, "la expiración es obligatoria")

	sinActor := sign(t, jwt.SigningMethodHS256, []byte("s3cret"), Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}, Role: "admin",
	})
	_, _, err = Parse("s3cret", sinActor)
	assert.ErrorIs(t, err, ErrInvalidToken, "sin user_id no hay actor para el ledger")

	otroAlg := sign(t, jwt.SigningMethodHS512, []byte("s3cret"), Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: exp}, UserID: "u-1",
	})
	_, _, err = Parse("s3cret", otroAlg)
	assert.ErrorIs(t, err, ErrInvalidToken, "solo HS256")
}

func TestSecretOActorVacio(t *testing.T) {
	_, err := Generate("", "u-1", "admin", "x", 5)
	assert.Error(t, err)
	_, err = Generate("s3cret", "", "admin", "x", 5)
	assert.Error(t, err)
	_, _, err = Parse("", "abc")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
