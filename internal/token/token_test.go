package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePairRoundTrip(t *testing.T) {
	svc := NewService("access-secret", "refresh-secret")

	pair, err := svc.GeneratePair(42)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	uid, err := svc.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(42), uid)

	uid, err = svc.VerifyRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, uint(42), uid)
}

func TestSecretsAreNotInterchangeable(t *testing.T) {
	svc := NewService("access-secret", "refresh-secret")

	pair, err := svc.GeneratePair(7)
	require.NoError(t, err)

	// A refresh token must not pass access verification and vice versa.
	_, err = svc.VerifyAccess(pair.RefreshToken)
	assert.Error(t, err)

	_, err = svc.VerifyRefresh(pair.AccessToken)
	assert.Error(t, err)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	svc := NewService("access-secret", "refresh-secret")

	claims := jwt.MapClaims{
		"sub": "9",
		"iat": time.Now().Add(-2 * time.Hour).Unix(),
		"exp": time.Now().Add(-time.Hour).Unix(),
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("access-secret"))
	require.NoError(t, err)

	_, err = svc.VerifyAccess(expired)
	assert.Error(t, err)
}

func TestVerifyRejectsWrongSigningMethod(t *testing.T) {
	svc := NewService("access-secret", "refresh-secret")

	// alg=none tokens must never validate.
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "3",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.VerifyAccess(unsigned)
	assert.Error(t, err)
}

func TestVerifyRejectsMissingSubject(t *testing.T) {
	svc := NewService("access-secret", "refresh-secret")

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("access-secret"))
	require.NoError(t, err)

	_, err = svc.VerifyAccess(signed)
	assert.Error(t, err)
}

func TestVerifyRejectsNonNumericSubject(t *testing.T) {
	svc := NewService("access-secret", "refresh-secret")

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "not-a-number",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("access-secret"))
	require.NoError(t, err)

	_, err = svc.VerifyAccess(signed)
	assert.Error(t, err)
}

func TestAccessTokenExpiryIsOneHour(t *testing.T) {
	svc := NewService("access-secret", "refresh-secret")

	pair, err := svc.GeneratePair(1)
	require.NoError(t, err)

	parsed, err := jwt.Parse(pair.AccessToken, func(t *jwt.Token) (interface{}, error) {
		return []byte("access-secret"), nil
	})
	require.NoError(t, err)

	claims := parsed.Claims.(jwt.MapClaims)
	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	iat, err := claims.GetIssuedAt()
	require.NoError(t, err)

	assert.Equal(t, time.Hour, exp.Sub(iat.Time))
}
