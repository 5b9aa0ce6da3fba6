package jwt

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTMaker_GenerateAndParseToken_ValidCases(t *testing.T) {
	secretKey := "test_secret_key_1234567890"
	tokenTTL := 15 * time.Minute
	maker := NewJWTMaker(secretKey, tokenTTL)

	tests := []struct {
		name   string
		userID string
		role   string
	}{
		{name: "admin user", userID: "1", role: "ADMIN"},
		{name: "regular user", userID: "42", role: "USER"},
		{name: "uuid user id", userID: "8f0c1bd2-8f6a-4a36-9a45-5f3a4e1d0b7e", role: "USER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := maker.GenerateToken(tt.userID, tt.role)
			require.NoError(t, err)
			assert.NotEmpty(t, token)

			claims, err := maker.ParseToken(token)
			require.NoError(t, err)

			assert.Equal(t, tt.userID, claims.Subject)
			assert.Equal(t, tt.role, claims.Role)
			assert.WithinDuration(t, time.Now(), claims.IssuedAt.Time, time.Second)
			assert.WithinDuration(t, time.Now().Add(tokenTTL), claims.ExpiresAt.Time, time.Second)
		})
	}
}

func TestJWTMaker_ParseToken_InvalidTokens(t *testing.T) {
	secretKey := "test_secret_key_1234567890"
	maker := NewJWTMaker(secretKey, 15*time.Minute)

	validToken, err := maker.GenerateToken("42", "USER")
	require.NoError(t, err)

	expiredToken, err := NewJWTMaker(secretKey, -time.Hour).GenerateToken("42", "USER")
	require.NoError(t, err)

	wrongSecretToken, err := NewJWTMaker("wrong_secret_key", time.Hour).GenerateToken("42", "USER")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "malformed token", token: "invalid.token.here"},
		{name: "expired token", token: expiredToken},
		{name: "wrong secret key", token: wrongSecretToken},
		{name: "tampered token", token: validToken + "tampered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := maker.ParseToken(tt.token)
			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}

func TestExpiry(t *testing.T) {
	maker := NewJWTMaker("secret", time.Hour)
	token, err := maker.GenerateToken("42", "USER")
	require.NoError(t, err)

	exp, err := Expiry(token)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Second)

	expiredToken, err := NewJWTMaker("secret", -time.Hour).GenerateToken("42", "USER")
	require.NoError(t, err)
	exp, err = Expiry(expiredToken)
	require.NoError(t, err, "expiry is decoded even for an expired token")
	assert.True(t, exp.Before(time.Now()))
}

func TestExpiry_UnsignedHeaderWithoutAlg(t *testing.T) {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"typ":"JWT"}`))
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"exp":4102444800}`))

	exp, err := Expiry(header + "." + payload + ".sig")
	require.NoError(t, err)
	assert.Equal(t, int64(4102444800), exp.Unix())
}

func TestExpiry_Failures(t *testing.T) {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	noExp := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"42"}`))
	notJSON := base64.RawURLEncoding.EncodeToString([]byte(`not json`))

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "two segments", token: header + "." + noExp},
		{name: "payload is not base64", token: header + ".@@@.sig"},
		{name: "payload is not json", token: header + "." + notJSON + ".sig"},
		{name: "payload without exp", token: header + "." + noExp + ".sig"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Expiry(tt.token)
			assert.Error(t, err)
		})
	}
}
