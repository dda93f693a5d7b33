package token

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mint(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("not-checked"))
	require.NoError(t, err)
	return s
}

func TestDecode_InvalidInputs(t *testing.T) {
	seg := func(s string) string { return base64.RawURLEncoding.EncodeToString([]byte(s)) }

	inputs := []string{
		"",
		"   ",
		"abc",
		"a.b",
		"a.b.c.d",
		seg(`{"alg":"HS256"}`) + ".!!!." + "sig",
		seg(`{"alg":"HS256"}`) + "." + seg("not json") + ".sig",
		"not-json." + seg(`[1,2]`) + ".sig",
		seg(`{"alg":"HS256"}`) + "." + seg(`{}`) + ".sig",
	}
	for _, in := range inputs {
		c, err := Decode(in)
		assert.ErrorIs(t, err, ErrInvalidToken, "input %q", in)
		assert.Nil(t, c)
	}
}

func TestDecode_IgnoresSignatureAndAlg(t *testing.T) {
	c, err := Decode(mint(t, jwt.MapClaims{"phone_number": "6281234567890"}))
	require.NoError(t, err)
	assert.Equal(t, "6281234567890", c.Phone())

	seg := func(s string) string { return base64.RawURLEncoding.EncodeToString([]byte(s)) }
	c, err = Decode(seg(`{"typ":"JWT"}`) + "." + seg(`{"sub":"628555"}`) + ".")
	require.NoError(t, err)
	assert.Equal(t, "628555", c.Phone())
}

func TestDecode_ReadsPayloadDespiteBrokenHeader(t *testing.T) {
	seg := func(s string) string { return base64.RawURLEncoding.EncodeToString([]byte(s)) }
	payload := seg(`{"phone":"6281234567890","name":"Budi"}`)

	for _, raw := range []string{
		"xx." + payload + ".sig",
		"not-json." + payload + ".sig",
		seg(`{}`) + "." + payload,
		"." + payload + ".",
	} {
		c, err := Decode(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, "6281234567890", c.Phone(), raw)
		assert.Equal(t, "Budi", c.DisplayName(), raw)
	}
}

func TestClaims_PhonePriority(t *testing.T) {
	tests := []struct {
		name   string
		claims jwt.MapClaims
		want   string
	}{
		{"user_phone first", jwt.MapClaims{"user_phone": "1", "phone_number": "2", "phone": "3", "sub": "4"}, "1"},
		{"phone_number", jwt.MapClaims{"phone_number": "2", "phone": "3", "sub": "4"}, "2"},
		{"phone", jwt.MapClaims{"phone": "3", "sub": "4"}, "3"},
		{"sub", jwt.MapClaims{"sub": "4"}, "4"},
		{"empty skipped", jwt.MapClaims{"user_phone": "", "sub": "4"}, "4"},
		{"none", jwt.MapClaims{"name": "Budi"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Decode(mint(t, tt.claims))
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Phone())
		})
	}
}

func TestClaims_DisplayNameAndRole(t *testing.T) {
	c, err := Decode(mint(t, jwt.MapClaims{"phone": "1", "username": "budi99"}))
	require.NoError(t, err)
	assert.Equal(t, "budi99", c.DisplayName())
	assert.Equal(t, "", c.Role())

	c, err = Decode(mint(t, jwt.MapClaims{"phone": "1", "role": "admin"}))
	require.NoError(t, err)
	assert.Equal(t, DefaultName, c.DisplayName())
	assert.Equal(t, "admin", c.Role())
}

func TestClaims_Expired(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	past, err := Decode(mint(t, jwt.MapClaims{"phone": "1", "exp": now.Add(-time.Minute).Unix()}))
	require.NoError(t, err)
	assert.True(t, past.Expired(now, ExpiryLenient))

	future, err := Decode(mint(t, jwt.MapClaims{"phone": "1", "exp": now.Add(time.Hour).Unix()}))
	require.NoError(t, err)
	assert.False(t, future.Expired(now, ExpiryStrict))

	noExp, err := Decode(mint(t, jwt.MapClaims{"phone": "1"}))
	require.NoError(t, err)
	assert.False(t, noExp.Expired(now, ExpiryLenient))
	assert.True(t, noExp.Expired(now, ExpiryStrict))

	badExp, err := Decode(mint(t, jwt.MapClaims{"phone": "1", "exp": "tomorrow"}))
	require.NoError(t, err)
	assert.True(t, badExp.Expired(now, ExpiryLenient))
}
