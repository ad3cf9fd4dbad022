package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("s3cret")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "argon2id$v=19$m=65536,t=1,p=4$"))

	assert.NoError(t, VerifyPassword(hash, "s3cret"))
	assert.ErrorIs(t, VerifyPassword(hash, "wrong"), ErrInvalidPassword)
	assert.ErrorIs(t, VerifyPassword("plain", "s3cret"), ErrInvalidHash)
	assert.ErrorIs(t, VerifyPassword("argon2id$v=19$m=x$a$b", "s3cret"), ErrInvalidHash)

	other, err := Hash("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "salt is random")
}

func TestTokenIssuer(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret"), time.Hour)

	token, claims, err := issuer.Issue("7", "ana@ventas.pe")
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	got, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "ana@ventas.pe", got.Email)
	assert.Equal(t, "7", got.Subject)
	assert.Equal(t, claims.ID, got.ID)
	assert.InDelta(t, time.Hour.Seconds(), got.TTL(time.Now()).Seconds(), 5)

	_, err = NewTokenIssuer([]byte("other"), time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Verify("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret"), time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Minute) }
	token, _, err := issuer.Issue("1", "a@b.c")
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer  abc "))
	assert.Equal(t, "", BearerToken("abc"))
	assert.Equal(t, "", BearerToken("Basic abc"))
}

func TestParseID(t *testing.T) {
	id, ok := ParseID("42")
	assert.True(t, ok)
	assert.EqualValues(t, 42, id)

	for _, bad := range []string{"", "0", "-1", "x"} {
		_, ok := ParseID(bad)
		assert.False(t, ok, bad)
	}
}

func TestRandomString(t *testing.T) {
	a, err := RandomString(12)
	require.NoError(t, err)
	b, _ := RandomString(12)
	assert.Len(t, a, 16)
	assert.NotEqual(t, a, b)
}
