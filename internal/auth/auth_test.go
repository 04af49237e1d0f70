package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewManager("secret", time.Hour)

	token, issued, err := m.GenerateToken(42, "ana@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, issued.ID)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, issued.ID, claims.ID)
}

func TestTokenIDsAreUnique(t *testing.T) {
	m := NewManager("secret", time.Hour)
	_, a, err := m.GenerateToken(1, "a@b.c")
	require.NoError(t, err)
	_, b, err := m.GenerateToken(1, "a@b.c")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestExpiredToken(t *testing.T) {
	m := NewManager("secret", time.Minute)
	start := time.Now()
	m.now = func() time.Time { return start }

	token, _, err := m.GenerateToken(1, "a@b.c")
	require.NoError(t, err)

	m.now = func() time.Time { return start.Add(2 * time.Minute) }
	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestWrongSecretAndGarbage(t *testing.T) {
	token, _, err := NewManager("one", time.Hour).GenerateToken(1, "a@b.c")
	require.NoError(t, err)

	other := NewManager("two", time.Hour)
	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = other.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRejectsOtherSigningMethod(t *testing.T) {
	claims := &Claims{UserID: 1, RegisteredClaims: jwt.RegisteredClaims{ID: "x", Issuer: issuer}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewManager("secret", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)
	assert.True(t, CheckPassword(hash, "s3cret!"))
	assert.False(t, CheckPassword(hash, "wrong"))
}
