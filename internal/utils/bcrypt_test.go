package utils

import (
	"strings"
	"testing"

	"startup_market/internal/fixtures"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_SaltsEachHash(t *testing.T) {
	first, err := HashPassword("founder-secret")
	require.NoError(t, err)
	second, err := HashPassword("founder-secret")
	require.NoError(t, err)

	assert.NotEqual(t, "founder-secret", first)
	assert.NotEqual(t, first, second)
	assert.True(t, CheckPasswordHash("founder-secret", first))
	assert.True(t, CheckPasswordHash("founder-secret", second))
}

func TestCheckPasswordHash_DemoAccount(t *testing.T) {
	hash, err := HashPassword(fixtures.DemoPassword)
	require.NoError(t, err)

	assert.True(t, CheckPasswordHash(fixtures.DemoPassword, hash))
	assert.False(t, CheckPasswordHash(strings.ToUpper(fixtures.DemoPassword), hash))
	assert.False(t, CheckPasswordHash("", hash))
}

func TestHashPassword_RejectsOverlongPassword(t *testing.T) {
	_, err := HashPassword(strings.Repeat("x", 73))

	assert.ErrorIs(t, err, bcrypt.ErrPasswordTooLong)
}

func TestCheckPasswordHash_InvalidHash(t *testing.T) {
	assert.False(t, CheckPasswordHash(fixtures.DemoPassword, "not-a-bcrypt-hash"))
	assert.False(t, CheckPasswordHash(fixtures.DemoPassword, ""))
}
