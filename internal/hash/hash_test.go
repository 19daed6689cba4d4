package hash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	Cost = bcrypt.MinCost
	t.Cleanup(func() { Cost = bcrypt.DefaultCost })

	h, err := HashPassword("admin-pw")
	require.NoError(t, err)
	assert.NotEqual(t, "admin-pw", h)
	assert.True(t, CheckPassword(h, "admin-pw"))
	assert.False(t, CheckPassword(h, "admin-pW"))
	assert.False(t, CheckPassword("not a hash", "admin-pw"))

	_, err = HashPassword(strings.Repeat("x", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}
