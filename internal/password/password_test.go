package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgon2_HashAndVerify(t *testing.T) {
	h := New()

	encoded, err := h.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$"), "encoded hash should carry its format: %s", encoded)

	t.Run("round trip", func(t *testing.T) {
		assert.True(t, h.Verify(encoded, "correct horse battery staple"))
	})

	t.Run("wrong password", func(t *testing.T) {
		assert.False(t, h.Verify(encoded, "incorrect horse"))
	})

	t.Run("unique salts", func(t *testing.T) {
		other, err := h.Hash("correct horse battery staple")
		require.NoError(t, err)
		assert.NotEqual(t, encoded, other, "two hashes of the same password must differ")
		assert.True(t, h.Verify(other, "correct horse battery staple"))
	})
}

func TestArgon2_VerifyMalformed(t *testing.T) {
	h := New()

	for _, encoded := range []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=65536,t=1,p=4$notbase64!!$alsonot!!",
		"$bcrypt$whatever",
	} {
		assert.False(t, h.Verify(encoded, "anything"), "malformed hash %q must read as mismatch", encoded)
	}
}
