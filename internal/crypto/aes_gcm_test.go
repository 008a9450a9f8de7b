package crypto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoxRoundTrip(t *testing.T) {
	box, err := NewBox(bytes.Repeat([]byte{7}, 32))
	require.NoError(t, err)

	plaintext := []byte(`[{"role":"user","content":"I have a fever"}]`)
	sealed, err := box.Seal(plaintext, []byte("session-1"))
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "fever")

	opened, err := box.Open(sealed, []byte("session-1"))
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)
}

func TestBoxRejectsWrongAAD(t *testing.T) {
	box, err := NewBox(bytes.Repeat([]byte{7}, 32))
	require.NoError(t, err)

	sealed, err := box.Seal([]byte("x"), []byte("session-1"))
	require.NoError(t, err)

	_, err = box.Open(sealed, []byte("session-2"))
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestBoxErrors(t *testing.T) {
	_, err := NewBox([]byte("short"))
	assert.ErrorIs(t, err, ErrInvalidKeySize)

	box, err := NewBox(bytes.Repeat([]byte{1}, 16))
	require.NoError(t, err)
	_, err = box.Open([]byte{1, 2}, nil)
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
}
