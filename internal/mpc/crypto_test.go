// crypto_test.go - Tests for sealing, unsealing and identity folding.

package mpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealOpenRoundTrip(t *testing.T) {
	reader, err := GenerateKeyPair()
	require.NoError(t, err)

	words := []uint64{1, 0, 42, 18446744073709551615, 7}
	sec, err := Seal(words, reader.Pk)
	require.NoError(t, err)

	got, err := Open(reader.Sk, sec, len(words))
	require.NoError(t, err)
	assert.Equal(t, words, got)
}

func TestSealIsOneShot(t *testing.T) {
	reader, err := GenerateKeyPair()
	require.NoError(t, err)

	words := []uint64{9, 9, 9}
	s1, err := Seal(words, reader.Pk)
	require.NoError(t, err)
	s2, err := Seal(words, reader.Pk)
	require.NoError(t, err)

	// Fresh ephemeral key and nonce per seal: identical plaintext never
	// produces identical sections.
	assert.NotEqual(t, s1.EphemeralPub, s2.EphemeralPub)
	assert.NotEqual(t, s1.Cipher, s2.Cipher)
}

func TestOpenRejectsMismatchedShape(t *testing.T) {
	reader, err := GenerateKeyPair()
	require.NoError(t, err)

	sec, err := Seal([]uint64{1, 2, 3}, reader.Pk)
	require.NoError(t, err)

	_, err = Open(reader.Sk, sec, 5)
	assert.ErrorIs(t, err, ErrWrongSection)
	_, err = Open(reader.Sk, nil, 3)
	assert.ErrorIs(t, err, ErrWrongSection)
}

func TestSectionUnitAtomicity(t *testing.T) {
	reader, err := GenerateKeyPair()
	require.NoError(t, err)

	words := []uint64{1000, 2000}
	s1, err := Seal(words, reader.Pk)
	require.NoError(t, err)
	s2, err := Seal(words, reader.Pk)
	require.NoError(t, err)

	// Mixing the cipher of one section with the pubkey or nonce of
	// another must not decrypt to the original words.
	frankenstein := &Section{
		EphemeralPub: s2.EphemeralPub,
		Nonce:        s1.Nonce,
		Cipher:       s1.Cipher,
	}
	got, err := Open(reader.Sk, frankenstein, len(words))
	require.NoError(t, err)
	assert.NotEqual(t, words, got)
}

func TestWrongReaderCannotOpen(t *testing.T) {
	reader, err := GenerateKeyPair()
	require.NoError(t, err)
	eavesdropper, err := GenerateKeyPair()
	require.NoError(t, err)

	words := []uint64{31337}
	sec, err := Seal(words, reader.Pk)
	require.NoError(t, err)

	got, err := Open(eavesdropper.Sk, sec, 1)
	require.NoError(t, err)
	assert.NotEqual(t, words, got)
}

func TestIdentityWord(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)
	other, err := GenerateKeyPair()
	require.NoError(t, err)

	a := IdentityWord(kp.PubBytes())
	assert.Equal(t, a, IdentityWord(kp.PubBytes()), "folding must be deterministic")
	assert.NotEqual(t, a, IdentityWord(other.PubBytes()))
	assert.NotZero(t, a)
}
