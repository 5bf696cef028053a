package hdwallet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMnemonic(t *testing.T) {
	entropy := make([]byte, EntropyLength)
	mnemonic, err := MnemonicFromEntropy(entropy)
	require.NoError(t, err)
	require.Len(t, mnemonic, 24)
	assert.Equal(t, strings.Repeat("abandon ", 23)+"art", strings.Join(mnemonic, " "))

	revealed, err := EntropyFromMnemonic(mnemonic)
	require.NoError(t, err)
	assert.Equal(t, entropy, revealed)

	seed, err := SeedFromMnemonic(mnemonic)
	require.NoError(t, err)
	require.Len(t, seed, 64)

	seedFromEntropy, err := SeedFromEntropy(entropy)
	require.NoError(t, err)
	assert.Equal(t, seed, seedFromEntropy)

	random, err := NewEntropy()
	require.NoError(t, err)
	require.Len(t, random, EntropyLength)
	assert.NotEqual(t, entropy, random)
}

func TestFailingMnemonic(t *testing.T) {
	for _, entropy := range [][]byte{nil, make([]byte, 16), make([]byte, 33)} {
		_, err := MnemonicFromEntropy(entropy)
		require.ErrorIs(t, err, ErrInvalidEntropy)
		_, err = SeedFromEntropy(entropy)
		require.ErrorIs(t, err, ErrInvalidEntropy)
	}

	invalid := strings.Split(strings.Repeat("abandon ", 24), " ")[:24]
	_, err := EntropyFromMnemonic(invalid)
	require.ErrorIs(t, err, ErrInvalidMnemonic)
	_, err = SeedFromMnemonic(invalid)
	require.ErrorIs(t, err, ErrInvalidMnemonic)

	_, err = SeedFromMnemonic([]string{"not", "a", "mnemonic"})
	require.ErrorIs(t, err, ErrInvalidMnemonic)

	// valid 12 words mnemonic, but wallets use 24 words
	twelveWords := strings.Split(strings.Repeat("abandon ", 11)+"about", " ")
	_, err = EntropyFromMnemonic(twelveWords)
	require.ErrorIs(t, err, ErrInvalidEntropy)
}
