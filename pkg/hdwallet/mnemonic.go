package hdwallet

import (
	"strings"

	"github.com/tyler-smith/go-bip39"
)

// EntropyLength is the length in bytes of a wallet entropy (24 words).
const EntropyLength = 32

// NewEntropy returns EntropyLength random bytes.
func NewEntropy() ([]byte, error) {
	return bip39.NewEntropy(EntropyLength * 8)
}

// MnemonicFromEntropy returns the 24 words encoding entropy.
func MnemonicFromEntropy(entropy []byte) ([]string, error) {
	if len(entropy) != EntropyLength {
		return nil, ErrInvalidEntropy
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, err
	}
	return strings.Split(mnemonic, " "), nil
}

// EntropyFromMnemonic returns the entropy encoded by a checksummed mnemonic.
func EntropyFromMnemonic(mnemonic []string) ([]byte, error) {
	entropy, err := bip39.EntropyFromMnemonic(strings.Join(mnemonic, " "))
	if err != nil {
		return nil, ErrInvalidMnemonic
	}
	if len(entropy) != EntropyLength {
		return nil, ErrInvalidEntropy
	}
	return entropy, nil
}

// SeedFromMnemonic returns the 64 bytes BIP39 seed of the mnemonic, with no
// passphrase.
func SeedFromMnemonic(mnemonic []string) ([]byte, error) {
	seed, err := bip39.NewSeedWithErrorChecking(strings.Join(mnemonic, " "), "")
	if err != nil {
		return nil, ErrInvalidMnemonic
	}
	return seed, nil
}

// SeedFromEntropy returns the BIP39 seed of the mnemonic encoding entropy.
func SeedFromEntropy(entropy []byte) ([]byte, error) {
	mnemonic, err := MnemonicFromEntropy(entropy)
	if err != nil {
		return nil, err
	}
	return SeedFromMnemonic(mnemonic)
}
