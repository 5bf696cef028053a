// Package bip32ed25519 implements hierarchical deterministic derivation of
// Ed25519 keys (BIP32-Ed25519) as used by Algorand HD wallets, together with
// signing, verification and ECDH over the derived key material.
package bip32ed25519

import (
	"errors"
	"fmt"
)

const (
	// HardenedKeyStart is the first index of the hardened range.
	HardenedKeyStart uint32 = 0x80000000

	// SeedMinLength is the minimum length in bytes of a seed.
	SeedMinLength = 16
	// SeedMaxLength is the maximum length in bytes of a seed.
	SeedMaxLength = 64

	// ExtendedKeyLength is the length of an extended private key (kL||kR||c).
	ExtendedKeyLength = 96
	// ExtendedPublicKeyLength is the length of an extended public key (pk||c).
	ExtendedPublicKeyLength = 64
	// PublicKeyLength is the length of a public key.
	PublicKeyLength = 32
	// SignatureLength is the length of a signature (R||S).
	SignatureLength = 64
	// SharedSecretLength is the length of an ECDH shared secret.
	SharedSecretLength = 32
)

// DerivationType selects how many bits of the left half of the child HMAC
// output are dropped before being added to the parent scalar.
type DerivationType int

const (
	// Khovratovich is the derivation of the Khovratovich and Law paper,
	// truncating 32 bits.
	Khovratovich DerivationType = 32
	// Peikert is the amended derivation, truncating 9 bits.
	Peikert DerivationType = 9
)

// KeyContext selects the BIP44 coin type of a derivation path.
type KeyContext int

const (
	// Address keys live under coin type 283' (Algorand).
	Address KeyContext = iota
	// Identity keys live under coin type 0'.
	Identity
)

var (
	// ErrInvalidSeedLength ...
	ErrInvalidSeedLength = fmt.Errorf(
		"seed length must be in range [%d, %d]", SeedMinLength, SeedMaxLength,
	)
	// ErrInvalidExtendedKey ...
	ErrInvalidExtendedKey = fmt.Errorf(
		"extended private key must be %d bytes long", ExtendedKeyLength,
	)
	// ErrInvalidExtendedPublicKey ...
	ErrInvalidExtendedPublicKey = fmt.Errorf(
		"extended public key must be %d bytes long", ExtendedPublicKeyLength,
	)
	// ErrInvalidPublicKey ...
	ErrInvalidPublicKey = errors.New("public key is not a valid curve point")
	// ErrInvalidDerivationType ...
	ErrInvalidDerivationType = errors.New("unknown derivation type")
	// ErrInvalidKeyContext ...
	ErrInvalidKeyContext = errors.New("unknown key context")
	// ErrHardenedPublicDerivation ...
	ErrHardenedPublicDerivation = errors.New(
		"cannot derive a public child at a hardened index",
	)
	// ErrAccountOutOfRange ...
	ErrAccountOutOfRange = errors.New("account index must be lower than 2^31")
	// ErrLowOrderPoint ...
	ErrLowOrderPoint = errors.New("ecdh produced the identity point")
)

// Validate returns an error if the derivation type is not a known variant.
func (t DerivationType) Validate() error {
	switch t {
	case Khovratovich, Peikert:
		return nil
	default:
		return ErrInvalidDerivationType
	}
}

func (t DerivationType) String() string {
	switch t {
	case Khovratovich:
		return "khovratovich"
	case Peikert:
		return "peikert"
	default:
		return fmt.Sprintf("DerivationType(%d)", int(t))
	}
}

// ParseDerivationType converts the text form of a derivation type.
// "bip32" is accepted as an alias of khovratovich.
func ParseDerivationType(s string) (DerivationType, error) {
	switch s {
	case "khovratovich", "bip32":
		return Khovratovich, nil
	case "peikert":
		return Peikert, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidDerivationType, s)
	}
}

// CoinType returns the BIP44 coin type (not hardened) for the context.
func (c KeyContext) CoinType() (uint32, error) {
	switch c {
	case Address:
		return 283, nil
	case Identity:
		return 0, nil
	default:
		return 0, ErrInvalidKeyContext
	}
}

func (c KeyContext) String() string {
	switch c {
	case Address:
		return "address"
	case Identity:
		return "identity"
	default:
		return fmt.Sprintf("KeyContext(%d)", int(c))
	}
}

// BIP44Path returns m/44'/coin'/account'/change/keyIndex for the given context.
func BIP44Path(
	keyContext KeyContext, account, change, keyIndex uint32,
) ([]uint32, error) {
	coinType, err := keyContext.CoinType()
	if err != nil {
		return nil, err
	}
	if account >= HardenedKeyStart {
		return nil, ErrAccountOutOfRange
	}
	return []uint32{
		HardenedKeyStart + 44,
		HardenedKeyStart + coinType,
		HardenedKeyStart + account,
		change,
		keyIndex,
	}, nil
}

// Wipe overwrites the given buffer with zeros.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
