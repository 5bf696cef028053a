package bip32ed25519

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"

	"filippo.io/edwards25519"
)

// FromSeed computes the 96 bytes root key kL||kR||c of the tree rooted at
// the given seed.
func FromSeed(seed []byte) ([]byte, error) {
	if len(seed) < SeedMinLength || len(seed) > SeedMaxLength {
		return nil, ErrInvalidSeedLength
	}

	k := sha512.Sum512(seed)
	digest := k[:]
	// the third highest bit of the last byte of kL must be clear
	for digest[31]&0b0010_0000 != 0 {
		mac := hmac.New(sha512.New, digest[:32])
		mac.Write(digest[32:])
		next := mac.Sum(nil)
		Wipe(digest)
		digest = next
	}

	digest[0] &= 0b1111_1000
	digest[31] &= 0b0111_1111
	digest[31] |= 0b0100_0000

	chainCode := sha256.Sum256(append([]byte{0x01}, seed...))

	rootKey := make([]byte, 0, ExtendedKeyLength)
	rootKey = append(rootKey, digest...)
	rootKey = append(rootKey, chainCode[:]...)
	Wipe(digest)

	return rootKey, nil
}

// DeriveChildNodePrivate derives the extended private key at the given index
// from its 96 bytes parent extended private key.
func DeriveChildNodePrivate(
	extendedKey []byte, index uint32, derivationType DerivationType,
) ([]byte, error) {
	if len(extendedKey) != ExtendedKeyLength {
		return nil, ErrInvalidExtendedKey
	}
	if err := derivationType.Validate(); err != nil {
		return nil, err
	}

	kl, kr, cc := extendedKey[:32], extendedKey[32:64], extendedKey[64:]

	var data []byte
	if index < HardenedKeyStart {
		pk, err := scalarBaseMult(kl)
		if err != nil {
			return nil, err
		}
		data = make([]byte, 0, 1+PublicKeyLength+4)
		data = append(data, 0x02)
		data = append(data, pk...)
	} else {
		data = make([]byte, 0, 1+64+4)
		data = append(data, 0x00)
		data = append(data, kl...)
		data = append(data, kr...)
	}
	data = binary.LittleEndian.AppendUint32(data, index)
	defer Wipe(data)

	z := hmacSHA512(cc, data)
	defer Wipe(z)
	data[0]++
	childChainCode := hmacSHA512(cc, data)[32:]

	zl := trunc256MinusGBits(z[:32], derivationType)
	left := add256(kl, mul8(zl))
	right := add256(kr, z[32:])

	child := make([]byte, 0, ExtendedKeyLength)
	child = append(child, left...)
	child = append(child, right...)
	child = append(child, childChainCode...)
	Wipe(left)
	Wipe(right)

	return child, nil
}

// DeriveChildNodePublic derives the extended public key at the given
// non-hardened index from its 64 bytes parent extended public key pk||c.
func DeriveChildNodePublic(
	extendedPublicKey []byte, index uint32, derivationType DerivationType,
) ([]byte, error) {
	if len(extendedPublicKey) != ExtendedPublicKeyLength {
		return nil, ErrInvalidExtendedPublicKey
	}
	if err := derivationType.Validate(); err != nil {
		return nil, err
	}
	if index >= HardenedKeyStart {
		return nil, ErrHardenedPublicDerivation
	}

	pk, cc := extendedPublicKey[:32], extendedPublicKey[32:]
	parent, err := new(edwards25519.Point).SetBytes(pk)
	if err != nil {
		return nil, ErrInvalidPublicKey
	}

	data := make([]byte, 0, 1+PublicKeyLength+4)
	data = append(data, 0x02)
	data = append(data, pk...)
	data = binary.LittleEndian.AppendUint32(data, index)

	z := hmacSHA512(cc, data)
	data[0] = 0x03
	childChainCode := hmacSHA512(cc, data)[32:]

	zl := trunc256MinusGBits(z[:32], derivationType)
	tweak, err := scalarFromLE(mul8(zl))
	if err != nil {
		return nil, err
	}
	p := new(edwards25519.Point).ScalarBaseMult(tweak)
	childPk := new(edwards25519.Point).Add(p, parent).Bytes()

	child := make([]byte, 0, ExtendedPublicKeyLength)
	child = append(child, childPk...)
	child = append(child, childChainCode...)

	return child, nil
}

// DeriveKey folds private child derivation over path starting from rootKey.
// It returns the 96 bytes extended private key if isPrivate is true, the
// 32 bytes public key otherwise.
func DeriveKey(
	rootKey []byte, path []uint32, isPrivate bool,
	derivationType DerivationType,
) ([]byte, error) {
	if len(rootKey) != ExtendedKeyLength {
		return nil, ErrInvalidExtendedKey
	}
	if err := derivationType.Validate(); err != nil {
		return nil, err
	}

	derived := append([]byte{}, rootKey...)
	for _, index := range path {
		child, err := DeriveChildNodePrivate(derived, index, derivationType)
		Wipe(derived)
		if err != nil {
			return nil, err
		}
		derived = child
	}

	if isPrivate {
		return derived, nil
	}

	defer Wipe(derived)
	return PublicKey(derived)
}

// PublicKey returns kL·G for the given extended private key, without
// clamping kL.
func PublicKey(extendedKey []byte) ([]byte, error) {
	if len(extendedKey) != ExtendedKeyLength {
		return nil, ErrInvalidExtendedKey
	}
	return scalarBaseMult(extendedKey[:32])
}

// ExtendedPublicKey returns pk||c for the given extended private key.
func ExtendedPublicKey(extendedKey []byte) ([]byte, error) {
	pk, err := PublicKey(extendedKey)
	if err != nil {
		return nil, err
	}
	return append(pk, extendedKey[64:]...), nil
}

// trunc256MinusGBits keeps the lowest 256-g bits of the little endian
// number zl.
func trunc256MinusGBits(zl []byte, derivationType DerivationType) []byte {
	truncated := append([]byte{}, zl...)
	remaining := int(derivationType)

	for i := len(truncated) - 1; i >= 0 && remaining > 0; i-- {
		if remaining >= 8 {
			truncated[i] = 0
			remaining -= 8
			continue
		}
		truncated[i] &= 0xff >> remaining
		remaining = 0
	}
	return truncated
}

// add256 returns x+y mod 2^256, both operands being 32 bytes little endian.
func add256(x, y []byte) []byte {
	out := make([]byte, 32)
	var carry uint16
	for i := 0; i < 32; i++ {
		sum := uint16(x[i]) + uint16(y[i]) + carry
		out[i] = byte(sum)
		carry = sum >> 8
	}
	return out
}

// mul8 returns 8·x mod 2^256, x being 32 bytes little endian.
func mul8(x []byte) []byte {
	out := make([]byte, 32)
	var carry byte
	for i := 0; i < 32; i++ {
		out[i] = x[i]<<3 | carry
		carry = x[i] >> 5
	}
	return out
}

func hmacSHA512(key, data []byte) []byte {
	mac := hmac.New(sha512.New, key)
	mac.Write(data)
	return mac.Sum(nil)
}

// scalarFromLE reduces a 32 bytes little endian number modulo the group
// order.
func scalarFromLE(b []byte) (*edwards25519.Scalar, error) {
	wide := make([]byte, 64)
	copy(wide, b)
	defer Wipe(wide)
	return edwards25519.NewScalar().SetUniformBytes(wide)
}

func scalarBaseMult(kl []byte) ([]byte, error) {
	s, err := scalarFromLE(kl)
	if err != nil {
		return nil, err
	}
	return new(edwards25519.Point).ScalarBaseMult(s).Bytes(), nil
}
