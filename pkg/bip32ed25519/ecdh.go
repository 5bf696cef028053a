package bip32ed25519

import (
	"filippo.io/edwards25519"
	"golang.org/x/crypto/blake2b"
)

// ECDH computes the shared secret between the holder of extendedKey and the
// owner of otherPartyPub. The raw shared secret is hashed with both public
// keys in Montgomery form, ours first if meFirst is true. The two parties
// agree on the output when exactly one of them sets meFirst.
func ECDH(extendedKey, otherPartyPub []byte, meFirst bool) ([]byte, error) {
	if len(extendedKey) != ExtendedKeyLength {
		return nil, ErrInvalidExtendedKey
	}
	if len(otherPartyPub) != PublicKeyLength {
		return nil, ErrInvalidPublicKey
	}

	other, err := new(edwards25519.Point).SetBytes(otherPartyPub)
	if err != nil {
		return nil, ErrInvalidPublicKey
	}

	kl := extendedKey[:32]
	s, err := scalarFromLE(kl)
	if err != nil {
		return nil, err
	}
	ours := new(edwards25519.Point).ScalarBaseMult(s)

	// kL is a multiple of 8, so kL·P == (kL/8)·(8·P) with any small order
	// component of P cleared.
	s, err = scalarFromLE(div8(kl))
	if err != nil {
		return nil, err
	}
	cleared := new(edwards25519.Point).MultByCofactor(other)
	shared := new(edwards25519.Point).ScalarMult(s, cleared)
	if shared.Equal(edwards25519.NewIdentityPoint()) == 1 {
		return nil, ErrLowOrderPoint
	}

	ourMontgomery := ours.BytesMontgomery()
	otherMontgomery := other.BytesMontgomery()

	h, err := blake2b.New256(nil)
	if err != nil {
		return nil, err
	}
	h.Write(shared.BytesMontgomery())
	if meFirst {
		h.Write(ourMontgomery)
		h.Write(otherMontgomery)
	} else {
		h.Write(otherMontgomery)
		h.Write(ourMontgomery)
	}
	return h.Sum(nil), nil
}

// div8 returns x/8, x being 32 bytes little endian.
func div8(x []byte) []byte {
	out := make([]byte, 32)
	for i := 0; i < 32; i++ {
		out[i] = x[i] >> 3
		if i < 31 {
			out[i] |= x[i+1] << 5
		}
	}
	return out
}
