package bip32ed25519

import (
	"crypto/ed25519"
	"crypto/sha512"

	"filippo.io/edwards25519"
	"github.com/hdevalence/ed25519consensus"
)

// Sign produces the Ed25519 signature R||S of message with the given 96
// bytes extended private key. The nonce is derived from kR, so the
// signature is deterministic.
func Sign(extendedKey, message []byte) ([]byte, error) {
	if len(extendedKey) != ExtendedKeyLength {
		return nil, ErrInvalidExtendedKey
	}

	kl, kr := extendedKey[:32], extendedKey[32:64]
	s, err := scalarFromLE(kl)
	if err != nil {
		return nil, err
	}
	publicKey := new(edwards25519.Point).ScalarBaseMult(s).Bytes()

	h := sha512.New()
	h.Write(kr)
	h.Write(message)
	nonceDigest := h.Sum(nil)
	defer Wipe(nonceDigest)

	r, err := edwards25519.NewScalar().SetUniformBytes(nonceDigest)
	if err != nil {
		return nil, err
	}
	R := new(edwards25519.Point).ScalarBaseMult(r).Bytes()

	h.Reset()
	h.Write(R)
	h.Write(publicKey)
	h.Write(message)
	k, err := edwards25519.NewScalar().SetUniformBytes(h.Sum(nil))
	if err != nil {
		return nil, err
	}

	S := edwards25519.NewScalar().MultiplyAdd(k, s, r)

	signature := make([]byte, 0, SignatureLength)
	signature = append(signature, R...)
	signature = append(signature, S.Bytes()...)
	return signature, nil
}

// Verify reports whether signature is a valid signature of message by
// publicKey, following the same rules Algorand nodes apply.
func Verify(publicKey, message, signature []byte) bool {
	if len(publicKey) != PublicKeyLength || len(signature) != SignatureLength {
		return false
	}
	return ed25519consensus.Verify(ed25519.PublicKey(publicKey), message, signature)
}
