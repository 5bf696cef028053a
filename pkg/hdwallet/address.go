package hdwallet

import (
	"bytes"
	"crypto/sha512"
	"encoding/base32"
)

const checksumLength = 4

var addressEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// EncodeAddress returns the Algorand address of a 32 bytes public key.
func EncodeAddress(publicKey []byte) (string, error) {
	if len(publicKey) != 32 {
		return "", ErrInvalidPublicKey
	}
	checksum := sha512.Sum512_256(publicKey)
	buf := append(append([]byte{}, publicKey...), checksum[32-checksumLength:]...)
	return addressEncoding.EncodeToString(buf), nil
}

// DecodeAddress returns the public key of an Algorand address after
// verifying its checksum.
func DecodeAddress(address string) ([]byte, error) {
	buf, err := addressEncoding.DecodeString(address)
	if err != nil {
		return nil, ErrInvalidAddress
	}
	if len(buf) != 32+checksumLength {
		return nil, ErrInvalidAddress
	}

	publicKey, checksum := buf[:32], buf[32:]
	expected := sha512.Sum512_256(publicKey)
	if !bytes.Equal(checksum, expected[32-checksumLength:]) {
		return nil, ErrInvalidAddress
	}
	return publicKey, nil
}
