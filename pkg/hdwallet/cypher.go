package hdwallet

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"

	"golang.org/x/crypto/scrypt"
)

const (
	// DefaultScryptN is the scrypt cost used when none is given.
	DefaultScryptN = 1 << 20

	saltLength = 32
)

// CypherOpts configures Encrypt and Decrypt. ScryptN defaults to
// DefaultScryptN and must match between the two calls.
type CypherOpts struct {
	Passphrase string
	ScryptN    int
}

func (o CypherOpts) validate() error {
	if len(o.Passphrase) <= 0 {
		return ErrNullPassphrase
	}
	if n := o.ScryptN; n != 0 && (n <= 1 || n&(n-1) != 0) {
		return ErrInvalidScryptCost
	}
	return nil
}

func (o CypherOpts) scryptN() int {
	if o.ScryptN == 0 {
		return DefaultScryptN
	}
	return o.ScryptN
}

// Encrypt seals plaintext with AES-256-GCM under a key stretched from the
// passphrase. The output is nonce||ciphertext||salt.
func Encrypt(plaintext []byte, opts CypherOpts) ([]byte, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if len(plaintext) <= 0 {
		return nil, ErrNullPlainText
	}

	key, salt, err := DeriveCypherKey([]byte(opts.Passphrase), nil, opts.scryptN())
	if err != nil {
		return nil, err
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err = rand.Read(nonce); err != nil {
		return nil, err
	}

	ciphertext := gcm.Seal(nonce, nonce, plaintext, nil)
	return append(ciphertext, salt...), nil
}

// Decrypt opens a cypher produced by Encrypt.
func Decrypt(cypher []byte, opts CypherOpts) ([]byte, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if len(cypher) <= 0 {
		return nil, ErrNullCypherText
	}
	if len(cypher) <= saltLength {
		return nil, ErrInvalidCypherText
	}

	data, salt := cypher[:len(cypher)-saltLength], cypher[len(cypher)-saltLength:]
	key, _, err := DeriveCypherKey([]byte(opts.Passphrase), salt, opts.scryptN())
	if err != nil {
		return nil, err
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(data) < gcm.NonceSize() {
		return nil, ErrInvalidCypherText
	}
	nonce, text := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	return gcm.Open(nil, nonce, text, nil)
}

// DeriveCypherKey stretches passphrase into a 32 bytes key. A random salt is
// generated if none is given.
func DeriveCypherKey(passphrase, salt []byte, n int) ([]byte, []byte, error) {
	if salt == nil {
		salt = make([]byte, saltLength)
		if _, err := rand.Read(salt); err != nil {
			return nil, nil, err
		}
	}
	key, err := scrypt.Key(passphrase, salt, n, 8, 1, 32)
	if err != nil {
		return nil, nil, err
	}
	return key, salt, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	blockCipher, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(blockCipher)
}
