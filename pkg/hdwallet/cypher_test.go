package hdwallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// low cost keeps the tests fast
var testCypherOpts = CypherOpts{Passphrase: "supersecurekey", ScryptN: 1 << 10}

func TestEncryptDecrypt(t *testing.T) {
	plaintext := []byte("super secret message")

	cyphertext, err := Encrypt(plaintext, testCypherOpts)
	require.NoError(t, err)
	assert.NotContains(t, string(cyphertext), string(plaintext))

	revealed, err := Decrypt(cyphertext, testCypherOpts)
	require.NoError(t, err)
	assert.Equal(t, plaintext, revealed)

	other, err := Encrypt(plaintext, testCypherOpts)
	require.NoError(t, err)
	assert.NotEqual(t, cyphertext, other)

	wrongPassphrase := testCypherOpts
	wrongPassphrase.Passphrase = "wrong"
	_, err = Decrypt(cyphertext, wrongPassphrase)
	require.Error(t, err)
}

func TestFailingEncrypt(t *testing.T) {
	tests := []struct {
		plaintext []byte
		opts      CypherOpts
		err       error
	}{
		{nil, testCypherOpts, ErrNullPlainText},
		{[]byte("message"), CypherOpts{}, ErrNullPassphrase},
		{[]byte("message"), CypherOpts{Passphrase: "key", ScryptN: 1000}, ErrInvalidScryptCost},
		{[]byte("message"), CypherOpts{Passphrase: "key", ScryptN: 1}, ErrInvalidScryptCost},
	}
	for _, tt := range tests {
		_, err := Encrypt(tt.plaintext, tt.opts)
		assert.Equal(t, tt.err, err)
	}
}

func TestFailingDecrypt(t *testing.T) {
	tests := []struct {
		cyphertext []byte
		opts       CypherOpts
		err        error
	}{
		{nil, testCypherOpts, ErrNullCypherText},
		{make([]byte, saltLength), testCypherOpts, ErrInvalidCypherText},
		{make([]byte, saltLength+4), testCypherOpts, ErrInvalidCypherText},
		{make([]byte, 64), CypherOpts{}, ErrNullPassphrase},
	}
	for _, tt := range tests {
		_, err := Decrypt(tt.cyphertext, tt.opts)
		assert.Equal(t, tt.err, err)
	}
}
