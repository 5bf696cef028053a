// Package hdwallet exposes the signing core of an Algorand HD wallet: a
// capability interface over the BIP32-Ed25519 primitives, a transaction
// signer bound to one wallet, and the service used to create, derive and
// recover wallet addresses.
package hdwallet

import (
	"errors"

	"github.com/perawallet/pera-hdwallet/pkg/bip32ed25519"
)

var (
	// ErrInvalidSeed is returned when no usable key source is attached to the
	// signer.
	ErrInvalidSeed = errors.New("invalid seed: no usable key source")
	// ErrInvalidEntropy ...
	ErrInvalidEntropy = errors.New("entropy must be 32 bytes long")
	// ErrInvalidMnemonic ...
	ErrInvalidMnemonic = errors.New("mnemonic is invalid")
	// ErrInvalidPublicKey ...
	ErrInvalidPublicKey = errors.New("public key must be 32 bytes long")
	// ErrInvalidAddress ...
	ErrInvalidAddress = errors.New("address is not a valid algorand address")
	// ErrInvalidEncoding ...
	ErrInvalidEncoding = errors.New("unknown sign metadata encoding")
	// ErrInvalidData ...
	ErrInvalidData = errors.New("data does not match its sign metadata")
	// ErrNullWallet ...
	ErrNullWallet = errors.New("wallet must not be null")
	// ErrInvalidBatchConcurrency ...
	ErrInvalidBatchConcurrency = errors.New("batch concurrency must not be negative")
	// ErrNullPassphrase ...
	ErrNullPassphrase = errors.New("passphrase must not be null")
	// ErrNullPlainText ...
	ErrNullPlainText = errors.New("text to encrypt must not be null")
	// ErrNullCypherText ...
	ErrNullCypherText = errors.New("cypher to decrypt must not be null")
	// ErrInvalidCypherText ...
	ErrInvalidCypherText = errors.New("cypher is too short")
	// ErrInvalidScryptCost ...
	ErrInvalidScryptCost = errors.New("scrypt cost must be a power of 2 greater than 1")
	// ErrNullDerivationPath ...
	ErrNullDerivationPath = errors.New("derivation path must not be null")
	// ErrMalformedDerivationPath ...
	ErrMalformedDerivationPath = errors.New("path must contain at least one elem")
	// ErrInvalidDerivationPath ...
	ErrInvalidDerivationPath = errors.New("invalid derivation path")
	// ErrFastLookupFailed ...
	ErrFastLookupFailed = errors.New("account fast lookup failed")
	// ErrInvalidGapLimit ...
	ErrInvalidGapLimit = errors.New("gap limit must be greater than 0")
)

// SDKError wraps an error raised by the underlying cryptographic primitive.
// Message is the primitive's description of the failure.
type SDKError struct {
	Message string
	cause   error
}

func (e *SDKError) Error() string {
	return "sdk error: " + e.Message
}

func (e *SDKError) Unwrap() error {
	return e.cause
}

// NewSDKError wraps err into an *SDKError, unless it is one already.
func NewSDKError(err error) *SDKError {
	var sdkErr *SDKError
	if errors.As(err, &sdkErr) {
		return sdkErr
	}
	return &SDKError{Message: err.Error(), cause: err}
}

// DerivationType selects the BIP32-Ed25519 derivation variant.
type DerivationType = bip32ed25519.DerivationType

// KeyContext selects the BIP44 coin type of a key.
type KeyContext = bip32ed25519.KeyContext

const (
	Khovratovich = bip32ed25519.Khovratovich
	Peikert      = bip32ed25519.Peikert

	AddressContext  = bip32ed25519.Address
	IdentityContext = bip32ed25519.Identity
)

// Seed is the root entropy of one wallet.
type Seed struct {
	ID      string
	Entropy []byte
}

// Zero overwrites the wallet entropy.
func (s *Seed) Zero() {
	if s == nil {
		return
	}
	bip32ed25519.Wipe(s.Entropy)
}

// AddressDetail identifies one key in the tree of a wallet.
type AddressDetail struct {
	WalletID       string
	Account        uint32
	Change         uint32
	KeyIndex       uint32
	DerivationType DerivationType
}

// DerivationPath returns the BIP44 path of the address key.
func (d AddressDetail) DerivationPath() (DerivationPath, error) {
	path, err := bip32ed25519.BIP44Path(
		AddressContext, d.Account, d.Change, d.KeyIndex,
	)
	if err != nil {
		return nil, err
	}
	return DerivationPath(path), nil
}

// Address is an Algorand address derived from a wallet, along with the
// position and derivation type of its key.
type Address struct {
	WalletID       string
	Address        string
	PublicKey      []byte
	PrivateKey     []byte
	Account        uint32
	Change         uint32
	KeyIndex       uint32
	DerivationType DerivationType
}

// Detail returns the AddressDetail identifying the key of the address.
func (a Address) Detail() AddressDetail {
	return AddressDetail{
		WalletID:       a.WalletID,
		Account:        a.Account,
		Change:         a.Change,
		KeyIndex:       a.KeyIndex,
		DerivationType: a.DerivationType,
	}
}
