package hdwallet

import (
	"github.com/perawallet/pera-hdwallet/pkg/bip32ed25519"
)

type xhdSDK struct {
	seed []byte
}

// NewSDK returns the SDK implementation backed by the BIP32-Ed25519
// primitives for the given BIP39 seed. The seed is copied.
func NewSDK(seed []byte) (SDK, error) {
	if len(seed) < bip32ed25519.SeedMinLength ||
		len(seed) > bip32ed25519.SeedMaxLength {
		return nil, ErrInvalidSeed
	}
	return &xhdSDK{append([]byte{}, seed...)}, nil
}

// RootKey returns the 96 bytes root key of the tree rooted at seed.
func RootKey(seed []byte) ([]byte, error) {
	rootKey, err := bip32ed25519.FromSeed(seed)
	if err != nil {
		return nil, ErrInvalidSeed
	}
	return rootKey, nil
}

func (s *xhdSDK) DerivePublicChildNode(
	draft DeriveChildNodeDraft,
) ([]byte, error) {
	return bip32ed25519.DeriveChildNodePublic(
		draft.ExtendedKey, draft.Index, draft.DerivationType,
	)
}

func (s *xhdSDK) DerivePrivateChildNode(
	draft DeriveChildNodeDraft,
) ([]byte, error) {
	return bip32ed25519.DeriveChildNodePrivate(
		draft.ExtendedKey, draft.Index, draft.DerivationType,
	)
}

func (s *xhdSDK) DeriveKey(draft DeriveKeyDraft) ([]byte, error) {
	return bip32ed25519.DeriveKey(
		draft.RootKey, draft.BIP44Path, draft.IsPrivate, draft.DerivationType,
	)
}

func (s *xhdSDK) GenerateKey(draft KeyGenDraft) ([]byte, error) {
	return s.deriveKey(
		draft.Context, draft.Account, draft.Change, draft.KeyIndex,
		false, draft.DerivationType,
	)
}

func (s *xhdSDK) SignAlgorandTransaction(
	draft SignAlgoTransactionDraft,
) ([]byte, error) {
	key, err := s.deriveKey(
		draft.Context, draft.Account, draft.Change, draft.KeyIndex,
		true, draft.DerivationType,
	)
	if err != nil {
		return nil, err
	}
	defer bip32ed25519.Wipe(key)

	return bip32ed25519.Sign(key, draft.PrefixEncodedTx)
}

func (s *xhdSDK) SignData(draft SignDataDraft) ([]byte, error) {
	valid, err := validateData(draft.Data, draft.Metadata)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, ErrInvalidData
	}

	key, err := s.deriveKey(
		draft.Context, draft.Account, draft.Change, draft.KeyIndex,
		true, draft.DerivationType,
	)
	if err != nil {
		return nil, err
	}
	defer bip32ed25519.Wipe(key)

	return bip32ed25519.Sign(key, draft.Data)
}

func (s *xhdSDK) VerifySignature(draft VerifySignatureDraft) bool {
	return bip32ed25519.Verify(draft.PublicKey, draft.Message, draft.Signature)
}

func (s *xhdSDK) ValidateData(
	data []byte, metadata SignMetadata,
) (bool, error) {
	return validateData(data, metadata)
}

func (s *xhdSDK) PerformECDH(draft ECDHDraft) ([]byte, error) {
	key, err := s.deriveKey(
		draft.Context, draft.Account, draft.Change, draft.KeyIndex,
		true, draft.DerivationType,
	)
	if err != nil {
		return nil, err
	}
	defer bip32ed25519.Wipe(key)

	return bip32ed25519.ECDH(key, draft.OtherPartyPub, draft.MeFirst)
}

// Wipe zeroes the seed copy held by the SDK. Every following call fails.
func (s *xhdSDK) Wipe() {
	bip32ed25519.Wipe(s.seed)
	s.seed = nil
}

func (s *xhdSDK) deriveKey(
	keyContext KeyContext, account, change, keyIndex uint32, isPrivate bool,
	derivationType DerivationType,
) ([]byte, error) {
	rootKey, err := RootKey(s.seed)
	if err != nil {
		return nil, err
	}
	defer bip32ed25519.Wipe(rootKey)

	path, err := bip32ed25519.BIP44Path(keyContext, account, change, keyIndex)
	if err != nil {
		return nil, err
	}
	return bip32ed25519.DeriveKey(rootKey, path, isPrivate, derivationType)
}
