package hdwallet

// SDK is the capability interface over the HD key derivation and signing
// primitives. Every operation takes a draft carrying all of its inputs.
type SDK interface {
	DerivePublicChildNode(draft DeriveChildNodeDraft) ([]byte, error)
	DerivePrivateChildNode(draft DeriveChildNodeDraft) ([]byte, error)
	DeriveKey(draft DeriveKeyDraft) ([]byte, error)
	GenerateKey(draft KeyGenDraft) ([]byte, error)
	SignAlgorandTransaction(draft SignAlgoTransactionDraft) ([]byte, error)
	SignData(draft SignDataDraft) ([]byte, error)
	VerifySignature(draft VerifySignatureDraft) bool
	ValidateData(data []byte, metadata SignMetadata) (bool, error)
	PerformECDH(draft ECDHDraft) ([]byte, error)
}

// DeriveChildNodeDraft is the input of DerivePublicChildNode (ExtendedKey
// is pk||c) and DerivePrivateChildNode (ExtendedKey is kL||kR||c).
type DeriveChildNodeDraft struct {
	ExtendedKey    []byte
	Index          uint32
	DerivationType DerivationType
}

// DeriveKeyDraft is the input of DeriveKey. RootKey is an extended private
// key, usually the one returned by RootKey.
type DeriveKeyDraft struct {
	RootKey        []byte
	BIP44Path      []uint32
	IsPrivate      bool
	DerivationType DerivationType
}

type KeyGenDraft struct {
	Context        KeyContext
	Account        uint32
	Change         uint32
	KeyIndex       uint32
	DerivationType DerivationType
}

// SignAlgoTransactionDraft carries the transaction bytes to sign, already
// prefixed with their domain separation tag.
type SignAlgoTransactionDraft struct {
	Context         KeyContext
	Account         uint32
	Change          uint32
	KeyIndex        uint32
	PrefixEncodedTx []byte
	DerivationType  DerivationType
}

type SignDataDraft struct {
	Context        KeyContext
	Account        uint32
	Change         uint32
	KeyIndex       uint32
	Data           []byte
	Metadata       SignMetadata
	DerivationType DerivationType
}

type VerifySignatureDraft struct {
	Signature []byte
	Message   []byte
	PublicKey []byte
}

// ECDHDraft is the input of PerformECDH. The two parties must set MeFirst
// to opposite values to agree on the shared secret.
type ECDHDraft struct {
	Context        KeyContext
	Account        uint32
	Change         uint32
	KeyIndex       uint32
	OtherPartyPub  []byte
	MeFirst        bool
	DerivationType DerivationType
}
