package hdwallet

import (
	"github.com/algorand/go-deadlock"
	"github.com/perawallet/pera-hdwallet/pkg/bip32ed25519"
	"golang.org/x/sync/errgroup"
)

// TransactionSignerOpts is the struct given to NewTransactionSigner.
// If SDK is nil, one is built from the wallet entropy.
// BatchConcurrency > 1 lets SignTransactions sign that many payloads in
// parallel.
type TransactionSignerOpts struct {
	Wallet           *Seed
	SDK              SDK
	BatchConcurrency int
}

func (o TransactionSignerOpts) validate() error {
	if o.Wallet == nil {
		return ErrNullWallet
	}
	if o.BatchConcurrency < 0 {
		return ErrInvalidBatchConcurrency
	}
	return nil
}

// TransactionSigner signs transactions and arbitrary data with the keys of
// one wallet.
type TransactionSigner struct {
	wallet           *Seed
	batchConcurrency int

	lock     deadlock.RWMutex
	provider Provider
}

// NewTransactionSigner returns a signer for the given wallet. A wallet whose
// entropy cannot be turned into a seed yields a signer without provider.
func NewTransactionSigner(opts TransactionSignerOpts) (*TransactionSigner, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	sdk := opts.SDK
	if sdk == nil {
		sdk = sdkFromEntropy(opts.Wallet.Entropy)
	}

	return &TransactionSigner{
		wallet:           opts.Wallet,
		batchConcurrency: opts.BatchConcurrency,
		provider:         ProviderFor(sdk),
	}, nil
}

// Wallet returns the wallet the signer is bound to.
func (s *TransactionSigner) Wallet() *Seed {
	return s.wallet
}

// SetProvider replaces the key source. It waits for in-flight operations.
func (s *TransactionSigner) SetProvider(provider Provider) {
	if provider == nil {
		provider = NoProvider{}
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.provider = provider
}

// SetSDK is a shortcut for SetProvider(ProviderFor(sdk)).
func (s *TransactionSigner) SetSDK(sdk SDK) {
	s.SetProvider(ProviderFor(sdk))
}

// HasProvider tells whether a key source is attached.
func (s *TransactionSigner) HasProvider() bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	_, err := s.sdk()
	return err == nil
}

// Close detaches the key source, wiping its seed copy if it holds one.
func (s *TransactionSigner) Close() {
	s.lock.Lock()
	defer s.lock.Unlock()

	if p, ok := s.provider.(ActiveProvider); ok {
		if w, ok := p.SDK.(interface{ Wipe() }); ok {
			w.Wipe()
		}
	}
	s.provider = NoProvider{}
}

// SignTransaction signs the prefix encoded transaction payload with the
// key identified by addressDetail.
func (s *TransactionSigner) SignTransaction(
	payload []byte, addressDetail AddressDetail,
) ([]byte, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	sdk, err := s.sdk()
	if err != nil {
		return nil, err
	}
	return signTransaction(sdk, payload, addressDetail)
}

// SignTransactions signs every payload with the key identified by
// addressDetail. The i-th signature belongs to the i-th payload. If any
// payload fails, the error of the first failing one is returned along with
// no signature.
func (s *TransactionSigner) SignTransactions(
	payloads [][]byte, addressDetail AddressDetail,
) ([][]byte, error) {
	if len(payloads) == 0 {
		return [][]byte{}, nil
	}

	s.lock.RLock()
	defer s.lock.RUnlock()

	sdk, err := s.sdk()
	if err != nil {
		return nil, err
	}

	if s.batchConcurrency <= 1 || len(payloads) == 1 {
		signatures := make([][]byte, 0, len(payloads))
		for _, payload := range payloads {
			signature, err := signTransaction(sdk, payload, addressDetail)
			if err != nil {
				return nil, err
			}
			signatures = append(signatures, signature)
		}
		return signatures, nil
	}

	signatures := make([][]byte, len(payloads))
	errs := make([]error, len(payloads))

	// every payload is signed, so the lowest failing index is always known
	g := new(errgroup.Group)
	g.SetLimit(s.batchConcurrency)
	for i := range payloads {
		i := i
		g.Go(func() error {
			signature, err := signTransaction(sdk, payloads[i], addressDetail)
			if err != nil {
				errs[i] = err
				return err
			}
			signatures[i] = signature
			return nil
		})
	}
	_ = g.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return signatures, nil
}

// SignData signs an arbitrary payload, such as an authentication challenge,
// with DefaultSignMetadata.
func (s *TransactionSigner) SignData(
	payload []byte, addressDetail AddressDetail,
) ([]byte, error) {
	return s.SignDataWithMetadata(payload, addressDetail, DefaultSignMetadata)
}

// SignDataWithMetadata signs an arbitrary payload that must satisfy the
// given metadata.
func (s *TransactionSigner) SignDataWithMetadata(
	payload []byte, addressDetail AddressDetail, metadata SignMetadata,
) ([]byte, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	sdk, err := s.sdk()
	if err != nil {
		return nil, err
	}

	signature, err := sdk.SignData(SignDataDraft{
		Context:        AddressContext,
		Account:        addressDetail.Account,
		Change:         addressDetail.Change,
		KeyIndex:       addressDetail.KeyIndex,
		Data:           payload,
		Metadata:       metadata,
		DerivationType: addressDetail.DerivationType,
	})
	if err != nil {
		return nil, NewSDKError(err)
	}
	return signature, nil
}

// ValidateData tells whether data can be signed as arbitrary data under
// metadata. An error means the check could not be performed.
func (s *TransactionSigner) ValidateData(
	data []byte, metadata SignMetadata,
) (bool, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	sdk, err := s.sdk()
	if err != nil {
		return false, err
	}

	valid, err := sdk.ValidateData(data, metadata)
	if err != nil {
		return false, NewSDKError(err)
	}
	return valid, nil
}

// VerifySignature returns false if the signature is invalid or if no key
// source is attached. Use HasProvider to tell the two apart.
func (s *TransactionSigner) VerifySignature(
	signature, message, publicKey []byte,
) bool {
	s.lock.RLock()
	defer s.lock.RUnlock()

	sdk, err := s.sdk()
	if err != nil {
		return false
	}
	return sdk.VerifySignature(VerifySignatureDraft{
		Signature: signature,
		Message:   message,
		PublicKey: publicKey,
	})
}

// PerformECDH returns the shared secret between the key described by draft
// and draft.OtherPartyPub.
func (s *TransactionSigner) PerformECDH(draft ECDHDraft) ([]byte, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	sdk, err := s.sdk()
	if err != nil {
		return nil, err
	}

	secret, err := sdk.PerformECDH(draft)
	if err != nil {
		return nil, NewSDKError(err)
	}
	return secret, nil
}

// sdkFromEntropy returns nil if no SDK can be built from entropy.
func sdkFromEntropy(entropy []byte) SDK {
	seed, err := SeedFromEntropy(entropy)
	if err != nil {
		return nil
	}
	defer bip32ed25519.Wipe(seed)

	sdk, err := NewSDK(seed)
	if err != nil {
		return nil
	}
	return sdk
}

// sdk must be called with the lock held.
func (s *TransactionSigner) sdk() (SDK, error) {
	switch p := s.provider.(type) {
	case ActiveProvider:
		if p.SDK != nil {
			return p.SDK, nil
		}
	case NoProvider:
	}
	return nil, ErrInvalidSeed
}

func signTransaction(
	sdk SDK, payload []byte, addressDetail AddressDetail,
) ([]byte, error) {
	signature, err := sdk.SignAlgorandTransaction(SignAlgoTransactionDraft{
		Context:         AddressContext,
		Account:         addressDetail.Account,
		Change:          addressDetail.Change,
		KeyIndex:        addressDetail.KeyIndex,
		PrefixEncodedTx: payload,
		DerivationType:  addressDetail.DerivationType,
	})
	if err != nil {
		return nil, NewSDKError(err)
	}
	return signature, nil
}
