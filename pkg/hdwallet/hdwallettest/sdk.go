// Package hdwallettest provides a recording hdwallet.SDK for tests.
package hdwallettest

import (
	"crypto/sha512"
	"encoding/binary"
	"sync"

	"github.com/perawallet/pera-hdwallet/pkg/hdwallet"
)

// SDK records every draft it receives. Each operation returns the result of
// its Func field if set, a deterministic fake value otherwise. The zero
// value is ready to use and safe for concurrent use.
type SDK struct {
	DerivePublicChildNodeFunc   func(hdwallet.DeriveChildNodeDraft) ([]byte, error)
	DerivePrivateChildNodeFunc  func(hdwallet.DeriveChildNodeDraft) ([]byte, error)
	DeriveKeyFunc               func(hdwallet.DeriveKeyDraft) ([]byte, error)
	GenerateKeyFunc             func(hdwallet.KeyGenDraft) ([]byte, error)
	SignAlgorandTransactionFunc func(hdwallet.SignAlgoTransactionDraft) ([]byte, error)
	SignDataFunc                func(hdwallet.SignDataDraft) ([]byte, error)
	VerifySignatureFunc         func(hdwallet.VerifySignatureDraft) bool
	ValidateDataFunc            func([]byte, hdwallet.SignMetadata) (bool, error)
	PerformECDHFunc             func(hdwallet.ECDHDraft) ([]byte, error)

	lock                  sync.Mutex
	deriveChildNodeDrafts []hdwallet.DeriveChildNodeDraft
	deriveKeyDrafts       []hdwallet.DeriveKeyDraft
	keyGenDrafts          []hdwallet.KeyGenDraft
	signAlgoTxDrafts      []hdwallet.SignAlgoTransactionDraft
	signDataDrafts        []hdwallet.SignDataDraft
	verifyDrafts          []hdwallet.VerifySignatureDraft
	validateDataCalls     [][]byte
	ecdhDrafts            []hdwallet.ECDHDraft
}

func (s *SDK) DerivePublicChildNode(
	draft hdwallet.DeriveChildNodeDraft,
) ([]byte, error) {
	s.lock.Lock()
	s.deriveChildNodeDrafts = append(s.deriveChildNodeDrafts, draft)
	s.lock.Unlock()

	if s.DerivePublicChildNodeFunc != nil {
		return s.DerivePublicChildNodeFunc(draft)
	}
	return fake(64, draft.ExtendedKey, uint32s(draft.Index)), nil
}

func (s *SDK) DerivePrivateChildNode(
	draft hdwallet.DeriveChildNodeDraft,
) ([]byte, error) {
	s.lock.Lock()
	s.deriveChildNodeDrafts = append(s.deriveChildNodeDrafts, draft)
	s.lock.Unlock()

	if s.DerivePrivateChildNodeFunc != nil {
		return s.DerivePrivateChildNodeFunc(draft)
	}
	return fake(96, draft.ExtendedKey, uint32s(draft.Index)), nil
}

func (s *SDK) DeriveKey(draft hdwallet.DeriveKeyDraft) ([]byte, error) {
	s.lock.Lock()
	s.deriveKeyDrafts = append(s.deriveKeyDrafts, draft)
	s.lock.Unlock()

	if s.DeriveKeyFunc != nil {
		return s.DeriveKeyFunc(draft)
	}
	size := 32
	if draft.IsPrivate {
		size = 96
	}
	return fake(size, draft.RootKey, uint32s(draft.BIP44Path...)), nil
}

func (s *SDK) GenerateKey(draft hdwallet.KeyGenDraft) ([]byte, error) {
	s.lock.Lock()
	s.keyGenDrafts = append(s.keyGenDrafts, draft)
	s.lock.Unlock()

	if s.GenerateKeyFunc != nil {
		return s.GenerateKeyFunc(draft)
	}
	return fake(32, uint32s(
		uint32(draft.Context), draft.Account, draft.Change, draft.KeyIndex,
	)), nil
}

func (s *SDK) SignAlgorandTransaction(
	draft hdwallet.SignAlgoTransactionDraft,
) ([]byte, error) {
	s.lock.Lock()
	s.signAlgoTxDrafts = append(s.signAlgoTxDrafts, draft)
	s.lock.Unlock()

	if s.SignAlgorandTransactionFunc != nil {
		return s.SignAlgorandTransactionFunc(draft)
	}
	return fake(64, draft.PrefixEncodedTx), nil
}

func (s *SDK) SignData(draft hdwallet.SignDataDraft) ([]byte, error) {
	s.lock.Lock()
	s.signDataDrafts = append(s.signDataDrafts, draft)
	s.lock.Unlock()

	if s.SignDataFunc != nil {
		return s.SignDataFunc(draft)
	}
	return fake(64, draft.Data), nil
}

func (s *SDK) VerifySignature(draft hdwallet.VerifySignatureDraft) bool {
	s.lock.Lock()
	s.verifyDrafts = append(s.verifyDrafts, draft)
	s.lock.Unlock()

	if s.VerifySignatureFunc != nil {
		return s.VerifySignatureFunc(draft)
	}
	return false
}

func (s *SDK) ValidateData(
	data []byte, metadata hdwallet.SignMetadata,
) (bool, error) {
	s.lock.Lock()
	s.validateDataCalls = append(s.validateDataCalls, data)
	s.lock.Unlock()

	if s.ValidateDataFunc != nil {
		return s.ValidateDataFunc(data, metadata)
	}
	return true, nil
}

func (s *SDK) PerformECDH(draft hdwallet.ECDHDraft) ([]byte, error) {
	s.lock.Lock()
	s.ecdhDrafts = append(s.ecdhDrafts, draft)
	s.lock.Unlock()

	if s.PerformECDHFunc != nil {
		return s.PerformECDHFunc(draft)
	}
	return fake(32, draft.OtherPartyPub), nil
}

// SignAlgoTransactionDrafts returns the drafts received by
// SignAlgorandTransaction, in call order.
func (s *SDK) SignAlgoTransactionDrafts() []hdwallet.SignAlgoTransactionDraft {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]hdwallet.SignAlgoTransactionDraft{}, s.signAlgoTxDrafts...)
}

// LastSignAlgoTransactionDraft returns the last draft received by
// SignAlgorandTransaction, nil if none.
func (s *SDK) LastSignAlgoTransactionDraft() *hdwallet.SignAlgoTransactionDraft {
	drafts := s.SignAlgoTransactionDrafts()
	if len(drafts) == 0 {
		return nil
	}
	return &drafts[len(drafts)-1]
}

func (s *SDK) SignDataDrafts() []hdwallet.SignDataDraft {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]hdwallet.SignDataDraft{}, s.signDataDrafts...)
}

func (s *SDK) KeyGenDrafts() []hdwallet.KeyGenDraft {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]hdwallet.KeyGenDraft{}, s.keyGenDrafts...)
}

func (s *SDK) DeriveKeyDrafts() []hdwallet.DeriveKeyDraft {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]hdwallet.DeriveKeyDraft{}, s.deriveKeyDrafts...)
}

func (s *SDK) DeriveChildNodeDrafts() []hdwallet.DeriveChildNodeDraft {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]hdwallet.DeriveChildNodeDraft{}, s.deriveChildNodeDrafts...)
}

func (s *SDK) VerifySignatureDrafts() []hdwallet.VerifySignatureDraft {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]hdwallet.VerifySignatureDraft{}, s.verifyDrafts...)
}

func (s *SDK) ValidateDataCalls() [][]byte {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([][]byte{}, s.validateDataCalls...)
}

func (s *SDK) ECDHDrafts() []hdwallet.ECDHDraft {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]hdwallet.ECDHDraft{}, s.ecdhDrafts...)
}

// Reset forgets every recorded draft.
func (s *SDK) Reset() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.deriveChildNodeDrafts = nil
	s.deriveKeyDrafts = nil
	s.keyGenDrafts = nil
	s.signAlgoTxDrafts = nil
	s.signDataDrafts = nil
	s.verifyDrafts = nil
	s.validateDataCalls = nil
	s.ecdhDrafts = nil
}

func fake(size int, inputs ...[]byte) []byte {
	h := sha512.New()
	for _, in := range inputs {
		h.Write(in)
	}
	digest := h.Sum(nil)
	out := make([]byte, 0, size)
	for len(out) < size {
		out = append(out, digest...)
	}
	return out[:size]
}

func uint32s(values ...uint32) []byte {
	buf := make([]byte, 0, 4*len(values))
	for _, v := range values {
		buf = binary.BigEndian.AppendUint32(buf, v)
	}
	return buf
}
