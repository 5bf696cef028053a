package hdwallet_test

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/perawallet/pera-hdwallet/pkg/hdwallet"
	"github.com/perawallet/pera-hdwallet/pkg/hdwallet/hdwallettest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testWallet = &hdwallet.Seed{
		ID:      "test-wallet",
		Entropy: bytes.Repeat([]byte{0x01}, 32),
	}
	testAddressDetail = hdwallet.AddressDetail{
		WalletID:       testWallet.ID,
		Account:        0,
		Change:         0,
		KeyIndex:       0,
		DerivationType: hdwallet.Peikert,
	}
	testPayload = []byte("test transaction")
)

func TestSignTransaction(t *testing.T) {
	signer := newTestSigner(t, nil, 0)

	signature, err := signer.SignTransaction(testPayload, testAddressDetail)
	require.NoError(t, err)
	require.Len(t, signature, 64)

	again, err := signer.SignTransaction(testPayload, testAddressDetail)
	require.NoError(t, err)
	assert.Equal(t, signature, again)

	other := testAddressDetail
	other.KeyIndex = 1
	otherSignature, err := signer.SignTransaction(testPayload, other)
	require.NoError(t, err)
	assert.NotEqual(t, signature, otherSignature)
}

func TestSignTransactions(t *testing.T) {
	payloads := make([][]byte, 0, 8)
	for i := 0; i < 8; i++ {
		payloads = append(payloads, []byte(fmt.Sprintf("transaction %d", i)))
	}

	for _, concurrency := range []int{0, 1, 4, 16} {
		t.Run(fmt.Sprintf("concurrency %d", concurrency), func(t *testing.T) {
			signer := newTestSigner(t, nil, concurrency)

			signatures, err := signer.SignTransactions(payloads, testAddressDetail)
			require.NoError(t, err)
			require.Len(t, signatures, len(payloads))

			for i, payload := range payloads {
				signature, err := signer.SignTransaction(payload, testAddressDetail)
				require.NoError(t, err)
				assert.Equal(t, signature, signatures[i])
			}
		})
	}

	t.Run("duplicates are kept", func(t *testing.T) {
		signer := newTestSigner(t, nil, 0)

		signatures, err := signer.SignTransactions(
			[][]byte{testPayload, testPayload}, testAddressDetail,
		)
		require.NoError(t, err)
		require.Len(t, signatures, 2)
		assert.Equal(t, signatures[0], signatures[1])
	})

	t.Run("empty", func(t *testing.T) {
		signer := newTestSigner(t, nil, 0)

		signatures, err := signer.SignTransactions(nil, testAddressDetail)
		require.NoError(t, err)
		require.Empty(t, signatures)
	})
}

func TestFailingSignTransactions(t *testing.T) {
	payloads := [][]byte{
		[]byte("ok 0"), []byte("fail 1"), []byte("ok 2"), []byte("fail 3"), []byte("ok 4"),
	}
	sdk := &hdwallettest.SDK{
		SignAlgorandTransactionFunc: func(
			draft hdwallet.SignAlgoTransactionDraft,
		) ([]byte, error) {
			if bytes.HasPrefix(draft.PrefixEncodedTx, []byte("fail")) {
				return nil, errors.New(string(draft.PrefixEncodedTx))
			}
			return make([]byte, 64), nil
		},
	}

	t.Run("sequential", func(t *testing.T) {
		sdk.Reset()
		signer := newTestSigner(t, sdk, 0)

		signatures, err := signer.SignTransactions(payloads, testAddressDetail)
		require.Nil(t, signatures)

		var sdkErr *hdwallet.SDKError
		require.ErrorAs(t, err, &sdkErr)
		assert.Equal(t, "fail 1", sdkErr.Message)
		assert.Len(t, sdk.SignAlgoTransactionDrafts(), 2)
	})

	t.Run("parallel", func(t *testing.T) {
		for i := 0; i < 10; i++ {
			sdk.Reset()
			signer := newTestSigner(t, sdk, 3)

			signatures, err := signer.SignTransactions(payloads, testAddressDetail)
			require.Nil(t, signatures)

			var sdkErr *hdwallet.SDKError
			require.ErrorAs(t, err, &sdkErr)
			assert.Equal(t, "fail 1", sdkErr.Message)
		}
	})

	t.Run("parallel all failing", func(t *testing.T) {
		failing := &hdwallettest.SDK{
			SignAlgorandTransactionFunc: func(
				draft hdwallet.SignAlgoTransactionDraft,
			) ([]byte, error) {
				return nil, errors.New(string(draft.PrefixEncodedTx))
			},
		}
		many := make([][]byte, 16)
		for i := range many {
			many[i] = []byte(fmt.Sprintf("fail %d", i))
		}

		for i := 0; i < 200; i++ {
			failing.Reset()
			signer := newTestSigner(t, failing, 8)

			signatures, err := signer.SignTransactions(many, testAddressDetail)
			require.Nil(t, signatures)

			var sdkErr *hdwallet.SDKError
			require.ErrorAs(t, err, &sdkErr)
			require.Equal(t, "fail 0", sdkErr.Message)
			require.Len(t, failing.SignAlgoTransactionDrafts(), len(many))
		}
	})
}

func TestProviderAbsence(t *testing.T) {
	providers := []hdwallet.Provider{
		hdwallet.NoProvider{},
		hdwallet.ActiveProvider{},
		nil,
	}

	for _, provider := range providers {
		signer := newTestSigner(t, nil, 0)
		require.True(t, signer.HasProvider())

		signature, err := signer.SignTransaction(testPayload, testAddressDetail)
		require.NoError(t, err)
		publicKey := publicKeyOf(t, testAddressDetail)
		require.True(t, signer.VerifySignature(signature, testPayload, publicKey))

		signer.SetProvider(provider)
		require.False(t, signer.HasProvider())

		_, err = signer.SignTransaction(testPayload, testAddressDetail)
		require.ErrorIs(t, err, hdwallet.ErrInvalidSeed)

		_, err = signer.SignTransactions([][]byte{testPayload}, testAddressDetail)
		require.ErrorIs(t, err, hdwallet.ErrInvalidSeed)

		_, err = signer.SignData(testPayload, testAddressDetail)
		require.ErrorIs(t, err, hdwallet.ErrInvalidSeed)

		_, err = signer.ValidateData(testPayload, hdwallet.DefaultSignMetadata)
		require.ErrorIs(t, err, hdwallet.ErrInvalidSeed)

		_, err = signer.PerformECDH(hdwallet.ECDHDraft{
			OtherPartyPub:  publicKey,
			DerivationType: hdwallet.Peikert,
		})
		require.ErrorIs(t, err, hdwallet.ErrInvalidSeed)

		require.False(t, signer.VerifySignature(signature, testPayload, publicKey))
	}
}

func TestErrorWrapping(t *testing.T) {
	sdk := &hdwallettest.SDK{
		SignAlgorandTransactionFunc: func(
			hdwallet.SignAlgoTransactionDraft,
		) ([]byte, error) {
			return nil, errors.New("native failure")
		},
		SignDataFunc: func(hdwallet.SignDataDraft) ([]byte, error) {
			return nil, &hdwallet.SDKError{Message: "already wrapped"}
		},
		PerformECDHFunc: func(hdwallet.ECDHDraft) ([]byte, error) {
			return nil, errors.New("ecdh failure")
		},
		ValidateDataFunc: func([]byte, hdwallet.SignMetadata) (bool, error) {
			return false, errors.New("cannot check")
		},
	}
	signer := newTestSigner(t, sdk, 0)

	tests := []struct {
		name    string
		call    func() error
		message string
	}{
		{
			"sign transaction",
			func() error {
				_, err := signer.SignTransaction(testPayload, testAddressDetail)
				return err
			},
			"native failure",
		},
		{
			"sign data",
			func() error {
				_, err := signer.SignData(testPayload, testAddressDetail)
				return err
			},
			"already wrapped",
		},
		{
			"ecdh",
			func() error {
				_, err := signer.PerformECDH(hdwallet.ECDHDraft{})
				return err
			},
			"ecdh failure",
		},
		{
			"validate data",
			func() error {
				_, err := signer.ValidateData(testPayload, hdwallet.DefaultSignMetadata)
				return err
			},
			"cannot check",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			var sdkErr *hdwallet.SDKError
			require.ErrorAs(t, err, &sdkErr)
			assert.Equal(t, tt.message, sdkErr.Message)
			assert.NotErrorIs(t, err, hdwallet.ErrInvalidSeed)
		})
	}
}

func TestPathPropagation(t *testing.T) {
	sdk := &hdwallettest.SDK{}
	signer := newTestSigner(t, sdk, 0)

	details := []hdwallet.AddressDetail{
		testAddressDetail,
		{WalletID: "w", Account: 3, Change: 1, KeyIndex: 7, DerivationType: hdwallet.Khovratovich},
		{WalletID: "w", Account: 1 << 30, Change: 0, KeyIndex: 1 << 31, DerivationType: hdwallet.Peikert},
		{WalletID: "w", Account: 2, Change: 0, KeyIndex: 0},
	}
	for _, detail := range details {
		payload := []byte(fmt.Sprintf("payload for %d", detail.Account))

		_, err := signer.SignTransaction(payload, detail)
		require.NoError(t, err)

		draft := sdk.LastSignAlgoTransactionDraft()
		require.NotNil(t, draft)
		assert.Equal(t, hdwallet.AddressContext, draft.Context)
		assert.Equal(t, detail.Account, draft.Account)
		assert.Equal(t, detail.Change, draft.Change)
		assert.Equal(t, detail.KeyIndex, draft.KeyIndex)
		assert.Equal(t, detail.DerivationType, draft.DerivationType)
		assert.Equal(t, payload, draft.PrefixEncodedTx)

		_, err = signer.SignData(payload, detail)
		require.NoError(t, err)

		dataDrafts := sdk.SignDataDrafts()
		dataDraft := dataDrafts[len(dataDrafts)-1]
		assert.Equal(t, detail.Account, dataDraft.Account)
		assert.Equal(t, detail.Change, dataDraft.Change)
		assert.Equal(t, detail.KeyIndex, dataDraft.KeyIndex)
		assert.Equal(t, detail.DerivationType, dataDraft.DerivationType)
		assert.Equal(t, payload, dataDraft.Data)
		assert.Equal(t, hdwallet.DefaultSignMetadata, dataDraft.Metadata)
	}
	assert.Len(t, sdk.SignAlgoTransactionDrafts(), len(details))
}

func TestVerificationRoundTrip(t *testing.T) {
	signer := newTestSigner(t, nil, 0)
	publicKey := publicKeyOf(t, testAddressDetail)

	signature, err := signer.SignTransaction(testPayload, testAddressDetail)
	require.NoError(t, err)
	require.True(t, signer.VerifySignature(signature, testPayload, publicKey))

	for i := range testPayload {
		mutated := append([]byte{}, testPayload...)
		mutated[i]++
		assert.False(t, signer.VerifySignature(signature, mutated, publicKey))
	}
	for i := range signature {
		mutated := append([]byte{}, signature...)
		mutated[i]++
		assert.False(t, signer.VerifySignature(mutated, testPayload, publicKey))
	}

	other := testAddressDetail
	other.Account = 1
	assert.False(t, signer.VerifySignature(signature, testPayload, publicKeyOf(t, other)))
}

func TestSignData(t *testing.T) {
	signer := newTestSigner(t, nil, 0)
	publicKey := publicKeyOf(t, testAddressDetail)

	challenge := []byte("authentication challenge")
	signature, err := signer.SignData(challenge, testAddressDetail)
	require.NoError(t, err)
	require.True(t, signer.VerifySignature(signature, challenge, publicKey))

	again, err := signer.SignData(challenge, testAddressDetail)
	require.NoError(t, err)
	assert.Equal(t, signature, again)

	for _, payload := range [][]byte{
		[]byte("TX transaction in disguise"),
		[]byte("MXmultisig"),
		[]byte("Program"),
		[]byte("ProgData"),
	} {
		signature, err := signer.SignData(payload, testAddressDetail)
		require.Nil(t, signature)

		var sdkErr *hdwallet.SDKError
		require.ErrorAs(t, err, &sdkErr)
		require.ErrorIs(t, err, hdwallet.ErrInvalidData)
	}

	valid, err := signer.ValidateData(challenge, hdwallet.DefaultSignMetadata)
	require.NoError(t, err)
	require.True(t, valid)

	valid, err = signer.ValidateData(testPayload, hdwallet.SignMetadata{
		Encoding: hdwallet.EncodingBase64,
	})
	require.NoError(t, err)
	require.False(t, valid)
}

func TestPerformECDH(t *testing.T) {
	alice := newTestSigner(t, nil, 0)
	bob, err := hdwallet.NewTransactionSigner(hdwallet.TransactionSignerOpts{
		Wallet: &hdwallet.Seed{ID: "bob", Entropy: bytes.Repeat([]byte{0x02}, 32)},
	})
	require.NoError(t, err)

	alicePub := publicKeyOf(t, testAddressDetail)
	bobPub := keyOf(t, bob, testAddressDetail)

	aliceSecret, err := alice.PerformECDH(hdwallet.ECDHDraft{
		Context:        hdwallet.AddressContext,
		OtherPartyPub:  bobPub,
		MeFirst:        true,
		DerivationType: hdwallet.Peikert,
	})
	require.NoError(t, err)
	require.Len(t, aliceSecret, 32)

	bobSecret, err := bob.PerformECDH(hdwallet.ECDHDraft{
		Context:        hdwallet.AddressContext,
		OtherPartyPub:  alicePub,
		MeFirst:        false,
		DerivationType: hdwallet.Peikert,
	})
	require.NoError(t, err)
	assert.Equal(t, aliceSecret, bobSecret)

	_, err = alice.PerformECDH(hdwallet.ECDHDraft{
		OtherPartyPub:  bobPub[:8],
		DerivationType: hdwallet.Peikert,
	})
	var sdkErr *hdwallet.SDKError
	require.ErrorAs(t, err, &sdkErr)
}

func TestConcurrentSigning(t *testing.T) {
	signer := newTestSigner(t, nil, 0)

	expected := make([][]byte, 4)
	for i := range expected {
		detail := testAddressDetail
		detail.KeyIndex = uint32(i)
		signature, err := signer.SignTransaction(testPayload, detail)
		require.NoError(t, err)
		expected[i] = signature
	}

	wg := &sync.WaitGroup{}
	signatures := make([][]byte, len(expected))
	errs := make([]error, len(expected))
	for i := range expected {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			detail := testAddressDetail
			detail.KeyIndex = uint32(i)
			signatures[i], errs[i] = signer.SignTransaction(testPayload, detail)
		}(i)
	}
	wg.Wait()

	for i := range expected {
		require.NoError(t, errs[i])
		assert.Equal(t, expected[i], signatures[i])
	}
}

func TestNewTransactionSigner(t *testing.T) {
	_, err := hdwallet.NewTransactionSigner(hdwallet.TransactionSignerOpts{})
	require.ErrorIs(t, err, hdwallet.ErrNullWallet)

	_, err = hdwallet.NewTransactionSigner(hdwallet.TransactionSignerOpts{
		Wallet:           testWallet,
		BatchConcurrency: -1,
	})
	require.ErrorIs(t, err, hdwallet.ErrInvalidBatchConcurrency)

	signer, err := hdwallet.NewTransactionSigner(hdwallet.TransactionSignerOpts{
		Wallet: &hdwallet.Seed{ID: "short", Entropy: []byte{0x01, 0x02}},
	})
	require.NoError(t, err)
	require.False(t, signer.HasProvider())
	_, err = signer.SignTransaction(testPayload, testAddressDetail)
	require.ErrorIs(t, err, hdwallet.ErrInvalidSeed)

	signer = newTestSigner(t, nil, 0)
	require.Equal(t, testWallet, signer.Wallet())
	signer.Close()
	require.False(t, signer.HasProvider())
	_, err = signer.SignTransaction(testPayload, testAddressDetail)
	require.ErrorIs(t, err, hdwallet.ErrInvalidSeed)
	require.Equal(t, bytes.Repeat([]byte{0x01}, 32), testWallet.Entropy)
}

func newTestSigner(
	t *testing.T, sdk hdwallet.SDK, batchConcurrency int,
) *hdwallet.TransactionSigner {
	signer, err := hdwallet.NewTransactionSigner(hdwallet.TransactionSignerOpts{
		Wallet:           testWallet,
		SDK:              sdk,
		BatchConcurrency: batchConcurrency,
	})
	require.NoError(t, err)
	return signer
}

func publicKeyOf(t *testing.T, detail hdwallet.AddressDetail) []byte {
	return keyOf(t, newTestSigner(t, nil, 0), detail)
}

func keyOf(
	t *testing.T, signer *hdwallet.TransactionSigner, detail hdwallet.AddressDetail,
) []byte {
	seed, err := hdwallet.SeedFromEntropy(signer.Wallet().Entropy)
	require.NoError(t, err)
	sdk, err := hdwallet.NewSDK(seed)
	require.NoError(t, err)

	publicKey, err := sdk.GenerateKey(hdwallet.KeyGenDraft{
		Context:        hdwallet.AddressContext,
		Account:        detail.Account,
		Change:         detail.Change,
		KeyIndex:       detail.KeyIndex,
		DerivationType: detail.DerivationType,
	})
	require.NoError(t, err)
	return publicKey
}
