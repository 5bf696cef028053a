package telemetry_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/perawallet/pera-hdwallet/internal/telemetry"
	"github.com/perawallet/pera-hdwallet/pkg/hdwallet"
	"github.com/perawallet/pera-hdwallet/pkg/hdwallet/hdwallettest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestInstrumentedSDK(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := telemetry.NewMetrics(reg)
	require.NoError(t, err)

	failing := true
	inner := &hdwallettest.SDK{
		SignAlgorandTransactionFunc: func(
			hdwallet.SignAlgoTransactionDraft,
		) ([]byte, error) {
			if failing {
				return nil, errors.New("failure")
			}
			return make([]byte, 64), nil
		},
		VerifySignatureFunc: func(d hdwallet.VerifySignatureDraft) bool {
			return bytes.Equal(d.Message, []byte("valid"))
		},
	}
	sdk := telemetry.NewInstrumentedSDK(inner, metrics)

	signer, err := hdwallet.NewTransactionSigner(hdwallet.TransactionSignerOpts{
		Wallet: &hdwallet.Seed{ID: "w", Entropy: make([]byte, 32)},
		SDK:    sdk,
	})
	require.NoError(t, err)

	detail := hdwallet.AddressDetail{DerivationType: hdwallet.Peikert}
	_, err = signer.SignTransaction([]byte("tx"), detail)
	require.Error(t, err)

	failing = false
	_, err = signer.SignTransactions([][]byte{[]byte("a"), []byte("b")}, detail)
	require.NoError(t, err)

	require.True(t, signer.VerifySignature(nil, []byte("valid"), nil))
	require.False(t, signer.VerifySignature(nil, []byte("nope"), nil))

	require.Equal(t, 1.0, testutil.ToFloat64(
		metrics.Calls.WithLabelValues("sign_algorand_transaction", "error"),
	))
	require.Equal(t, 2.0, testutil.ToFloat64(
		metrics.Calls.WithLabelValues("sign_algorand_transaction", "ok"),
	))
	require.Equal(t, 1.0, testutil.ToFloat64(
		metrics.Calls.WithLabelValues("verify_signature", "valid"),
	))
	require.Equal(t, 1.0, testutil.ToFloat64(
		metrics.Calls.WithLabelValues("verify_signature", "invalid"),
	))
	require.Equal(t, 2, testutil.CollectAndCount(metrics.Duration))

	// the same registry hands back the existing collectors
	again, err := telemetry.NewMetrics(reg)
	require.NoError(t, err)
	require.Equal(t, 2.0, testutil.ToFloat64(
		again.Calls.WithLabelValues("sign_algorand_transaction", "ok"),
	))
}
