package hdwallet_test

import (
	"context"
	"errors"
	"testing"

	"github.com/perawallet/pera-hdwallet/pkg/circuitbreaker"
	"github.com/perawallet/pera-hdwallet/pkg/hdwallet"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuardedLookup(t *testing.T) {
	t.Run("forwards", func(t *testing.T) {
		inner := &mockLookup{used: map[string]decimal.Decimal{"A": decimal.NewFromInt(1)}}
		lookup, err := hdwallet.NewGuardedLookup(hdwallet.GuardedLookupOpts{
			Lookup:            inner,
			RequestsPerSecond: 1000,
		})
		require.NoError(t, err)

		res, err := lookup.FastLookup(context.Background(), "A")
		require.NoError(t, err)
		require.True(t, res.AccountExists)
		require.True(t, decimal.NewFromInt(1).Equal(res.AlgoValue))

		res, err = lookup.FastLookup(context.Background(), "B")
		require.NoError(t, err)
		require.False(t, res.AccountExists)
	})

	t.Run("trips", func(t *testing.T) {
		inner := &mockLookup{err: errors.New("network down")}
		lookup, err := hdwallet.NewGuardedLookup(hdwallet.GuardedLookupOpts{
			Lookup:            inner,
			RequestsPerSecond: 1000,
		})
		require.NoError(t, err)

		attempts := circuitbreaker.MaxNumOfFailingRequests + 5
		for i := 0; i < attempts; i++ {
			_, err := lookup.FastLookup(context.Background(), "A")
			require.ErrorIs(t, err, hdwallet.ErrFastLookupFailed)
		}
		// requests stop reaching the inner lookup once the breaker is open
		assert.Equal(t, circuitbreaker.MaxNumOfFailingRequests+1, inner.count())
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := hdwallet.NewGuardedLookup(hdwallet.GuardedLookupOpts{RequestsPerSecond: 1})
		require.Error(t, err)
		_, err = hdwallet.NewGuardedLookup(hdwallet.GuardedLookupOpts{Lookup: &mockLookup{}})
		require.Error(t, err)
	})
}
