package hdwallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/perawallet/pera-hdwallet/pkg/circuitbreaker"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"go.uber.org/ratelimit"
)

// AccountFastLookup is the on-chain summary of an address.
type AccountFastLookup struct {
	AccountExists bool
	AlgoValue     decimal.Decimal
	USDValue      decimal.Decimal
}

// AccountLookup tells whether an address has on-chain history.
type AccountLookup interface {
	FastLookup(ctx context.Context, address string) (*AccountFastLookup, error)
}

// GuardedLookupOpts is the struct given to NewGuardedLookup.
type GuardedLookupOpts struct {
	Lookup            AccountLookup
	RequestsPerSecond int
}

func (o GuardedLookupOpts) validate() error {
	if o.Lookup == nil {
		return errors.New("lookup must not be null")
	}
	if o.RequestsPerSecond <= 0 {
		return errors.New("requests per second must be greater than 0")
	}
	return nil
}

type guardedLookup struct {
	lookup  AccountLookup
	limiter ratelimit.Limiter
	breaker *gobreaker.CircuitBreaker
}

// NewGuardedLookup rate limits the given lookup and stops calling it once
// it keeps failing.
func NewGuardedLookup(opts GuardedLookupOpts) (AccountLookup, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	onStateChange := func(name string, from, to gobreaker.State) {
		log.Debugf("%s: %s -> %s", name, from, to)
	}
	return &guardedLookup{
		lookup:  opts.Lookup,
		limiter: ratelimit.New(opts.RequestsPerSecond),
		breaker: circuitbreaker.NewCircuitBreaker("account-lookup", onStateChange),
	}, nil
}

func (l *guardedLookup) FastLookup(
	ctx context.Context, address string,
) (*AccountFastLookup, error) {
	res, err := l.breaker.Execute(func() (interface{}, error) {
		l.limiter.Take()
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return l.lookup.FastLookup(ctx, address)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFastLookupFailed, err)
	}
	return res.(*AccountFastLookup), nil
}
