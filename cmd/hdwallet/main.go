package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/perawallet/pera-hdwallet/internal/config"
	walletstore "github.com/perawallet/pera-hdwallet/internal/infrastructure/storage/badger"
	"github.com/perawallet/pera-hdwallet/internal/telemetry"
	"github.com/perawallet/pera-hdwallet/pkg/bip32ed25519"
	"github.com/perawallet/pera-hdwallet/pkg/hdwallet"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const metricsFile = "metrics"

var (
	registry = prometheus.NewRegistry()
	metrics  *telemetry.Metrics

	passphraseFlag = &cli.StringFlag{
		Name:    "passphrase",
		Usage:   "the passphrase used to encrypt the stored wallets",
		EnvVars: []string{"HDWALLET_PASSPHRASE"},
	}
	walletFlag = &cli.StringFlag{
		Name:     "wallet",
		Usage:    "the id of a stored wallet",
		Required: true,
	}
	accountFlag = &cli.Uint64Flag{
		Name:  "account",
		Usage: "the account index, lower than 2^31",
	}
	addressFlag = &cli.StringFlag{
		Name:     "address",
		Usage:    "a stored address of the wallet whose key is used",
		Required: true,
	}
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fatal(err)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()

	app.Version = "0.1.0"
	app.Name = "hdwallet"
	app.Usage = "Command line interface for Algorand HD wallets"
	app.Flags = []cli.Flag{passphraseFlag}
	app.Before = setup
	app.After = teardown
	app.Commands = append(
		app.Commands,
		&genseed,
		&wallet,
		&address,
		&sign,
		&signdata,
		&verify,
		&ecdh,
	)
	return app
}

func setup(ctx *cli.Context) error {
	if err := config.InitConfig(); err != nil {
		return err
	}
	if ctx.IsSet(passphraseFlag.Name) {
		config.Set(config.PassphraseKey, ctx.String(passphraseFlag.Name))
	}
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	m, err := telemetry.NewMetrics(registry)
	if err != nil {
		return err
	}
	metrics = m
	return nil
}

func teardown(_ *cli.Context) error {
	if metrics == nil || config.GetBool(config.NoMetricsKey) {
		return nil
	}
	telemetry.PrintMemoryStatistics()

	path := filepath.Join(
		config.GetDatadir(), config.ProfilerLocation, metricsFile,
	)
	if err := telemetry.DumpMetrics(registry, path); err != nil {
		log.WithError(err).Warn("failed to dump metrics")
	}
	return nil
}

func newService() (*hdwallet.Service, error) {
	return hdwallet.NewService(hdwallet.ServiceOpts{
		DerivationType: config.GetDerivationType(),
		GapLimit:       config.GetInt(config.GapLimitKey),
	})
}

func getStore() (*walletstore.Store, func(), error) {
	passphrase := config.GetString(config.PassphraseKey)
	if passphrase == "" {
		return nil, nil, errors.New(
			"missing passphrase, use --passphrase or HDWALLET_PASSPHRASE",
		)
	}

	store, err := walletstore.NewStore(walletstore.StoreOpts{
		Datadir:    filepath.Join(config.GetDatadir(), config.DbLocation),
		Passphrase: passphrase,
		ScryptN:    config.GetInt(config.ScryptNKey),
		Logger:     log.StandardLogger(),
	})
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := store.Close(); err != nil {
			log.WithError(err).Warn("failed to close wallet store")
		}
	}
	return store, cleanup, nil
}

// getSigner returns a signer for the stored wallet and the detail of the
// stored address given by flags. The signer key source is instrumented and
// wiped by the returned cleanup.
func getSigner(
	ctx *cli.Context,
) (*hdwallet.TransactionSigner, hdwallet.AddressDetail, func(), error) {
	var detail hdwallet.AddressDetail

	store, closeStore, err := getStore()
	if err != nil {
		return nil, detail, nil, err
	}
	defer closeStore()

	walletID := ctx.String(walletFlag.Name)
	w, err := store.GetWallet(background(ctx), walletID)
	if err != nil {
		return nil, detail, nil, err
	}
	if w == nil {
		return nil, detail, nil, fmt.Errorf("wallet %s not found", walletID)
	}

	addressStr := ctx.String(addressFlag.Name)
	addr, err := store.GetAddress(background(ctx), walletID, addressStr)
	if err != nil {
		w.Zero()
		return nil, detail, nil, err
	}
	if addr == nil {
		w.Zero()
		return nil, detail, nil, fmt.Errorf(
			"address %s not found in wallet %s", addressStr, walletID,
		)
	}
	bip32ed25519.Wipe(addr.PrivateKey)

	detail = addr.Detail()
	if err := detail.DerivationType.Validate(); err != nil {
		w.Zero()
		return nil, detail, nil, fmt.Errorf(
			"address %s has no derivation type, derive it again", addressStr,
		)
	}

	seed, err := hdwallet.SeedFromEntropy(w.Entropy)
	if err != nil {
		w.Zero()
		return nil, detail, nil, err
	}
	sdk, err := hdwallet.NewSDK(seed)
	bip32ed25519.Wipe(seed)
	if err != nil {
		w.Zero()
		return nil, detail, nil, err
	}

	signer, err := hdwallet.NewTransactionSigner(hdwallet.TransactionSignerOpts{
		Wallet:           w,
		SDK:              telemetry.NewInstrumentedSDK(sdk, metrics),
		BatchConcurrency: config.GetInt(config.BatchConcurrencyKey),
	})
	if err != nil {
		w.Zero()
		return nil, detail, nil, err
	}
	cleanup := func() {
		signer.Close()
		w.Zero()
	}
	return signer, detail, cleanup, nil
}

// parseAccount returns the account flag, which must fit a non hardened
// index since it is hardened when derived.
func parseAccount(ctx *cli.Context) (uint32, error) {
	account := ctx.Uint64(accountFlag.Name)
	if account >= uint64(bip32ed25519.HardenedKeyStart) {
		return 0, fmt.Errorf(
			"account must be lower than %d, got %d",
			bip32ed25519.HardenedKeyStart, account,
		)
	}
	return uint32(account), nil
}

// parsePublicKey accepts either an Algorand address or a hex encoded key.
func parsePublicKey(str string) ([]byte, error) {
	if pubkey, err := hdwallet.DecodeAddress(str); err == nil {
		return pubkey, nil
	}
	pubkey, err := hex.DecodeString(str)
	if err != nil || len(pubkey) != 32 {
		return nil, hdwallet.ErrInvalidPublicKey
	}
	return pubkey, nil
}

func splitMnemonic(str string) []string {
	return strings.Fields(str)
}

func printJSON(resp interface{}) {
	b, err := json.MarshalIndent(resp, "", "\t")
	if err != nil {
		fmt.Println("unable to encode response: ", err)
		return
	}
	fmt.Println(string(b))
}

func background(ctx *cli.Context) context.Context {
	if ctx.Context != nil {
		return ctx.Context
	}
	return context.Background()
}

type invalidUsageError struct {
	ctx     *cli.Context
	command string
}

func (e *invalidUsageError) Error() string {
	return fmt.Sprintf("invalid usage of command %s", e.command)
}

func fatal(err error) {
	var e *invalidUsageError
	if errors.As(err, &e) {
		_ = cli.ShowCommandHelp(e.ctx, e.command)
	} else {
		_, _ = fmt.Fprintf(os.Stderr, "[hdwallet] %v\n", err)
	}
	os.Exit(1)
}
