package main

import (
	"encoding/hex"
	"fmt"

	"github.com/perawallet/pera-hdwallet/pkg/hdwallet"
	"github.com/urfave/cli/v2"
)

var address = cli.Command{
	Name:   "address",
	Usage:  "derive and store the first address of an account",
	Flags:  []cli.Flag{walletFlag, accountFlag},
	Action: addressAction,
}

func addressAction(ctx *cli.Context) error {
	account, err := parseAccount(ctx)
	if err != nil {
		return err
	}

	svc, err := newService()
	if err != nil {
		return err
	}
	store, cleanup, err := getStore()
	if err != nil {
		return err
	}
	defer cleanup()

	walletID := ctx.String(walletFlag.Name)
	w, err := store.GetWallet(background(ctx), walletID)
	if err != nil {
		return err
	}
	if w == nil {
		return fmt.Errorf("wallet %s not found", walletID)
	}
	defer w.Zero()

	addr, err := svc.GenerateAddress(w, account)
	if err != nil {
		return err
	}
	if err := store.SaveAddress(background(ctx), addr); err != nil {
		return err
	}

	printJSON(addressInfo{
		WalletID:       walletID,
		Address:        addr.Address,
		PublicKey:      hex.EncodeToString(addr.PublicKey),
		DerivationPath: hdwallet.DerivationPathString(account, 0),
		DerivationType: svc.DerivationType().String(),
	})
	return nil
}
