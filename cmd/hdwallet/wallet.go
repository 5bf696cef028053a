package main

import (
	"encoding/hex"
	"fmt"

	"github.com/perawallet/pera-hdwallet/pkg/hdwallet"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var (
	mnemonicFlag = &cli.StringFlag{
		Name:  "mnemonic",
		Usage: "space separated list of 24 words",
	}

	wallet = cli.Command{
		Name:  "wallet",
		Usage: "manage the stored wallets",
		Subcommands: []*cli.Command{
			{
				Name: "save",
				Usage: "store a new wallet, restored from the given mnemonic or " +
					"random, along with its first address",
				Flags:  []cli.Flag{mnemonicFlag},
				Action: saveWalletAction,
			},
			{
				Name: "recover",
				Usage: "store the wallet of the given mnemonic along with its " +
					"first address; no on-chain lookup is performed, so " +
					"addresses of other accounts must be derived with the " +
					"address command",
				Flags:  []cli.Flag{mnemonicFlag},
				Action: recoverWalletAction,
			},
			{
				Name:   "list",
				Usage:  "list the stored addresses of a wallet",
				Flags:  []cli.Flag{walletFlag},
				Action: listAddressesAction,
			},
			{
				Name:   "delete",
				Usage:  "delete a wallet and its addresses",
				Flags:  []cli.Flag{walletFlag},
				Action: deleteWalletAction,
			},
		},
	}
)

type addressInfo struct {
	WalletID       string `json:"wallet_id"`
	Address        string `json:"address"`
	PublicKey      string `json:"public_key,omitempty"`
	DerivationPath string `json:"derivation_path,omitempty"`
	DerivationType string `json:"derivation_type,omitempty"`
}

func saveWalletAction(ctx *cli.Context) error {
	var entropy []byte
	if mnemonic := ctx.String(mnemonicFlag.Name); mnemonic != "" {
		buf, err := hdwallet.EntropyFromMnemonic(splitMnemonic(mnemonic))
		if err != nil {
			return err
		}
		entropy = buf
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

	detail, address, err := svc.SaveWalletAndComposeAddressDetail(
		background(ctx), store, entropy,
	)
	if err != nil {
		return err
	}

	path, err := detail.DerivationPath()
	if err != nil {
		return err
	}
	printJSON(addressInfo{
		WalletID:       detail.WalletID,
		Address:        address,
		DerivationPath: path.String(),
		DerivationType: detail.DerivationType.String(),
	})
	return nil
}

func recoverWalletAction(ctx *cli.Context) error {
	mnemonic := splitMnemonic(ctx.String(mnemonicFlag.Name))
	if len(mnemonic) == 0 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}
	entropy, err := hdwallet.EntropyFromMnemonic(mnemonic)
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

	recovered, err := svc.RecoverAccounts(background(ctx), mnemonic)
	if err != nil {
		return err
	}
	w, err := svc.CreateWallet(entropy)
	if err != nil {
		return err
	}
	defer w.Zero()

	if err := store.SaveWallet(background(ctx), w); err != nil {
		return err
	}

	infos := make([]addressInfo, 0, len(recovered))
	for _, r := range recovered {
		address, err := svc.ImportAddress(r, w)
		if err != nil {
			return err
		}
		if err := store.SaveAddress(background(ctx), address); err != nil {
			return err
		}
		log.Debugf(
			"imported address %s (account %d, index %d)",
			r.Address, r.AccountIndex, r.AddressIndex,
		)
		infos = append(infos, addressInfo{
			WalletID:       w.ID,
			Address:        address.Address,
			PublicKey:      hex.EncodeToString(address.PublicKey),
			DerivationPath: hdwallet.DerivationPathString(r.AccountIndex, r.AddressIndex),
			DerivationType: address.DerivationType.String(),
		})
	}

	printJSON(infos)
	return nil
}

func listAddressesAction(ctx *cli.Context) error {
	store, cleanup, err := getStore()
	if err != nil {
		return err
	}
	defer cleanup()

	addresses, err := store.GetAddresses(
		background(ctx), ctx.String(walletFlag.Name),
	)
	if err != nil {
		return err
	}

	infos := make([]addressInfo, 0, len(addresses))
	for _, a := range addresses {
		info := addressInfo{
			WalletID:  a.WalletID,
			Address:   a.Address,
			PublicKey: hex.EncodeToString(a.PublicKey),
		}
		if path, err := a.Detail().DerivationPath(); err == nil {
			info.DerivationPath = path.String()
		}
		if a.DerivationType.Validate() == nil {
			info.DerivationType = a.DerivationType.String()
		}
		infos = append(infos, info)
	}
	printJSON(infos)
	return nil
}

func deleteWalletAction(ctx *cli.Context) error {
	store, cleanup, err := getStore()
	if err != nil {
		return err
	}
	defer cleanup()

	walletID := ctx.String(walletFlag.Name)
	addresses, err := store.GetAddresses(background(ctx), walletID)
	if err != nil {
		return err
	}
	for _, a := range addresses {
		if err := store.DeleteAddress(background(ctx), walletID, a.Address); err != nil {
			return err
		}
	}
	if err := store.DeleteWallet(background(ctx), walletID); err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("wallet %s deleted\n", walletID)
	return nil
}
