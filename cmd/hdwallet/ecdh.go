package main

import (
	"encoding/hex"
	"fmt"

	"github.com/perawallet/pera-hdwallet/pkg/hdwallet"
	"github.com/urfave/cli/v2"
)

var ecdh = cli.Command{
	Name:  "ecdh",
	Usage: "compute the shared secret with another party",
	Flags: []cli.Flag{
		walletFlag,
		addressFlag,
		&cli.StringFlag{
			Name:     "pubkey",
			Usage:    "address or hex encoded public key of the other party",
			Required: true,
		},
		&cli.BoolFlag{
			Name:  "me_first",
			Usage: "hash our public key before the other party's one",
		},
	},
	Action: ecdhAction,
}

func ecdhAction(ctx *cli.Context) error {
	pubkey, err := parsePublicKey(ctx.String("pubkey"))
	if err != nil {
		return err
	}

	signer, detail, cleanup, err := getSigner(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	secret, err := signer.PerformECDH(hdwallet.ECDHDraft{
		Context:        hdwallet.AddressContext,
		Account:        detail.Account,
		Change:         detail.Change,
		KeyIndex:       detail.KeyIndex,
		OtherPartyPub:  pubkey,
		MeFirst:        ctx.Bool("me_first"),
		DerivationType: detail.DerivationType,
	})
	if err != nil {
		return err
	}

	fmt.Println(hex.EncodeToString(secret))
	return nil
}
