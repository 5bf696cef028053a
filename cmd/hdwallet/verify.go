package main

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/perawallet/pera-hdwallet/pkg/bip32ed25519"
	"github.com/urfave/cli/v2"
)

var verify = cli.Command{
	Name:  "verify",
	Usage: "verify an ed25519 signature",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "signature",
			Usage:    "hex encoded 64 bytes signature",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "message",
			Usage:    "hex encoded signed message",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "pubkey",
			Usage:    "signer address or hex encoded public key",
			Required: true,
		},
	},
	Action: verifyAction,
}

func verifyAction(ctx *cli.Context) error {
	signature, err := hex.DecodeString(ctx.String("signature"))
	if err != nil {
		return fmt.Errorf("invalid signature: %w", err)
	}
	message, err := hex.DecodeString(ctx.String("message"))
	if err != nil {
		return fmt.Errorf("invalid message: %w", err)
	}
	pubkey, err := parsePublicKey(ctx.String("pubkey"))
	if err != nil {
		return err
	}

	if !bip32ed25519.Verify(pubkey, message, signature) {
		return errors.New("invalid signature")
	}

	fmt.Println("valid signature")
	return nil
}
