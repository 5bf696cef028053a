package main

import (
	"encoding/hex"
	"fmt"

	"github.com/urfave/cli/v2"
)

var sign = cli.Command{
	Name:  "sign",
	Usage: "sign one or more prefix encoded transactions",
	Flags: []cli.Flag{
		walletFlag,
		addressFlag,
		&cli.StringSliceFlag{
			Name:  "tx",
			Usage: "hex encoded transaction, including its TX prefix",
		},
	},
	Action: signAction,
}

func signAction(ctx *cli.Context) error {
	txs := ctx.StringSlice("tx")
	if len(txs) == 0 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}

	payloads := make([][]byte, 0, len(txs))
	for i, tx := range txs {
		payload, err := hex.DecodeString(tx)
		if err != nil {
			return fmt.Errorf("tx %d: invalid hex: %w", i, err)
		}
		payloads = append(payloads, payload)
	}

	signer, detail, cleanup, err := getSigner(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	signatures, err := signer.SignTransactions(payloads, detail)
	if err != nil {
		return err
	}

	for _, signature := range signatures {
		fmt.Println(hex.EncodeToString(signature))
	}
	return nil
}
