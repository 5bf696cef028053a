package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/perawallet/pera-hdwallet/pkg/hdwallet"
	"github.com/urfave/cli/v2"
)

var signdata = cli.Command{
	Name:  "signdata",
	Usage: "sign arbitrary data, such as an authentication challenge",
	Flags: []cli.Flag{
		walletFlag,
		addressFlag,
		&cli.StringFlag{
			Name:     "data",
			Usage:    "the data to sign, encoded as stated by --encoding",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "encoding",
			Usage: "the encoding of data: none, base64 or msgpack (hex)",
			Value: string(hdwallet.EncodingNone),
		},
		&cli.StringFlag{
			Name:  "schema",
			Usage: "path to a JSON schema the decoded data must satisfy",
		},
	},
	Action: signDataAction,
}

func signDataAction(ctx *cli.Context) error {
	metadata := hdwallet.SignMetadata{
		Encoding: hdwallet.Encoding(ctx.String("encoding")),
	}
	if path := ctx.String("schema"); path != "" {
		schema, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		metadata.Schema = schema
	}

	data := []byte(ctx.String("data"))
	// msgpack payloads are binary, so they are passed as hex
	if metadata.Encoding == hdwallet.EncodingMsgpack {
		buf, err := hex.DecodeString(ctx.String("data"))
		if err != nil {
			return fmt.Errorf("invalid hex data: %w", err)
		}
		data = buf
	}

	signer, detail, cleanup, err := getSigner(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	valid, err := signer.ValidateData(data, metadata)
	if err != nil {
		return err
	}
	if !valid {
		return hdwallet.ErrInvalidData
	}

	signature, err := signer.SignDataWithMetadata(data, detail, metadata)
	if err != nil {
		return err
	}

	fmt.Println(hex.EncodeToString(signature))
	return nil
}
