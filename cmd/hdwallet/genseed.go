package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"
)

var genseed = cli.Command{
	Name:   "genseed",
	Usage:  "generate a 24 words mnemonic seed",
	Action: genSeedAction,
}

func genSeedAction(ctx *cli.Context) error {
	svc, err := newService()
	if err != nil {
		return err
	}

	mnemonic, err := svc.GenerateMnemonic()
	if err != nil {
		return err
	}

	fmt.Println(strings.Join(mnemonic, " "))
	return nil
}
