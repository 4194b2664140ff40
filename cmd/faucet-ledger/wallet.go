package main

import (
	"errors"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"github.com/urfave/cli"
)

var walletFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "wallet, w",
		Usage: "Path to the NEP-6 wallet of the caller",
	},
	cli.StringFlag{
		Name:  "address, a",
		Usage: "Caller address, the default wallet account is used if omitted",
	},
	cli.StringFlag{
		Name:   "password, p",
		Usage:  "Password of the caller account",
		EnvVar: "FAUCET_LEDGER_PASSWORD",
	},
}

// authenticate returns script hash of the wallet account which private key
// is successfully decrypted with the given password.
func authenticate(c *cli.Context) (util.Uint160, error) {
	path := c.String("wallet")
	if path == "" {
		return util.Uint160{}, errors.New("missing wallet")
	}

	w, err := wallet.NewWalletFromFile(path)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("open wallet: %w", err)
	}

	defer w.Close()

	var acc *wallet.Account

	if addr := c.String("address"); addr != "" {
		h, err := address.StringToUint160(addr)
		if err != nil {
			return util.Uint160{}, fmt.Errorf("invalid caller address: %w", err)
		}

		acc = w.GetAccount(h)
		if acc == nil {
			return util.Uint160{}, fmt.Errorf("account %s is missing in the wallet", addr)
		}
	} else {
		acc = w.GetAccount(w.GetChangeAddress())
		if acc == nil {
			return util.Uint160{}, errors.New("wallet has no default account")
		}
	}

	err = acc.Decrypt(c.String("password"), w.Scrypt)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("decrypt account %s: %w", acc.Address, err)
	}

	h, err := address.StringToUint160(acc.Address)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("decode account address: %w", err)
	}

	return h, nil
}
