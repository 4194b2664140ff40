package main

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/faucet-ledger/dump"
	"github.com/nspcc-dev/faucet-ledger/host"
	"github.com/urfave/cli"
)

var grantCommand = cli.Command{
	Name:      "grant",
	Usage:     "Credit the caller with the amount if its balance is zero",
	ArgsUsage: "AMOUNT",
	Flags:     walletFlags,
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return errors.New("expected exactly one argument: AMOUNT")
		}

		amount, err := parseAmount(c.Args().Get(0))
		if err != nil {
			return err
		}

		caller, err := authenticate(c)
		if err != nil {
			return err
		}

		return withHost(c, func(h *host.Host) error {
			r, err := h.Grant(caller, amount)
			if err != nil {
				return fmt.Errorf("grant: %w", err)
			}

			printReceipt(c, r)

			return nil
		})
	},
}

var transferCommand = cli.Command{
	Name:      "transfer",
	Usage:     "Move the amount from the caller to the recipient",
	ArgsUsage: "RECIPIENT AMOUNT",
	Flags:     walletFlags,
	Action: func(c *cli.Context) error {
		if c.NArg() != 2 {
			return errors.New("expected exactly two arguments: RECIPIENT AMOUNT")
		}

		amount, err := parseAmount(c.Args().Get(1))
		if err != nil {
			return err
		}

		caller, err := authenticate(c)
		if err != nil {
			return err
		}

		return withHost(c, func(h *host.Host) error {
			r, err := h.Transfer(caller, c.Args().Get(0), amount)
			if err != nil {
				return fmt.Errorf("transfer: %w", err)
			}

			printReceipt(c, r)

			return nil
		})
	},
}

var balanceCommand = cli.Command{
	Name:      "balance",
	Usage:     "Print the account balance",
	ArgsUsage: "ACCOUNT",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return errors.New("expected exactly one argument: ACCOUNT")
		}

		return withHost(c, func(h *host.Host) error {
			acc, err := h.Resolve(c.Args().Get(0))
			if err != nil {
				return err
			}

			v, err := h.BalanceOf(acc)
			if err != nil {
				return err
			}

			fmt.Fprintln(c.App.Writer, v)

			return nil
		})
	},
}

var supplyCommand = cli.Command{
	Name:  "supply",
	Usage: "Print the total supply",
	Action: func(c *cli.Context) error {
		return withHost(c, func(h *host.Host) error {
			v, err := h.TotalSupply()
			if err != nil {
				return err
			}

			fmt.Fprintln(c.App.Writer, v)

			return nil
		})
	},
}

var verifyCommand = cli.Command{
	Name:  "verify",
	Usage: "Check that the total supply equals the sum of all balances",
	Action: func(c *cli.Context) error {
		return withHost(c, func(h *host.Host) error {
			err := h.CheckSupply()
			if err != nil {
				return err
			}

			height, err := h.Height()
			if err != nil {
				return err
			}

			fmt.Fprintf(c.App.Writer, "ledger is consistent at height %d\n", height)

			return nil
		})
	},
}

var dumpFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "dir, d",
		Usage: "Directory with dumps",
		Value: ".",
	},
	cli.StringFlag{
		Name:  "label, l",
		Usage: "Label of the dump",
	},
}

var dumpCommand = cli.Command{
	Name:  "dump",
	Usage: "Write the ledger state into the dump files",
	Flags: dumpFlags,
	Action: func(c *cli.Context) error {
		label := c.String("label")
		if label == "" {
			return errors.New("missing dump label")
		}

		return withHost(c, func(h *host.Host) error {
			id, err := h.Dump(c.String("dir"), label)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.App.Writer, "ledger state is dumped as '%s'\n", id)

			return nil
		})
	},
}

var restoreCommand = cli.Command{
	Name:  "restore",
	Usage: "Fill the empty storage with the ledger state from the dump files",
	Flags: append([]cli.Flag{
		cli.Uint64Flag{
			Name:  "height",
			Usage: "Height of the dump",
		},
	}, dumpFlags...),
	Action: func(c *cli.Context) error {
		id := dump.ID{
			Label:  c.String("label"),
			Height: c.Uint64("height"),
		}
		if id.Label == "" {
			return errors.New("missing dump label")
		}

		r, err := dump.Open(c.String("dir"), id)
		if err != nil {
			return err
		}

		return withHost(c, func(h *host.Host) error {
			err := h.Restore(r)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.App.Writer, "ledger state is restored from '%s'\n", id)

			return nil
		})
	},
}

func parseAmount(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount '%s'", s)
	}

	return v, nil
}

func printReceipt(c *cli.Context, r *host.Receipt) {
	fmt.Fprintf(c.App.Writer, "%s %s by %s committed at height %d\n",
		r.ID, r.Method, r.Caller.StringLE(), r.Height)
}
