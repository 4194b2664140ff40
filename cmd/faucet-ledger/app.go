package main

import (
	"encoding/json"
	"fmt"

	"github.com/nspcc-dev/faucet-ledger/config"
	"github.com/nspcc-dev/faucet-ledger/host"
	"github.com/nspcc-dev/faucet-ledger/lookup"
	"github.com/nspcc-dev/faucet-ledger/store"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

var configFlag = cli.StringFlag{
	Name:   "config, c",
	Usage:  "Path to the YAML configuration file, defaults are used if omitted",
	EnvVar: "FAUCET_LEDGER_CONFIG",
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "faucet-ledger"
	app.Usage = "Faucet ledger host: grants, transfers and balance queries"
	app.Flags = []cli.Flag{configFlag}
	app.Commands = []cli.Command{
		grantCommand,
		transferCommand,
		balanceCommand,
		supplyCommand,
		verifyCommand,
		dumpCommand,
		restoreCommand,
	}

	return app
}

// withHost opens the storage described by the configuration, runs f
// against the Host over it and releases all resources.
func withHost(c *cli.Context, f func(*host.Host) error) error {
	cfg := config.Default()

	if path := c.GlobalString("config"); path != "" {
		var err error

		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}

	log, err := cfg.Logger.Build()
	if err != nil {
		return err
	}

	defer func() { _ = log.Sync() }()

	resolver, err := lookup.New(cfg.Aliases)
	if err != nil {
		return fmt.Errorf("init aliases: %w", err)
	}

	emitter, err := cfg.Emitter()
	if err != nil {
		return err
	}

	backend, err := store.Open(cfg.Storage)
	if err != nil {
		return err
	}

	defer func() {
		if err := backend.Close(); err != nil {
			log.Error("failed to close storage", zap.Error(err))
		}
	}()

	h, err := host.New(host.Prm{
		Logger:     log,
		Backend:    backend,
		Resolver:   resolver,
		ScriptHash: emitter,
	})
	if err != nil {
		return fmt.Errorf("init host: %w", err)
	}

	h.Subscribe(func(e state.NotificationEvent) {
		data, err := json.Marshal(&e)
		if err != nil {
			log.Error("failed to encode notification", zap.Error(err))
			return
		}

		fmt.Fprintln(c.App.Writer, string(data))
	})

	return f(h)
}
