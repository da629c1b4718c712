package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aura-nw/soulbound/common"
	"github.com/aura-nw/soulbound/contracts/soulbound"
	"github.com/aura-nw/soulbound/internal/kvstore"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

func main() {
	err := newApp().Run(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

var configFlag = cli.StringFlag{
	Name:  "config, c",
	Usage: "path to the YAML configuration file",
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "soulbound"
	app.Usage = "Soulbound token ledger with consent-verified issuance"
	app.Version = common.VersionString(common.Version)
	app.Flags = []cli.Flag{configFlag}
	app.Commands = []cli.Command{
		initCommand(),
		mintCommand(),
		giveCommand(),
		takeCommand(),
		equipCommand(),
		unequipCommand(),
		revokeCommand(),
		execCommand(),
		queryCommand(),
		tokensCommand(),
		keygenCommand(),
		signCommand(),
		dumpCommand(),
		restoreCommand(),
	}
	return app
}

// env groups resources opened for a single command.
type env struct {
	cfg   Config
	log   *zap.Logger
	store storage.Store
}

func openEnv(c *cli.Context) (*env, error) {
	cfg, err := loadConfig(c.GlobalString("config"))
	if err != nil {
		return nil, err
	}

	log, err := newLogger(cfg.Logger)
	if err != nil {
		return nil, err
	}

	st, err := kvstore.Open(context.Background(), cfg.Storage, log)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("open storage: %w", err)
	}

	return &env{cfg: cfg, log: log, store: st}, nil
}

func (e *env) close() {
	if err := e.store.Close(); err != nil {
		e.log.Warn("failed to close storage", zap.Error(err))
	}
	_ = e.log.Sync()
}

func (e *env) contractOptions() soulbound.Options {
	return soulbound.Options{
		Logger:        e.log,
		AddressPrefix: e.cfg.Contract.AddressPrefix,
	}
}

func (e *env) contract() *soulbound.Contract {
	return soulbound.New(e.store, e.contractOptions())
}

// withContract opens environment, runs f with the bound contract and releases
// the environment.
func withContract(c *cli.Context, f func(*env, *soulbound.Contract) error) error {
	e, err := openEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	return f(e, e.contract())
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
