package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/aura-nw/soulbound/contracts/soulbound"
	"github.com/aura-nw/soulbound/dump"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

var (
	dirFlag = cli.StringFlag{
		Name:  "dir",
		Value: "testdata",
		Usage: "directory with dumps",
	}
	labelFlag = cli.StringFlag{
		Name:  "label",
		Usage: "label of the ledger environment (e.g. 'testnet')",
	}
)

func dumpCommand() cli.Command {
	return cli.Command{
		Name:  "dump",
		Usage: "dump ledger storage to the directory",
		Flags: []cli.Flag{dirFlag, labelFlag},
		Action: func(c *cli.Context) error {
			label := c.String("label")
			if label == "" {
				return errors.New("missing --label")
			}

			rootDir := c.String("dir")

			err := os.MkdirAll(rootDir, 0700)
			if err != nil {
				return fmt.Errorf("create root dir: %w", err)
			}

			return withContract(c, func(e *env, ctr *soulbound.Contract) error {
				state, err := dump.StateOf(ctr)
				if err != nil {
					return fmt.Errorf("collect ledger state: %w", err)
				}

				id := dump.ID{Label: label, Tokens: state.NumTokens}

				d, err := dump.NewCreator(rootDir, id)
				if err != nil {
					return fmt.Errorf("init local dumper: %w", err)
				}
				defer d.Close()

				err = d.AddContract(state.Info.Name, state).WriteStore(e.store)
				if err != nil {
					return fmt.Errorf("dump ledger storage: %w", err)
				}

				err = d.Flush()
				if err != nil {
					return fmt.Errorf("flush dump: %w", err)
				}

				e.log.Info("ledger successfully dumped", zap.String("dir", rootDir), zap.Stringer("id", id))

				return nil
			})
		},
	}
}

func restoreCommand() cli.Command {
	return cli.Command{
		Name:      "restore",
		Usage:     "restore ledger storage from the dump into an empty storage",
		ArgsUsage: "<name>",
		Flags:     []cli.Flag{dirFlag, labelFlag},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errors.New("expected ledger name")
			}

			name, label := c.Args().First(), c.String("label")

			return withContract(c, func(e *env, ctr *soulbound.Contract) error {
				_, err := ctr.Version()
				if err == nil {
					return errors.New("storage already holds a ledger")
				}
				if !errors.Is(err, soulbound.ErrNotInitialized) {
					return err
				}

				var (
					restored bool
					rErr     error
				)

				err = dump.IterateDumps(c.String("dir"), func(id dump.ID, r *dump.Reader) {
					if restored || rErr != nil || (label != "" && id.Label != label) {
						return
					}

					if _, err := r.ContractState(name); err != nil {
						return
					}

					rErr = r.Restore(name, e.store)
					if rErr == nil {
						restored = true
						e.log.Info("ledger restored from dump", zap.Stringer("id", id), zap.String("name", name))
					}
				})
				if err != nil {
					return fmt.Errorf("read dumps: %w", err)
				}
				if rErr != nil {
					return fmt.Errorf("restore: %w", rErr)
				}
				if !restored {
					return fmt.Errorf("%w: %s", dump.ErrUnknownContract, name)
				}

				return nil
			})
		},
	}
}
