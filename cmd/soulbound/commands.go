package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/aura-nw/soulbound/contracts/soulbound"
	"github.com/aura-nw/soulbound/deploy"
	rpcsoulbound "github.com/aura-nw/soulbound/rpc/soulbound"
	"github.com/urfave/cli"
)

var callerFlag = cli.StringFlag{
	Name:  "caller",
	Usage: "address of the account sending the message",
}

func initCommand() cli.Command {
	return cli.Command{
		Name:  "init",
		Usage: "initialize or update the ledger described in the configuration",
		Action: func(c *cli.Context) error {
			e, err := openEnv(c)
			if err != nil {
				return err
			}
			defer e.close()

			ctr, err := deploy.Deploy(context.Background(), deploy.Prm{
				Logger:  e.log,
				Store:   e.store,
				Name:    e.cfg.Contract.Name,
				Symbol:  e.cfg.Contract.Symbol,
				Minter:  e.cfg.Contract.Minter,
				Options: e.contractOptions(),
			})
			if err != nil {
				return fmt.Errorf("deploy: %w", err)
			}

			info, err := ctr.ContractInfo()
			if err != nil {
				return err
			}

			return printJSON(c.App.Writer, info)
		},
	}
}

// executeCommand returns command sending message composed from positional
// arguments.
func executeCommand(name, usage, argsUsage string, nArgs int, msg func(cli.Args) rpcsoulbound.ExecuteMsg) cli.Command {
	return cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: argsUsage,
		Flags:     []cli.Flag{callerFlag},
		Action: func(c *cli.Context) error {
			if c.NArg() != nArgs {
				return fmt.Errorf("expected arguments: %s", argsUsage)
			}
			return execute(c, msg(c.Args()))
		},
	}
}

func execute(c *cli.Context, msg rpcsoulbound.ExecuteMsg) error {
	caller := c.String("caller")
	if caller == "" {
		return errors.New("missing --caller")
	}

	return withContract(c, func(_ *env, ctr *soulbound.Contract) error {
		resp, err := rpcsoulbound.Execute(ctr, caller, msg)
		if err != nil {
			return err
		}
		return printJSON(c.App.Writer, resp)
	})
}

func mintCommand() cli.Command {
	return executeCommand("mint", "issue token with explicit ID without consent", "<id> <owner> <uri>", 3,
		func(a cli.Args) rpcsoulbound.ExecuteMsg {
			return rpcsoulbound.Mint{ID: a.Get(0), Owner: a.Get(1), URI: a.Get(2)}
		})
}

func giveCommand() cli.Command {
	return executeCommand("give", "issue token to the recipient with its consent", "<to> <uri> <signature>", 3,
		func(a cli.Args) rpcsoulbound.ExecuteMsg {
			return rpcsoulbound.Give{To: a.Get(0), URI: a.Get(1), Signature: a.Get(2)}
		})
}

func takeCommand() cli.Command {
	return executeCommand("take", "take token from the minter with its consent", "<from> <uri> <signature>", 3,
		func(a cli.Args) rpcsoulbound.ExecuteMsg {
			return rpcsoulbound.Take{From: a.Get(0), URI: a.Get(1), Signature: a.Get(2)}
		})
}

func equipCommand() cli.Command {
	return executeCommand("equip", "put owned token on", "<id>", 1,
		func(a cli.Args) rpcsoulbound.ExecuteMsg { return rpcsoulbound.Equip{ID: a.Get(0)} })
}

func unequipCommand() cli.Command {
	return executeCommand("unequip", "take owned token off", "<id>", 1,
		func(a cli.Args) rpcsoulbound.ExecuteMsg { return rpcsoulbound.Unequip{ID: a.Get(0)} })
}

func revokeCommand() cli.Command {
	return executeCommand("revoke", "unadmit token", "<id>", 1,
		func(a cli.Args) rpcsoulbound.ExecuteMsg { return rpcsoulbound.Revoke{ID: a.Get(0)} })
}

func execCommand() cli.Command {
	return cli.Command{
		Name:      "exec",
		Usage:     "send JSON execute message",
		ArgsUsage: `'{"equip":{"nft_id":"..."}}'`,
		Flags:     []cli.Flag{callerFlag},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errors.New("expected single JSON message")
			}

			msg, err := rpcsoulbound.DecodeExecuteMsg([]byte(c.Args().First()))
			if err != nil {
				return err
			}

			return execute(c, msg)
		},
	}
}

func queryCommand() cli.Command {
	return cli.Command{
		Name:      "query",
		Usage:     "send JSON query message",
		ArgsUsage: `'{"num_nfts":{}}'`,
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errors.New("expected single JSON message")
			}

			msg, err := rpcsoulbound.DecodeQueryMsg([]byte(c.Args().First()))
			if err != nil {
				return err
			}

			return withContract(c, func(_ *env, ctr *soulbound.Contract) error {
				res, err := rpcsoulbound.Query(ctr, msg)
				if err != nil {
					return err
				}
				return printJSON(c.App.Writer, res)
			})
		},
	}
}

func tokensCommand() cli.Command {
	return cli.Command{
		Name:      "tokens",
		Usage:     "list active tokens of the owner page by page",
		ArgsUsage: "<owner>",
		Flags: []cli.Flag{
			cli.BoolFlag{Name: "unequipped", Usage: "list unequipped tokens instead of equipped ones"},
			cli.IntFlag{Name: "page", Value: 100, Usage: "number of tokens requested at once"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return errors.New("expected owner address")
			}
			if c.Int("page") <= 0 {
				return errors.New("page size must be positive")
			}

			owner := c.Args().First()

			return withContract(c, func(_ *env, ctr *soulbound.Contract) error {
				r := rpcsoulbound.NewReader(ctr)

				session := r.EquippedOf(owner)
				if c.Bool("unequipped") {
					session = r.UnequippedOf(owner)
				}
				defer func() { _ = r.TerminateSession(session) }()

				for {
					page, err := r.TraverseIterator(session, c.Int("page"))
					if err != nil {
						return err
					}
					if len(page) == 0 {
						return nil
					}

					for i := range page {
						err = printJSON(c.App.Writer, page[i])
						if err != nil {
							return err
						}
					}
				}
			})
		},
	}
}

// exitCode maps ledger errors to process exit codes.
func exitCode(err error) int {
	switch {
	case errors.Is(err, soulbound.ErrUnauthorized):
		return 2
	case errors.Is(err, soulbound.ErrInvalidConsent):
		return 3
	case errors.Is(err, soulbound.ErrNotFound):
		return 4
	case errors.Is(err, soulbound.ErrAlreadyInState), errors.Is(err, soulbound.ErrTokenExists):
		return 5
	default:
		return 1
	}
}
