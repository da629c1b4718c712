package main

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/aura-nw/soulbound/agreement"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/urfave/cli"
)

var prefixFlag = cli.StringFlag{
	Name:  "prefix",
	Value: agreement.DefaultPrefix,
	Usage: "human-readable part of account addresses",
}

type keyInfo struct {
	PrivateKey string `json:"private_key"`
	PublicKey  string `json:"public_key"`
	Address    string `json:"address"`
}

func keygenCommand() cli.Command {
	return cli.Command{
		Name:  "keygen",
		Usage: "generate new secp256k1 account",
		Flags: []cli.Flag{prefixFlag},
		Action: func(c *cli.Context) error {
			key, err := secp256k1.GeneratePrivateKey()
			if err != nil {
				return fmt.Errorf("generate key: %w", err)
			}

			addr, err := agreement.Address(key.PubKey(), c.String("prefix"))
			if err != nil {
				return err
			}

			return printJSON(c.App.Writer, keyInfo{
				PrivateKey: hex.EncodeToString(key.Serialize()),
				PublicKey:  hex.EncodeToString(key.PubKey().SerializeCompressed()),
				Address:    addr,
			})
		},
	}
}

type signature struct {
	Signer    string `json:"signer"`
	Digest    string `json:"digest"`
	TokenID   string `json:"nft_id"`
	Signature string `json:"signature"`
}

func signCommand() cli.Command {
	return cli.Command{
		Name:      "sign",
		Usage:     "sign agreement of the active party and the key owner (passive party)",
		ArgsUsage: "<active> <uri>",
		Flags: []cli.Flag{
			prefixFlag,
			cli.StringFlag{Name: "key", Usage: "hex-encoded secp256k1 private key of the passive party"},
			cli.BoolFlag{Name: "adr36", Usage: "sign ADR-36 document wrapping the digest"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return errors.New("expected arguments: <active> <uri>")
			}

			rawKey, err := hex.DecodeString(c.String("key"))
			if err != nil || len(rawKey) != secp256k1.PrivKeyBytesLen {
				return errors.New("invalid or missing --key")
			}

			key := secp256k1.PrivKeyFromBytes(rawKey)

			passive, err := agreement.Address(key.PubKey(), c.String("prefix"))
			if err != nil {
				return err
			}

			active, uri := c.Args().Get(0), c.Args().Get(1)
			digest := agreement.Digest(active, passive, uri)

			var sig []byte
			if c.Bool("adr36") {
				sig, err = agreement.SignADR36(key, passive, digest)
				if err != nil {
					return err
				}
			} else {
				sig = agreement.Sign(key, digest)
			}

			return printJSON(c.App.Writer, signature{
				Signer:    passive,
				Digest:    digest.StringBE(),
				TokenID:   agreement.TokenID(digest),
				Signature: hex.EncodeToString(sig),
			})
		},
	}
}
