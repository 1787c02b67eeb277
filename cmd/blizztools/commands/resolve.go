// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/ohchase/blizztools/cmd/blizztools/cli"
	"github.com/ohchase/blizztools/lib/hashid"
	"github.com/ohchase/blizztools/lib/tact"
)

func resolveCommand(g *globals) *cli.Command {
	var (
		verify      bool
		encodingKey bool
	)

	return &cli.Command{
		Name:    "resolve",
		Summary: "Resolve one content key to a file",
		Description: `Look a content key up in the current build's encoding manifest,
fetch the object for its first encoding key, decode it and write the
result to <output-file> ("-" for stdout).

With --encoding-key the key is fetched directly, skipping the
encoding manifest.`,
		Usage: "blizztools resolve <product> <content-key> <output-file> [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("resolve", pflag.ContinueOnError)
			flagSet.BoolVar(&verify, "verify", false, "check chunk checksums and the content key")
			flagSet.BoolVar(&encodingKey, "encoding-key", false, "treat the key as an encoding key")
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if err := cli.ExactArgs(args, 3, "<product> <content-key> <output-file>"); err != nil {
				return err
			}
			product, err := tact.ParseProduct(args[0])
			if err != nil {
				return err
			}
			key, err := hashid.Parse(args[1])
			if err != nil {
				return fmt.Errorf("key: %w", err)
			}
			s, err := g.open()
			if err != nil {
				return err
			}

			var data []byte
			if encodingKey {
				resolver, err := s.resolver(ctx, product)
				if err != nil {
					return err
				}
				resolver.VerifyChunks = verify
				if data, err = resolver.FetchByEncodingKey(ctx, key); err != nil {
					return err
				}
			} else {
				b, err := s.openBuild(ctx, product, verify)
				if err != nil {
					return err
				}
				if data, err = b.resolver.ResolveContentKey(ctx, b.encoding, key); err != nil {
					return err
				}
			}

			if args[2] == "-" {
				_, err := s.stdout.Write(data)
				return err
			}
			if err := writeFile(args[2], data); err != nil {
				return err
			}
			s.logger.Info("wrote file", "key", key, "path", args[2], "bytes", len(data))
			return nil
		},
	}
}
