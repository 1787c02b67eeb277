// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/ohchase/blizztools/cmd/blizztools/cli"
	"github.com/ohchase/blizztools/lib/hashid"
)

func storeCommand(g *globals) *cli.Command {
	return &cli.Command{
		Name:    "store",
		Summary: "Read the local object store",
		Description: `Read objects that "download --store" put into the local object
store (store.dir). Objects are keyed by content key and checked
against their stored digest on read.`,
		Subcommands: []*cli.Command{
			storeGetCommand(g),
			storeListCommand(g),
		},
	}
}

func storeGetCommand(g *globals) *cli.Command {
	var storeDir string

	return &cli.Command{
		Name:    "get",
		Summary: "Write a stored object to a file",
		Usage:   "blizztools store get <content-key> <output-file> [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("get", pflag.ContinueOnError)
			flagSet.StringVar(&storeDir, "store-dir", "", "object store directory (default store.dir)")
			return flagSet
		},
		Run: func(_ context.Context, args []string) error {
			if err := cli.ExactArgs(args, 2, "<content-key> <output-file>"); err != nil {
				return err
			}
			key, err := hashid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("content key: %w", err)
			}
			s, err := g.open()
			if err != nil {
				return err
			}
			store, _, err := s.openStore(storeDir)
			if err != nil {
				return err
			}

			data, record, err := store.Get(key)
			if err != nil {
				return err
			}
			if args[1] == "-" {
				_, err := s.stdout.Write(data)
				return err
			}
			if err := writeFile(args[1], data); err != nil {
				return err
			}
			s.logger.Info("wrote object", "key", key, "name", record.Name, "path", args[1], "bytes", len(data))
			return nil
		},
	}
}

func storeListCommand(g *globals) *cli.Command {
	var (
		storeDir string
		format   string
	)

	return &cli.Command{
		Name:    "list",
		Summary: "List stored objects",
		Usage:   "blizztools store list [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("list", pflag.ContinueOnError)
			flagSet.StringVar(&storeDir, "store-dir", "", "object store directory (default store.dir)")
			formatFlag(flagSet, &format, cli.FormatText)
			return flagSet
		},
		Run: func(_ context.Context, args []string) error {
			if err := cli.ExactArgs(args, 0, ""); err != nil {
				return err
			}
			outputFormat, err := cli.ParseOutputFormat(format)
			if err != nil {
				return err
			}
			s, err := g.open()
			if err != nil {
				return err
			}
			store, _, err := s.openStore(storeDir)
			if err != nil {
				return err
			}

			records, err := store.List()
			if err != nil {
				return err
			}
			if done, err := cli.Write(s.stdout, outputFormat, records); done {
				return err
			}

			tw := tabwriter.NewWriter(s.stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintf(tw, "CONTENT KEY\tSIZE\tSTORED\tCOMPRESSION\tNAME\n")
			for _, record := range records {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\n",
					record.Key, record.Size, record.StoredSize, record.Compression, record.Name)
			}
			return tw.Flush()
		},
	}
}
