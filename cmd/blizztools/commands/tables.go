// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/ohchase/blizztools/cmd/blizztools/cli"
	"github.com/ohchase/blizztools/lib/tact"
)

func productList() string {
	names := make([]string, len(tact.Products))
	for i, product := range tact.Products {
		names[i] = string(product)
	}
	return strings.Join(names, ", ")
}

// formatFlag registers --format on flagSet.
func formatFlag(flagSet *pflag.FlagSet, target *string, fallback cli.OutputFormat) {
	flagSet.StringVar(target, "format", string(fallback), "output format: text, json, cbor or diag")
}

func versionsCommand(g *globals) *cli.Command {
	var format string

	return &cli.Command{
		Name:    "versions",
		Summary: "Print a product's version table",
		Description: `Fetch a product's version table from the patch service and print
one row per region: build config, CDN config, build ID and version
name.

Products: ` + productList() + `.`,
		Usage: "blizztools versions <product> [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("versions", pflag.ContinueOnError)
			formatFlag(flagSet, &format, cli.FormatText)
			return flagSet
		},
		Examples: []cli.Example{
			{Command: "blizztools versions wow_classic --format json"},
		},
		Run: func(ctx context.Context, args []string) error {
			if err := cli.ExactArgs(args, 1, "<product>"); err != nil {
				return err
			}
			product, err := tact.ParseProduct(args[0])
			if err != nil {
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

			table, err := s.versions(ctx, product)
			if err != nil {
				return err
			}
			if done, err := cli.Write(s.stdout, outputFormat, table); done {
				return err
			}

			tw := tabwriter.NewWriter(s.stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintf(tw, "REGION\tBUILD CONFIG\tCDN CONFIG\tBUILD\tVERSION\n")
			for _, version := range table.Versions {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					version.Region, version.BuildConfig, version.CDNConfig,
					version.BuildID, version.VersionsName)
			}
			return tw.Flush()
		},
	}
}

func cdnsCommand(g *globals) *cli.Command {
	var format string

	return &cli.Command{
		Name:    "cdns",
		Summary: "Print a product's CDN table",
		Description: `Fetch a product's CDN table from the patch service and print one
row per region: the product path on the CDN and its hosts. Objects
are fetched from the first host of the configured region's row.`,
		Usage: "blizztools cdns <product> [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("cdns", pflag.ContinueOnError)
			formatFlag(flagSet, &format, cli.FormatText)
			return flagSet
		},
		Run: func(ctx context.Context, args []string) error {
			if err := cli.ExactArgs(args, 1, "<product>"); err != nil {
				return err
			}
			product, err := tact.ParseProduct(args[0])
			if err != nil {
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

			table, err := s.cdns(ctx, product)
			if err != nil {
				return err
			}
			if done, err := cli.Write(s.stdout, outputFormat, table); done {
				return err
			}

			tw := tabwriter.NewWriter(s.stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintf(tw, "NAME\tPATH\tHOSTS\n")
			for _, row := range table.CDNs {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", row.Name, row.Path, strings.Join(row.Hosts, " "))
			}
			return tw.Flush()
		},
	}
}
