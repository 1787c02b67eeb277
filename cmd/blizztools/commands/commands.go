// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the blizztools command tree.
package commands

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/pflag"

	"github.com/ohchase/blizztools/cmd/blizztools/cli"
	"github.com/ohchase/blizztools/lib/config"
	"github.com/ohchase/blizztools/lib/version"
)

// globals holds the root command's flags and the process streams.
// Every subcommand reads it when it runs, after the root has parsed
// its flags.
type globals struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	logLevel   string

	// httpClient replaces the client built from http.timeout.
	httpClient *http.Client
}

// Root builds and returns the complete blizztools command tree.
func Root() *cli.Command {
	return newRoot(&globals{stdout: os.Stdout, stderr: os.Stderr})
}

func newRoot(g *globals) *cli.Command {
	return &cli.Command{
		Name: "blizztools",
		Description: `blizztools: fetch and decode game files from the Blizzard CDN.

Reads the patch service's version and CDN tables, follows a build's
configuration to its encoding and install manifests, and resolves
content keys to files through the CDN. Local container, manifest and
index files can be inspected without the network.

Configuration is read from --config or $BLIZZTOOLS_CONFIG (YAML, or
JSON with comments for .json/.jsonc files). Without either, built-in
defaults are used.`,
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("blizztools", pflag.ContinueOnError)
			flagSet.StringVar(&g.configPath, "config", "", "config file (default $"+config.EnvVar+")")
			flagSet.StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides log.level)")
			return flagSet
		},
		Subcommands: []*cli.Command{
			versionsCommand(g),
			cdnsCommand(g),
			downloadCommand(g),
			resolveCommand(g),
			inspectCommand(g),
			packCommand(g),
			storeCommand(g),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, args []string) error {
					fmt.Fprintf(g.stdout, "blizztools %s\n", version.Current().Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Show the current retail builds",
				Command:     "blizztools versions wow",
			},
			{
				Description: "Download the classic executables into ./out",
				Command:     "blizztools download wow_classic ./out",
			},
			{
				Description: "Summarize an encoding manifest as JSON",
				Command:     "blizztools inspect encoding ./encoding.bin",
			},
			{
				Description: "Use a local CDN mirror and debug logging",
				Command:     "blizztools --config ./mirror.yaml --log-level debug download wow ./out",
			},
		},
	}
}
