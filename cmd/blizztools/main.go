// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

// Command blizztools fetches and decodes game files from the Blizzard
// CDN.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ohchase/blizztools/cmd/blizztools/commands"
)

func main() {
	if err := run(); err != nil {
		// Commands that print their own report (like download) return
		// an exit error with the desired code. Don't print a redundant
		// "error:" line for those.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return commands.Root().Execute(ctx, os.Args[1:])
}
