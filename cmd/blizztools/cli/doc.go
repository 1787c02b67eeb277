// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for blizztools.
//
// The central type is [Command], which represents a named subcommand with
// optional nested [Command.Subcommands], a [pflag.FlagSet] factory, and a
// Run function. Commands are assembled into a tree by the commands
// package and dispatched via [Command.Execute], which handles flag
// parsing, subcommand routing, and structured help output with examples.
//
// A command with both Flags and Subcommands treats its flags as global
// options: they are parsed up to the first positional argument, and the
// rest of the command line is dispatched to the subcommand.
//
// When a user types an unknown subcommand or flag, the framework computes
// Levenshtein edit distance against all known names and suggests the
// closest match (threshold: distance <= 3).
package cli
