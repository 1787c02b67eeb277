// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"github.com/ohchase/blizztools/lib/codec"
)

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string

	root := &Command{
		Name: "blizztools",
		Subcommands: []*Command{
			{
				Name: "versions",
				Run: func(_ context.Context, args []string) error {
					called = "versions"
					return nil
				},
			},
			{
				Name: "cdns",
				Run: func(_ context.Context, args []string) error {
					called = "cdns"
					return nil
				},
			},
		},
	}

	if err := root.Execute(context.Background(), []string{"cdns"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "cdns" {
		t.Errorf("dispatched to %q, want %q", called, "cdns")
	}
}

func TestCommand_Execute_NestedSubcommands(t *testing.T) {
	var called string
	var receivedArgs []string

	root := &Command{
		Name: "blizztools",
		Subcommands: []*Command{
			{
				Name: "store",
				Subcommands: []*Command{
					{
						Name: "get",
						Run: func(_ context.Context, args []string) error {
							called = "store get"
							receivedArgs = args
							return nil
						},
					},
				},
			},
		},
	}

	if err := root.Execute(context.Background(), []string{"store", "get", "extra-arg"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "store get" {
		t.Errorf("dispatched to %q, want %q", called, "store get")
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "extra-arg" {
		t.Errorf("args = %v, want [extra-arg]", receivedArgs)
	}
}

func TestCommand_Execute_FlagParsing(t *testing.T) {
	var format string
	var receivedArgs []string

	command := &Command{
		Name: "inspect",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("inspect", pflag.ContinueOnError)
			flagSet.StringVar(&format, "format", "json", "output format")
			return flagSet
		},
		Run: func(_ context.Context, args []string) error {
			receivedArgs = args
			return nil
		},
	}

	// Flags may follow positional arguments.
	if err := command.Execute(context.Background(), []string{"blte", "--format", "cbor", "file.blte"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if format != "cbor" {
		t.Errorf("format = %q, want %q", format, "cbor")
	}
	if len(receivedArgs) != 2 || receivedArgs[0] != "blte" || receivedArgs[1] != "file.blte" {
		t.Errorf("args = %v, want [blte file.blte]", receivedArgs)
	}
}

func TestCommand_Execute_GlobalFlags(t *testing.T) {
	var configPath string
	var subcommandArgs []string

	root := &Command{
		Name: "blizztools",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("blizztools", pflag.ContinueOnError)
			flagSet.StringVar(&configPath, "config", "", "config file")
			return flagSet
		},
		Subcommands: []*Command{
			{
				Name: "versions",
				Run: func(_ context.Context, args []string) error {
					subcommandArgs = args
					return nil
				},
			},
		},
	}

	err := root.Execute(context.Background(), []string{"--config", "/etc/blizztools.yaml", "versions", "wow"})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if configPath != "/etc/blizztools.yaml" {
		t.Errorf("configPath = %q, want %q", configPath, "/etc/blizztools.yaml")
	}
	if len(subcommandArgs) != 1 || subcommandArgs[0] != "wow" {
		t.Errorf("args = %v, want [wow]", subcommandArgs)
	}
}

func TestCommand_Execute_UnknownCommandSuggests(t *testing.T) {
	root := &Command{
		Name: "blizztools",
		Subcommands: []*Command{
			{Name: "download", Run: func(context.Context, []string) error { return nil }},
			{Name: "inspect", Run: func(context.Context, []string) error { return nil }},
		},
	}

	err := root.Execute(context.Background(), []string{"downlaod"})
	if err == nil {
		t.Fatal("Execute() succeeded for unknown command")
	}
	if !strings.Contains(err.Error(), `did you mean "download"`) {
		t.Errorf("error = %q, want suggestion for download", err)
	}

	err = root.Execute(context.Background(), []string{"zzzzzzzzzz"})
	if err == nil || strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %v, want unknown command without suggestion", err)
	}
}

func TestCommand_Execute_UnknownFlagSuggests(t *testing.T) {
	command := &Command{
		Name: "pack",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("pack", pflag.ContinueOnError)
			flagSet.Int("chunk-size", 0, "chunk size")
			return flagSet
		},
		Run: func(context.Context, []string) error { return nil },
	}

	err := command.Execute(context.Background(), []string{"--chunk-sise", "10"})
	if err == nil {
		t.Fatal("Execute() succeeded with unknown flag")
	}
	if !strings.Contains(err.Error(), "did you mean --chunk-size?") {
		t.Errorf("error = %q, want --chunk-size suggestion", err)
	}
}

func TestCommand_Execute_SubcommandRequired(t *testing.T) {
	root := &Command{
		Name: "store",
		Subcommands: []*Command{
			{Name: "list", Run: func(context.Context, []string) error { return nil }},
		},
	}
	if err := root.Execute(context.Background(), nil); err == nil {
		t.Error("Execute() with no subcommand succeeded")
	}
}

func TestCommand_PrintHelp(t *testing.T) {
	root := &Command{
		Name:        "blizztools",
		Description: "Fetch game files.",
		Subcommands: []*Command{
			{Name: "versions", Summary: "Print the version table"},
		},
		Examples: []Example{
			{Description: "List versions", Command: "blizztools versions wow"},
		},
	}

	var buffer bytes.Buffer
	root.PrintHelp(&buffer)
	output := buffer.String()
	for _, want := range []string{"Fetch game files.", "versions", "Print the version table", "blizztools versions wow", "# List versions"} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q:\n%s", want, output)
		}
	}
}

func TestExactArgs(t *testing.T) {
	if err := ExactArgs([]string{"a", "b"}, 2, "<x> <y>"); err != nil {
		t.Errorf("ExactArgs(2 of 2) = %v", err)
	}
	if err := ExactArgs([]string{"a"}, 2, "<x> <y>"); err == nil {
		t.Error("ExactArgs(1 of 2) succeeded")
	}
}

func TestExitError(t *testing.T) {
	var err error = &ExitError{Code: 3}
	var coder interface{ ExitCode() int }
	if !errors.As(err, &coder) {
		t.Fatal("ExitError does not expose ExitCode")
	}
	if coder.ExitCode() != 3 {
		t.Errorf("ExitCode() = %d, want 3", coder.ExitCode())
	}
}

func TestWriteFormats(t *testing.T) {
	type summary struct {
		Entries []string `json:"entries" cbor:"entries"`
	}

	var jsonOutput bytes.Buffer
	if handled, err := Write(&jsonOutput, FormatJSON, summary{}); !handled || err != nil {
		t.Fatalf("Write(json) = %v, %v", handled, err)
	}
	if !strings.Contains(jsonOutput.String(), `"entries": null`) {
		t.Errorf("JSON output = %q", jsonOutput.String())
	}

	jsonOutput.Reset()
	var nilSlice []string
	if err := WriteJSON(&jsonOutput, nilSlice); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(jsonOutput.String()) != "[]" {
		t.Errorf("nil slice JSON = %q, want []", jsonOutput.String())
	}

	var cborOutput bytes.Buffer
	if handled, err := Write(&cborOutput, FormatCBOR, summary{Entries: []string{"a"}}); !handled || err != nil {
		t.Fatalf("Write(cbor) = %v, %v", handled, err)
	}
	var decoded summary
	if err := codec.Unmarshal(cborOutput.Bytes(), &decoded); err != nil {
		t.Fatalf("decoding CBOR output: %v", err)
	}
	if len(decoded.Entries) != 1 || decoded.Entries[0] != "a" {
		t.Errorf("decoded = %+v", decoded)
	}

	if handled, _ := Write(&cborOutput, FormatText, nil); handled {
		t.Error("Write(text) reported handled")
	}
	if _, err := ParseOutputFormat("yaml"); err == nil {
		t.Error("ParseOutputFormat(yaml) succeeded")
	}

	var diagOutput bytes.Buffer
	if handled, err := Write(&diagOutput, FormatDiag, summary{Entries: []string{"a"}}); !handled || err != nil {
		t.Fatalf("Write(diag) = %v, %v", handled, err)
	}
	if got := diagOutput.String(); got != "{\"entries\": [\"a\"]}\n" {
		t.Errorf("diag output = %q", got)
	}
}
