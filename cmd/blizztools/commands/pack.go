// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"crypto/md5"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/ohchase/blizztools/cmd/blizztools/cli"
	"github.com/ohchase/blizztools/lib/blte"
	"github.com/ohchase/blizztools/lib/hashid"
)

// contentKey is the MD5 of decoded file bytes.
func contentKey(data []byte) hashid.ID {
	return hashid.ID(md5.Sum(data))
}

type packResult struct {
	Output      string    `json:"output"`
	Chunks      int       `json:"chunks"`
	Size        int       `json:"size"`
	StoredSize  int       `json:"stored_size"`
	ContentKey  hashid.ID `json:"content_key"`
	EncodingKey hashid.ID `json:"encoding_key"`
}

func packCommand(g *globals) *cli.Command {
	var (
		zlib      bool
		chunkSize int
		format    string
	)

	return &cli.Command{
		Name:    "pack",
		Summary: "Write a file as a BLTE container",
		Description: `Encode <input> as a BLTE container and write it to <output>.

Chunks are stored plain unless --zlib is given. --chunk-size splits
the input into chunks of at most that many bytes; zero writes a
single chunk. The content key (MD5 of the input) and encoding key
(MD5 of the container) are printed.`,
		Usage: "blizztools pack <input> <output> [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("pack", pflag.ContinueOnError)
			flagSet.BoolVar(&zlib, "zlib", false, "compress chunks with zlib")
			flagSet.IntVar(&chunkSize, "chunk-size", 0, "maximum decoded bytes per chunk (0: one chunk)")
			formatFlag(flagSet, &format, cli.FormatText)
			return flagSet
		},
		Run: func(_ context.Context, args []string) error {
			if err := cli.ExactArgs(args, 2, "<input> <output>"); err != nil {
				return err
			}
			if chunkSize < 0 {
				return fmt.Errorf("--chunk-size must not be negative")
			}
			outputFormat, err := cli.ParseOutputFormat(format)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			mode := blte.ModePlain
			if zlib {
				mode = blte.ModeZlib
			}
			container, err := blte.Encode(data, mode, chunkSize)
			if err != nil {
				return fmt.Errorf("encoding %s: %w", args[0], err)
			}
			if err := writeFile(args[1], container); err != nil {
				return err
			}

			table, err := blte.Parse(container)
			if err != nil {
				return fmt.Errorf("reparsing container: %w", err)
			}
			result := packResult{
				Output:      args[1],
				Chunks:      len(table.Chunks),
				Size:        len(data),
				StoredSize:  len(container),
				ContentKey:  contentKey(data),
				EncodingKey: contentKey(container),
			}
			if done, err := cli.Write(g.stdout, outputFormat, result); done {
				return err
			}
			fmt.Fprintf(g.stdout, "%s: %d chunk(s), %d -> %d bytes\ncontent key  %s\nencoding key %s\n",
				result.Output, result.Chunks, result.Size, result.StoredSize, result.ContentKey, result.EncodingKey)
			return nil
		},
	}
}
