// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/ohchase/blizztools/cmd/blizztools/cli"
	"github.com/ohchase/blizztools/lib/hashid"
	"github.com/ohchase/blizztools/lib/manifest"
	"github.com/ohchase/blizztools/lib/objectstore"
	"github.com/ohchase/blizztools/lib/resolve"
	"github.com/ohchase/blizztools/lib/tact"
)

// downloadReport is the structured result of a download.
type downloadReport struct {
	Product     tact.Product     `json:"product"`
	Version     string           `json:"version"`
	BuildConfig hashid.ID        `json:"build_config"`
	Directory   string           `json:"directory"`
	Files       []downloadedFile `json:"files"`
	Summary     resolve.Summary  `json:"summary"`
}

type downloadedFile struct {
	Name       string    `json:"name"`
	ContentKey hashid.ID `json:"content_key"`
	Path       string    `json:"path,omitempty"`
	Size       int       `json:"size,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// build is a version row resolved to its manifests.
type build struct {
	version  *tact.Version
	config   *tact.BuildConfig
	encoding *manifest.Encoding
	resolver *resolve.Resolver
}

// openBuild follows product's version row to its build configuration
// and encoding manifest.
func (s *session) openBuild(ctx context.Context, product tact.Product, verify bool) (*build, error) {
	versions, err := s.versions(ctx, product)
	if err != nil {
		return nil, err
	}
	version, err := s.selectVersion(versions)
	if err != nil {
		return nil, err
	}
	resolver, err := s.resolver(ctx, product)
	if err != nil {
		return nil, err
	}
	resolver.VerifyChunks = verify
	resolver.VerifyContent = verify

	buildConfig, err := resolver.FetchBuildConfig(ctx, version.BuildConfig)
	if err != nil {
		return nil, err
	}
	s.logger.Info("fetched build config",
		"product", product,
		"version", version.VersionsName,
		"build_config", version.BuildConfig,
	)

	encoding, err := resolver.FetchEncoding(ctx, buildConfig.Encoding.Encoded())
	if err != nil {
		return nil, err
	}
	s.logger.Info("fetched encoding manifest",
		"entries", len(encoding.CEKeyEntries),
		"pages", len(encoding.CEKeyIndex),
	)

	return &build{
		version:  version,
		config:   buildConfig,
		encoding: encoding,
		resolver: resolver,
	}, nil
}

// installPath maps an install manifest name, which may use backslash
// separators, to a path under directory.
func installPath(directory, name string) (string, error) {
	relative := filepath.FromSlash(strings.ReplaceAll(name, `\`, "/"))
	if !filepath.IsLocal(relative) {
		return "", fmt.Errorf("install entry %q is not a local path", name)
	}
	return filepath.Join(directory, relative), nil
}

// buildDirectory returns <outputDir>/<product>/<versionsName>. The
// version name comes from the patch service and must be a single
// local path element.
func buildDirectory(outputDir string, product tact.Product, versionsName string) (string, error) {
	if versionsName == "" || versionsName == "." ||
		strings.ContainsAny(versionsName, `/\`) || !filepath.IsLocal(versionsName) {
		return "", fmt.Errorf("version name %q is not a single local path element", versionsName)
	}
	return filepath.Join(outputDir, string(product), versionsName), nil
}

// selectInstallEntries returns the entries whose names match pattern,
// restricted to tags when any are given. Names are matched with "/"
// separators.
func selectInstallEntries(install *manifest.Install, pattern string, tags []string) ([]manifest.InstallEntry, error) {
	if _, err := path.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("--match %q: %w", pattern, err)
	}
	candidates := install.Entries
	if len(tags) > 0 {
		tagged, err := install.Tagged(tags...)
		if err != nil {
			return nil, err
		}
		candidates = tagged
	}

	var selected []manifest.InstallEntry
	for _, entry := range candidates {
		name := strings.ReplaceAll(entry.Name, `\`, "/")
		if matched, _ := path.Match(pattern, name); matched {
			selected = append(selected, entry)
		}
	}
	return selected, nil
}

func downloadCommand(g *globals) *cli.Command {
	var (
		match    string
		tags     []string
		useStore bool
		storeDir string
		verify   bool
		format   string
	)

	return &cli.Command{
		Name:    "download",
		Summary: "Download a product's files from the CDN",
		Description: `Run the full pipeline for a product: fetch the CDN and version
tables, the build configuration, the encoding and install manifests,
then resolve every install entry whose name matches --match and write
it to <output>/<product>/<version>/<name>. Install names are matched
with "/" separators, so 'Interface/*' selects one directory level.

Objects that fail to resolve, including containers using encrypted or
nested chunks, are reported and skipped. The command exits 1 after
writing everything else when any object was skipped.

With --store, each resolved file is also written to the local object
store (store.dir), keyed by content key.`,
		Usage: "blizztools download <product> [output] [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("download", pflag.ContinueOnError)
			flagSet.StringVar(&match, "match", "Wow*.exe", "glob selecting install entries by name")
			flagSet.StringSliceVar(&tags, "tag", nil, "only entries carrying all of these install tags")
			flagSet.BoolVar(&useStore, "store", false, "also put resolved files into the object store")
			flagSet.StringVar(&storeDir, "store-dir", "", "object store directory (default store.dir)")
			flagSet.BoolVar(&verify, "verify", false, "check chunk checksums and content keys")
			formatFlag(flagSet, &format, cli.FormatText)
			return flagSet
		},
		Examples: []cli.Example{
			{
				Description: "Download the retail executables into the configured output.dir",
				Command:     "blizztools download wow",
			},
			{
				Description: "Download every Windows x86_64 file under Interface/",
				Command:     "blizztools download wow ./out --match 'Interface/*' --tag Windows,x86_64",
			},
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) < 1 || len(args) > 2 {
				return fmt.Errorf("expected <product> [output] (got %d arguments)", len(args))
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
			outputDir := s.config.Output.Dir
			if len(args) == 2 {
				outputDir = args[1]
			}

			var store *objectstore.Store
			var compression objectstore.CompressionTag
			if useStore {
				if store, compression, err = s.openStore(storeDir); err != nil {
					return err
				}
			}

			b, err := s.openBuild(ctx, product, verify)
			if err != nil {
				return err
			}
			directory, err := buildDirectory(outputDir, product, b.version.VersionsName)
			if err != nil {
				return err
			}
			install, err := b.resolver.FetchInstall(ctx, b.config.Install.Encoded())
			if err != nil {
				return err
			}
			s.logger.Info("fetched install manifest", "entries", len(install.Entries), "tags", len(install.Tags))

			selected, err := selectInstallEntries(install, match, tags)
			if err != nil {
				return err
			}
			if len(selected) == 0 {
				return fmt.Errorf("no install entries match %q", match)
			}

			report := downloadReport{
				Product:     product,
				Version:     b.version.VersionsName,
				BuildConfig: b.version.BuildConfig,
				Directory:   directory,
			}

			keys := make([]hashid.ID, len(selected))
			for i, entry := range selected {
				keys[i] = entry.ContentKey
			}

			var writeErr error
			index := 0
			summary, err := b.resolver.ResolveAll(ctx, b.encoding, keys, func(key hashid.ID, data []byte, resolveErr error) bool {
				entry := selected[index]
				index++

				file := downloadedFile{Name: entry.Name, ContentKey: key}
				if resolveErr != nil {
					file.Error = resolveErr.Error()
					report.Files = append(report.Files, file)
					return true
				}

				target, err := installPath(directory, entry.Name)
				if err == nil {
					err = writeFile(target, data)
				}
				if err == nil && store != nil {
					_, err = store.Put(key, entry.Name, data, compression)
				}
				if err != nil {
					writeErr = err
					return false
				}

				s.logger.Info("wrote file", "name", entry.Name, "path", target, "bytes", len(data))
				file.Path = target
				file.Size = len(data)
				report.Files = append(report.Files, file)
				return true
			})
			if err != nil {
				return err
			}
			if writeErr != nil {
				return writeErr
			}
			report.Summary = summary

			if done, err := cli.Write(s.stdout, outputFormat, report); done {
				if err != nil {
					return err
				}
			} else {
				for _, file := range report.Files {
					if file.Error != "" {
						fmt.Fprintf(s.stdout, "skipped %s: %s\n", file.Name, file.Error)
						continue
					}
					fmt.Fprintf(s.stdout, "wrote %s (%d bytes)\n", file.Path, file.Size)
				}
				fmt.Fprintf(s.stdout, "%d resolved, %d unsupported, %d failed\n",
					summary.Resolved, summary.Unsupported, summary.Failed)
			}

			if summary.Failed > 0 || summary.Unsupported > 0 {
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
	}
}

// writeFile creates path's directories and writes data.
func writeFile(target string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(target), err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", target, err)
	}
	return nil
}
