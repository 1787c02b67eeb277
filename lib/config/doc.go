// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for blizztools.
//
// Configuration is loaded from a single file specified by either the
// BLIZZTOOLS_CONFIG environment variable (via [Load]) or a --config
// flag (via [LoadFile]). There is no automatic file search. Without a
// file, commands run on [Default].
//
// Files ending in .json or .jsonc are JSON with comments and trailing
// commas; anything else is YAML.
//
// The file may contain per-region sections under "regions" that
// override base values when patch.region matches:
//
//	patch:
//	  region: eu
//	regions:
//	  eu:
//	    patch:
//	      host: eu.patch.battle.net:1119
//
// Variable expansion is performed on directory fields after loading:
// ${HOME}, ${BLIZZTOOLS_ROOT} and ${VAR:-default} patterns are expanded.
package config
