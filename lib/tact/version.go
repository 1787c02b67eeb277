// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

package tact

import (
	"fmt"

	"github.com/ohchase/blizztools/lib/hashid"
)

// Version is one row of a product's version table: the build a region
// is currently serving.
type Version struct {
	Region        string    `json:"region"`
	BuildConfig   hashid.ID `json:"build_config"`
	CDNConfig     hashid.ID `json:"cdn_config"`
	KeyRing       hashid.ID `json:"key_ring,omitzero"`
	BuildID       string    `json:"build_id"`
	VersionsName  string    `json:"versions_name"`
	ProductConfig hashid.ID `json:"product_config"`
}

// VersionTable is a parsed version table.
type VersionTable struct {
	Seqn     uint64    `json:"seqn,omitempty"`
	Versions []Version `json:"versions"`
}

// ParseVersionTable parses the patch service "versions" document. An
// empty or unparseable key ring column leaves KeyRing null.
func ParseVersionTable(text string) (*VersionTable, error) {
	parsed, err := parseTable("version table", text)
	if err != nil {
		return nil, err
	}

	names := []string{"Region", "BuildConfig", "CDNConfig", "KeyRing", "BuildId", "VersionsName", "ProductConfig"}
	columns := make([]int, len(names))
	for i, name := range names {
		if columns[i], err = parsed.column(name); err != nil {
			return nil, err
		}
	}

	result := &VersionTable{Seqn: parsed.seqn}
	for _, r := range parsed.rows {
		values := make([]string, len(columns))
		for i, index := range columns {
			if values[i], err = parsed.field(r, index); err != nil {
				return nil, err
			}
		}

		version := Version{
			Region:       values[0],
			BuildID:      values[4],
			VersionsName: values[5],
		}
		for _, key := range []struct {
			name   string
			value  string
			target *hashid.ID
		}{
			{"BuildConfig", values[1], &version.BuildConfig},
			{"CDNConfig", values[2], &version.CDNConfig},
			{"ProductConfig", values[6], &version.ProductConfig},
		} {
			if *key.target, err = hashid.Parse(key.value); err != nil {
				return nil, parsed.rowError(r, fmt.Errorf("%s: %w", key.name, err))
			}
		}
		if keyRing, err := hashid.Parse(values[3]); err == nil {
			version.KeyRing = keyRing
		}
		result.Versions = append(result.Versions, version)
	}
	return result, nil
}

// Region returns the version served to region.
func (t *VersionTable) Region(region string) (*Version, bool) {
	for i := range t.Versions {
		if t.Versions[i].Region == region {
			return &t.Versions[i], true
		}
	}
	return nil, false
}
