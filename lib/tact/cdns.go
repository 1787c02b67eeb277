// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

package tact

import (
	"strings"
)

// CDN is one row of a product's CDN table.
type CDN struct {
	// Name is the region the row applies to.
	Name string `json:"name"`

	// Path is the product directory on each host ("tpr/wow").
	Path string `json:"path"`

	// Hosts are bare host names.
	Hosts []string `json:"hosts"`

	// Servers are full URLs, sometimes with query parameters.
	Servers []string `json:"servers"`

	// ConfigPath is the directory of product configuration files.
	ConfigPath string `json:"config_path"`
}

// CDNTable is a parsed CDN table.
type CDNTable struct {
	Seqn uint64 `json:"seqn,omitempty"`
	CDNs []CDN  `json:"cdns"`
}

// ParseCDNTable parses the patch service "cdns" document. Servers is
// optional; older tables do not carry it.
func ParseCDNTable(text string) (*CDNTable, error) {
	parsed, err := parseTable("cdn table", text)
	if err != nil {
		return nil, err
	}

	names := []string{"Name", "Path", "Hosts", "ConfigPath"}
	columns := make([]int, len(names))
	for i, name := range names {
		if columns[i], err = parsed.column(name); err != nil {
			return nil, err
		}
	}
	servers, hasServers := parsed.columns["servers"]

	result := &CDNTable{Seqn: parsed.seqn}
	for _, r := range parsed.rows {
		values := make([]string, len(columns))
		for i, index := range columns {
			if values[i], err = parsed.field(r, index); err != nil {
				return nil, err
			}
		}
		cdn := CDN{
			Name:       values[0],
			Path:       values[1],
			Hosts:      strings.Fields(values[2]),
			ConfigPath: values[3],
		}
		if hasServers {
			value, err := parsed.field(r, servers)
			if err != nil {
				return nil, err
			}
			cdn.Servers = strings.Fields(value)
		}
		result.CDNs = append(result.CDNs, cdn)
	}
	return result, nil
}

// Region returns the CDN row for name.
func (t *CDNTable) Region(name string) (*CDN, bool) {
	for i := range t.CDNs {
		if t.CDNs[i].Name == name {
			return &t.CDNs[i], true
		}
	}
	return nil, false
}
