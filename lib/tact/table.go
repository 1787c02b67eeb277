// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

package tact

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNoHeader is returned for a table without a header line.
var ErrNoHeader = errors.New("missing header line")

// table is a parsed pipe-delimited document.
type table struct {
	document string

	// columns maps a lower-cased column name to its index.
	columns map[string]int

	// Seqn is the "## seqn" value, or 0 when absent.
	seqn uint64

	rows []row
}

type row struct {
	line   int
	text   string
	fields []string
}

func parseTable(document, text string) (*table, error) {
	parsed := &table{document: document}
	for number, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if value, ok := strings.CutPrefix(line, "## seqn"); ok {
				value = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(value), "="))
				parsed.seqn, _ = strconv.ParseUint(value, 10, 64)
			}
			continue
		}
		fields := strings.Split(line, "|")
		if parsed.columns == nil {
			parsed.columns = make(map[string]int, len(fields))
			for i, field := range fields {
				name, _, _ := strings.Cut(field, "!")
				parsed.columns[strings.ToLower(strings.TrimSpace(name))] = i
			}
			continue
		}
		parsed.rows = append(parsed.rows, row{line: number + 1, text: line, fields: fields})
	}
	if parsed.columns == nil {
		return nil, &ParseError{Document: document, Err: ErrNoHeader}
	}
	return parsed, nil
}

// column returns the index of a required column.
func (t *table) column(name string) (int, error) {
	index, ok := t.columns[strings.ToLower(name)]
	if !ok {
		return 0, &ParseError{Document: t.document, Err: fmt.Errorf("missing column %q", name)}
	}
	return index, nil
}

// field returns a row's value in a column. Rows shorter than the
// header are an error.
func (t *table) field(r row, index int) (string, error) {
	if index >= len(r.fields) {
		return "", t.rowError(r, fmt.Errorf("%d fields, want at least %d", len(r.fields), index+1))
	}
	return strings.TrimSpace(r.fields[index]), nil
}

func (t *table) rowError(r row, err error) error {
	return &ParseError{Document: t.document, Line: r.line, Text: r.text, Err: err}
}
