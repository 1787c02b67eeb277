// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"

	"golang.org/x/term"

	"github.com/ohchase/blizztools/lib/codec"
)

// OutputFormat selects how structured results are written.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatCBOR OutputFormat = "cbor"

	// FormatDiag is CBOR in RFC 8949 diagnostic notation.
	FormatDiag OutputFormat = "diag"
)

// ParseOutputFormat validates a --format value.
func ParseOutputFormat(name string) (OutputFormat, error) {
	switch OutputFormat(name) {
	case FormatText, FormatJSON, FormatCBOR, FormatDiag:
		return OutputFormat(name), nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, json, cbor or diag)", name)
	}
}

// WriteJSON marshals value as indented JSON and writes it to w. Nil
// slices are written as [] instead of null.
func WriteJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(normalizeNilSlice(value))
}

// WriteCBOR writes value to w as deterministic CBOR. Binary output is
// refused when w is a terminal.
func WriteCBOR(w io.Writer, value any) error {
	if isTerminal(w) {
		return fmt.Errorf("refusing to write CBOR to a terminal; redirect stdout or use --format json")
	}
	return codec.NewEncoder(w).Encode(value)
}

// WriteDiag encodes value as CBOR and writes its diagnostic notation
// followed by a newline.
func WriteDiag(w io.Writer, value any) error {
	data, err := codec.Marshal(value)
	if err != nil {
		return err
	}
	diagnostic, err := codec.Diagnose(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, diagnostic)
	return err
}

// Write dispatches value to WriteJSON, WriteCBOR or WriteDiag.
// FormatText is the caller's responsibility and reports false.
func Write(w io.Writer, format OutputFormat, value any) (bool, error) {
	switch format {
	case FormatJSON:
		return true, WriteJSON(w, value)
	case FormatCBOR:
		return true, WriteCBOR(w, value)
	case FormatDiag:
		return true, WriteDiag(w, value)
	default:
		return false, nil
	}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

// normalizeNilSlice returns an empty slice of the same type if value
// is a nil slice, so that JSON serialization produces [] instead of
// null. Returns value unchanged for all other types.
func normalizeNilSlice(value any) any {
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Slice && v.IsNil() {
		return reflect.MakeSlice(v.Type(), 0, 0).Interface()
	}
	return value
}
