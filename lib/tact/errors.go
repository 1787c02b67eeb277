// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

package tact

import "fmt"

// ParseError reports a line that could not be parsed.
type ParseError struct {
	// Document names what was being parsed ("version table").
	Document string

	// Line is the 1-based line number, or 0 for errors about the
	// document as a whole.
	Line int

	// Text is the offending line.
	Text string

	Err error
}

func (err *ParseError) Error() string {
	if err.Line == 0 {
		return fmt.Sprintf("%s: %v", err.Document, err.Err)
	}
	return fmt.Sprintf("%s line %d: %v (%q)", err.Document, err.Line, err.Err, err.Text)
}

func (err *ParseError) Unwrap() error {
	return err.Err
}
