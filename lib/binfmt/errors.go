// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

package binfmt

import (
	"errors"
	"fmt"
)

// Kind classifies a structural parse failure.
type Kind uint8

const (
	// KindBadMagic means the leading signature did not match.
	KindBadMagic Kind = iota + 1

	// KindTruncated means fewer bytes were available than the
	// format declared.
	KindTruncated

	// KindMalformed means a field held a value the format does not
	// allow (unknown tag, impossible size).
	KindMalformed
)

// Sentinels for errors.Is. A *FormatError matches the sentinel for
// its Kind.
var (
	ErrBadMagic  = errors.New("bad magic")
	ErrTruncated = errors.New("truncated input")
	ErrMalformed = errors.New("malformed record")
)

// String returns the sentinel message for the kind.
func (k Kind) String() string {
	if sentinel := k.sentinel(); sentinel != nil {
		return sentinel.Error()
	}
	return fmt.Sprintf("unknown(%d)", uint8(k))
}

func (k Kind) sentinel() error {
	switch k {
	case KindBadMagic:
		return ErrBadMagic
	case KindTruncated:
		return ErrTruncated
	case KindMalformed:
		return ErrMalformed
	}
	return nil
}

// FormatError reports a structural failure while parsing a binary
// format. It is always fatal to the parse call that produced it.
type FormatError struct {
	// Kind is the failure class.
	Kind Kind

	// Offset is the byte offset in the input where the failing field
	// starts.
	Offset int64

	// What names the field or structure being read ("chunk 3
	// payload", "encoding header").
	What string

	// Detail is an optional human-readable explanation.
	Detail string

	// Err is an optional underlying cause.
	Err error
}

func (e *FormatError) Error() string {
	message := fmt.Sprintf("%s at offset %d: %s", e.What, e.Offset, e.Kind)
	if e.Detail != "" {
		message += " (" + e.Detail + ")"
	}
	if e.Err != nil {
		message += ": " + e.Err.Error()
	}
	return message
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *FormatError) Unwrap() []error {
	var errs []error
	if sentinel := e.Kind.sentinel(); sentinel != nil {
		errs = append(errs, sentinel)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Truncated builds a KindTruncated error.
func Truncated(offset int64, what string, need, have int) *FormatError {
	return &FormatError{
		Kind:   KindTruncated,
		Offset: offset,
		What:   what,
		Detail: fmt.Sprintf("need %d bytes, have %d", need, have),
	}
}

// Malformed builds a KindMalformed error with a formatted detail.
func Malformed(offset int64, what string, format string, args ...any) *FormatError {
	return &FormatError{
		Kind:   KindMalformed,
		Offset: offset,
		What:   what,
		Detail: fmt.Sprintf(format, args...),
	}
}
