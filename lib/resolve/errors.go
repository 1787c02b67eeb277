// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"errors"
	"fmt"

	"github.com/ohchase/blizztools/lib/hashid"
)

// Kind classifies a resolution failure.
type Kind uint8

const (
	// KindContentKeyNotFound means the encoding manifest has no entry
	// for the content key.
	KindContentKeyNotFound Kind = iota + 1

	// KindNoEncodingKey means the entry lists no encoding keys.
	KindNoEncodingKey

	// KindFetch means the fetcher failed.
	KindFetch

	// KindContainer means the fetched object is not a valid BLTE
	// container.
	KindContainer

	// KindDecode means a chunk could not be decompressed. The wrapped
	// error is a *blte.DecodeError.
	KindDecode

	// KindManifest means decompressed bytes did not parse as the
	// expected manifest.
	KindManifest

	// KindContentMismatch means the decoded bytes do not hash to the
	// content key.
	KindContentMismatch
)

// Sentinels for errors.Is. An *Error matches the sentinel for its
// Kind as well as its wrapped cause.
var (
	ErrContentKeyNotFound = errors.New("content key not found")
	ErrNoEncodingKey      = errors.New("no encoding key")
	ErrFetch              = errors.New("fetch failed")
	ErrContainer          = errors.New("invalid container")
	ErrDecode             = errors.New("decode failed")
	ErrManifest           = errors.New("invalid manifest")
	ErrContentMismatch    = errors.New("content hash mismatch")
)

func (k Kind) sentinel() error {
	switch k {
	case KindContentKeyNotFound:
		return ErrContentKeyNotFound
	case KindNoEncodingKey:
		return ErrNoEncodingKey
	case KindFetch:
		return ErrFetch
	case KindContainer:
		return ErrContainer
	case KindDecode:
		return ErrDecode
	case KindManifest:
		return ErrManifest
	case KindContentMismatch:
		return ErrContentMismatch
	}
	return nil
}

// String returns the sentinel message for the kind.
func (k Kind) String() string {
	if sentinel := k.sentinel(); sentinel != nil {
		return sentinel.Error()
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Error is returned by every resolver operation.
type Error struct {
	Kind Kind

	// ContentKey is set for content-key resolutions.
	ContentKey hashid.ID

	// EncodingKey is set once an encoding key has been chosen.
	EncodingKey hashid.ID

	Err error
}

func (e *Error) Error() string {
	message := e.Kind.String()
	if !e.ContentKey.IsNull() {
		message += " ckey=" + e.ContentKey.String()
	}
	if !e.EncodingKey.IsNull() {
		message += " ekey=" + e.EncodingKey.String()
	}
	if e.Err != nil {
		message += ": " + e.Err.Error()
	}
	return message
}

func (e *Error) Unwrap() []error {
	errs := []error{e.Kind.sentinel()}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}
