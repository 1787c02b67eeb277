// Copyright 2026 The Blizztools Authors
// SPDX-License-Identifier: Apache-2.0

// Package pagetable implements the page-at-a-time record scan shared
// by the encoding manifest's key tables and the local index file.
//
// A paginated table is a sequence of fixed-size pages. Each page holds
// zero or more records followed by padding. The scanner reads one page
// at a time and decodes records from the front of the page until the
// decoder fails, which it takes to mean the padding has been reached,
// then moves to the next page.
//
// Two termination policies cover the formats in use:
//
//   - [ExactPages]: the table declares its page count. Exactly that
//     many full pages must be read; a short read is a truncation error.
//   - [UntilSentinel]: the table has no declared length. The scan ends
//     normally at the first short page read or the first record the
//     sentinel function accepts (typically a null key).
//
// The scanner does no logging. How the scan ended is returned as a
// [StopReason] so callers decide what, if anything, to report.
package pagetable

import (
	"errors"
	"fmt"
	"io"

	"github.com/ohchase/blizztools/lib/binfmt"
)

// StopReason records why a scan ended.
type StopReason uint8

const (
	// StopPageCount means the declared number of pages was consumed.
	StopPageCount StopReason = iota + 1

	// StopShortPage means a page read returned fewer than PageSize
	// bytes (including zero bytes at end of input).
	StopShortPage

	// StopSentinel means a sentinel record was decoded.
	StopSentinel
)

// String returns a short name for the reason.
func (reason StopReason) String() string {
	switch reason {
	case StopPageCount:
		return "page_count"
	case StopShortPage:
		return "short_page"
	case StopSentinel:
		return "sentinel"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(reason))
	}
}

// MarshalText encodes the reason as its name.
func (reason StopReason) MarshalText() ([]byte, error) {
	return []byte(reason.String()), nil
}

// Decoder decodes one record from the front of buffer and returns it
// with the number of bytes consumed. Any error means no further
// records fit in this page. A decoder must consume at least one byte
// when it succeeds.
type Decoder[T any] func(buffer []byte) (record T, consumed int, err error)

// Policy selects how a scan terminates. Construct one with
// [ExactPages] or [UntilSentinel]; [Scan] rejects the zero value.
type Policy[T any] struct {
	set        bool
	exact      bool
	pages      int
	isSentinel func(T) bool
}

// ExactPages requires exactly count full pages. count must not be
// negative.
func ExactPages[T any](count int) Policy[T] {
	return Policy[T]{set: true, exact: true, pages: count}
}

// UntilSentinel scans until a short page or until isSentinel returns
// true for a decoded record. The sentinel record is not returned.
func UntilSentinel[T any](isSentinel func(T) bool) Policy[T] {
	return Policy[T]{set: true, isSentinel: isSentinel}
}

// Options configures a scan.
type Options[T any] struct {
	// PageSize is the page length in bytes. Must be positive.
	PageSize int

	// Decode decodes one record.
	Decode Decoder[T]

	// Policy selects the termination rule.
	Policy Policy[T]

	// OnPage, if set, is called with each full page before its
	// records are decoded. The page slice is only valid during the
	// call.
	OnPage func(index int, page []byte)

	// Offset is added to positions reported in errors, for tables
	// embedded at an offset in a larger buffer.
	Offset int64
}

// Result is the outcome of a completed scan.
type Result[T any] struct {
	// Records holds the decoded records in page order, then in-page
	// order.
	Records []T

	// Pages is the number of full pages read.
	Pages int

	// Stop records why the scan ended.
	Stop StopReason

	// PageRecords[i] is the number of records decoded from page i.
	PageRecords []int
}

// Scan reads pages from r and decodes records until the policy's
// termination condition. Errors from r other than a short read are
// returned as is; a short read under [ExactPages] is a
// *binfmt.FormatError of kind KindTruncated.
func Scan[T any](r io.Reader, options Options[T]) (Result[T], error) {
	var result Result[T]
	if options.PageSize <= 0 {
		return result, fmt.Errorf("page size must be positive, got %d", options.PageSize)
	}
	if options.Decode == nil {
		return result, fmt.Errorf("page decoder is required")
	}
	if !options.Policy.set {
		return result, fmt.Errorf("page policy is required")
	}
	if options.Policy.exact && options.Policy.pages < 0 {
		return result, fmt.Errorf("page count must not be negative, got %d", options.Policy.pages)
	}

	exact := options.Policy.exact
	page := make([]byte, options.PageSize)

	for {
		if exact && result.Pages == options.Policy.pages {
			result.Stop = StopPageCount
			return result, nil
		}

		pageOffset := options.Offset + int64(result.Pages)*int64(options.PageSize)
		read, err := io.ReadFull(r, page)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
				return result, fmt.Errorf("reading page %d: %w", result.Pages, err)
			}
			if exact {
				return result, binfmt.Truncated(pageOffset,
					fmt.Sprintf("page %d of %d", result.Pages, options.Policy.pages),
					options.PageSize, read)
			}
			result.Stop = StopShortPage
			return result, nil
		}

		if options.OnPage != nil {
			options.OnPage(result.Pages, page)
		}

		decoded, sentinel := decodePage(page, options, &result)
		result.PageRecords = append(result.PageRecords, decoded)
		result.Pages++
		if sentinel {
			result.Stop = StopSentinel
			return result, nil
		}
	}
}

// decodePage appends the records of one page to result and reports
// the number decoded and whether a sentinel ended the page.
func decodePage[T any](page []byte, options Options[T], result *Result[T]) (int, bool) {
	decoded := 0
	for position := 0; position < len(page); {
		record, consumed, err := options.Decode(page[position:])
		if err != nil || consumed <= 0 {
			break
		}
		if options.Policy.isSentinel != nil && options.Policy.isSentinel(record) {
			return decoded, true
		}
		result.Records = append(result.Records, record)
		decoded++
		position += consumed
	}
	return decoded, false
}

// Bytes is a convenience wrapper that scans an in-memory buffer and
// also returns the number of bytes the scan consumed.
func Bytes[T any](data []byte, options Options[T]) (Result[T], int, error) {
	reader := &countingReader{data: data}
	result, err := Scan(reader, options)
	return result, reader.offset, err
}

// countingReader is a bytes.Reader that exposes how far it has read.
type countingReader struct {
	data   []byte
	offset int
}

func (r *countingReader) Read(p []byte) (int, error) {
	if r.offset >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.offset:])
	r.offset += n
	return n, nil
}
