// Copyright 2026 The Staticd Authors
// SPDX-License-Identifier: Apache-2.0

// Package httprange parses single byte-range requests. Multi-range
// requests are not supported and rejected as unsatisfiable.
package httprange

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrUnit reports a range unit other than bytes. Callers treat
	// the header as absent and serve the full representation.
	ErrUnit = errors.New("unsupported range unit")

	// ErrMalformed reports a bytes range whose specifier does not
	// parse as exactly one start-end, start-, or -suffix form.
	ErrMalformed = errors.New("malformed byte range")

	// ErrUnsatisfiable reports a well-formed range that selects no
	// bytes of the representation.
	ErrUnsatisfiable = errors.New("byte range not satisfiable")
)

// Span is a satisfiable byte range, inclusive on both ends.
type Span struct {
	Start int64
	End   int64
}

// Length returns the number of bytes the span covers.
func (s Span) Length() int64 {
	return s.End - s.Start + 1
}

// ContentRange formats the Content-Range value of a 206 response for
// a representation of size bytes.
func (s Span) ContentRange(size int64) string {
	return fmt.Sprintf("bytes %d-%d/%d", s.Start, s.End, size)
}

// UnsatisfiableContentRange formats the Content-Range value of a 416
// response for a representation of size bytes.
func UnsatisfiableContentRange(size int64) string {
	return fmt.Sprintf("bytes */%d", size)
}

// Parse interprets a Range header value against a representation of
// size bytes.
//
// Accepted forms are bytes=start-end (end clamped to the last byte),
// bytes=start- (to end of representation), and bytes=-suffix (final
// suffix bytes, clamped to the whole representation). ErrUnit when
// the unit is not bytes, ErrMalformed when the bytes specifier does
// not parse as one range, ErrUnsatisfiable when the range selects
// nothing: start at or past the end, end before start, a zero-length
// suffix, or any range against an empty representation.
func Parse(header string, size int64) (Span, error) {
	unit, spec, found := strings.Cut(strings.TrimSpace(header), "=")
	if !found || !strings.EqualFold(strings.TrimSpace(unit), "bytes") {
		return Span{}, ErrUnit
	}
	spec = strings.TrimSpace(spec)
	if strings.Contains(spec, ",") {
		return Span{}, ErrMalformed
	}
	startText, endText, found := strings.Cut(spec, "-")
	if !found {
		return Span{}, ErrMalformed
	}
	startText = strings.TrimSpace(startText)
	endText = strings.TrimSpace(endText)

	if startText == "" {
		suffix, ok := parsePos(endText)
		if !ok {
			return Span{}, ErrMalformed
		}
		if suffix == 0 || size == 0 {
			return Span{}, ErrUnsatisfiable
		}
		if suffix > size {
			suffix = size
		}
		return Span{Start: size - suffix, End: size - 1}, nil
	}

	start, ok := parsePos(startText)
	if !ok {
		return Span{}, ErrMalformed
	}
	if start >= size {
		return Span{}, ErrUnsatisfiable
	}
	if endText == "" {
		return Span{Start: start, End: size - 1}, nil
	}
	end, ok := parsePos(endText)
	if !ok {
		return Span{}, ErrMalformed
	}
	if end < start {
		return Span{}, ErrUnsatisfiable
	}
	if end > size-1 {
		end = size - 1
	}
	return Span{Start: start, End: end}, nil
}

// parsePos parses a byte position: a plain run of decimal digits.
// Signs, blanks, and values that overflow int64 are rejected.
func parsePos(text string) (int64, bool) {
	if text == "" {
		return 0, false
	}
	for i := 0; i < len(text); i++ {
		if text[i] < '0' || text[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
