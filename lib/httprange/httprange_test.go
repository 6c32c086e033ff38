// Copyright 2026 The Staticd Authors
// SPDX-License-Identifier: Apache-2.0

package httprange

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		header string
		size   int64
		want   Span
	}{
		{"closed_range", "bytes=0-49", 100, Span{0, 49}},
		{"interior_range", "bytes=10-19", 100, Span{10, 19}},
		{"single_byte", "bytes=0-0", 100, Span{0, 0}},
		{"last_byte", "bytes=99-99", 100, Span{99, 99}},
		{"open_range", "bytes=50-", 100, Span{50, 99}},
		{"open_range_from_zero", "bytes=0-", 100, Span{0, 99}},
		{"suffix_range", "bytes=-10", 100, Span{90, 99}},
		{"suffix_of_whole_file", "bytes=-100", 100, Span{0, 99}},
		// Over-long ranges clamp to the representation.
		{"end_clamped", "bytes=50-200", 100, Span{50, 99}},
		{"suffix_clamped", "bytes=-500", 100, Span{0, 99}},
		// Whitespace tolerance.
		{"spaces_around_spec", " bytes = 10 - 19 ", 100, Span{10, 19}},
		{"unit_case_insensitive", "BYTES=0-9", 100, Span{0, 9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.header, tt.size)
			if err != nil {
				t.Fatalf("Parse(%q, %d): %v", tt.header, tt.size, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q, %d) = %+v, want %+v", tt.header, tt.size, got, tt.want)
			}
		})
	}
}

func TestParseFailures(t *testing.T) {
	tests := []struct {
		name   string
		header string
		size   int64
		want   error
	}{
		// Units this server does not implement: header is ignored.
		{"lines_unit", "lines=1-5", 100, ErrUnit},
		{"no_equals_sign", "garbage", 100, ErrUnit},
		{"empty_header", "", 100, ErrUnit},
		// Broken bytes specifiers.
		{"empty_spec", "bytes=", 100, ErrMalformed},
		{"no_dash", "bytes=15", 100, ErrMalformed},
		{"double_dash", "bytes=--5", 100, ErrMalformed},
		{"dash_only", "bytes=-", 100, ErrMalformed},
		{"letters_for_start", "bytes=abc-5", 100, ErrMalformed},
		{"letters_for_end", "bytes=5-abc", 100, ErrMalformed},
		{"signed_start", "bytes=+5-10", 100, ErrMalformed},
		{"multiple_ranges", "bytes=0-5,10-15", 100, ErrMalformed},
		{"overflowing_position", "bytes=0-99999999999999999999", 100, ErrMalformed},
		// Well-formed but selecting nothing.
		{"start_at_length", "bytes=100-", 100, ErrUnsatisfiable},
		{"start_past_length", "bytes=500-600", 100, ErrUnsatisfiable},
		{"end_before_start", "bytes=20-10", 100, ErrUnsatisfiable},
		{"zero_suffix", "bytes=-0", 100, ErrUnsatisfiable},
		{"empty_file_any_range", "bytes=0-0", 0, ErrUnsatisfiable},
		{"empty_file_suffix", "bytes=-5", 0, ErrUnsatisfiable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.header, tt.size)
			if !errors.Is(err, tt.want) {
				t.Errorf("Parse(%q, %d) error = %v, want %v", tt.header, tt.size, err, tt.want)
			}
		})
	}
}

func TestSpanLength(t *testing.T) {
	tests := []struct {
		span Span
		want int64
	}{
		{Span{0, 0}, 1},
		{Span{0, 49}, 50},
		{Span{90, 99}, 10},
	}
	for _, test := range tests {
		if got := test.span.Length(); got != test.want {
			t.Errorf("Span%+v.Length() = %d, want %d", test.span, got, test.want)
		}
	}
}

func TestContentRange(t *testing.T) {
	if got := (Span{0, 49}).ContentRange(100); got != "bytes 0-49/100" {
		t.Errorf("ContentRange = %q, want %q", got, "bytes 0-49/100")
	}
	if got := UnsatisfiableContentRange(100); got != "bytes */100" {
		t.Errorf("UnsatisfiableContentRange = %q, want %q", got, "bytes */100")
	}
}
