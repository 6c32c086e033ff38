// Copyright 2026 The Staticd Authors
// SPDX-License-Identifier: Apache-2.0

package conditional

import (
	"net/http"
	"testing"
	"time"
)

func TestMatchETag(t *testing.T) {
	const etag = `"d41d8cd98f00b204e9800998ecf8427e"`

	tests := []struct {
		name   string
		header string
		want   bool
	}{
		{"exact_match", `"d41d8cd98f00b204e9800998ecf8427e"`, true},
		{"star_matches_anything", "*", true},
		{"match_in_list", `"aaa", "d41d8cd98f00b204e9800998ecf8427e", "bbb"`, true},
		{"match_after_whitespace", ` ,  "d41d8cd98f00b204e9800998ecf8427e"`, true},
		{"no_match", `"other"`, false},
		{"no_match_in_list", `"aaa", "bbb"`, false},
		// Strong comparison: a weak tag never matches.
		{"weak_tag_never_matches", `W/"d41d8cd98f00b204e9800998ecf8427e"`, false},
		{"weak_in_list_skipped", `W/"d41d8cd98f00b204e9800998ecf8427e", "bbb"`, false},
		// Malformed values stop matching where parsing stops.
		{"unquoted_tag", `d41d8cd98f00b204e9800998ecf8427e`, false},
		{"unterminated_tag", `"abc`, false},
		{"garbage_after_valid_member", `"aaa", garbage, "d41d8cd98f00b204e9800998ecf8427e"`, false},
		{"empty_header", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchETag(tt.header, etag); got != tt.want {
				t.Errorf("MatchETag(%q, %q) = %v, want %v", tt.header, etag, got, tt.want)
			}
		})
	}
}

func TestModifiedSince(t *testing.T) {
	lastModified := time.Date(2026, time.March, 14, 15, 9, 26, 0, time.UTC)
	header := lastModified.Format(http.TimeFormat)

	tests := []struct {
		name         string
		header       string
		lastModified time.Time
		want         bool
	}{
		{"equal_times_not_modified", header, lastModified, false},
		{"older_resource_not_modified", header, lastModified.Add(-time.Hour), false},
		{"newer_resource_modified", header, lastModified.Add(time.Hour), true},
		// One-second granularity: sub-second drift within the header's
		// second does not count as modified.
		{"subsecond_drift_not_modified", header, lastModified.Add(500 * time.Millisecond), false},
		{"next_second_modified", header, lastModified.Add(time.Second), true},
		{"unparsable_date_counts_as_modified", "not a date", lastModified, true},
		{"empty_header_counts_as_modified", "", lastModified, true},
		// RFC 850 format, the second of the three accepted date forms.
		{"rfc850_date", "Saturday, 14-Mar-26 15:09:26 GMT", lastModified, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ModifiedSince(tt.header, tt.lastModified); got != tt.want {
				t.Errorf("ModifiedSince(%q, %v) = %v, want %v", tt.header, tt.lastModified, got, tt.want)
			}
		})
	}
}

func TestMatchIfRange(t *testing.T) {
	const etag = `"abc123"`
	lastModified := time.Date(2026, time.March, 14, 15, 9, 26, 0, time.UTC)
	dateHeader := lastModified.Format(http.TimeFormat)

	tests := []struct {
		name   string
		header string
		want   bool
	}{
		{"absent_header_permits", "", true},
		{"matching_etag_permits", `"abc123"`, true},
		{"other_etag_refuses", `"def456"`, false},
		{"weak_etag_refuses", `W/"abc123"`, false},
		{"trailing_junk_refuses", `"abc123", "def456"`, false},
		{"exact_date_permits", dateHeader, true},
		{"older_date_refuses", lastModified.Add(-time.Hour).Format(http.TimeFormat), false},
		{"newer_date_refuses", lastModified.Add(time.Hour).Format(http.TimeFormat), false},
		{"unparsable_refuses", "neither an etag nor a date", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchIfRange(tt.header, etag, lastModified); got != tt.want {
				t.Errorf("MatchIfRange(%q) = %v, want %v", tt.header, got, tt.want)
			}
		})
	}
}

func TestMatchIfRangeSubsecondModificationTime(t *testing.T) {
	// Stored mtimes carry nanoseconds; the date header carries whole
	// seconds. The comparison truncates before testing equality.
	lastModified := time.Date(2026, time.March, 14, 15, 9, 26, 123456789, time.UTC)
	header := lastModified.Truncate(time.Second).Format(http.TimeFormat)

	if !MatchIfRange(header, `"x"`, lastModified) {
		t.Errorf("MatchIfRange(%q) = false for the same second, want true", header)
	}
}
