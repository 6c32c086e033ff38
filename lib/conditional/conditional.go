// Copyright 2026 The Staticd Authors
// SPDX-License-Identifier: Apache-2.0

// Package conditional evaluates conditional request headers against
// the validators of a selected variant: If-None-Match against the
// entity tag, If-Modified-Since against the modification time, and
// If-Range against either.
package conditional

import (
	"net/http"
	"strings"
	"time"
)

// MatchETag reports whether an If-None-Match header value matches the
// given entity tag. Comparison is the strong form: weak tags (W/
// prefix) never match, "*" matches any stored representation. A value
// that stops parsing as an entity-tag list stops matching there.
func MatchETag(header, etag string) bool {
	buf := header
	for {
		buf = strings.TrimLeft(buf, " \t")
		if buf == "" {
			return false
		}
		if buf[0] == ',' {
			buf = buf[1:]
			continue
		}
		if buf[0] == '*' {
			return true
		}
		tag, rest, ok := scanETag(buf)
		if !ok {
			return false
		}
		if tag[0] == '"' && tag == etag {
			return true
		}
		buf = rest
	}
}

// ModifiedSince reports whether a resource last modified at the given
// time counts as modified relative to an If-Modified-Since header.
// Comparison is at one-second granularity: an equal or older
// modification time is "not modified". Unparsable dates count as
// modified, ignoring the header.
func ModifiedSince(header string, lastModified time.Time) bool {
	since, err := http.ParseTime(header)
	if err != nil {
		return true
	}
	return lastModified.Truncate(time.Second).After(since)
}

// MatchIfRange reports whether an If-Range validator permits honoring
// the accompanying Range header. An empty header always permits. An
// entity-tag validator requires a strong match against the variant's
// tag; a date validator must equal the modification time exactly at
// one-second granularity. Anything else forces a full response.
func MatchIfRange(header, etag string, lastModified time.Time) bool {
	if header == "" {
		return true
	}
	if header[0] == '"' || strings.HasPrefix(header, "W/") {
		tag, rest, ok := scanETag(header)
		return ok && strings.TrimSpace(rest) == "" && tag[0] == '"' && tag == etag
	}
	at, err := http.ParseTime(header)
	if err != nil {
		return false
	}
	return lastModified.Truncate(time.Second).Equal(at)
}

// scanETag reads one entity-tag from the start of s, returning the
// tag (quotes and any W/ prefix included), the remainder, and whether
// the syntax was valid per the RFC 9110 entity-tag grammar.
func scanETag(s string) (tag, rest string, ok bool) {
	start := 0
	if strings.HasPrefix(s, "W/") {
		start = 2
	}
	if len(s[start:]) < 2 || s[start] != '"' {
		return "", "", false
	}
	for i := start + 1; i < len(s); i++ {
		c := s[i]
		switch {
		case c == 0x21 || c >= 0x23 && c <= 0x7E || c >= 0x80:
			// etagc: any byte a tag may contain.
		case c == '"':
			return s[:i+1], s[i+1:], true
		default:
			return "", "", false
		}
	}
	return "", "", false
}
