// Copyright 2026 The Staticd Authors
// SPDX-License-Identifier: Apache-2.0

// Package negotiate selects which pre-compressed variant of a file to
// serve, based on the request's Accept-Encoding header.
//
// The encoding set is closed: identity, gzip, brotli, and zstd. The
// server preference order is fixed (Brotli, then Zstd, then Gzip,
// then Identity); client q-values decide membership only and never
// reorder it.
package negotiate

import (
	"errors"
	"strconv"
	"strings"
)

// Encoding identifies one content coding a variant can be stored and
// served under.
type Encoding uint8

const (
	Identity Encoding = iota
	Gzip
	Brotli
	Zstd

	// NumEncodings sizes arrays indexed by Encoding.
	NumEncodings = 4
)

// preference is the fixed server-side selection order.
var preference = [NumEncodings]Encoding{Brotli, Zstd, Gzip, Identity}

// ErrNotAcceptable reports that no available variant is acceptable to
// the client.
var ErrNotAcceptable = errors.New("no acceptable content coding")

// String returns the content-coding token used in Content-Encoding
// and Accept-Encoding.
func (e Encoding) String() string {
	switch e {
	case Gzip:
		return "gzip"
	case Brotli:
		return "br"
	case Zstd:
		return "zstd"
	default:
		return "identity"
	}
}

// Suffix returns the file-name suffix of a pre-compressed sibling,
// "" for Identity.
func (e Encoding) Suffix() string {
	switch e {
	case Gzip:
		return ".gz"
	case Brotli:
		return ".br"
	case Zstd:
		return ".zst"
	default:
		return ""
	}
}

// Compressed lists the non-identity encodings.
func Compressed() []Encoding {
	return []Encoding{Gzip, Brotli, Zstd}
}

// CutSuffix splits a file name carrying a pre-compressed suffix into
// the logical name and its encoding. ok is false for names without a
// recognized suffix; the name then belongs to the identity variant. A
// name that consists only of the suffix (".gz" alone) is treated as
// an ordinary identity file.
func CutSuffix(name string) (logical string, e Encoding, ok bool) {
	for _, e := range Compressed() {
		if rest, found := strings.CutSuffix(name, e.Suffix()); found && rest != "" && !strings.HasSuffix(rest, "/") {
			return rest, e, true
		}
	}
	return name, Identity, false
}

// Member states of an Acceptance. Unlisted encodings fall through to
// the wildcard, then to the identity default.
const (
	unlisted byte = iota
	allowed
	refused
)

// Acceptance is the parsed form of an Accept-Encoding header: which
// encodings the client will take. The zero Acceptance (header absent)
// accepts identity only.
type Acceptance struct {
	listed   [NumEncodings]byte
	wildcard byte
}

// ParseAccept parses an Accept-Encoding header value. A q-value of
// zero refuses the coding, any other q-value admits it. "*" covers
// codings not explicitly listed. List members that do not parse are
// ignored, as are codings this server never stores.
func ParseAccept(header string) Acceptance {
	var a Acceptance
	for _, member := range strings.Split(header, ",") {
		token, q, ok := parseMember(member)
		if !ok {
			continue
		}
		state := allowed
		if q == 0 {
			state = refused
		}
		if token == "*" {
			a.wildcard = state
			continue
		}
		if e, known := parseToken(token); known {
			a.listed[e] = state
		}
	}
	return a
}

// Allows reports whether the client accepts the given encoding.
// Identity is acceptable by default unless refused explicitly or via
// a refusing wildcard.
func (a Acceptance) Allows(e Encoding) bool {
	switch a.listed[e] {
	case allowed:
		return true
	case refused:
		return false
	}
	if a.wildcard != unlisted {
		return a.wildcard == allowed
	}
	return e == Identity
}

// Choose picks the encoding to serve: the first entry of the fixed
// preference order that is both available and acceptable. available
// is indexed by Encoding. ErrNotAcceptable when nothing qualifies.
func Choose(a Acceptance, available [NumEncodings]bool) (Encoding, error) {
	for _, e := range preference {
		if available[e] && a.Allows(e) {
			return e, nil
		}
	}
	return Identity, ErrNotAcceptable
}

// parseMember splits one Accept-Encoding list member into its
// lowercased token and effective q-value. Members with unparsable
// q-values report ok false.
func parseMember(member string) (token string, q float64, ok bool) {
	token, params, _ := strings.Cut(member, ";")
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return "", 0, false
	}
	q = 1
	for params != "" {
		var param string
		param, params, _ = strings.Cut(params, ";")
		key, value, found := strings.Cut(param, "=")
		if !found || !strings.EqualFold(strings.TrimSpace(key), "q") {
			continue
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || parsed < 0 || parsed > 1 {
			return "", 0, false
		}
		q = parsed
	}
	return token, q, true
}

// parseToken maps a lowercased content-coding token to its Encoding.
// "x-gzip" is the historical alias for gzip.
func parseToken(token string) (Encoding, bool) {
	switch token {
	case "identity":
		return Identity, true
	case "gzip", "x-gzip":
		return Gzip, true
	case "br":
		return Brotli, true
	case "zstd":
		return Zstd, true
	}
	return 0, false
}
