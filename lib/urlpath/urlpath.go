// Copyright 2026 The Staticd Authors
// SPDX-License-Identifier: Apache-2.0

// Package urlpath turns raw request paths into cache lookup keys.
//
// Resolution is pure string work: percent-decoding, traversal and NUL
// rejection, and lexical cleaning. No filesystem access happens here.
// Symlink containment is enforced once at cache build time, never per
// request.
package urlpath

import (
	"errors"
	"net/url"
	"path"
	"strings"
)

// Resolution failures. ErrMalformed maps to 400, ErrForbidden to 403.
var (
	ErrMalformed = errors.New("malformed request path")
	ErrForbidden = errors.New("forbidden request path")
)

// Resolve converts the percent-encoded path of a request URL into the
// logical key used for cache lookups: slash-separated, relative to the
// served root, empty string for "/".
//
// Undecodable percent-encoding and paths not rooted at "/" are
// ErrMalformed. NUL bytes and ".." segments of the decoded path are
// ErrForbidden. ".." is judged before lexical cleaning so traversal
// attempts surface as a rejection instead of being clamped to the
// root.
func Resolve(rawPath string) (string, error) {
	if !strings.HasPrefix(rawPath, "/") {
		return "", ErrMalformed
	}
	decoded, err := url.PathUnescape(rawPath)
	if err != nil {
		return "", ErrMalformed
	}
	if strings.IndexByte(decoded, 0) >= 0 {
		return "", ErrForbidden
	}
	for _, segment := range strings.Split(decoded[1:], "/") {
		if segment == ".." {
			return "", ErrForbidden
		}
	}
	cleaned := path.Clean(decoded)
	if cleaned == "/" {
		return "", nil
	}
	return cleaned[1:], nil
}
