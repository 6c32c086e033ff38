// Copyright 2026 The Staticd Authors
// SPDX-License-Identifier: Apache-2.0

package filecache

import (
	"encoding/hex"
	"sync/atomic"
	"time"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/staticd/lib/negotiate"
)

// Variant is one encoded representation of a file, held fully in
// memory. Data is immutable after the snapshot build; responses slice
// it directly without copying.
type Variant struct {
	Encoding negotiate.Encoding
	Data     []byte
	ETag     string
}

// File is one servable logical path with its encoding variants.
type File struct {
	// Path is the logical key: slash-separated, relative to the base
	// directory, without any variant suffix.
	Path string

	// ContentType is derived from the logical path extension and
	// shared by all variants.
	ContentType string

	// LastModified is the identity source's modification time.
	LastModified time.Time

	variants [negotiate.NumEncodings]*Variant
}

// Variant returns the representation stored under the given encoding,
// nil when the file has none.
func (f *File) Variant(e negotiate.Encoding) *Variant {
	return f.variants[e]
}

// Identity returns the uncompressed representation. Every file in a
// completed snapshot has one.
func (f *File) Identity() *Variant {
	return f.variants[negotiate.Identity]
}

// Available reports which encodings the file can serve, indexed by
// encoding.
func (f *File) Available() [negotiate.NumEncodings]bool {
	var available [negotiate.NumEncodings]bool
	for i, v := range f.variants {
		available[i] = v != nil
	}
	return available
}

// Snapshot is an immutable view of the served tree.
type Snapshot struct {
	files    map[string]*File
	builtAt  time.Time
	variants int
	bytes    int64
}

// Lookup finds the file for a resolved logical path.
func (s *Snapshot) Lookup(path string) (*File, bool) {
	file, ok := s.files[path]
	return file, ok
}

// Stats summarizes a snapshot for logs.
type Stats struct {
	Files    int
	Variants int
	Bytes    int64
	BuiltAt  time.Time
}

// Stats returns the snapshot's summary counters.
func (s *Snapshot) Stats() Stats {
	return Stats{
		Files:    len(s.files),
		Variants: s.variants,
		Bytes:    s.bytes,
		BuiltAt:  s.builtAt,
	}
}

// Store hands out the current snapshot and accepts replacements. Safe
// for concurrent use; readers pay one atomic load.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore returns a store serving the given snapshot.
func NewStore(snapshot *Snapshot) *Store {
	store := &Store{}
	store.current.Store(snapshot)
	return store
}

// Current returns the snapshot a request should use. Callers keep
// using the returned snapshot even if a replacement lands mid-flight.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Replace installs a freshly built snapshot for subsequent requests.
func (s *Store) Replace(snapshot *Snapshot) {
	s.current.Store(snapshot)
}

// etagHexLength is the number of hash hex characters kept in an
// entity tag: 128 bits of BLAKE3 output.
const etagHexLength = 32

// makeETag computes the strong entity tag for a variant's bytes: the
// truncated hex BLAKE3 hash, quoted. Content-derived, so tags are
// stable across restarts and distinct across encodings of the same
// file.
func makeETag(data []byte) string {
	sum := blake3.Sum256(data)
	return `"` + hex.EncodeToString(sum[:])[:etagHexLength] + `"`
}
