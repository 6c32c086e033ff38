// Copyright 2026 The Staticd Authors
// SPDX-License-Identifier: Apache-2.0

// Package fileserver is the request pipeline: path resolution, cache
// lookup with optional fallback substitution, content negotiation,
// conditional evaluation, range handling, and response assembly.
//
// Each request runs against exactly one cache snapshot, acquired once
// at the start of the pipeline. The pipeline produces a response plan
// (status, ordered headers, body slice) that the writer transmits
// verbatim; no stage after assembly makes decisions. Bodies are
// served as slices of the cached variant buffers, never copied.
package fileserver
