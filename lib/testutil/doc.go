// Copyright 2026 The Staticd Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for staticd packages.
//
// [WriteTree] and [WriteFile] materialize fixture file trees for cache
// build, pre-compression, and end-to-end serving tests, creating
// parent directories as needed.
//
// [SetModTime] pins a file's modification time so tests can assert
// Last-Modified and freshness behavior against known timestamps
// instead of whatever the filesystem handed out.
//
// [RequireReceive] and [RequireClosed] encapsulate the timeout safety
// valve pattern (select with time.After fallback) so that individual
// tests do not need direct time.After calls.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no staticd-internal dependencies.
package testutil
