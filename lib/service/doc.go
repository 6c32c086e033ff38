// Copyright 2026 The Staticd Authors
// SPDX-License-Identifier: Apache-2.0

// Package service provides process-level infrastructure for the
// staticd binary.
//
// [HTTPServer] owns the TCP listener lifecycle: early bind so the
// resolved address is available before requests arrive (port 0 works
// for tests), a [HTTPServer.Ready] channel for startup coordination,
// and graceful shutdown that drains in-flight requests when the serve
// context is cancelled.
//
// The binary composes this with the request handler in its own main()
// rather than subclassing a framework. The package provides building
// blocks, not a runtime.
package service
