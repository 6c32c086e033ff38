// Copyright 2026 The Staticd Authors
// SPDX-License-Identifier: Apache-2.0

// Package filecache holds the served file tree in memory.
//
// A [Snapshot] is built by walking the base directory exactly once:
// every regular file is read fully, pre-compressed siblings (.gz,
// .br, .zst) fold into their logical file as encoding variants, and a
// strong entity tag is computed from each variant's bytes. Snapshots
// are immutable after construction; lookups never touch the
// filesystem.
//
// A [Store] hands the current snapshot to requests with one atomic
// pointer load and accepts replacement snapshots from rebuilds. A
// request keeps the snapshot it started with even if a replacement
// lands mid-flight; the old snapshot is garbage collected once the
// last such request finishes.
package filecache
