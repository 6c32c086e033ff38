// Copyright 2026 The Staticd Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for staticd.
//
// Configuration is resolved in four layers, later layers winning:
// built-in defaults, a single YAML file, the ADDRESS and PORT
// environment variables, and command-line flags. The file is named
// by either the STATICD_CONFIG environment variable (via [Load]) or
// a --config flag (via [LoadFile]); there is no ~/.config discovery
// or automatic file search. Flags are applied by the caller, which
// is the only layer this package does not handle itself.
//
// Variable expansion is performed on the base directory after
// loading: ${HOME}, ${VAR}, and ${VAR:-default} patterns are
// expanded from the process environment.
//
// Key exports:
//
//   - [Config] -- the full configuration struct
//   - [Default] -- a Config serving the working directory on loopback
//   - [Load] and [LoadFile] -- the two entry points for loading
//
// This package depends on no other staticd packages.
package config
