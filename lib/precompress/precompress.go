// Copyright 2026 The Staticd Authors
// SPDX-License-Identifier: Apache-2.0

// Package precompress generates the pre-compressed sibling files the
// cache serves: name.ext.gz, name.ext.br, and name.ext.zst next to
// name.ext. Siblings are written atomically (temp file + rename) and
// regenerated only when older than their source, so a run over an
// unchanged tree is cheap.
package precompress

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bureau-foundation/staticd/lib/negotiate"
)

// DefaultMinSize is the smallest source file worth compressing.
// Tiny payloads fit in one packet either way and the sibling would
// mostly carry format overhead.
const DefaultMinSize = 1 << 10

// skipExtensions lists file types that already carry their own
// compression. Recompressing them costs CPU at build time and decode
// time without reducing size.
var skipExtensions = map[string]bool{
	".7z": true, ".avif": true, ".bz2": true, ".flac": true,
	".gif": true, ".jpeg": true, ".jpg": true, ".mkv": true,
	".mp3": true, ".mp4": true, ".ogg": true, ".png": true,
	".rar": true, ".tgz": true, ".webm": true, ".webp": true,
	".woff": true, ".woff2": true, ".xz": true, ".zip": true,
}

// Options control a pre-compression run.
type Options struct {
	// MinSize is the smallest source file to compress, in bytes.
	// Defaults to DefaultMinSize if zero.
	MinSize int64

	// Force regenerates siblings even when they are newer than
	// their source.
	Force bool

	// Encodings limits which sibling kinds are generated. Defaults
	// to all compressed encodings if nil.
	Encodings []negotiate.Encoding
}

// Stats counts what a run did, for logging.
type Stats struct {
	// Examined is the number of identity source files considered.
	Examined int
	// Written is the number of sibling files generated.
	Written int
	// SkippedSmall counts sources below the size threshold.
	SkippedSmall int
	// SkippedType counts sources with already-compressed extensions.
	SkippedType int
	// SkippedFresh counts siblings already newer than their source.
	SkippedFresh int
	// Incompressible counts siblings not written because the output
	// would not have been smaller than the source.
	Incompressible int
}

// Run walks dir and generates missing or stale pre-compressed
// siblings for every eligible file. Symlinks are left alone; files
// that are themselves variant siblings are never treated as sources.
// The first filesystem or encoder failure aborts the run.
func Run(dir string, options Options, logger *slog.Logger) (Stats, error) {
	var stats Stats

	minSize := options.MinSize
	if minSize == 0 {
		minSize = DefaultMinSize
	}
	encodings := options.Encodings
	if encodings == nil {
		encodings = negotiate.Compressed()
	}

	walk := func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walking %s: %w", path, err)
		}
		if entry.IsDir() || entry.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return fmt.Errorf("stating %s: %w", path, err)
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		// Temp files from an interrupted earlier run.
		if strings.HasPrefix(entry.Name(), ".precompress-") && strings.HasSuffix(entry.Name(), ".tmp") {
			logger.Warn("removing stale temp file", "path", path)
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("removing stale temp file %s: %w", path, err)
			}
			return nil
		}
		if _, _, isVariant := negotiate.CutSuffix(entry.Name()); isVariant {
			return nil
		}

		stats.Examined++
		if skipExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			stats.SkippedType++
			return nil
		}
		if info.Size() < minSize {
			stats.SkippedSmall++
			return nil
		}

		// Source bytes are read once, on the first sibling that
		// actually needs writing.
		var data []byte
		for _, encoding := range encodings {
			siblingPath := path + encoding.Suffix()
			if !options.Force {
				siblingInfo, err := os.Stat(siblingPath)
				if err == nil && !siblingInfo.ModTime().Before(info.ModTime()) {
					stats.SkippedFresh++
					continue
				}
			}
			if data == nil {
				data, err = os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("reading %s: %w", path, err)
				}
			}

			compressed, err := compress(encoding, data)
			if IsIncompressible(err) {
				stats.Incompressible++
				continue
			}
			if err != nil {
				return fmt.Errorf("compressing %s as %v: %w", path, encoding, err)
			}
			if err := writeSibling(siblingPath, compressed); err != nil {
				return err
			}
			stats.Written++
			logger.Debug("wrote pre-compressed sibling",
				"path", siblingPath,
				"source_size", len(data),
				"compressed_size", len(compressed))
		}
		return nil
	}

	if err := filepath.WalkDir(dir, walk); err != nil {
		return stats, err
	}
	return stats, nil
}

// writeSibling writes data atomically via temp file + rename, so a
// concurrent cache build never observes a half-written sibling.
func writeSibling(path string, data []byte) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".precompress-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp sibling file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing %s: %w", tmpPath, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming sibling into place: %w", err)
	}

	success = true
	return nil
}
