// Copyright 2026 The Staticd Authors
// SPDX-License-Identifier: Apache-2.0

package filecache

import (
	"fmt"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/bureau-foundation/staticd/lib/negotiate"
)

// Build walks dir and loads every servable file into a new snapshot.
//
// Pre-compressed siblings attach to their logical file; siblings with
// no identity source are dropped after the walk with a warning, so
// every file in the returned snapshot has an identity variant.
// Symlinked files are followed only when their resolved target stays
// inside the resolved base directory; directory symlinks are not
// descended. Any read failure aborts the build.
func Build(dir string, logger *slog.Logger) (*Snapshot, error) {
	base, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving base directory %s: %w", dir, err)
	}
	base, err = filepath.EvalSymlinks(base)
	if err != nil {
		return nil, fmt.Errorf("resolving base directory %s: %w", dir, err)
	}

	snapshot := &Snapshot{
		files:   make(map[string]*File),
		builtAt: time.Now(),
	}

	walk := func(entryPath string, entry fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walking %s: %w", entryPath, err)
		}
		if entry.IsDir() {
			return nil
		}

		info, serve, err := resolveEntry(base, entryPath, entry, logger)
		if err != nil {
			return err
		}
		if !serve {
			return nil
		}

		rel, err := filepath.Rel(base, entryPath)
		if err != nil {
			return fmt.Errorf("relativizing %s: %w", entryPath, err)
		}
		key := filepath.ToSlash(rel)

		data, err := os.ReadFile(entryPath)
		if err != nil {
			return fmt.Errorf("reading %s: %w", entryPath, err)
		}

		logical, encoding, _ := negotiate.CutSuffix(key)
		file := snapshot.files[logical]
		if file == nil {
			file = &File{
				Path:        logical,
				ContentType: contentType(logical),
			}
			snapshot.files[logical] = file
		}
		if encoding == negotiate.Identity {
			file.LastModified = info.ModTime()
		}
		file.variants[encoding] = &Variant{
			Encoding: encoding,
			Data:     data,
			ETag:     makeETag(data),
		}
		return nil
	}

	if err := filepath.WalkDir(base, walk); err != nil {
		return nil, err
	}

	for key, file := range snapshot.files {
		if file.Identity() == nil {
			logger.Warn("dropping orphan pre-compressed variants",
				"path", key)
			delete(snapshot.files, key)
			continue
		}
		for _, variant := range file.variants {
			if variant != nil {
				snapshot.variants++
				snapshot.bytes += int64(len(variant.Data))
			}
		}
	}

	return snapshot, nil
}

// resolveEntry decides whether a walked entry is servable and returns
// its file info. Symlinks are followed and checked for containment in
// base; non-regular files are skipped.
func resolveEntry(base, entryPath string, entry fs.DirEntry, logger *slog.Logger) (fs.FileInfo, bool, error) {
	if entry.Type()&fs.ModeSymlink != 0 {
		target, err := filepath.EvalSymlinks(entryPath)
		if err != nil {
			logger.Warn("skipping unresolvable symlink",
				"path", entryPath, "error", err)
			return nil, false, nil
		}
		if target != base && !strings.HasPrefix(target, base+string(filepath.Separator)) {
			logger.Warn("skipping symlink escaping the base directory",
				"path", entryPath, "target", target)
			return nil, false, nil
		}
		info, err := os.Stat(entryPath)
		if err != nil {
			return nil, false, fmt.Errorf("stating symlink target %s: %w", entryPath, err)
		}
		if !info.Mode().IsRegular() {
			logger.Debug("skipping non-regular symlink target",
				"path", entryPath)
			return nil, false, nil
		}
		return info, true, nil
	}

	info, err := entry.Info()
	if err != nil {
		return nil, false, fmt.Errorf("stating %s: %w", entryPath, err)
	}
	if !info.Mode().IsRegular() {
		logger.Debug("skipping non-regular file", "path", entryPath)
		return nil, false, nil
	}
	return info, true, nil
}

// contentType derives the Content-Type from the logical path
// extension, defaulting to application/octet-stream.
func contentType(logical string) string {
	if t := mime.TypeByExtension(path.Ext(logical)); t != "" {
		return t
	}
	return "application/octet-stream"
}
