// Copyright 2026 The Staticd Authors
// SPDX-License-Identifier: Apache-2.0

package precompress

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/bureau-foundation/staticd/lib/negotiate"
)

// zstdEncoder is reused across calls to avoid repeated initialization
// overhead. zstd.Encoder is safe for concurrent use.
var zstdEncoder *zstd.Encoder

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedBestCompression),
	)
	if err != nil {
		panic("precompress: zstd encoder initialization failed: " + err.Error())
	}
}

// compress encodes data under e at maximum compression. Siblings are
// generated once and served many times, so ratio is worth more than
// encode speed here.
func compress(e negotiate.Encoding, data []byte) ([]byte, error) {
	var compressed []byte
	switch e {
	case negotiate.Gzip:
		var buffer bytes.Buffer
		writer, err := gzip.NewWriterLevel(&buffer, gzip.BestCompression)
		if err != nil {
			return nil, fmt.Errorf("gzip writer: %w", err)
		}
		if _, err := writer.Write(data); err != nil {
			return nil, fmt.Errorf("gzip compress: %w", err)
		}
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("gzip flush: %w", err)
		}
		compressed = buffer.Bytes()

	case negotiate.Brotli:
		var buffer bytes.Buffer
		writer := brotli.NewWriterLevel(&buffer, brotli.BestCompression)
		if _, err := writer.Write(data); err != nil {
			return nil, fmt.Errorf("brotli compress: %w", err)
		}
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("brotli flush: %w", err)
		}
		compressed = buffer.Bytes()

	case negotiate.Zstd:
		compressed = zstdEncoder.EncodeAll(data, nil)

	default:
		return nil, fmt.Errorf("no encoder for %v", e)
	}

	if len(compressed) >= len(data) {
		return nil, errIncompressible
	}
	return compressed, nil
}

// errIncompressible is returned by compress when the output would not
// be smaller than the input. The caller skips that sibling and lets
// the identity variant serve those clients.
var errIncompressible = errors.New("data is incompressible")

// IsIncompressible returns true if the error indicates that data
// could not be compressed smaller than its original size.
func IsIncompressible(err error) bool {
	return errors.Is(err, errIncompressible)
}
