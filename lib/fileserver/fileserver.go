// Copyright 2026 The Staticd Authors
// SPDX-License-Identifier: Apache-2.0

package fileserver

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/bureau-foundation/staticd/lib/conditional"
	"github.com/bureau-foundation/staticd/lib/filecache"
	"github.com/bureau-foundation/staticd/lib/httprange"
	"github.com/bureau-foundation/staticd/lib/negotiate"
	"github.com/bureau-foundation/staticd/lib/urlpath"
)

// HandlerConfig configures a Handler.
type HandlerConfig struct {
	// Store supplies the cache snapshot for each request. Required.
	Store *filecache.Store

	// FallbackPath is the logical path substituted when a lookup
	// misses, empty to disable. Fallback responses carry
	// Cache-Control: no-cache so clients revalidate once the real
	// path exists.
	FallbackPath string

	// Logger receives one access line per request. Required.
	Logger *slog.Logger
}

// Handler serves cached files over HTTP. Safe for concurrent use.
type Handler struct {
	store    *filecache.Store
	fallback string
	logger   *slog.Logger
}

// NewHandler creates the serving handler.
func NewHandler(config HandlerConfig) *Handler {
	if config.Store == nil {
		panic("fileserver.Handler: Store is required")
	}
	if config.Logger == nil {
		panic("fileserver.Handler: Logger is required")
	}
	return &Handler{
		store:    config.Store,
		fallback: config.FallbackPath,
		logger:   config.Logger,
	}
}

// ServeHTTP runs the pipeline and transmits the resulting plan.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	p := h.plan(r)
	written, err := writePlan(w, r.Method, p)
	if err != nil {
		// The client went away mid-write. Nothing to recover.
		h.logger.Debug("response write aborted",
			"path", r.URL.Path, "error", err)
	}
	h.logger.Info("request",
		"method", r.Method,
		"path", r.URL.Path,
		"status", p.status,
		"bytes", written,
		"elapsed", time.Since(start))
}

// plan runs every pipeline stage for one request and assembles the
// response. All failures are converted to error plans here; nothing
// escapes to the caller.
func (h *Handler) plan(r *http.Request) plan {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		p := errorPlan(http.StatusMethodNotAllowed, "method not allowed")
		p.add("Allow", "GET, HEAD")
		return p
	}

	key, err := urlpath.Resolve(r.URL.EscapedPath())
	if errors.Is(err, urlpath.ErrForbidden) {
		return errorPlan(http.StatusForbidden, "forbidden")
	}
	if err != nil {
		return errorPlan(http.StatusBadRequest, "bad request")
	}

	snapshot := h.store.Current()
	file, ok := snapshot.Lookup(key)
	fallback := false
	if !ok && h.fallback != "" {
		file, ok = snapshot.Lookup(h.fallback)
		fallback = ok
	}
	if !ok {
		return errorPlan(http.StatusNotFound, "not found")
	}

	encoding, err := negotiate.Choose(
		negotiate.ParseAccept(r.Header.Get("Accept-Encoding")),
		file.Available())
	if err != nil {
		p := errorPlan(http.StatusNotAcceptable, "no acceptable encoding")
		p.add("Vary", "Accept-Encoding")
		return p
	}
	variant := file.Variant(encoding)

	if notModified(r, variant.ETag, file.LastModified) {
		return notModifiedPlan(file, variant, fallback)
	}

	// Ranges apply to GET only; HEAD still advertises Accept-Ranges
	// through the full-body plan.
	if r.Method == http.MethodGet {
		if rangeHeader := r.Header.Get("Range"); rangeHeader != "" &&
			conditional.MatchIfRange(r.Header.Get("If-Range"), variant.ETag, file.LastModified) {
			span, err := httprange.Parse(rangeHeader, int64(len(variant.Data)))
			switch {
			case err == nil:
				return filePlan(file, variant, &span, fallback)
			case errors.Is(err, httprange.ErrUnit):
				// A unit this server does not implement: serve the
				// full representation as if no Range was sent.
			default:
				return unsatisfiablePlan(file, variant, fallback)
			}
		}
	}

	return filePlan(file, variant, nil, fallback)
}

// notModified evaluates the conditional request headers against the
// selected variant. If-None-Match takes precedence; If-Modified-Since
// is consulted only when no If-None-Match was sent.
func notModified(r *http.Request, etag string, lastModified time.Time) bool {
	if inm := r.Header.Get("If-None-Match"); inm != "" {
		return conditional.MatchETag(inm, etag)
	}
	if ims := r.Header.Get("If-Modified-Since"); ims != "" {
		return !conditional.ModifiedSince(ims, lastModified)
	}
	return false
}
