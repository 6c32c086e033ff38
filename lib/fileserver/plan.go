// Copyright 2026 The Staticd Authors
// SPDX-License-Identifier: Apache-2.0

package fileserver

import (
	"net/http"
	"strconv"

	"github.com/bureau-foundation/staticd/lib/filecache"
	"github.com/bureau-foundation/staticd/lib/httprange"
	"github.com/bureau-foundation/staticd/lib/negotiate"
)

// headerField is one response header in assembly order.
type headerField struct {
	name  string
	value string
}

// plan is a fully assembled response: status, headers in a fixed
// order, body. The writer transmits it without further decisions.
// body is a slice of the cached variant buffer for file responses.
type plan struct {
	status  int
	headers []headerField
	body    []byte
}

func (p *plan) add(name, value string) {
	p.headers = append(p.headers, headerField{name: name, value: value})
}

// errorPlan builds a minimal text response for a rejected request.
func errorPlan(status int, detail string) plan {
	body := []byte(detail + "\n")
	p := plan{status: status, body: body}
	p.add("Content-Type", "text/plain; charset=utf-8")
	p.add("Content-Length", strconv.Itoa(len(body)))
	return p
}

// filePlan assembles a 200, or a 206 when span is non-nil, for the
// selected variant. Headers follow the fixed assembly order:
// Content-Type, Content-Length, Content-Encoding, Vary, ETag,
// Last-Modified, Accept-Ranges, Content-Range.
func filePlan(file *filecache.File, variant *filecache.Variant, span *httprange.Span, fallback bool) plan {
	p := plan{status: http.StatusOK, body: variant.Data}
	if span != nil {
		p.status = http.StatusPartialContent
		p.body = variant.Data[span.Start : span.End+1]
	}
	p.add("Content-Type", file.ContentType)
	p.add("Content-Length", strconv.Itoa(len(p.body)))
	if variant.Encoding != negotiate.Identity {
		p.add("Content-Encoding", variant.Encoding.String())
	}
	p.add("Vary", "Accept-Encoding")
	p.add("ETag", variant.ETag)
	p.add("Last-Modified", file.LastModified.UTC().Format(http.TimeFormat))
	p.add("Accept-Ranges", "bytes")
	if span != nil {
		p.add("Content-Range", span.ContentRange(int64(len(variant.Data))))
	}
	if fallback {
		p.add("Cache-Control", "no-cache")
	}
	return p
}

// notModifiedPlan assembles a 304: validators and Vary only, no
// content headers, no body.
func notModifiedPlan(file *filecache.File, variant *filecache.Variant, fallback bool) plan {
	p := plan{status: http.StatusNotModified}
	p.add("Vary", "Accept-Encoding")
	p.add("ETag", variant.ETag)
	p.add("Last-Modified", file.LastModified.UTC().Format(http.TimeFormat))
	if fallback {
		p.add("Cache-Control", "no-cache")
	}
	return p
}

// unsatisfiablePlan assembles a 416 for a range selecting no bytes of
// the variant: Content-Range carries the representation size, the
// body is empty.
func unsatisfiablePlan(file *filecache.File, variant *filecache.Variant, fallback bool) plan {
	p := plan{status: http.StatusRequestedRangeNotSatisfiable}
	p.add("Vary", "Accept-Encoding")
	p.add("ETag", variant.ETag)
	p.add("Last-Modified", file.LastModified.UTC().Format(http.TimeFormat))
	p.add("Accept-Ranges", "bytes")
	p.add("Content-Range", httprange.UnsatisfiableContentRange(int64(len(variant.Data))))
	if fallback {
		p.add("Cache-Control", "no-cache")
	}
	return p
}

// writePlan transmits a plan. Headers are set in plan order; HEAD
// suppresses the body but keeps Content-Length. Returns the number of
// body bytes written and the first write error, which is how client
// disconnects surface.
func writePlan(w http.ResponseWriter, method string, p plan) (int, error) {
	header := w.Header()
	for _, field := range p.headers {
		header.Set(field.name, field.value)
	}
	w.WriteHeader(p.status)
	if method == http.MethodHead || len(p.body) == 0 {
		return 0, nil
	}
	return w.Write(p.body)
}
