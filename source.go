// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pframe

import (
	"bytes"
	"io"
	"net/http"
	"sync"
)

// SourceKind identifies the kind of request a Source describes.
type SourceKind uint8

// Source kinds
const (
	SourceHTTP SourceKind = iota + 1
	SourceCLI
)

func (k SourceKind) String() string {
	switch k {
	case SourceHTTP:
		return "http"
	case SourceCLI:
		return "cli"
	}
	return "unknown"
}

// Source supplies the pre-parsed request facts routes are matched against.
// Routes never mutate a Source.
type Source interface {
	Kind() SourceKind
}

var (
	_ Source = (*HTTPSource)(nil)
	_ Source = (*CLISource)(nil)
)

// HTTPSource holds the facts of an http request.
type HTTPSource struct {
	method   string
	uri      string
	protocol string
	header   http.Header

	bodyOnce sync.Once
	bodyFn   func() ([]byte, error)
	body     []byte
	bodyErr  error
}

// NewHTTPSource returns an HTTPSource for the given method, request uri
// (path plus optional query) and headers.
func NewHTTPSource(method, uri string, headers map[string]string) *HTTPSource {
	h := make(http.Header, len(headers))
	for name, value := range headers {
		h.Set(name, value)
	}
	return &HTTPSource{method: method, uri: uri, protocol: "HTTP/1.1", header: h}
}

// NewHTTPSourceFromRequest captures the facts of r. The body is read
// lazily, on the first call to Body.
func NewHTTPSourceFromRequest(r *http.Request) *HTTPSource {
	src := &HTTPSource{
		method:   r.Method,
		uri:      r.URL.RequestURI(),
		protocol: r.Proto,
		header:   r.Header.Clone(),
	}
	if r.Body != nil {
		body := r.Body
		src.bodyFn = func() ([]byte, error) {
			defer body.Close()
			return io.ReadAll(body)
		}
	}
	return src
}

// WithBody sets the body returned by Body.
func (s *HTTPSource) WithBody(body []byte) *HTTPSource {
	b := bytes.Clone(body)
	s.bodyFn = func() ([]byte, error) { return b, nil }
	return s
}

// Kind implements Source.
func (s *HTTPSource) Kind() SourceKind { return SourceHTTP }

// Method returns the request method.
func (s *HTTPSource) Method() string { return s.method }

// URI returns the request uri, query included.
func (s *HTTPSource) URI() string { return s.uri }

// Protocol returns the request protocol.
func (s *HTTPSource) Protocol() string { return s.protocol }

// Headers returns a copy of the request headers.
func (s *HTTPSource) Headers() http.Header { return s.header.Clone() }

// Header returns the first value of the named header, matched case-insensitively.
func (s *HTTPSource) Header(name string) string { return s.header.Get(name) }

// Body returns the request body, reading it at most once.
func (s *HTTPSource) Body() ([]byte, error) {
	s.bodyOnce.Do(func() {
		if s.bodyFn != nil {
			s.body, s.bodyErr = s.bodyFn()
		}
	})
	return s.body, s.bodyErr
}

// CLISource holds the argument vector of a command line invocation,
// program name excluded.
type CLISource struct {
	args []string
}

// NewCLISource returns a CLISource for args.
func NewCLISource(args []string) *CLISource {
	return &CLISource{args: append([]string(nil), args...)}
}

// Kind implements Source.
func (s *CLISource) Kind() SourceKind { return SourceCLI }

// Arguments returns a copy of the argument vector.
func (s *CLISource) Arguments() []string { return append([]string(nil), s.args...) }
