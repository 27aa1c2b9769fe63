// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pframe

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/cnotch/pframe/locator"
)

// wildcardName is the parameter a '*' captures into.
const wildcardName = "wildcard"

// HTTPRoute matches the path of an http request against a path template.
//
// The syntax of the spec string is as follows:
//
//	Spec       = [ Methods " " ] Path
//	Methods    = METHOD { "," METHOD }
//	Path       = { Literal | Parameter | Optional | "*" }
//	Optional   = "[" Path "]"
//	Parameter  = ":" Name [ "#" Regexp [ "#" ] ] [ "{" Delimiters "}" ] [ ":" ]
//
// A parameter matches one or more characters up to the next '/', or up to
// any of its delimiters when given. An inline regexp validates the value.
// A '*' matches the rest of the path into the "wildcard" parameter.
//
// Examples:
//
//	/users/:id#^\d+$
//	GET,HEAD /users/:id[/:tab]
//	/files/:name{.}.:ext
//	/static/*
type HTTPRoute struct {
	spec    string
	path    string
	methods []string
	tokens  []token

	re          *regexp.Regexp
	groups      []string // parameter name per capture group
	hasWildcard bool

	dispatchable  *locator.Dispatchable
	defaults      map[string]any
	validators    map[string][]Validator
	trailingSlash bool
}

// NewHTTPRoute compiles an http route spec.
func NewHTTPRoute(spec string, d *locator.Dispatchable, opts ...RouteOption) (*HTTPRoute, error) {
	o, err := newRouteOptions(opts)
	if err != nil {
		return nil, err
	}

	methods, path := splitMethods(spec)
	tokens, err := parseSpec(httpParser(0), path)
	if err != nil {
		return nil, err
	}

	r := &HTTPRoute{
		spec:          spec,
		path:          path,
		methods:       methods,
		tokens:        tokens,
		dispatchable:  d,
		defaults:      o.defaults,
		validators:    o.validators,
		trailingSlash: !o.noTrailingSlash,
	}
	if err = r.compile(); err != nil {
		return nil, err
	}
	return r, nil
}

// splitMethods splits the "GET,POST /path" form at the first " /".
func splitMethods(spec string) (methods []string, path string) {
	i := strings.Index(spec, " /")
	if i < 0 {
		return nil, spec
	}
	for _, m := range strings.Split(spec[:i], ",") {
		if m = strings.TrimSpace(m); m != "" {
			methods = append(methods, m)
		}
	}
	return methods, spec[i+1:]
}

// compile translates the tokens into an anchored regular expression and
// registers inline validators.
func (r *HTTPRoute) compile() error {
	var b strings.Builder
	b.WriteString("^")
	for _, t := range r.tokens {
		switch t.kind {
		case tokenLiteral:
			b.WriteString(regexp.QuoteMeta(t.text))
		case tokenParameter:
			if t.delimiters == "" {
				b.WriteString("([^/]+)")
			} else {
				b.WriteString("([^")
				b.WriteString(quoteClass(t.delimiters))
				b.WriteString("]+)")
			}
			r.groups = append(r.groups, t.text)
			if t.validator != "" {
				v, err := ParseValidator(t.validator)
				if err != nil {
					return &RouteSpecError{Spec: r.spec, Pos: strings.Index(r.spec, t.validator), Reason: err.Error()}
				}
				r.validators[t.text] = append(r.validators[t.text], v)
			}
		case tokenOptionalStart:
			b.WriteString("(?:")
		case tokenOptionalEnd:
			b.WriteString(")?")
		case tokenWildcard:
			b.WriteString("(.*)")
			r.groups = append(r.groups, t.text)
			r.hasWildcard = true
		}
	}
	if r.impliesTrailingSlash() {
		b.WriteString("/?")
	}
	b.WriteString("$")

	re, err := regexp.Compile(b.String())
	if err != nil {
		return &RouteSpecError{Spec: r.spec, Pos: 0, Reason: fmt.Sprintf("cannot compile %q: %v", b.String(), err)}
	}
	r.re = re
	return nil
}

// quoteClass escapes chars that are special inside a bracket expression.
func quoteClass(chars string) string {
	var b strings.Builder
	for _, c := range chars {
		if strings.ContainsRune(`\]^-[`, c) {
			b.WriteByte('\\')
		}
		b.WriteRune(c)
	}
	return b.String()
}

func (r *HTTPRoute) impliesTrailingSlash() bool { return r.trailingSlash && !r.hasWildcard }

// Spec implements Route.
func (r *HTTPRoute) Spec() string { return r.spec }

// Dispatchable implements Route.
func (r *HTTPRoute) Dispatchable() *locator.Dispatchable { return r.dispatchable }

// Path returns the path template, method restriction excluded.
func (r *HTTPRoute) Path() string { return r.path }

// Methods returns the methods the route is restricted to, nil for any.
func (r *HTTPRoute) Methods() []string { return append([]string(nil), r.methods...) }

// Match implements Route. Only http sources can match.
func (r *HTTPRoute) Match(src Source) (Params, bool) {
	hs, ok := src.(*HTTPSource)
	if !ok || hs == nil {
		return nil, false
	}
	if len(r.methods) > 0 && !slices.Contains(r.methods, hs.Method()) {
		return nil, false
	}
	return r.MatchPath(hs.URI())
}

// MatchPath matches a request uri; the query, if any, is ignored.
func (r *HTTPRoute) MatchPath(uri string) (Params, bool) {
	path := uri
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if r.impliesTrailingSlash() && !strings.HasSuffix(path, "/") {
		path += "/"
	}

	m := r.re.FindStringSubmatch(path)
	if m == nil {
		return nil, false
	}

	ps := mergeParams(r.defaults, nil)
	for i, name := range r.groups {
		if v := m[i+1]; v != "" {
			ps[name] = v
		}
	}
	if !validate(r.validators, ps) {
		return nil, false
	}
	return ps, true
}

// Assemble implements Route. An optional segment is left out when a
// parameter anywhere inside it, nested segments included, is absent from
// ps; a missing parameter outside any optional segment is an error. A wildcard renders the "wildcard"
// parameter when given.
func (r *HTTPRoute) Assemble(ps Params) (string, error) {
	var path strings.Builder
	// one buffer and skip flag per open optional segment
	var (
		optional []string
		skip     []bool
	)
	write := func(s string) {
		if n := len(optional); n > 0 {
			optional[n-1] += s
		} else {
			path.WriteString(s)
		}
	}

	for _, t := range r.tokens {
		switch t.kind {
		case tokenLiteral:
			write(t.text)
		case tokenParameter:
			if !ps.Has(t.text) {
				if len(optional) == 0 {
					return "", &AssembleError{Spec: r.spec, Parameter: t.text}
				}
				// the enclosing segments depend on this one
				for j := range skip {
					skip[j] = true
				}
				continue
			}
			write(ps.ByName(t.text))
		case tokenWildcard:
			if ps.Has(t.text) {
				write(ps.ByName(t.text))
			}
		case tokenOptionalStart:
			optional = append(optional, "")
			skip = append(skip, false)
		case tokenOptionalEnd:
			n := len(optional) - 1
			segment, skipped := optional[n], skip[n]
			optional, skip = optional[:n], skip[:n]
			if !skipped {
				write(segment)
			}
		}
	}
	return path.String(), nil
}
