// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package pframe provides the routing core of a small web and command line
// application framework.
//
// A trivial example is:
//
//	package main
//
//	import (
//	    "fmt"
//	    "os"
//
//	    "github.com/cnotch/pframe"
//	    "github.com/cnotch/pframe/locator"
//	)
//
//	func main() {
//	    router := pframe.New(
//	        pframe.HandleFunc("user", "GET /users/:id#^\\d+$[/:tab]", func(id int, tab string) string {
//	            return fmt.Sprintf("user #%d, tab %s", id, tab)
//	        }, "id", "tab"),
//	        pframe.Command("deploy", "deploy :env -force", locator.Handler(func(env string, force []string) string {
//	            return fmt.Sprintf("deploying %s %v", env, force)
//	        }, "env", "force")),
//	        pframe.WithSource(pframe.NewCLISource(os.Args[1:])),
//	    )
//
//	    if m, ok := router.Route(); ok {
//	        out, err := locator.New().Invoke(m.Dispatchable(), m.Params(), locator.Strict)
//	        fmt.Println(out, err)
//	    }
//	}
//
// Http route specs can contain the following parts:
//
//	Syntax                      Type
//	GET,POST /path              method restriction
//	:name                       named parameter, up to the next '/'
//	:name{-.}                   named parameter, up to the next '-' or '.'
//	:name#regexp#               named parameter validated by a regular expression
//	[...]                       optional segment
//	*                           wildcard, the rest of the path as "wildcard"
//
// Cli route specs start with '$' and are made of words, :params,
// optional :params? and -options, see CLIRoute.
//
// Matching priority is insertion order: on the example below the router
// tests /users/list first, then /users/:id.
//
//	r := pframe.New(
//	    pframe.HandleFunc("list", "/users/list", list),
//	    pframe.HandleFunc("show", "/users/:id", show, "id"),
//	)
//
// Unless disabled, a route without wildcard treats "/path" and "/path/"
// alike:
//
//	Spec: /blog/:category/:post
//
//	Requests:
//	 /blog/go/request-routers            match: category="go", post="request-routers"
//	 /blog/go/request-routers/           match: category="go", post="request-routers"
//	 /blog/go/                           no match
//	 /blog/go/request-routers/comments   no match
//
// Routes can be assembled back into paths; optional segments whose
// parameters are missing are left out:
//
//	Spec: /users/:id[/:tab]
//
//	Assemble({id: 5})               /users/5
//	Assemble({id: 5, tab: posts})   /users/5/posts
package pframe

import (
	"io"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

// UseLastMatch is the route name Assemble resolves to the last matched route.
const UseLastMatch = "\x00lastRouteMatch"

type namedRoute struct {
	name  string
	route Route
}

// Router matches sources against a RouteStack in priority order and
// remembers the last match.
//
// NOTES: The zero value for Router is not available,
// it must be created with call New() function.
type Router struct {
	stack   *RouteStack
	source  Source
	logger  *log.Logger
	last    atomic.Pointer[RouteMatch]
	pending []namedRoute
}

// New returns a new Router, which is initialized with the given options.
func New(options ...Option) *Router {
	r := &Router{
		stack:  NewRouteStack(),
		logger: log.New(io.Discard),
	}
	for _, opt := range options {
		opt.apply(r)
	}
	for _, nr := range r.pending {
		r.stack.Set(nr.name, nr.route)
	}
	r.pending = nil
	return r
}

// RouteStack returns the routes of the router.
func (r *Router) RouteStack() *RouteStack { return r.stack }

// Source returns the source Route matches against.
func (r *Router) Source() Source { return r.source }

// SetSource replaces the source Route matches against.
func (r *Router) SetSource(src Source) { r.source = src }

// Route matches the router source. See RouteSource.
func (r *Router) Route() (*RouteMatch, bool) {
	if r.source == nil {
		r.logger.Warn("no source to route")
		return nil, false
	}
	return r.RouteSource(r.source)
}

// RouteSource tries each route in priority order; the first match wins
// and becomes the last match. A miss leaves the last match untouched.
func (r *Router) RouteSource(src Source) (*RouteMatch, bool) {
	for name, route := range r.stack.All() {
		ps, ok := route.Match(src)
		if !ok {
			continue
		}
		m := NewRouteMatch(name, route, ps)
		r.last.Store(m)
		r.logger.Debug("route matched", "route", name, "spec", route.Spec())
		return m, true
	}
	r.logger.Debug("no route matched", "source", src.Kind())
	return nil, false
}

// Match matches src against the named route only, without touching the
// last match.
func (r *Router) Match(name string, src Source) (Params, bool, error) {
	route, err := r.stack.Lookup(name)
	if err != nil {
		return nil, false, err
	}
	ps, ok := route.Match(src)
	return ps, ok, nil
}

// LastMatch returns the most recent match, nil before the first one.
func (r *Router) LastMatch() *RouteMatch { return r.last.Load() }

// SetLastMatch replaces the most recent match.
func (r *Router) SetLastMatch(m *RouteMatch) { r.last.Store(m) }

// Assemble builds the path of the named route from ps. The name
// UseLastMatch stands for the last matched route.
func (r *Router) Assemble(name string, ps Params) (string, error) {
	if name == UseLastMatch {
		m := r.last.Load()
		if m == nil {
			return "", ErrNoLastMatch
		}
		name = m.Name()
	}
	route, err := r.stack.Lookup(name)
	if err != nil {
		return "", err
	}
	return route.Assemble(ps)
}

// AssembleMatch builds the path of the last matched route from ps.
func (r *Router) AssembleMatch(ps Params) (string, error) {
	return r.Assemble(UseLastMatch, ps)
}

// ReassembleMatch builds the path of the last matched route from its
// matched parameters overlaid with ps.
func (r *Router) ReassembleMatch(ps Params) (string, error) {
	m := r.last.Load()
	if m == nil {
		return "", ErrNoLastMatch
	}
	return r.Assemble(m.Name(), mergeParams(m.params, ps))
}
