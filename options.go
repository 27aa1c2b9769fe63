// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pframe

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/cnotch/pframe/locator"
)

// Option represents all possible options to the New() function
type Option interface {
	apply(*Router)
}

type optionFunc func(*Router)

func (f optionFunc) apply(r *Router) {
	f(r)
}

// WithRouteStack creates the option to route over an existing stack
// instead of a new, empty one.
func WithRouteStack(s *RouteStack) Option {
	if s == nil {
		panic("router: nil route stack")
	}
	return optionFunc(func(r *Router) {
		r.stack = s
	})
}

// WithSource creates the option to set the source Route matches against.
func WithSource(src Source) Option {
	if src == nil {
		panic("router: nil source")
	}
	return optionFunc(func(r *Router) {
		r.source = src
	})
}

// WithLogger creates the option to log routing decisions.
func WithLogger(l *log.Logger) Option {
	if l == nil {
		panic("router: nil logger")
	}
	return optionFunc(func(r *Router) {
		r.logger = l
	})
}

// Handle creates the option to add a route, compiled from the given
// spec, under name. It panics on a malformed spec.
func Handle(name string, spec string, d *locator.Dispatchable, opts ...RouteOption) Option {
	rs, err := compileOption(spec, d, opts)
	if err != nil {
		panic(fmt.Errorf("router: %w", err))
	}
	return optionFunc(func(r *Router) {
		r.pending = append(r.pending, namedRoute{name, rs})
	})
}

// HandleFunc is a shortcut for Handle(name, spec, locator.Handler(fn, names...)).
func HandleFunc(name string, spec string, fn any, names ...string) Option {
	if fn == nil {
		panic("router: nil handler")
	}
	return Handle(name, spec, locator.Handler(fn, names...))
}

// GET is a shortcut for Handle(name, "GET "+path, d)
func GET(name string, path string, d *locator.Dispatchable, opts ...RouteOption) Option {
	return Handle(name, "GET "+path, d, opts...)
}

// POST is a shortcut for Handle(name, "POST "+path, d)
func POST(name string, path string, d *locator.Dispatchable, opts ...RouteOption) Option {
	return Handle(name, "POST "+path, d, opts...)
}

// PUT is a shortcut for Handle(name, "PUT "+path, d)
func PUT(name string, path string, d *locator.Dispatchable, opts ...RouteOption) Option {
	return Handle(name, "PUT "+path, d, opts...)
}

// DELETE is a shortcut for Handle(name, "DELETE "+path, d)
func DELETE(name string, path string, d *locator.Dispatchable, opts ...RouteOption) Option {
	return Handle(name, "DELETE "+path, d, opts...)
}

// Command is a shortcut for Handle(name, "$ "+spec, d)
func Command(name string, spec string, d *locator.Dispatchable, opts ...RouteOption) Option {
	return Handle(name, cliSigil+" "+spec, d, opts...)
}

func compileOption(spec string, d *locator.Dispatchable, opts []RouteOption) (Route, error) {
	if len(spec) > 0 && spec[0] == cliSigil[0] {
		return NewCLIRoute(spec, d, opts...)
	}
	return NewHTTPRoute(spec, d, opts...)
}
