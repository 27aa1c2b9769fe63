// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pframe

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/cnotch/pframe/locator"
)

// RouteSpec is the declarative form of a route.
//
// A Spec starting with "$" declares a cli route, anything else an http
// route. Validators are given in the form ParseValidator accepts.
type RouteSpec struct {
	Spec                        string
	Dispatchable                *locator.Dispatchable
	Defaults                    map[string]any
	Validators                  map[string][]string
	WithoutImpliedTrailingSlash bool
}

// NewRoute compiles a declarative route spec.
func NewRoute(rs RouteSpec) (Route, error) {
	if strings.TrimSpace(rs.Spec) == "" {
		return nil, &RouteSpecError{Spec: rs.Spec, Reason: "empty route spec"}
	}

	var opts []RouteOption
	if len(rs.Defaults) > 0 {
		opts = append(opts, WithDefaults(rs.Defaults))
	}
	for name, specs := range rs.Validators {
		opts = append(opts, WithValidatorSpecs(name, specs...))
	}

	if strings.HasPrefix(rs.Spec, cliSigil) {
		return NewCLIRoute(rs.Spec, rs.Dispatchable, opts...)
	}
	if rs.WithoutImpliedTrailingSlash {
		opts = append(opts, WithoutImpliedTrailingSlash())
	}
	return NewHTTPRoute(rs.Spec, rs.Dispatchable, opts...)
}

// RouteStack is an ordered collection of named routes. Insertion order is
// match priority.
//
// A RouteStack is meant to be filled before routing starts; it is not
// safe for concurrent mutation.
type RouteStack struct {
	names  []string
	routes map[string]Route
}

// NewRouteStack returns an empty RouteStack.
func NewRouteStack() *RouteStack {
	return &RouteStack{routes: make(map[string]Route)}
}

// Set stores r under name and returns the name used. An empty name is
// replaced by "route-<n>", n being the number of routes stored plus one.
// Setting an existing name replaces the route in place, keeping its
// priority.
func (s *RouteStack) Set(name string, r Route) string {
	if r == nil {
		panic("router: nil route")
	}
	if name == "" {
		name = fmt.Sprintf("route-%d", len(s.names)+1)
	}
	if _, ok := s.routes[name]; !ok {
		s.names = append(s.names, name)
	}
	s.routes[name] = r
	return name
}

// Add compiles rs and stores it under name. See Set.
func (s *RouteStack) Add(name string, rs RouteSpec) (string, error) {
	r, err := NewRoute(rs)
	if err != nil {
		if name != "" {
			return "", fmt.Errorf("route %q: %w", name, err)
		}
		return "", err
	}
	return s.Set(name, r), nil
}

// NamedRouteSpec pairs a declarative route with its name, which may be empty.
type NamedRouteSpec struct {
	Name string
	RouteSpec
}

// AddAll adds routes in order. It stops at the first invalid route.
func (s *RouteStack) AddAll(routes ...NamedRouteSpec) error {
	for _, nr := range routes {
		if _, err := s.Add(nr.Name, nr.RouteSpec); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the route stored under name.
func (s *RouteStack) Get(name string) (Route, bool) {
	r, ok := s.routes[name]
	return r, ok
}

// Lookup is like Get but reports an unknown name as an error.
func (s *RouteStack) Lookup(name string) (Route, error) {
	if r, ok := s.routes[name]; ok {
		return r, nil
	}
	return nil, &UnknownRouteError{Name: name}
}

// Has reports whether a route is stored under name.
func (s *RouteStack) Has(name string) bool {
	_, ok := s.routes[name]
	return ok
}

// Remove deletes the named route.
func (s *RouteStack) Remove(name string) error {
	if _, ok := s.routes[name]; !ok {
		return &UnknownRouteError{Name: name}
	}
	delete(s.routes, name)
	s.names = slices.DeleteFunc(s.names, func(n string) bool { return n == name })
	return nil
}

// Len returns the number of routes.
func (s *RouteStack) Len() int { return len(s.names) }

// Names returns the route names in priority order.
func (s *RouteStack) Names() []string { return slices.Clone(s.names) }

// All iterates over the routes in priority order.
func (s *RouteStack) All() iter.Seq2[string, Route] {
	return func(yield func(string, Route) bool) {
		for _, name := range s.names {
			if !yield(name, s.routes[name]) {
				return
			}
		}
	}
}
