// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pframe

import "github.com/cnotch/pframe/locator"

// RouteMatch is the result of a successful routing: the route name, the
// route and the parameters it extracted, defaults merged in.
// A RouteMatch is never modified once returned.
type RouteMatch struct {
	name   string
	route  Route
	params Params
}

// NewRouteMatch returns a RouteMatch holding a copy of ps.
func NewRouteMatch(name string, r Route, ps Params) *RouteMatch {
	return &RouteMatch{name: name, route: r, params: ps.Clone()}
}

// Name returns the name of the matched route.
func (m *RouteMatch) Name() string { return m.name }

// Route returns the matched route.
func (m *RouteMatch) Route() Route { return m.route }

// Dispatchable returns the dispatch target of the matched route.
func (m *RouteMatch) Dispatchable() *locator.Dispatchable { return m.route.Dispatchable() }

// Params returns a copy of the matched parameters.
func (m *RouteMatch) Params() Params { return m.params.Clone() }

// Param returns the named parameter as a string.
func (m *RouteMatch) Param(name string) string { return m.params.ByName(name) }
