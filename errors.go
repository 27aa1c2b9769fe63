// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pframe

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRouteSpec is reported when a route spec violates the grammar.
	ErrMalformedRouteSpec = errors.New("malformed route spec")
	// ErrMissingAssembleParameter is reported when a required parameter is absent on assemble.
	ErrMissingAssembleParameter = errors.New("missing assemble parameter")
	// ErrUnknownRouteName is reported when a route name is not in the route stack.
	ErrUnknownRouteName = errors.New("unknown route name")
	// ErrNoLastMatch is reported when the last route match is requested before any match.
	ErrNoLastMatch = errors.New("no last route match")
	// ErrNotAssemblable is reported by routes that cannot be turned back into a path.
	ErrNotAssemblable = errors.New("route cannot be assembled")
)

// RouteSpecError describes a grammar violation in a route spec.
type RouteSpecError struct {
	Spec   string
	Pos    int
	Reason string
}

func (e *RouteSpecError) Error() string {
	return fmt.Sprintf("router: %s at %d - %q", e.Reason, e.Pos, e.Spec)
}

// Is reports whether target is ErrMalformedRouteSpec.
func (e *RouteSpecError) Is(target error) bool { return target == ErrMalformedRouteSpec }

// AssembleError is reported when a required parameter is missing on assemble.
type AssembleError struct {
	Spec      string
	Parameter string
}

func (e *AssembleError) Error() string {
	return fmt.Sprintf("router: missing parameter %q to assemble %q", e.Parameter, e.Spec)
}

// Is reports whether target is ErrMissingAssembleParameter.
func (e *AssembleError) Is(target error) bool { return target == ErrMissingAssembleParameter }

// UnknownRouteError is reported when a route is looked up by a name that was never added.
type UnknownRouteError struct {
	Name string
}

func (e *UnknownRouteError) Error() string {
	return fmt.Sprintf("router: unknown route name %q", e.Name)
}

// Is reports whether target is ErrUnknownRouteName.
func (e *UnknownRouteError) Is(target error) bool { return target == ErrUnknownRouteName }
