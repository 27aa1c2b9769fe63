// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package app

import (
	"context"
	"reflect"
	"slices"

	"github.com/cnotch/pframe/locator"
)

type nullifyResult struct{}

// NullifyResult, returned by a callback, clears the result of the current scope.
var NullifyResult any = nullifyResult{}

type scope struct {
	name   string
	params map[string]any
}

// State is the state of one application run: a stack of scopes, each with
// its parameters, and the result recorded for each scope name.
//
// State is the argument bag of callbacks and dispatch targets. Lookups by
// name search the scope parameters innermost first, then the services.
// A *State parameter receives the state itself and a context.Context
// parameter the context of the current scope.
type State struct {
	services *locator.ServiceLocator
	runID    string
	ctx      context.Context

	scopes   []scope
	previous []string
	results  map[string]any
}

var (
	_ locator.Bag = (*State)(nil)

	stateType   = reflect.TypeOf((*State)(nil))
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
)

// NewState returns an empty state backed by services.
func NewState(ctx context.Context, services *locator.ServiceLocator, runID string) *State {
	if ctx == nil {
		ctx = context.Background()
	}
	return &State{
		services: services,
		runID:    runID,
		ctx:      ctx,
		results:  make(map[string]any),
	}
}

// RunID returns the identifier of the run the state belongs to.
func (s *State) RunID() string { return s.runID }

// Context returns the context of the current scope.
func (s *State) Context() context.Context { return s.ctx }

// PushScope enters a scope.
func (s *State) PushScope(name string, params map[string]any) {
	s.scopes = append(s.scopes, scope{name: name, params: params})
}

// PopScope leaves the current scope, records it as previous and returns
// its name.
func (s *State) PopScope() string {
	n := len(s.scopes)
	if n == 0 {
		return ""
	}
	name := s.scopes[n-1].name
	s.scopes = s.scopes[:n-1]
	s.previous = append(s.previous, name)
	return name
}

// Scope returns the name of the current scope, "" outside any scope.
func (s *State) Scope() string {
	if n := len(s.scopes); n > 0 {
		return s.scopes[n-1].name
	}
	return ""
}

// ScopeParams returns the parameters of the current scope.
func (s *State) ScopeParams() map[string]any {
	if n := len(s.scopes); n > 0 {
		return s.scopes[n-1].params
	}
	return nil
}

// Scopes returns the open scopes, innermost first.
func (s *State) Scopes() []string {
	names := make([]string, len(s.scopes))
	for i, sc := range s.scopes {
		names[len(s.scopes)-1-i] = sc.name
	}
	return names
}

// HasPreviousScope reports whether a scope named name was left already.
func (s *State) HasPreviousScope(name string) bool { return slices.Contains(s.previous, name) }

// PreviousScopes returns the scopes left so far, most recent first.
func (s *State) PreviousScopes() []string {
	names := slices.Clone(s.previous)
	slices.Reverse(names)
	return names
}

// SetResult records the result of the current scope.
func (s *State) SetResult(v any) {
	s.results[s.Scope()] = v
}

// Result returns the result recorded for the named scope, or for the
// current scope when name is "".
func (s *State) Result(name string) any {
	if name == "" {
		name = s.Scope()
	}
	return s.results[name]
}

// Named implements locator.Bag.
func (s *State) Named(name string) (any, bool) {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if v, ok := s.scopes[i].params[name]; ok && v != nil {
			return v, true
		}
	}
	if s.services != nil {
		return s.services.Named(name)
	}
	return nil, false
}

// Typed implements locator.Bag.
func (s *State) Typed(t reflect.Type) (any, bool) {
	switch t {
	case stateType:
		return s, true
	case contextType:
		return s.ctx, true
	}
	if s.services != nil {
		return s.services.Typed(t)
	}
	return nil, false
}
