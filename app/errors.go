// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package app

import (
	"errors"
	"fmt"

	"github.com/cnotch/pframe"
)

// Error types passed to Error callbacks as the "type" parameter.
const (
	ErrorUnroutable     = "__unroutable__"
	ErrorUndispatchable = "__undispatchable__"
	ErrorException      = "__exception__"
)

var (
	// ErrUnroutable is reported when no route matches and there is no
	// previous match to fall back to.
	ErrUnroutable = errors.New("unroutable request")
	// ErrUndispatchable is reported when the matched route has no dispatch
	// target or its target arguments cannot be resolved.
	ErrUndispatchable = errors.New("undispatchable route")
)

// UnroutableError describes a request no route matched.
type UnroutableError struct {
	Source pframe.SourceKind
}

func (e *UnroutableError) Error() string {
	return fmt.Sprintf("app: no route matches the %s request", e.Source)
}

// Is reports whether target is ErrUnroutable.
func (e *UnroutableError) Is(target error) bool { return target == ErrUnroutable }

// UndispatchableError describes a matched route without dispatch target,
// or whose target arguments cannot be resolved.
type UndispatchableError struct {
	Route string
	Err   error
}

func (e *UndispatchableError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("app: route %q cannot be dispatched: %v", e.Route, e.Err)
	}
	return fmt.Sprintf("app: route %q has nothing to dispatch", e.Route)
}

func (e *UndispatchableError) Unwrap() error { return e.Err }

// Is reports whether target is ErrUndispatchable.
func (e *UndispatchableError) Is(target error) bool { return target == ErrUndispatchable }

// CallbackError wraps the failure of a lifecycle callback.
type CallbackError struct {
	Event    string
	Callback string
	Err      error
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("app: %s callback %s: %v", e.Event, e.Callback, e.Err)
}

func (e *CallbackError) Unwrap() error { return e.Err }
