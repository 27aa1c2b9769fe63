// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package locator

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnresolvableArgument is reported in strict mode when a required
	// parameter has no type match, no name match and no default.
	ErrUnresolvableArgument = errors.New("unresolvable argument")
	// ErrArgumentType is reported when a resolved value cannot be converted
	// to the parameter type.
	ErrArgumentType = errors.New("argument type mismatch")
	// ErrServiceNotFound is reported when no service is registered under a name.
	ErrServiceNotFound = errors.New("service not found")
	// ErrCircularDependency is reported when a service factory depends on itself.
	ErrCircularDependency = errors.New("circular dependency")
	// ErrServiceNotModifiable is reported on an attempt to replace or remove
	// a service that was not registered as modifiable.
	ErrServiceNotModifiable = errors.New("service not modifiable")
	// ErrUnknownFactory is reported when a factory key is not registered.
	ErrUnknownFactory = errors.New("unknown factory")
	// ErrUnknownMethod is reported when a factory product lacks the dispatched method.
	ErrUnknownMethod = errors.New("unknown method")
	// ErrSubstitution is reported when a factory key placeholder cannot be filled.
	ErrSubstitution = errors.New("factory key substitution failed")
	// ErrUnexpectedType is reported by Validate when a service has the wrong type.
	ErrUnexpectedType = errors.New("unexpected service type")
)

// ArgumentError describes a parameter that could not be bound.
type ArgumentError struct {
	Callable string
	Param    string
	Reason   string
	Err      error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("locator: parameter %q of %s: %s", e.Param, e.Callable, e.Reason)
}

func (e *ArgumentError) Unwrap() error { return e.Err }

// ServiceNotFoundError represents a lookup of an unregistered service.
type ServiceNotFoundError struct {
	Name string
}

func (e *ServiceNotFoundError) Error() string {
	return fmt.Sprintf("locator: service %q was not located", e.Name)
}

// Is reports whether target is ErrServiceNotFound.
func (e *ServiceNotFoundError) Is(target error) bool { return target == ErrServiceNotFound }

// CircularDependencyError represents a factory resolution cycle.
type CircularDependencyError struct {
	Chain []string
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("locator: recursion detected when resolving %s", strings.Join(e.Chain, " -> "))
}

// Is reports whether target is ErrCircularDependency.
func (e *CircularDependencyError) Is(target error) bool { return target == ErrCircularDependency }

// NotModifiableError represents a write to a locked service.
type NotModifiableError struct {
	Name string
}

func (e *NotModifiableError) Error() string {
	return fmt.Sprintf("locator: service %q is already set and is not modifiable", e.Name)
}

// Is reports whether target is ErrServiceNotModifiable.
func (e *NotModifiableError) Is(target error) bool { return target == ErrServiceNotModifiable }

// FactoryError represents a failure to build a dispatch target from a factory key.
type FactoryError struct {
	Key    string
	Method string
	Err    error
}

func (e *FactoryError) Error() string {
	if e.Method != "" {
		return fmt.Sprintf("locator: factory %q->%s: %v", e.Key, e.Method, e.Err)
	}
	return fmt.Sprintf("locator: factory %q: %v", e.Key, e.Err)
}

func (e *FactoryError) Unwrap() error { return e.Err }

// InitializationError represents a service factory failure.
type InitializationError struct {
	Name string
	Err  error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("locator: initialization failed for service %q: %v", e.Name, e.Err)
}

func (e *InitializationError) Unwrap() error { return e.Err }

// TypeMismatchError represents a service failing Validate.
type TypeMismatchError struct {
	Name     string
	Expected string
	Got      string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("locator: %s was found, but was not of type %s (got %s)", e.Name, e.Expected, e.Got)
}

// Is reports whether target is ErrUnexpectedType.
func (e *TypeMismatchError) Is(target error) bool { return target == ErrUnexpectedType }
