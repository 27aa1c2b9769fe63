// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package locator

import (
	"fmt"
	"reflect"
)

// Mode selects what happens to a parameter nothing resolves.
type Mode uint8

// Resolution modes
const (
	// Strict fails with ErrUnresolvableArgument.
	Strict Mode = iota
	// Permissive binds the zero value of the parameter type.
	Permissive
)

func (m Mode) String() string {
	if m == Permissive {
		return "permissive"
	}
	return "strict"
}

// ResolveArguments builds the positional argument list of c from bag.
func ResolveArguments(c *Callable, bag Bag, mode Mode) ([]any, error) {
	args := make([]any, len(c.params))
	for i, p := range c.params {
		v, err := resolveArgument(c, p, bag, mode)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

func resolveArgument(c *Callable, p Param, bag Bag, mode Mode) (any, error) {
	if bag != nil {
		if p.Constrained() {
			v, ok := bag.Typed(p.Type)
			if err := lookupError(v); err != nil {
				return nil, &ArgumentError{Callable: c.name, Param: paramLabel(p), Reason: err.Error(), Err: err}
			}
			if ok && v != nil && reflect.TypeOf(v).AssignableTo(p.Type) {
				return v, nil
			}
		}
		if p.Name != "" {
			v, ok := bag.Named(p.Name)
			if err := lookupError(v); err != nil {
				return nil, &ArgumentError{Callable: c.name, Param: p.Name, Reason: err.Error(), Err: err}
			}
			if ok {
				out, err := Coerce(v, p.Type)
				if err != nil {
					return nil, &ArgumentError{Callable: c.name, Param: p.Name, Reason: err.Error(), Err: err}
				}
				return out, nil
			}
		}
	}
	if p.HasDefault {
		out, err := Coerce(p.Default, p.Type)
		if err != nil {
			return nil, &ArgumentError{Callable: c.name, Param: p.Name, Reason: "default: " + err.Error(), Err: err}
		}
		return out, nil
	}
	if mode == Permissive {
		return nil, nil
	}
	return nil, &ArgumentError{
		Callable: c.name,
		Param:    paramLabel(p),
		Reason:   "no value by type, name or default",
		Err:      ErrUnresolvableArgument,
	}
}

// lookupFailure carries an error out of a Bag lookup, so that a service
// factory failure surfaces instead of reading as a miss.
type lookupFailure struct{ err error }

func lookupError(v any) error {
	if f, ok := v.(lookupFailure); ok {
		return f.err
	}
	return nil
}

func paramLabel(p Param) string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("<%s>", p.Type)
}
