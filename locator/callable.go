// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package locator binds call-time parameters and services to the formal
// parameters of Go functions.
//
// Go keeps no parameter names at run time, so a callable is described by an
// explicit signature: the function value plus the names of its parameters,
// in declaration order, and optional defaults.
//
//	show := locator.Func(func(id int, tab string) string {
//		return fmt.Sprintf("%d/%s", id, tab)
//	}, "id", "tab").Default("tab", "home")
//
// Arguments are resolved per parameter, in declaration order:
//
//  1. a parameter whose type is not a scalar is looked up by type;
//  2. otherwise, or when the type lookup misses, it is looked up by name;
//  3. then its default is used;
//  4. then resolution fails (Strict) or binds the zero value (Permissive).
//
// Values found by name are converted to the parameter type when needed, so
// the string "42" binds to an int parameter.
package locator

import (
	"fmt"
	"reflect"
	"runtime"
	"sync"
)

// Param describes one formal parameter of a callable.
type Param struct {
	Name       string
	Type       reflect.Type
	Default    any
	HasDefault bool
}

// Constrained reports whether the parameter takes part in type-directed
// lookup. Scalars and the empty interface carry no useful type identity.
func (p Param) Constrained() bool { return isConstrainedType(p.Type) }

func isConstrainedType(t reflect.Type) bool {
	if t == nil {
		return false
	}
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128,
		reflect.String:
		return false
	case reflect.Interface:
		return t.NumMethod() > 0
	}
	return true
}

// Callable is a function value together with its signature descriptor.
// A Callable is immutable once built, apart from Default and Named which
// are meant for construction chains.
type Callable struct {
	fn       reflect.Value
	name     string
	params   []Param
	variadic bool
}

// signatureCache maps a func type to its parameter types.
var signatureCache sync.Map

func paramTypes(t reflect.Type) []reflect.Type {
	if cached, ok := signatureCache.Load(t); ok {
		return cached.([]reflect.Type)
	}
	types := make([]reflect.Type, t.NumIn())
	for i := range types {
		types[i] = t.In(i)
	}
	actual, _ := signatureCache.LoadOrStore(t, types)
	return actual.([]reflect.Type)
}

// Func describes fn, naming its parameters in declaration order.
// Trailing parameters may be left unnamed; they can then only be
// resolved by type.
//
// Func panics if fn is not a non-nil function or if more names than
// parameters are given.
func Func(fn any, names ...string) *Callable {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		panic(fmt.Sprintf("locator: %T is not a function", fn))
	}
	return newCallable(v, funcName(v), names)
}

func newCallable(v reflect.Value, name string, names []string) *Callable {
	t := v.Type()
	types := paramTypes(t)
	if len(names) > len(types) {
		panic(fmt.Sprintf("locator: %d names given for %s, which takes %d parameters", len(names), name, len(types)))
	}
	c := &Callable{
		fn:       v,
		name:     name,
		params:   make([]Param, len(types)),
		variadic: t.IsVariadic(),
	}
	for i, pt := range types {
		c.params[i].Type = pt
		if i < len(names) {
			c.params[i].Name = names[i]
		}
	}
	return c
}

func funcName(v reflect.Value) string {
	if f := runtime.FuncForPC(v.Pointer()); f != nil {
		return f.Name()
	}
	return v.Type().String()
}

// Default declares the value bound to the named parameter when neither
// its type nor its name resolve. It panics if no parameter has that name.
func (c *Callable) Default(name string, value any) *Callable {
	for i := range c.params {
		if c.params[i].Name == name {
			c.params[i].Default = value
			c.params[i].HasDefault = true
			return c
		}
	}
	panic(fmt.Sprintf("locator: %s has no parameter named %q", c.name, name))
}

// Named overrides the name used for the callable in errors and logs.
func (c *Callable) Named(name string) *Callable {
	c.name = name
	return c
}

// Name returns the callable name.
func (c *Callable) Name() string { return c.name }

// Params returns a copy of the signature descriptor.
func (c *Callable) Params() []Param { return append([]Param(nil), c.params...) }

// NumOut returns the number of results of the callable.
func (c *Callable) NumOut() int { return c.fn.Type().NumOut() }

func (c *Callable) String() string { return c.name }

// Call invokes the callable positionally. A nil argument stands for the
// zero value of its parameter. Arguments must be assignable to their
// parameter types, as ResolveArguments produces them.
func (c *Callable) Call(args []any) (any, error) {
	if len(args) != len(c.params) {
		return nil, fmt.Errorf("locator: %s takes %d arguments, %d given", c.name, len(c.params), len(args))
	}
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		if a == nil {
			in[i] = reflect.Zero(c.params[i].Type)
		} else {
			in[i] = reflect.ValueOf(a)
		}
	}
	var out []reflect.Value
	if c.variadic {
		out = c.fn.CallSlice(in)
	} else {
		out = c.fn.Call(in)
	}
	return splitResults(out)
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// splitResults returns the first non-error result and a trailing error result.
func splitResults(out []reflect.Value) (result any, err error) {
	n := len(out)
	if n > 0 && out[n-1].Type() == errorType {
		if !out[n-1].IsNil() {
			err = out[n-1].Interface().(error)
		}
		n--
	}
	if n > 0 {
		result = out[0].Interface()
	}
	return result, err
}
