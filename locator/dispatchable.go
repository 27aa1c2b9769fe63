// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package locator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/cast"
)

// Kind tells how a Dispatchable reaches its target.
type Kind uint8

// Dispatchable kinds
const (
	// KindFunc is a plain function.
	KindFunc Kind = iota + 1
	// KindMethod is a method bound to a receiver.
	KindMethod
	// KindFactory names a registered factory, and optionally a method of
	// the object it builds.
	KindFactory
)

func (k Kind) String() string {
	switch k {
	case KindFunc:
		return "func"
	case KindMethod:
		return "method"
	case KindFactory:
		return "factory"
	}
	return "invalid"
}

// Dispatchable is something that can be invoked with resolved arguments:
// a function, a bound method or a factory reference.
type Dispatchable struct {
	kind     Kind
	callable *Callable
	key      string
	method   string
	names    []string
}

// Handler returns a function dispatchable. See Func.
func Handler(fn any, names ...string) *Dispatchable {
	return FromCallable(Func(fn, names...))
}

// FromCallable returns a function dispatchable for c.
func FromCallable(c *Callable) *Dispatchable {
	if c == nil {
		panic("locator: nil callable")
	}
	return &Dispatchable{kind: KindFunc, callable: c}
}

// Method returns a dispatchable bound to the named method of recv.
// It panics if recv has no such exported method.
func Method(recv any, method string, names ...string) *Dispatchable {
	rv := reflect.ValueOf(recv)
	if !rv.IsValid() {
		panic("locator: nil receiver")
	}
	m := rv.MethodByName(method)
	if !m.IsValid() {
		panic(fmt.Sprintf("locator: %T has no method %s", recv, method))
	}
	name := fmt.Sprintf("%s.%s", rv.Type(), method)
	return &Dispatchable{
		kind:     KindMethod,
		callable: newCallable(m, name, names),
		method:   method,
	}
}

// Factory returns a dispatchable referring to the factory registered under
// key. With an empty method, dispatching calls the factory itself;
// otherwise the factory product is built and its method is called, its
// parameters named by names.
//
// The key may hold {name} placeholders, filled at dispatch time from
// scalar values of the argument bag.
func Factory(key, method string, names ...string) *Dispatchable {
	return &Dispatchable{
		kind:   KindFactory,
		key:    key,
		method: method,
		names:  append([]string(nil), names...),
	}
}

// ParseDispatchable parses the textual factory form used in route files:
//
//	key
//	key->Method
//	key->Method(name, other)
func ParseDispatchable(s string) (*Dispatchable, error) {
	s = strings.TrimSpace(s)
	key, rest, hasMethod := strings.Cut(s, "->")
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("locator: empty factory key in %q", s)
	}
	if !hasMethod {
		return Factory(key, ""), nil
	}

	rest = strings.TrimSpace(rest)
	method, args, hasArgs := strings.Cut(rest, "(")
	method = strings.TrimSpace(method)
	if method == "" {
		return nil, fmt.Errorf("locator: empty method name in %q", s)
	}
	var names []string
	if hasArgs {
		args, ok := strings.CutSuffix(strings.TrimSpace(args), ")")
		if !ok {
			return nil, fmt.Errorf("locator: unterminated argument list in %q", s)
		}
		for _, name := range strings.Split(args, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				if strings.TrimSpace(args) == "" {
					break
				}
				return nil, fmt.Errorf("locator: empty argument name in %q", s)
			}
			names = append(names, name)
		}
	}
	return Factory(key, method, names...), nil
}

// MustParseDispatchable is like ParseDispatchable but panics on error.
func MustParseDispatchable(s string) *Dispatchable {
	d, err := ParseDispatchable(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Kind returns the dispatchable kind.
func (d *Dispatchable) Kind() Kind { return d.kind }

// Key returns the factory key, unsubstituted.
func (d *Dispatchable) Key() string { return d.key }

// MethodName returns the method name of method and factory dispatchables.
func (d *Dispatchable) MethodName() string { return d.method }

func (d *Dispatchable) String() string {
	switch d.kind {
	case KindFunc, KindMethod:
		return d.callable.Name()
	case KindFactory:
		if d.method == "" {
			return d.key
		}
		if len(d.names) == 0 {
			return d.key + "->" + d.method
		}
		return fmt.Sprintf("%s->%s(%s)", d.key, d.method, strings.Join(d.names, ", "))
	}
	return "<invalid dispatchable>"
}

// Target returns the callable d dispatches to. Factory products are built
// strictly from bag.
func (d *Dispatchable) Target(bag Bag, reg *Registry) (*Callable, error) {
	switch d.kind {
	case KindFunc, KindMethod:
		return d.callable, nil
	case KindFactory:
		return d.factoryTarget(bag, reg)
	}
	return nil, errors.New("locator: invalid dispatchable")
}

func (d *Dispatchable) factoryTarget(bag Bag, reg *Registry) (*Callable, error) {
	key, err := substitute(d.key, bag)
	if err != nil {
		return nil, &FactoryError{Key: d.key, Method: d.method, Err: err}
	}
	var factory *Callable
	if reg != nil {
		factory, _ = reg.Lookup(key)
	}
	if factory == nil {
		return nil, &FactoryError{Key: key, Method: d.method, Err: ErrUnknownFactory}
	}
	if d.method == "" {
		return factory, nil
	}

	product, err := Call(factory, bag, Strict)
	if err != nil {
		return nil, &FactoryError{Key: key, Method: d.method, Err: err}
	}
	pv := reflect.ValueOf(product)
	if !pv.IsValid() {
		return nil, &FactoryError{Key: key, Method: d.method, Err: errors.New("factory returned nil")}
	}
	m := pv.MethodByName(d.method)
	if !m.IsValid() {
		return nil, &FactoryError{Key: key, Method: d.method, Err: ErrUnknownMethod}
	}
	return newCallable(m, fmt.Sprintf("%s->%s", key, d.method), d.names), nil
}

// substitute fills the {name} placeholders of key from bag.
func substitute(key string, bag Bag) (string, error) {
	if !strings.Contains(key, "{") {
		return key, nil
	}
	var b strings.Builder
	for {
		open := strings.IndexByte(key, '{')
		if open < 0 {
			b.WriteString(key)
			return b.String(), nil
		}
		end := strings.IndexByte(key[open:], '}')
		if end < 0 {
			return "", fmt.Errorf("%w: unterminated placeholder in %q", ErrSubstitution, key)
		}
		end += open
		name := key[open+1 : end]
		var v any
		ok := false
		if bag != nil {
			v, ok = bag.Named(name)
		}
		if !ok || !isScalar(v) {
			return "", fmt.Errorf("%w: no scalar value for {%s}", ErrSubstitution, name)
		}
		b.WriteString(key[:open])
		b.WriteString(cast.ToString(v))
		key = key[end+1:]
	}
}

// Call resolves the arguments of c from bag and invokes it.
func Call(c *Callable, bag Bag, mode Mode) (any, error) {
	args, err := ResolveArguments(c, bag, mode)
	if err != nil {
		return nil, err
	}
	return c.Call(args)
}

// Invoke dispatches d with arguments resolved from bag. Factory keys are
// looked up in reg.
func Invoke(d *Dispatchable, bag Bag, reg *Registry, mode Mode) (any, error) {
	c, err := d.Target(bag, reg)
	if err != nil {
		return nil, err
	}
	return Call(c, bag, mode)
}
