// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package locator

import "reflect"

// Bag is a source of values for formal parameters, looked up either by
// parameter name or by parameter type.
type Bag interface {
	Named(name string) (any, bool)
	Typed(t reflect.Type) (any, bool)
}

var (
	_ Bag = Map(nil)
	_ Bag = (*Values)(nil)
	_ Bag = Chain(nil)
	_ Bag = (*ServiceLocator)(nil)
)

// TypeOf returns the type key for T, which may be an interface type.
func TypeOf[T any]() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }

// Map is a name-only Bag.
type Map map[string]any

// Named implements Bag. A nil value counts as absent.
func (m Map) Named(name string) (any, bool) {
	v, ok := m[name]
	return v, ok && v != nil
}

// Typed implements Bag. It never matches.
func (m Map) Typed(reflect.Type) (any, bool) { return nil, false }

// Values is a Bag holding both named and typed entries.
type Values struct {
	names map[string]any
	types map[reflect.Type]any
}

// NewValues returns an empty Values.
func NewValues() *Values {
	return &Values{names: make(map[string]any), types: make(map[reflect.Type]any)}
}

// Set adds a named entry.
func (v *Values) Set(name string, value any) *Values {
	v.names[name] = value
	return v
}

// SetTyped adds an entry keyed by t.
func (v *Values) SetTyped(t reflect.Type, value any) *Values {
	v.types[t] = value
	return v
}

// Provide adds value keyed by its own dynamic type.
func (v *Values) Provide(value any) *Values {
	if value != nil {
		v.types[reflect.TypeOf(value)] = value
	}
	return v
}

// Named implements Bag.
func (v *Values) Named(name string) (any, bool) {
	val, ok := v.names[name]
	return val, ok && val != nil
}

// Typed implements Bag.
func (v *Values) Typed(t reflect.Type) (any, bool) {
	val, ok := v.types[t]
	return val, ok && val != nil
}

// Chain consults its bags in order; the first hit wins.
type Chain []Bag

// Named implements Bag.
func (c Chain) Named(name string) (any, bool) {
	for _, b := range c {
		if b == nil {
			continue
		}
		if v, ok := b.Named(name); ok {
			return v, true
		}
	}
	return nil, false
}

// Typed implements Bag.
func (c Chain) Typed(t reflect.Type) (any, bool) {
	for _, b := range c {
		if b == nil {
			continue
		}
		if v, ok := b.Typed(t); ok {
			return v, true
		}
	}
	return nil, false
}
