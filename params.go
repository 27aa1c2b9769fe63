// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pframe

import (
	"reflect"
	"sort"

	"github.com/spf13/cast"
)

// Params is the set of parameters extracted by a route match, or supplied
// to assemble a route.
//
// Http routes produce string values; cli option markers produce []string.
type Params map[string]any

// ByName returns the value of the named parameter as a string.
// It returns "" if the parameter is absent.
func (ps Params) ByName(name string) string {
	v, ok := ps[name]
	if !ok || v == nil {
		return ""
	}
	return cast.ToString(v)
}

// Strings returns the value of the named parameter as a string slice.
func (ps Params) Strings(name string) []string {
	v, ok := ps[name]
	if !ok || v == nil {
		return nil
	}
	return cast.ToStringSlice(v)
}

// Has reports whether the named parameter is present with a non-nil value.
func (ps Params) Has(name string) bool {
	v, ok := ps[name]
	return ok && v != nil
}

// Count returns the number of parameters.
func (ps Params) Count() int { return len(ps) }

// Names returns the parameter names in lexical order.
func (ps Params) Names() []string {
	names := make([]string, 0, len(ps))
	for name := range ps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a shallow copy of ps.
func (ps Params) Clone() Params {
	c := make(Params, len(ps))
	for k, v := range ps {
		c[k] = v
	}
	return c
}

// Named looks a parameter up by name, so Params can serve as an argument bag.
func (ps Params) Named(name string) (any, bool) {
	v, ok := ps[name]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Typed never matches: route parameters carry no type identity.
func (ps Params) Typed(reflect.Type) (any, bool) { return nil, false }

// mergeParams returns defaults overlaid with ps.
func mergeParams(defaults map[string]any, ps Params) Params {
	out := make(Params, len(defaults)+len(ps))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range ps {
		out[k] = v
	}
	return out
}
