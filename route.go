// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pframe

import (
	"fmt"

	"github.com/cnotch/pframe/locator"
)

// Route is a rule pairing a match predicate over request facts with a
// dispatch target.
type Route interface {
	// Spec returns the spec the route was compiled from.
	Spec() string
	// Dispatchable returns the dispatch target, nil if none was given.
	Dispatchable() *locator.Dispatchable
	// Match reports whether src satisfies the route, and the parameters
	// extracted from it. A miss is not an error.
	Match(src Source) (Params, bool)
	// Assemble builds the request path the route would match for ps.
	Assemble(ps Params) (string, error)
}

var (
	_ Route = (*HTTPRoute)(nil)
	_ Route = (*CLIRoute)(nil)
)

// RouteOption configures a route at construction.
type RouteOption interface {
	apply(*routeOptions)
}

type routeOptionFunc func(*routeOptions)

func (f routeOptionFunc) apply(o *routeOptions) { f(o) }

type routeOptions struct {
	defaults          map[string]any
	validators        map[string][]Validator
	noTrailingSlash   bool
	validatorSpecErrs []error
}

func newRouteOptions(opts []RouteOption) (*routeOptions, error) {
	o := &routeOptions{
		defaults:   make(map[string]any),
		validators: make(map[string][]Validator),
	}
	for _, opt := range opts {
		opt.apply(o)
	}
	if len(o.validatorSpecErrs) > 0 {
		return nil, o.validatorSpecErrs[0]
	}
	return o, nil
}

// WithDefaults declares values for parameters a match leaves absent or empty.
func WithDefaults(defaults map[string]any) RouteOption {
	return routeOptionFunc(func(o *routeOptions) {
		for k, v := range defaults {
			o.defaults[k] = v
		}
	})
}

// WithDefault declares the value of a single parameter a match leaves absent.
func WithDefault(name string, value any) RouteOption {
	return routeOptionFunc(func(o *routeOptions) { o.defaults[name] = value })
}

// WithValidator adds validators for the named parameter.
func WithValidator(name string, validators ...Validator) RouteOption {
	for _, v := range validators {
		if v == nil {
			panic("router: nil validator for " + name)
		}
	}
	return routeOptionFunc(func(o *routeOptions) {
		o.validators[name] = append(o.validators[name], validators...)
	})
}

// WithValidatorSpecs adds validators in their declarative form, see ParseValidator.
func WithValidatorSpecs(name string, specs ...string) RouteOption {
	return routeOptionFunc(func(o *routeOptions) {
		for _, s := range specs {
			v, err := ParseValidator(s)
			if err != nil {
				o.validatorSpecErrs = append(o.validatorSpecErrs, fmt.Errorf("parameter %q: %w", name, err))
				continue
			}
			o.validators[name] = append(o.validators[name], v)
		}
	})
}

// WithoutImpliedTrailingSlash makes "/path" and "/path/" distinct for an
// http route.
func WithoutImpliedTrailingSlash() RouteOption {
	return routeOptionFunc(func(o *routeOptions) { o.noTrailingSlash = true })
}

// validate runs the declared validators over the parameters that
// produced a value.
func validate(validators map[string][]Validator, ps Params) bool {
	for name, vs := range validators {
		if !ps.Has(name) {
			continue
		}
		value := ps.ByName(name)
		for _, v := range vs {
			if !v.Validate(value, ps) {
				return false
			}
		}
	}
	return true
}

// MustRoute is a helper which makes it easier to call NewHTTPRoute or
// NewCLIRoute in variable initialization.
func MustRoute[R Route](r R, err error) R {
	if err != nil {
		panic(fmt.Sprintf("Route initialization failed: %v", err))
	}
	return r
}
