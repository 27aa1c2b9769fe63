// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package app

import (
	"fmt"
	"maps"
	"slices"

	"github.com/cnotch/pframe"
	"github.com/cnotch/pframe/locator"
)

// Feature is a bundle of configuration, services, routes and callbacks
// registered on an application as a unit.
type Feature interface {
	Register(a *Application) error
}

// FeatureFunc adapts a function to the Feature interface.
type FeatureFunc func(a *Application) error

// Register implements Feature.
func (f FeatureFunc) Register(a *Application) error { return f(a) }

// Callback is a lifecycle callback declaration.
type Callback struct {
	Event        string
	Dispatchable *locator.Dispatchable
	Priority     int
}

// FeatureSet is a literal Feature.
type FeatureSet struct {
	Configuration map[string]any
	// Services maps names to instances. A *locator.Dispatchable value is
	// registered as a factory.
	Services  map[string]any
	Routes    []pframe.NamedRouteSpec
	Callbacks []Callback
}

var _ Feature = FeatureSet{}

// Register implements Feature.
func (fs FeatureSet) Register(a *Application) error {
	if err := a.Configuration().Merge(fs.Configuration); err != nil {
		return err
	}
	for _, name := range slices.Sorted(maps.Keys(fs.Services)) {
		if err := a.AddService(name, fs.Services[name]); err != nil {
			return err
		}
	}
	if err := a.AddRoutes(fs.Routes...); err != nil {
		return err
	}
	for _, cb := range fs.Callbacks {
		if cb.Dispatchable == nil {
			return fmt.Errorf("app: nil %s callback", cb.Event)
		}
		a.On(cb.Event, cb.Dispatchable, cb.Priority)
	}
	return nil
}

// DefaultErrorHandler returns the feature that logs Error events. An
// application registers it on Run when no Error callback exists.
func DefaultErrorHandler() Feature {
	return FeatureFunc(func(a *Application) error {
		a.On(EventError, locator.Handler(func(st *State, typ string, err error) {
			switch typ {
			case ErrorUnroutable:
				a.logger.Warn("unroutable request", "run_id", st.RunID())
			case ErrorUndispatchable:
				a.logger.Error("undispatchable route", "run_id", st.RunID(), "err", err)
			default:
				a.logger.Error("dispatch failed", "run_id", st.RunID(), "err", err)
			}
		}, "state", "type", "error"), 0)
		return nil
	})
}
