// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package locator

import (
	"errors"
	"reflect"
	"slices"
	"sort"
	"sync"
)

// ServiceOption configures a service registration.
type ServiceOption interface {
	apply(*service)
}

type serviceOptionFunc func(*service)

func (f serviceOptionFunc) apply(s *service) { f(s) }

// WithType declares the type a service is located by. It defaults to the
// dynamic type of the instance, and for factories to the type of the
// first product.
func WithType(t reflect.Type) ServiceOption {
	return serviceOptionFunc(func(s *service) { s.typ = t })
}

// Modifiable allows the service to be replaced or removed later.
func Modifiable() ServiceOption {
	return serviceOptionFunc(func(s *service) { s.modifiable = true })
}

type service struct {
	name       string
	typ        reflect.Type
	value      any
	resolved   bool
	factory    *Dispatchable
	modifiable bool
}

// ServiceLocator is a named registry of services. A service is either an
// instance, or a factory dispatchable instantiated on first lookup and
// cached afterwards. Factory parameters are resolved from the locator
// itself.
//
// ServiceLocator is safe for concurrent use and is itself a Bag.
type ServiceLocator struct {
	mu       sync.RWMutex
	services map[string]*service
	order    []string
	registry *Registry
}

// New returns an empty ServiceLocator.
func New() *ServiceLocator {
	return &ServiceLocator{
		services: make(map[string]*service),
		registry: NewRegistry(),
	}
}

// Registry returns the factory registry used for factory dispatchables.
func (l *ServiceLocator) Registry() *Registry { return l.registry }

// Register adds a dispatch factory under key. See Factory.
func (l *ServiceLocator) Register(key string, c *Callable) { l.registry.Register(key, c) }

// Set registers an instance under name.
func (l *ServiceLocator) Set(name string, instance any, opts ...ServiceOption) error {
	s := &service{name: name, value: instance, resolved: true}
	if instance != nil {
		s.typ = reflect.TypeOf(instance)
	}
	return l.put(s, opts)
}

// SetFactory registers d under name. It is dispatched strictly, against
// the locator, the first time the service is looked up.
func (l *ServiceLocator) SetFactory(name string, d *Dispatchable, opts ...ServiceOption) error {
	if d == nil {
		return errors.New("locator: nil factory for " + name)
	}
	return l.put(&service{name: name, factory: d}, opts)
}

func (l *ServiceLocator) put(s *service, opts []ServiceOption) error {
	for _, opt := range opts {
		opt.apply(s)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if old, ok := l.services[s.name]; ok {
		if !old.modifiable {
			return &NotModifiableError{Name: s.name}
		}
	} else {
		l.order = append(l.order, s.name)
	}
	l.services[s.name] = s
	return nil
}

// Remove unregisters a modifiable service.
func (l *ServiceLocator) Remove(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.services[name]
	if !ok {
		return &ServiceNotFoundError{Name: name}
	}
	if !s.modifiable {
		return &NotModifiableError{Name: name}
	}
	delete(l.services, name)
	l.order = slices.DeleteFunc(l.order, func(n string) bool { return n == name })
	return nil
}

// Has reports whether a service is registered under name.
func (l *ServiceLocator) Has(name string) bool {
	l.mu.RLock()
	_, ok := l.services[name]
	l.mu.RUnlock()
	return ok
}

// HasType reports whether a service with a known type assignable to t is registered.
func (l *ServiceLocator) HasType(t reflect.Type) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.nameByTypeLocked(t) != ""
}

// Len returns the number of registered services.
func (l *ServiceLocator) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.services)
}

// Names returns the registered service names in lexical order.
func (l *ServiceLocator) Names() []string {
	l.mu.RLock()
	names := make([]string, 0, len(l.services))
	for name := range l.services {
		names = append(names, name)
	}
	l.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Get returns the named service, instantiating it if needed.
func (l *ServiceLocator) Get(name string) (any, error) {
	return l.get(name, nil)
}

// Validate returns the named service if it is assignable to t.
func (l *ServiceLocator) Validate(name string, t reflect.Type) (any, error) {
	v, err := l.Get(name)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, &TypeMismatchError{Name: name, Expected: t.String(), Got: "nil"}
	}
	if vt := reflect.TypeOf(v); !vt.AssignableTo(t) {
		return nil, &TypeMismatchError{Name: name, Expected: t.String(), Got: vt.String()}
	}
	return v, nil
}

// GetAs returns the named service as a T.
func GetAs[T any](l *ServiceLocator, name string) (T, error) {
	var zero T
	v, err := l.Validate(name, TypeOf[T]())
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

// Instantiate invokes the dispatch factory registered under key, strictly,
// with arguments from bag and then the locator.
func (l *ServiceLocator) Instantiate(key string, bag Bag) (any, error) {
	c, ok := l.registry.Lookup(key)
	if !ok {
		return nil, &FactoryError{Key: key, Err: ErrUnknownFactory}
	}
	return Call(c, Chain{bag, l}, Strict)
}

// Invoke dispatches d with arguments resolved from bag, then from the
// locator. It returns the first result of the target and its trailing
// error result, if any.
func (l *ServiceLocator) Invoke(d *Dispatchable, bag Bag, mode Mode) (any, error) {
	return Invoke(d, Chain{bag, l}, l.registry, mode)
}

// Named implements Bag.
func (l *ServiceLocator) Named(name string) (any, bool) {
	return l.lookupNamed(name, nil)
}

// Typed implements Bag.
func (l *ServiceLocator) Typed(t reflect.Type) (any, bool) {
	return l.lookupTyped(t, nil)
}

func (l *ServiceLocator) lookupNamed(name string, chain []string) (any, bool) {
	v, err := l.get(name, chain)
	if err != nil {
		if errors.Is(err, ErrServiceNotFound) {
			var nf *ServiceNotFoundError
			if errors.As(err, &nf) && nf.Name == name {
				return nil, false
			}
		}
		return lookupFailure{err}, true
	}
	return v, v != nil
}

func (l *ServiceLocator) lookupTyped(t reflect.Type, chain []string) (any, bool) {
	l.mu.RLock()
	name := l.nameByTypeLocked(t)
	l.mu.RUnlock()
	if name == "" {
		return nil, false
	}
	return l.lookupNamed(name, chain)
}

// nameByTypeLocked returns the first registered service, in registration
// order, whose known type is t, else the first one assignable to t.
func (l *ServiceLocator) nameByTypeLocked(t reflect.Type) string {
	assignable := ""
	for _, name := range l.order {
		s := l.services[name]
		if s.typ == nil {
			continue
		}
		if s.typ == t {
			return name
		}
		if assignable == "" && s.typ.AssignableTo(t) {
			assignable = name
		}
	}
	return assignable
}

func (l *ServiceLocator) get(name string, chain []string) (any, error) {
	l.mu.RLock()
	s, ok := l.services[name]
	var (
		value    any
		resolved bool
		factory  *Dispatchable
	)
	if ok {
		value, resolved, factory = s.value, s.resolved, s.factory
	}
	l.mu.RUnlock()

	if !ok {
		return nil, &ServiceNotFoundError{Name: name}
	}
	if resolved {
		return value, nil
	}
	if slices.Contains(chain, name) {
		return nil, &CircularDependencyError{Chain: append(slices.Clone(chain), name)}
	}

	bag := &resolvingBag{l: l, chain: append(slices.Clone(chain), name)}
	value, err := Invoke(factory, bag, l.registry, Strict)
	if err != nil {
		var cycle *CircularDependencyError
		if errors.As(err, &cycle) {
			return nil, cycle
		}
		return nil, &InitializationError{Name: name, Err: err}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if cur, ok := l.services[name]; ok && cur == s {
		if s.resolved {
			return s.value, nil
		}
		s.value, s.resolved = value, true
		if s.typ == nil && value != nil {
			s.typ = reflect.TypeOf(value)
		}
	}
	return value, nil
}

// resolvingBag looks services up on behalf of a factory, carrying the
// chain of services being instantiated.
type resolvingBag struct {
	l     *ServiceLocator
	chain []string
}

func (b *resolvingBag) Named(name string) (any, bool) { return b.l.lookupNamed(name, b.chain) }

func (b *resolvingBag) Typed(t reflect.Type) (any, bool) { return b.l.lookupTyped(t, b.chain) }
