// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package locator

import (
	"sort"
	"sync"
)

// Registry maps factory keys to the callables that build dispatch targets.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]*Callable
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]*Callable)}
}

// Register binds key to c, replacing any previous binding.
func (r *Registry) Register(key string, c *Callable) {
	if c == nil {
		panic("locator: nil factory for " + key)
	}
	r.mu.Lock()
	r.factories[key] = c
	r.mu.Unlock()
}

// Lookup returns the factory registered under key.
func (r *Registry) Lookup(key string) (*Callable, bool) {
	r.mu.RLock()
	c, ok := r.factories[key]
	r.mu.RUnlock()
	return c, ok
}

// Keys returns the registered keys in lexical order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	keys := make([]string, 0, len(r.factories))
	for k := range r.factories {
		keys = append(keys, k)
	}
	r.mu.RUnlock()
	sort.Strings(keys)
	return keys
}
