// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package app

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"dario.cat/mergo"
	"github.com/cnotch/pframe"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// Configuration is a tree of settings addressed by dotted paths such as
// "application.name". Merging overrides scalars and merges nested
// mappings.
//
// Routes declared under application.routes in YAML documents are kept
// apart, in document order, and added to the route stack by the
// application.
type Configuration struct {
	mu     sync.RWMutex
	data   map[string]any
	routes []pframe.NamedRouteSpec
}

// NewConfiguration returns a configuration holding a copy of data.
func NewConfiguration(data map[string]any) *Configuration {
	return &Configuration{data: copyTree(data)}
}

// ParseConfigurationYAML parses a YAML configuration document.
func ParseConfigurationYAML(data []byte) (*Configuration, error) {
	c := NewConfiguration(nil)
	if err := c.MergeYAML(data); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadConfigurationYAML reads and parses a YAML configuration document.
func LoadConfigurationYAML(r io.Reader) (*Configuration, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseConfigurationYAML(data)
}

// Merge merges data into the configuration, data taking precedence.
func (c *Configuration) Merge(data map[string]any) error {
	if len(data) == 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		c.data = make(map[string]any)
	}
	if err := mergo.Merge(&c.data, copyTree(data), mergo.WithOverride); err != nil {
		return fmt.Errorf("app: merge configuration: %w", err)
	}
	return nil
}

// MergeYAML merges a YAML configuration document.
func (c *Configuration) MergeYAML(data []byte) error {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return fmt.Errorf("app: configuration document: %w", err)
	}
	if len(root.Content) == 0 {
		return nil
	}

	var tree map[string]any
	if err := root.Decode(&tree); err != nil {
		return fmt.Errorf("app: configuration document: %w", err)
	}
	var routes []pframe.NamedRouteSpec
	if node := routesNode(root.Content[0]); node != nil {
		var err error
		if routes, err = pframe.DecodeRoutesNode(node); err != nil {
			return fmt.Errorf("app: configuration document: %w", err)
		}
		if app, ok := tree["application"].(map[string]any); ok {
			delete(app, "routes")
		}
	}

	if err := c.Merge(tree); err != nil {
		return err
	}
	c.addRoutes(routes...)
	return nil
}

// AddRoutes adds routes declared outside YAML documents. A route replaces
// an earlier one with the same name.
func (c *Configuration) AddRoutes(routes ...pframe.NamedRouteSpec) {
	c.addRoutes(routes...)
}

func (c *Configuration) addRoutes(routes ...pframe.NamedRouteSpec) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range routes {
		i := -1
		if r.Name != "" {
			i = slices.IndexFunc(c.routes, func(e pframe.NamedRouteSpec) bool { return e.Name == r.Name })
		}
		if i >= 0 {
			c.routes[i] = r
		} else {
			c.routes = append(c.routes, r)
		}
	}
}

// Routes returns the configured routes in declaration order.
func (c *Configuration) Routes() []pframe.NamedRouteSpec {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.routes)
}

// Lookup returns the value at path.
func (c *Configuration) Lookup(path string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lookupLocked(path)
}

func (c *Configuration) lookupLocked(path string) (any, bool) {
	var cur any = c.data
	for _, key := range strings.Split(path, ".") {
		m, ok := asTree(cur)
		if !ok {
			return nil, false
		}
		if cur, ok = m[key]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// Has reports whether path is set.
func (c *Configuration) Has(path string) bool {
	_, ok := c.Lookup(path)
	return ok
}

// Get returns the value at path, nil if unset.
func (c *Configuration) Get(path string) any {
	v, _ := c.Lookup(path)
	return v
}

// String returns the value at path as a string.
func (c *Configuration) String(path string) string { return cast.ToString(c.Get(path)) }

// Int returns the value at path as an int.
func (c *Configuration) Int(path string) int { return cast.ToInt(c.Get(path)) }

// Bool returns the value at path as a bool.
func (c *Configuration) Bool(path string) bool { return cast.ToBool(c.Get(path)) }

// Duration returns the value at path as a duration.
func (c *Configuration) Duration(path string) time.Duration { return cast.ToDuration(c.Get(path)) }

// StringSlice returns the value at path as a string slice.
func (c *Configuration) StringSlice(path string) []string { return cast.ToStringSlice(c.Get(path)) }

// Section returns a copy of the mapping at path, nil if path is not a mapping.
func (c *Configuration) Section(path string) map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, _ := c.lookupLocked(path)
	m, ok := asTree(v)
	if !ok {
		return nil
	}
	return copyTree(m)
}

// All returns a copy of the whole configuration.
func (c *Configuration) All() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copyTree(c.data)
}

func routesNode(doc *yaml.Node) *yaml.Node {
	app := mappingValue(doc, "application")
	if app == nil {
		return nil
	}
	return mappingValue(app, "routes")
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

func asTree(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		return cast.ToStringMap(m), true
	}
	return nil, false
}

func copyTree(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := maps.Clone(m)
	for k, v := range out {
		switch t := v.(type) {
		case map[string]any:
			out[k] = copyTree(t)
		case []any:
			out[k] = slices.Clone(t)
		}
	}
	return out
}
