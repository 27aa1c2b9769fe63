// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pframe

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/cnotch/pframe/locator"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// routeDocument is one route of a YAML route document.
type routeDocument struct {
	Spec                 string              `yaml:"spec" validate:"required"`
	Handler              string              `yaml:"handler" validate:"required"`
	Defaults             map[string]any      `yaml:"defaults"`
	Validators           map[string][]string `yaml:"validators"`
	ImpliedTrailingSlash *bool               `yaml:"implied_trailing_slash"`
}

var (
	docValidatorOnce sync.Once
	docValidator     *validator.Validate
)

func routeDocumentValidator() *validator.Validate {
	docValidatorOnce.Do(func() {
		docValidator = validator.New(validator.WithRequiredStructEnabled())
	})
	return docValidator
}

// ParseRoutesYAML parses a YAML route document. The document is either a
// mapping from route name to route, kept in document order, or a sequence
// of unnamed routes. A route is a mapping:
//
//	home:
//	  spec: GET /
//	  handler: pages->Home
//	user:
//	  spec: /users/:id[/:tab]
//	  handler: users->Show(id, tab)
//	  defaults: {tab: profile}
//	  validators: {id: ['#^\d+$#']}
//	  implied_trailing_slash: false
//
// or the short form [spec, handler]. Handlers use the factory notation of
// locator.ParseDispatchable.
func ParseRoutesYAML(data []byte) ([]NamedRouteSpec, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("router: routes document: %w", err)
	}
	return DecodeRoutesNode(&root)
}

// LoadRoutesYAML reads and parses a YAML route document.
func LoadRoutesYAML(r io.Reader) ([]NamedRouteSpec, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseRoutesYAML(data)
}

// DecodeRoutesNode decodes routes from an already parsed YAML node.
func DecodeRoutesNode(node *yaml.Node) ([]NamedRouteSpec, error) {
	if node == nil {
		return nil, nil
	}
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return nil, nil
		}
		node = node.Content[0]
	}

	var routes []NamedRouteSpec
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			name := node.Content[i].Value
			rs, err := decodeRoute(node.Content[i+1])
			if err != nil {
				return nil, fmt.Errorf("router: route %q (line %d): %w", name, node.Content[i].Line, err)
			}
			routes = append(routes, NamedRouteSpec{Name: name, RouteSpec: rs})
		}
	case yaml.SequenceNode:
		for _, item := range node.Content {
			rs, err := decodeRoute(item)
			if err != nil {
				return nil, fmt.Errorf("router: route at line %d: %w", item.Line, err)
			}
			routes = append(routes, NamedRouteSpec{RouteSpec: rs})
		}
	case 0:
		return nil, nil
	default:
		if node.Tag == "!!null" {
			return nil, nil
		}
		return nil, fmt.Errorf("router: routes must be a mapping or a sequence (line %d)", node.Line)
	}
	return routes, nil
}

func decodeRoute(node *yaml.Node) (RouteSpec, error) {
	var doc routeDocument
	switch node.Kind {
	case yaml.SequenceNode:
		var tuple []string
		if err := node.Decode(&tuple); err != nil {
			return RouteSpec{}, err
		}
		if len(tuple) != 2 {
			return RouteSpec{}, errors.New("short form must be [spec, handler]")
		}
		doc.Spec, doc.Handler = tuple[0], tuple[1]
	case yaml.MappingNode:
		if err := node.Decode(&doc); err != nil {
			return RouteSpec{}, err
		}
	default:
		return RouteSpec{}, errors.New("route must be a mapping or a [spec, handler] pair")
	}

	if err := routeDocumentValidator().Struct(doc); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			missing := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				missing = append(missing, strings.ToLower(fe.Field()))
			}
			return RouteSpec{}, fmt.Errorf("missing %s", strings.Join(missing, ", "))
		}
		return RouteSpec{}, err
	}

	d, err := locator.ParseDispatchable(doc.Handler)
	if err != nil {
		return RouteSpec{}, err
	}
	rs := RouteSpec{
		Spec:         doc.Spec,
		Dispatchable: d,
		Defaults:     doc.Defaults,
		Validators:   doc.Validators,
	}
	if doc.ImpliedTrailingSlash != nil {
		rs.WithoutImpliedTrailingSlash = !*doc.ImpliedTrailingSlash
	}
	return rs, nil
}
