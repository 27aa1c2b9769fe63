// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package app_test

import (
	"strings"
	"testing"
	"time"

	"github.com/cnotch/pframe"
	"github.com/cnotch/pframe/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const configDoc = `
application:
  name: demo
  debug: "true"
  timeout: 1500ms
  routes:
    zeta: [GET /, pages->Home]
    alpha:
      spec: /users/:id
      handler: users->Show(id)
database:
  port: 5432
  hosts: [a, b]
`

func TestConfigurationYAML(t *testing.T) {
	c, err := app.LoadConfigurationYAML(strings.NewReader(configDoc))
	require.NoError(t, err)

	assert.Equal(t, "demo", c.String("application.name"))
	assert.True(t, c.Bool("application.debug"))
	assert.Equal(t, 1500*time.Millisecond, c.Duration("application.timeout"))
	assert.Equal(t, 5432, c.Int("database.port"))
	assert.Equal(t, []string{"a", "b"}, c.StringSlice("database.hosts"))
	assert.True(t, c.Has("database"))
	assert.False(t, c.Has("database.user"))
	assert.False(t, c.Has("application.name.first"))
	assert.Nil(t, c.Get("nope"))
	assert.False(t, c.Has("application.routes"), "routes are kept apart")

	routes := c.Routes()
	require.Len(t, routes, 2)
	assert.Equal(t, "zeta", routes[0].Name)
	assert.Equal(t, "alpha", routes[1].Name)
	assert.Equal(t, "users->Show(id)", routes[1].Dispatchable.String())
}

func TestConfigurationMerge(t *testing.T) {
	c := app.NewConfiguration(map[string]any{
		"application": map[string]any{"name": "demo", "debug": false},
		"list":        []any{1, 2},
	})
	require.NoError(t, c.Merge(map[string]any{
		"application": map[string]any{"debug": true},
		"list":        []any{3},
		"extra":       "x",
	}))
	assert.Equal(t, "demo", c.String("application.name"), "nested keys survive")
	assert.True(t, c.Bool("application.debug"), "scalars are overridden")
	assert.Equal(t, []any{3}, c.Get("list"))
	assert.Equal(t, "x", c.String("extra"))
	require.NoError(t, c.Merge(nil))

	section := c.Section("application")
	section["name"] = "changed"
	assert.Equal(t, "demo", c.String("application.name"))
	assert.Nil(t, c.Section("extra"))

	all := c.All()
	delete(all, "extra")
	assert.True(t, c.Has("extra"))
}

func TestConfigurationRoutesReplaceByName(t *testing.T) {
	c, err := app.ParseConfigurationYAML([]byte(configDoc))
	require.NoError(t, err)
	require.NoError(t, c.MergeYAML([]byte(`
application:
  name: other
  routes:
    alpha: [/people/:id, users->Show(id)]
    omega: [/o, o]
`)))
	assert.Equal(t, "other", c.String("application.name"))

	routes := c.Routes()
	require.Len(t, routes, 3)
	assert.Equal(t, "/people/:id", routes[1].Spec)
	assert.Equal(t, "omega", routes[2].Name)

	c.AddRoutes(pframe.NamedRouteSpec{RouteSpec: pframe.RouteSpec{Spec: "/anon"}})
	assert.Len(t, c.Routes(), 4)
}

func TestConfigurationYAMLErrors(t *testing.T) {
	_, err := app.ParseConfigurationYAML([]byte("a: ["))
	assert.Error(t, err)
	_, err = app.ParseConfigurationYAML([]byte("- a\n- b\n"))
	assert.Error(t, err)
	_, err = app.ParseConfigurationYAML([]byte("application:\n  routes:\n    bad: {spec: /x}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing handler")

	c, err := app.ParseConfigurationYAML(nil)
	require.NoError(t, err)
	assert.Empty(t, c.All())
}
