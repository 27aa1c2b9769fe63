// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pframe_test

import (
	"net/http"
	"regexp"
	"strings"
	"testing"

	"github.com/cnotch/pframe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(uri string) *pframe.HTTPSource { return pframe.NewHTTPSource(http.MethodGet, uri, nil) }

func TestHTTPRouteMatch(t *testing.T) {
	tests := []struct {
		spec   string
		uri    string
		want   pframe.Params
		wantOk bool
	}{
		{"/", "/", pframe.Params{}, true},
		{"/", "", pframe.Params{}, true},
		{"/users/:id", "/users/5", pframe.Params{"id": "5"}, true},
		{"/users/:id", "/users/5/", pframe.Params{"id": "5"}, true},
		{"/users/:id", "/users/5?tab=posts", pframe.Params{"id": "5"}, true},
		{"/users/:id", "/users/", nil, false},
		{"/users/:id", "/users/5/posts", nil, false},
		{"/blog/:category/:post", "/blog/go/request-routers", pframe.Params{"category": "go", "post": "request-routers"}, true},
		{"/blog/:category/:post", "/blog/go/", nil, false},
		{"/users/:id[/:tab]", "/users/5", pframe.Params{"id": "5"}, true},
		{"/users/:id[/:tab]", "/users/5/posts", pframe.Params{"id": "5", "tab": "posts"}, true},
		{"/files/:name{.}.:ext", "/files/report.pdf", pframe.Params{"name": "report", "ext": "pdf"}, true},
		{"/files/:name{.}.:ext", "/files/report", nil, false},
		{"/date/:y{-}-:m{-}-:d", "/date/2019-06-01", pframe.Params{"y": "2019", "m": "06", "d": "01"}, true},
		{`/users/:id#^\d+$`, "/users/42", pframe.Params{"id": "42"}, true},
		{`/users/:id#^\d+$`, "/users/abc", nil, false},
		{`/users/:id#^\d+$#/edit`, "/users/42/edit", pframe.Params{"id": "42"}, true},
		{`/users/:id#^\d+$#/edit`, "/users/x/edit", nil, false},
		{"/static/*", "/static/css/site.css", pframe.Params{"wildcard": "css/site.css"}, true},
		{"/static/*", "/static/", pframe.Params{}, true},
		{"/static/*", "/static", nil, false},
		{"/a.b", "/aXb", nil, false},
		{"/a+b", "/a+b", pframe.Params{}, true},
		{"/:ünï", "/x", pframe.Params{"ünï": "x"}, true},
		{"/:my-param", "/x", pframe.Params{"my-param": "x"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.spec+" "+tt.uri, func(t *testing.T) {
			r, err := pframe.NewHTTPRoute(tt.spec, nil)
			require.NoError(t, err)
			got, ok := r.Match(get(tt.uri))
			assert.Equal(t, tt.wantOk, ok)
			if tt.wantOk {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestHTTPRouteMethods(t *testing.T) {
	r := pframe.MustRoute(pframe.NewHTTPRoute("POST,PUT /items", nil))
	assert.Equal(t, []string{"POST", "PUT"}, r.Methods())
	assert.Equal(t, "/items", r.Path())

	_, ok := r.Match(pframe.NewHTTPSource(http.MethodGet, "/items", nil))
	assert.False(t, ok)
	_, ok = r.Match(pframe.NewHTTPSource(http.MethodPost, "/items", nil))
	assert.True(t, ok)
	_, ok = r.Match(pframe.NewHTTPSource(http.MethodPut, "/items/", nil))
	assert.True(t, ok)
	_, ok = r.Match(pframe.NewHTTPSource("post", "/items", nil))
	assert.False(t, ok, "method comparison is case sensitive")
}

func TestHTTPRouteIgnoresCLISource(t *testing.T) {
	r := pframe.MustRoute(pframe.NewHTTPRoute("/", nil))
	_, ok := r.Match(pframe.NewCLISource(nil))
	assert.False(t, ok)
}

func TestHTTPRouteTrailingSlash(t *testing.T) {
	r := pframe.MustRoute(pframe.NewHTTPRoute("/users/:id", nil, pframe.WithoutImpliedTrailingSlash()))
	ps, ok := r.Match(get("/users/5"))
	assert.True(t, ok)
	assert.Equal(t, "5", ps.ByName("id"))
	_, ok = r.Match(get("/users/5/"))
	assert.False(t, ok)

	r = pframe.MustRoute(pframe.NewHTTPRoute("/users/", nil))
	_, ok = r.Match(get("/users"))
	assert.True(t, ok)
}

func TestHTTPRouteDefaults(t *testing.T) {
	r := pframe.MustRoute(pframe.NewHTTPRoute("/users/:id[/:tab]", nil,
		pframe.WithDefaults(map[string]any{"tab": "profile", "format": "html"}),
	))
	ps, ok := r.Match(get("/users/5"))
	require.True(t, ok)
	assert.Equal(t, pframe.Params{"id": "5", "tab": "profile", "format": "html"}, ps)

	ps, ok = r.Match(get("/users/5/posts"))
	require.True(t, ok)
	assert.Equal(t, "posts", ps.ByName("tab"))

	ps, _ = r.Match(get("/users/6"))
	assert.Equal(t, "profile", ps.ByName("tab"), "defaults are not shared between matches")
}

func TestHTTPRouteValidators(t *testing.T) {
	r := pframe.MustRoute(pframe.NewHTTPRoute("/users/:id[/:tab]", nil,
		pframe.WithValidator("id", pframe.Regexp(regexp.MustCompile(`^\d+$`))),
		pframe.WithValidator("tab", pframe.Predicate(func(v string) bool { return v != "secret" })),
	))

	_, ok := r.Match(get("/users/12"))
	assert.True(t, ok, "validators of absent parameters do not run")
	_, ok = r.Match(get("/users/12/posts"))
	assert.True(t, ok)
	_, ok = r.Match(get("/users/12/secret"))
	assert.False(t, ok)
	_, ok = r.Match(get("/users/x/posts"))
	assert.False(t, ok)

	_, err := pframe.NewHTTPRoute("/a/:id", nil, pframe.WithValidatorSpecs("id", "#(#"))
	assert.Error(t, err)
	_, err = pframe.NewHTTPRoute(`/a/:id#(`, nil)
	assert.ErrorIs(t, err, pframe.ErrMalformedRouteSpec)

	tags, err := pframe.NewHTTPRoute(`/tags/:tag#^\#\w+$#/posts`, nil)
	require.NoError(t, err, "escaped '#' stays in the expression")
	ps, ok := tags.MatchPath("/tags/#go/posts")
	require.True(t, ok)
	assert.Equal(t, "#go", ps.ByName("tag"))
	_, ok = tags.MatchPath("/tags/go/posts")
	assert.False(t, ok)
}

func TestHTTPRouteAssemble(t *testing.T) {
	tests := []struct {
		spec   string
		params pframe.Params
		want   string
	}{
		{"/users/:id", pframe.Params{"id": "5"}, "/users/5"},
		{"/users/:id", pframe.Params{"id": 5}, "/users/5"},
		{"GET /users/:id", pframe.Params{"id": "5"}, "/users/5"},
		{"/users/:id[/:tab]", pframe.Params{"id": "5"}, "/users/5"},
		{"/users/:id[/:tab]", pframe.Params{"id": "5", "tab": "posts"}, "/users/5/posts"},
		{"/a[/b[/c]]", pframe.Params{}, "/a/b/c"},
		{"/a[/:x[/c]]", pframe.Params{}, "/a"},
		{"/a[/:x[/:y]]", pframe.Params{"x": "1"}, "/a"},
		{"/a[/:x[/:y]]", pframe.Params{"x": "1", "y": "2"}, "/a/1/2"},
		{"/a[/b[/:y]]", pframe.Params{}, "/a"},
		{"/a[/b[/:y]]", pframe.Params{"y": "2"}, "/a/b/2"},
		{"/a[/b][/:y]", pframe.Params{}, "/a/b"},
		{"/files/:name{.}.:ext", pframe.Params{"name": "r", "ext": "pdf"}, "/files/r.pdf"},
		{`/users/:id#^\d+$#/edit`, pframe.Params{"id": "3"}, "/users/3/edit"},
		{"/static/*", pframe.Params{"wildcard": "css/a.css"}, "/static/css/a.css"},
		{"/static/*", pframe.Params{}, "/static/"},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			r := pframe.MustRoute(pframe.NewHTTPRoute(tt.spec, nil))
			got, err := r.Assemble(tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHTTPRouteAssembleMissing(t *testing.T) {
	r := pframe.MustRoute(pframe.NewHTTPRoute("/users/:id[/:tab]", nil))
	_, err := r.Assemble(pframe.Params{"tab": "posts"})
	var asmErr *pframe.AssembleError
	require.ErrorAs(t, err, &asmErr)
	assert.Equal(t, "id", asmErr.Parameter)
	assert.ErrorIs(t, err, pframe.ErrMissingAssembleParameter)

	_, err = r.Assemble(pframe.Params{"id": nil})
	assert.ErrorIs(t, err, pframe.ErrMissingAssembleParameter)
}

func TestHTTPRouteRoundTrip(t *testing.T) {
	specs := map[string][]string{
		"/users/:id":                {"/users/5", "/users/abc-def"},
		"/blog/:category/:post":     {"/blog/go/routers", "/blog/a/b/"},
		"/files/:name{.}.:ext":      {"/files/report.pdf"},
		"/v1/:org/repos/:repo/tags": {"/v1/cnotch/repos/pframe/tags"},
	}
	for spec, paths := range specs {
		r := pframe.MustRoute(pframe.NewHTTPRoute(spec, nil))
		for _, path := range paths {
			first, ok := r.Match(get(path))
			require.True(t, ok, "%s %s", spec, path)
			assembled, err := r.Assemble(first)
			require.NoError(t, err)
			second, ok := r.Match(get(assembled))
			require.True(t, ok, "%s %s", spec, assembled)
			assert.Equal(t, first, second)
			assert.Equal(t, strings.TrimSuffix(path, "/"), assembled)
		}
	}
}

func TestNewHTTPRouteErrors(t *testing.T) {
	for _, spec := range []string{"/a[", "/a]", "/:", "/a/{b}"} {
		_, err := pframe.NewHTTPRoute(spec, nil)
		assert.ErrorIs(t, err, pframe.ErrMalformedRouteSpec, spec)
	}
	assert.Panics(t, func() { pframe.MustRoute(pframe.NewHTTPRoute("/a[", nil)) })
}
