// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pframe

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lit(s string) token { return token{kind: tokenLiteral, text: s} }
func param(name string) token { return token{kind: tokenParameter, text: name} }

var (
	optStart = token{kind: tokenOptionalStart}
	optEnd   = token{kind: tokenOptionalEnd}
	wildcard = token{kind: tokenWildcard, text: wildcardName}
)

func TestHTTPParser(t *testing.T) {
	tests := []struct {
		spec string
		want []token
	}{
		{"/", []token{lit("/")}},
		{"/users/:id", []token{lit("/users/"), param("id")}},
		{"/users/:id/posts", []token{lit("/users/"), param("id"), lit("/posts")}},
		{"/users/:id[/:tab]", []token{lit("/users/"), param("id"), optStart, lit("/"), param("tab"), optEnd}},
		{"/a[/b[/c]]", []token{lit("/a"), optStart, lit("/b"), optStart, lit("/c"), optEnd, optEnd}},
		{"/files/:name{.}.:ext", []token{
			lit("/files/"),
			{kind: tokenParameter, text: "name", delimiters: "."},
			lit("."),
			param("ext"),
		}},
		{"/:a:-:b", []token{lit("/"), param("a"), lit("-"), param("b")}},
		{`/users/:id#^\d+$`, []token{lit("/users/"), {kind: tokenParameter, text: "id", validator: `#^\d+$`}}},
		{`/users/:id#^\d+$#/edit`, []token{
			lit("/users/"),
			{kind: tokenParameter, text: "id", validator: `#^\d+$`},
			lit("/edit"),
		}},
		{`/v/:ver#^v\d$#{.}.json`, []token{
			lit("/v/"),
			{kind: tokenParameter, text: "ver", validator: `#^v\d$`, delimiters: "."},
			lit(".json"),
		}},
		{`/:tag#^\#\w+$#`, []token{lit("/"), {kind: tokenParameter, text: "tag", validator: `#^\#\w+$`}}},
		{`/:tag#^\\#/x`, []token{lit("/"), {kind: tokenParameter, text: "tag", validator: `#^\\`}, lit("/x")}},
		{"/static/*", []token{lit("/static/"), wildcard}},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := httpParser(0).parse(tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHTTPParserErrors(t *testing.T) {
	tests := []struct {
		spec   string
		reason string
	}{
		{"/users/:/x", "empty parameter name"},
		{"/a]", "closing bracket without matching opening bracket"},
		{"/a[/b", "unbalanced brackets"},
		{"/a[[/b]", "unbalanced brackets"},
		{"/a/{x}", "unexpected '{'"},
		{"/a/:x{}", "empty delimiter set"},
		{"/a/:x{.", "unterminated delimiter set"},
		{"/a/:x#/b", "empty parameter regular expression"},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			_, err := httpParser(0).parse(tt.spec)
			var specErr *RouteSpecError
			require.True(t, errors.As(err, &specErr), "error %v", err)
			assert.Equal(t, tt.reason, specErr.Reason)
			assert.ErrorIs(t, err, ErrMalformedRouteSpec)
		})
	}
}

func TestCLIParser(t *testing.T) {
	got, err := cliParser(0).parse("deploy  :env :region? -force --dry-run")
	require.NoError(t, err)
	assert.Equal(t, []token{
		{kind: tokenWord, text: "deploy"},
		{kind: tokenParameter, text: "env"},
		{kind: tokenParameter, text: "region", optional: true},
		{kind: tokenOption, text: "force"},
		{kind: tokenOption, text: "dry-run"},
	}, got)

	got, err = cliParser(0).parse("")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = cliParser(0).parse("run :")
	assert.ErrorIs(t, err, ErrMalformedRouteSpec)
	_, err = cliParser(0).parse("run --")
	assert.ErrorIs(t, err, ErrMalformedRouteSpec)
}

func TestParseSpecIsCachedAndPure(t *testing.T) {
	const spec = "/cache/:id[/:tab]"
	first, err := parseSpec(httpParser(0), spec)
	require.NoError(t, err)
	second, err := parseSpec(httpParser(0), spec)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	fresh, err := httpParser(0).parse(spec)
	require.NoError(t, err)
	assert.Equal(t, fresh, first)

	// the same text under another grammar is cached apart
	cli, err := parseSpec(cliParser(0), spec)
	require.NoError(t, err)
	assert.Equal(t, []token{{kind: tokenWord, text: spec}}, cli)
}
