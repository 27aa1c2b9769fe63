// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pframe_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cnotch/pframe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSource(t *testing.T) {
	src := pframe.NewHTTPSource("GET", "/a?b=c", map[string]string{"content-type": "text/plain"}).
		WithBody([]byte("hello"))
	assert.Equal(t, pframe.SourceHTTP, src.Kind())
	assert.Equal(t, "http", src.Kind().String())
	assert.Equal(t, "GET", src.Method())
	assert.Equal(t, "/a?b=c", src.URI())
	assert.Equal(t, "HTTP/1.1", src.Protocol())
	assert.Equal(t, "text/plain", src.Header("Content-Type"))

	h := src.Headers()
	h.Set("Content-Type", "changed")
	assert.Equal(t, "text/plain", src.Header("content-type"))

	body, err := src.Body()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(body))
}

func TestHTTPSourceFromRequest(t *testing.T) {
	req := httptest.NewRequest("PUT", "/items/3?x=1", strings.NewReader("payload"))
	req.Header.Set("X-Token", "t")
	src := pframe.NewHTTPSourceFromRequest(req)

	assert.Equal(t, "PUT", src.Method())
	assert.Equal(t, "/items/3?x=1", src.URI())
	assert.Equal(t, "t", src.Header("x-token"))

	for i := 0; i < 2; i++ {
		body, err := src.Body()
		require.NoError(t, err)
		assert.Equal(t, "payload", string(body))
	}

	r := pframe.MustRoute(pframe.NewHTTPRoute("PUT /items/:id", nil))
	ps, ok := r.Match(src)
	require.True(t, ok)
	assert.Equal(t, "3", ps.ByName("id"))
}

func TestCLISource(t *testing.T) {
	args := []string{"a", "b"}
	src := pframe.NewCLISource(args)
	args[0] = "changed"
	assert.Equal(t, []string{"a", "b"}, src.Arguments())
	assert.Equal(t, "cli", src.Kind().String())
}

func TestParams(t *testing.T) {
	ps := pframe.Params{"id": 5, "tags": []string{"a", "b"}, "none": nil}
	assert.Equal(t, "5", ps.ByName("id"))
	assert.Equal(t, "", ps.ByName("missing"))
	assert.Equal(t, []string{"a", "b"}, ps.Strings("tags"))
	assert.Nil(t, ps.Strings("missing"))
	assert.True(t, ps.Has("id"))
	assert.False(t, ps.Has("none"))
	assert.Equal(t, 3, ps.Count())
	assert.Equal(t, []string{"id", "none", "tags"}, ps.Names())

	c := ps.Clone()
	c["id"] = 6
	assert.Equal(t, 5, ps["id"])

	v, ok := ps.Named("id")
	assert.True(t, ok)
	assert.Equal(t, 5, v)
	_, ok = ps.Named("none")
	assert.False(t, ok)
}
