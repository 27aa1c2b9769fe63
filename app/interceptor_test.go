// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package app_test

import (
	"context"
	"testing"

	"github.com/cnotch/pframe"
	"github.com/cnotch/pframe/app"
	"github.com/cnotch/pframe/locator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSignatureApp(t *testing.T, signature *string, its ...app.Interceptor) *app.Application {
	t.Helper()
	a, err := app.New(
		app.WithSource(pframe.NewCLISource([]string{"run"})),
		app.WithInterceptors(its...),
	)
	require.NoError(t, err)
	_, err = a.AddRoute("run", pframe.RouteSpec{
		Spec: "$ run",
		Dispatchable: locator.Handler(func() string {
			*signature += "D"
			return "done"
		}),
	})
	require.NoError(t, err)
	return a
}

func TestInterceptorChain(t *testing.T) {
	signature := ""
	a := newSignatureApp(t, &signature,
		app.NewInterceptor(
			func(st *app.State) bool {
				signature += "A"
				return true
			}, func(st *app.State) {
				signature += "B"
			}),
		app.PreInterceptor(func(st *app.State) bool {
			signature += "C"
			return true
		}),
	)
	out, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "done", out)
	assert.Equal(t, "ACDB", signature)
}

func TestInterceptorAbort(t *testing.T) {
	signature := ""
	a := newSignatureApp(t, &signature,
		app.PreInterceptor(func(st *app.State) bool {
			signature += "A"
			return true
		}),
		app.NewInterceptor(
			func(st *app.State) bool {
				signature += "B"
				st.SetResult("denied")
				return false
			}, func(st *app.State) {
				signature += "C"
			}),
	)
	out, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "denied", out)
	assert.Equal(t, "AB", signature)
}

func TestInterceptorUse(t *testing.T) {
	signature := ""
	a := newSignatureApp(t, &signature)
	a.Use(app.PostInterceptor(func(st *app.State) {
		assert.Equal(t, app.EventDispatch, st.Scope())
		assert.Equal(t, "done", st.Result(""))
		signature += "P"
	}))
	a.Use(nil, app.NewInterceptor(nil, nil))

	_, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "DP", signature)
}

func TestChainInterceptorFlattens(t *testing.T) {
	var order []string
	mark := func(s string) app.Interceptor {
		return app.NewInterceptor(
			func(*app.State) bool { order = append(order, "pre "+s); return true },
			func(*app.State) { order = append(order, "post "+s) },
		)
	}
	it := app.ChainInterceptor(mark("a"), app.ChainInterceptor(mark("b"), mark("c")), nil)
	st := app.NewState(context.Background(), nil, "id")
	require.True(t, it.PreHandle(st))
	it.PostHandle(st)
	assert.Equal(t, []string{"pre a", "pre b", "pre c", "post c", "post b", "post a"}, order)
}
