// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pframe_test

import (
	"testing"

	"github.com/cnotch/pframe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLIRouteMatch(t *testing.T) {
	tests := []struct {
		spec   string
		args   []string
		want   pframe.Params
		wantOk bool
	}{
		{"$ deploy :env -force", []string{"deploy", "prod", "-force"}, pframe.Params{"env": "prod", "force": []string{"-force"}}, true},
		{"$ deploy :env -force", []string{"deploy"}, nil, false},
		{"$ deploy :env -force", []string{"deploy", "prod"}, pframe.Params{"env": "prod", "force": []string{}}, true},
		{"$ deploy :env -force", []string{"deploy", "prod", "-f", "--dry-run", "extra"}, pframe.Params{"env": "prod", "force": []string{"-f", "--dry-run"}}, true},
		{"$ deploy :env -force", []string{"rollback", "prod"}, nil, false},
		{"deploy :env :region?", []string{"deploy", "prod"}, pframe.Params{"env": "prod"}, true},
		{"deploy :env :region?", []string{"deploy", "prod", "eu"}, pframe.Params{"env": "prod", "region": "eu"}, true},
		{"deploy :env", []string{"deploy", "prod", "ignored"}, pframe.Params{"env": "prod"}, true},
		{"deploy :env", []string{"deploy", ""}, nil, false},
		{"$", []string{"anything", "at", "all"}, pframe.Params{}, true},
		{"", nil, pframe.Params{}, true},
		{"status", nil, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			r, err := pframe.NewCLIRoute(tt.spec, nil)
			require.NoError(t, err)
			got, ok := r.Match(pframe.NewCLISource(tt.args))
			assert.Equal(t, tt.wantOk, ok)
			if tt.wantOk {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestCLIRouteDefaultsAndValidators(t *testing.T) {
	r := pframe.MustRoute(pframe.NewCLIRoute("deploy :env :region?", nil,
		pframe.WithDefault("region", "us"),
		pframe.WithValidatorSpecs("env", "#^(dev|prod)$#"),
	))

	ps, ok := r.MatchArgs([]string{"deploy", "dev"})
	require.True(t, ok)
	assert.Equal(t, pframe.Params{"env": "dev", "region": "us"}, ps)

	ps, ok = r.MatchArgs([]string{"deploy", "prod", "eu"})
	require.True(t, ok)
	assert.Equal(t, "eu", ps.ByName("region"))

	_, ok = r.MatchArgs([]string{"deploy", "staging"})
	assert.False(t, ok)
}

func TestCLIRouteSourceKinds(t *testing.T) {
	r := pframe.MustRoute(pframe.NewCLIRoute("", nil))
	_, ok := r.Match(get("/"))
	assert.False(t, ok)

	_, err := r.Assemble(pframe.Params{})
	assert.ErrorIs(t, err, pframe.ErrNotAssemblable)
}

func TestCLISourceIsNotMutated(t *testing.T) {
	args := []string{"deploy", "prod", "-force"}
	src := pframe.NewCLISource(args)
	r := pframe.MustRoute(pframe.NewCLIRoute("deploy :env -force", nil))
	_, ok := r.Match(src)
	require.True(t, ok)
	_, ok = r.Match(src)
	require.True(t, ok)
	assert.Equal(t, args, src.Arguments())
}
