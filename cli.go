// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pframe

import (
	"strings"

	"github.com/cnotch/pframe/locator"
	"github.com/cnotch/queue"
)

// cliSigil marks a declarative spec as a cli route.
const cliSigil = "$"

// CLIRoute matches the argument vector of a command line invocation.
//
// The spec is a space separated list of tokens:
//
//	word      must equal the argument at the current position
//	:name     binds the current argument, which must be present
//	:name?    binds the current argument if any
//	-name     binds the following arguments that start with '-' as a []string
//
// Matching is positional, left to right, without backtracking. Arguments
// left over once every token is consumed are ignored. An empty
// spec matches any invocation.
type CLIRoute struct {
	spec   string
	tokens []token

	dispatchable *locator.Dispatchable
	defaults     map[string]any
	validators   map[string][]Validator
}

// NewCLIRoute compiles a cli route spec. A leading "$" is
// accepted and ignored.
func NewCLIRoute(spec string, d *locator.Dispatchable, opts ...RouteOption) (*CLIRoute, error) {
	o, err := newRouteOptions(opts)
	if err != nil {
		return nil, err
	}
	tokens, err := parseSpec(cliParser(0), strings.TrimLeft(spec, cliSigil+" "))
	if err != nil {
		return nil, err
	}
	return &CLIRoute{
		spec:         spec,
		tokens:       tokens,
		dispatchable: d,
		defaults:     o.defaults,
		validators:   o.validators,
	}, nil
}

// Spec implements Route.
func (r *CLIRoute) Spec() string { return r.spec }

// Dispatchable implements Route.
func (r *CLIRoute) Dispatchable() *locator.Dispatchable { return r.dispatchable }

// Match implements Route. Only cli sources can match.
func (r *CLIRoute) Match(src Source) (Params, bool) {
	cs, ok := src.(*CLISource)
	if !ok || cs == nil {
		return nil, false
	}
	return r.MatchArgs(cs.args)
}

// MatchArgs matches an argument vector, program name excluded.
func (r *CLIRoute) MatchArgs(args []string) (Params, bool) {
	ps := mergeParams(r.defaults, nil)
	if len(r.tokens) == 0 {
		return ps, true
	}

	var q queue.Queue
	for _, arg := range args {
		q.Push(arg)
	}
	cur := shift(&q)

	for _, t := range r.tokens {
		switch t.kind {
		case tokenWord:
			if cur != t.text {
				return nil, false
			}
			cur = shift(&q)
		case tokenParameter:
			if cur == "" {
				if !t.optional {
					return nil, false
				}
				continue
			}
			ps[t.text] = cur
			cur = shift(&q)
		case tokenOption:
			values := []string{}
			for strings.HasPrefix(cur, "-") {
				values = append(values, cur)
				cur = shift(&q)
			}
			ps[t.text] = values
		}
	}

	if !validate(r.validators, ps) {
		return nil, false
	}
	return ps, true
}

// shift pops the next argument, "" once the vector is exhausted.
func shift(q *queue.Queue) string {
	if q.Len() == 0 {
		return ""
	}
	e, _ := q.Pop()
	return e.(string)
}

// Assemble implements Route. Cli routes cannot be assembled.
func (r *CLIRoute) Assemble(Params) (string, error) {
	return "", ErrNotAssemblable
}
