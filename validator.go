// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pframe

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
)

// Validator checks a matched parameter value.
// params holds every parameter of the match, defaults included.
type Validator interface {
	Validate(value string, params Params) bool
}

// Predicate adapts an ordinary function to a Validator.
type Predicate func(value string) bool

// Validate implements Validator.
func (f Predicate) Validate(value string, _ Params) bool { return f(value) }

type regexpValidator struct {
	re *regexp.Regexp
}

func (v regexpValidator) Validate(value string, _ Params) bool { return v.re.MatchString(value) }

func (v regexpValidator) String() string { return "#" + v.re.String() }

// Regexp returns a Validator accepting values matched by re.
// The expression is not anchored implicitly.
func Regexp(re *regexp.Regexp) Validator {
	if re == nil {
		panic("router: nil regular expression")
	}
	return regexpValidator{re}
}

// regexps shares compiled expressions between routes by source text.
var regexps sync.Map

func compileRegexp(expr string) (*regexp.Regexp, error) {
	if re, ok := regexps.Load(expr); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	actual, _ := regexps.LoadOrStore(expr, re)
	return actual.(*regexp.Regexp), nil
}

// regexpSource strips the '#' sentinel and an optional closing '#'.
func regexpSource(s string) string {
	s = strings.TrimPrefix(s, "#")
	if strings.HasSuffix(s, "#") && !strings.HasSuffix(s, `\#`) {
		s = s[:len(s)-1]
	}
	return s
}

const celPrefix = "cel:"

// ParseValidator builds a validator from its declarative form:
//
//	#regexp[#]   regular expression tested against the value
//	cel:expr     CEL expression over `value` and `params`, yielding a bool
func ParseValidator(s string) (Validator, error) {
	switch {
	case strings.HasPrefix(s, "#"):
		expr := regexpSource(s)
		if expr == "" {
			return nil, fmt.Errorf("router: empty regular expression validator: %w", ErrMalformedRouteSpec)
		}
		re, err := compileRegexp(expr)
		if err != nil {
			return nil, fmt.Errorf("router: invalid regular expression validator %q: %w", s, err)
		}
		return regexpValidator{re}, nil
	case strings.HasPrefix(s, celPrefix):
		return CEL(strings.TrimPrefix(s, celPrefix))
	}
	return nil, fmt.Errorf("router: unknown validator %q: %w", s, ErrMalformedRouteSpec)
}

// MustValidator is like ParseValidator but panics on error.
func MustValidator(s string) Validator {
	v, err := ParseValidator(s)
	if err != nil {
		panic(fmt.Sprintf("Validator initialization failed: %v", err))
	}
	return v
}

type celValidator struct {
	expr    string
	program cel.Program
}

func (v celValidator) String() string { return celPrefix + v.expr }

func (v celValidator) Validate(value string, params Params) bool {
	vars := make(map[string]any, len(params))
	for k, p := range params {
		vars[k] = p
	}
	out, _, err := v.program.Eval(map[string]any{"value": value, "params": vars})
	if err != nil {
		return false
	}
	ok, isBool := out.Value().(bool)
	return isBool && ok
}

var (
	celEnvOnce sync.Once
	celEnv     *cel.Env
	celEnvErr  error
	celCache   sync.Map // expr -> cel.Program
)

func validatorEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("value", cel.StringType),
			cel.Variable("params", cel.MapType(cel.StringType, cel.DynType)),
		)
	})
	return celEnv, celEnvErr
}

// CEL returns a Validator evaluating a CEL expression, for example
// `size(value) <= 8 && params.lang in ["en", "fr"]`.
// The expression must yield a bool.
func CEL(expr string) (Validator, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, errors.New("router: empty CEL expression")
	}
	if cached, ok := celCache.Load(expr); ok {
		return celValidator{expr, cached.(cel.Program)}, nil
	}
	env, err := validatorEnv()
	if err != nil {
		return nil, err
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("router: invalid CEL expression %q: %w", expr, issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("router: CEL expression %q must yield bool, got %s", expr, ast.OutputType())
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, err
	}
	celCache.Store(expr, program)
	return celValidator{expr, program}, nil
}
