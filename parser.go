// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pframe

import (
	"strings"
	"sync"
)

type tokenKind uint8

const (
	tokenLiteral tokenKind = iota
	tokenParameter
	tokenOptionalStart
	tokenOptionalEnd
	tokenWildcard
	tokenWord
	tokenOption
)

func (k tokenKind) String() string {
	switch k {
	case tokenLiteral:
		return "literal"
	case tokenParameter:
		return "parameter"
	case tokenOptionalStart:
		return "optional-start"
	case tokenOptionalEnd:
		return "optional-end"
	case tokenWildcard:
		return "wildcard"
	case tokenWord:
		return "word"
	case tokenOption:
		return "option"
	}
	return "unknown"
}

// token is one element of a compiled route spec.
type token struct {
	kind       tokenKind
	text       string // literal text, word, parameter or option name
	delimiters string // custom terminator set of an http parameter, "" means '/'
	validator  string // "#regex" declared inline
	optional   bool   // cli parameter ending in '?'
}

// parser parses the string representation of a route spec.
type parser interface {
	parse(spec string) ([]token, error)
}

type cacheKey struct {
	p    parser
	spec string
}

// specCache memoizes tokens by parser style and spec text.
// Tokens are never mutated after parse, so they are shared freely.
var specCache sync.Map

func parseSpec(p parser, spec string) ([]token, error) {
	key := cacheKey{p, spec}
	if cached, ok := specCache.Load(key); ok {
		return cached.([]token), nil
	}
	tokens, err := p.parse(spec)
	if err != nil {
		return nil, err
	}
	actual, _ := specCache.LoadOrStore(key, tokens)
	return actual.([]token), nil
}

const httpSpecials = "*:{[]"

type httpParser int

// parse scans an http path template:
//
//	Spec       = { Literal | Parameter | "[" | "]" | "*" }
//	Parameter  = ":" Name [ "#" Regexp [ "#" ] ] [ "{" Delimiters "}" ] [ ":" ]
//	Name       = any run of chars but ":/{[]#"
func (p httpParser) parse(spec string) ([]token, error) {
	var tokens []token
	level := 0

	for i := 0; i < len(spec); {
		begin := i
		for i < len(spec) && strings.IndexByte(httpSpecials, spec[i]) < 0 {
			i++
		}
		if i > begin {
			tokens = append(tokens, token{kind: tokenLiteral, text: spec[begin:i]})
		}
		if i == len(spec) {
			break
		}

		c := spec[i]
		i++
		switch c {
		case ':':
			t, next, err := p.parseParameter(spec, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, t)
			i = next
		case '[':
			level++
			tokens = append(tokens, token{kind: tokenOptionalStart})
		case ']':
			level--
			if level < 0 {
				return nil, &RouteSpecError{Spec: spec, Pos: i - 1, Reason: "closing bracket without matching opening bracket"}
			}
			tokens = append(tokens, token{kind: tokenOptionalEnd})
		case '*':
			tokens = append(tokens, token{kind: tokenWildcard, text: wildcardName})
		default: // '{' outside a parameter
			return nil, &RouteSpecError{Spec: spec, Pos: i - 1, Reason: "unexpected '{'"}
		}
	}

	if level > 0 {
		return nil, &RouteSpecError{Spec: spec, Pos: len(spec), Reason: "unbalanced brackets"}
	}
	return tokens, nil
}

// parseParameter parses the parameter starting at i, just past its ':'.
func (p httpParser) parseParameter(spec string, i int) (t token, next int, err error) {
	begin := i
	for i < len(spec) && strings.IndexByte(":/{[]#", spec[i]) < 0 {
		i++
	}
	t = token{kind: tokenParameter, text: spec[begin:i]}
	if t.text == "" {
		return t, i, &RouteSpecError{Spec: spec, Pos: begin, Reason: "empty parameter name"}
	}

	if i < len(spec) && spec[i] == '#' { // inline regular expression
		i++
		reBegin := i
		segEnd := strings.IndexByte(spec[i:], '/')
		if segEnd < 0 {
			segEnd = len(spec)
		} else {
			segEnd += i
		}
		if closing := unescapedHash(spec[i:segEnd]); closing >= 0 {
			t.validator = "#" + spec[reBegin:i+closing]
			i += closing + 1
		} else {
			for i < len(spec) && strings.IndexByte(":/{[]", spec[i]) < 0 {
				i++
			}
			t.validator = "#" + spec[reBegin:i]
		}
		if t.validator == "#" {
			return t, i, &RouteSpecError{Spec: spec, Pos: reBegin, Reason: "empty parameter regular expression"}
		}
	}

	if i < len(spec) && spec[i] == '{' {
		end := strings.IndexByte(spec[i+1:], '}')
		if end < 0 {
			return t, i, &RouteSpecError{Spec: spec, Pos: i, Reason: "unterminated delimiter set"}
		}
		if end == 0 {
			return t, i, &RouteSpecError{Spec: spec, Pos: i, Reason: "empty delimiter set"}
		}
		t.delimiters = spec[i+1 : i+1+end]
		i += end + 2
	}

	if i < len(spec) && spec[i] == ':' { // explicit terminator
		i++
	}
	return t, i, nil
}

// unescapedHash returns the index of the first '#' of s not escaped by a
// backslash, or -1.
func unescapedHash(s string) int {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '#':
			return i
		}
	}
	return -1
}

type cliParser int

// parse splits a cli template on spaces:
//
//	Spec  = { Word | ":" Name [ "?" ] | "-" Name }
func (p cliParser) parse(spec string) ([]token, error) {
	fields := strings.Fields(spec)
	tokens := make([]token, 0, len(fields))
	pos := 0
	for _, f := range fields {
		pos = strings.Index(spec[pos:], f) + pos
		switch f[0] {
		case ':':
			name := strings.TrimSuffix(f[1:], "?")
			if name == "" {
				return nil, &RouteSpecError{Spec: spec, Pos: pos, Reason: "empty parameter name"}
			}
			tokens = append(tokens, token{kind: tokenParameter, text: name, optional: strings.HasSuffix(f, "?")})
		case '-':
			name := strings.TrimLeft(f, "-")
			if name == "" {
				return nil, &RouteSpecError{Spec: spec, Pos: pos, Reason: "empty option name"}
			}
			tokens = append(tokens, token{kind: tokenOption, text: name})
		default:
			tokens = append(tokens, token{kind: tokenWord, text: f})
		}
		pos += len(f)
	}
	return tokens, nil
}
