// Copyright (c) 2019,CAO HONGJU. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package locator

import (
	"fmt"
	"reflect"
	"time"

	"github.com/spf13/cast"
)

var durationType = reflect.TypeOf(time.Duration(0))

// Coerce converts v to a value assignable to t. Values already assignable
// are returned unchanged; scalars and string or int slices are converted
// with cast, then converted to named types such as `type ID int`.
func Coerce(v any, t reflect.Type) (any, error) {
	if v == nil {
		return reflect.Zero(t).Interface(), nil
	}
	vt := reflect.TypeOf(v)
	if vt.AssignableTo(t) {
		return v, nil
	}

	var (
		out any
		err error
	)
	switch {
	case t == durationType:
		out, err = cast.ToDurationE(v)
	default:
		switch t.Kind() {
		case reflect.String:
			out, err = cast.ToStringE(v)
		case reflect.Bool:
			out, err = cast.ToBoolE(v)
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			var n int64
			if n, err = cast.ToInt64E(v); err == nil {
				if reflect.Zero(t).OverflowInt(n) {
					err = fmt.Errorf("%d overflows %s", n, t)
				}
				out = n
			}
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			var n uint64
			if n, err = cast.ToUint64E(v); err == nil {
				if reflect.Zero(t).OverflowUint(n) {
					err = fmt.Errorf("%d overflows %s", n, t)
				}
				out = n
			}
		case reflect.Float32, reflect.Float64:
			out, err = cast.ToFloat64E(v)
		case reflect.Slice:
			switch {
			case t.Elem().Kind() == reflect.String:
				out, err = cast.ToStringSliceE(v)
			case t.Elem().Kind() == reflect.Int:
				out, err = cast.ToIntSliceE(v)
			default:
				err = fmt.Errorf("cannot convert %T to %s", v, t)
			}
		default:
			err = fmt.Errorf("cannot convert %T to %s", v, t)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArgumentType, err)
	}

	rv := reflect.ValueOf(out)
	if rv.Type() == t {
		return out, nil
	}
	if !rv.Type().ConvertibleTo(t) {
		return nil, fmt.Errorf("%w: cannot convert %T to %s", ErrArgumentType, v, t)
	}
	return rv.Convert(t).Interface(), nil
}

// isScalar reports whether values of v's type may stand in a string, as
// factory key placeholders require.
func isScalar(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
