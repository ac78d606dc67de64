/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package reflect

import (
	"errors"
	"reflect"

	"dirpx.dev/rdx/apis"
	"dirpx.dev/rdx/config"
)

var (
	// ErrReflectNilType is returned when a nil reflect.Type is provided.
	ErrReflectNilType = errors.New("rdx(reflect): nil reflect.Type provided")
	// ErrReflectTypeNotNamed indicates that the provided type (after unwrapping containers)
	// does not contain a named type (e.g., anonymous struct, func, interface{}).
	ErrReflectTypeNotNamed = errors.New("rdx(reflect): type has no nearest named type")
)

// Normalize unwraps containers according to config (MaxUnwrap/MapPreferElem)
// and returns the nearest named inner type, or an error if none is found.
// The result is the host identity token a type is registered under, so
// T, *T and []T all resolve to the same descriptor.
//
// Unwrapping policy:
//   - ptr/slice/array/chan  -> Elem()
//   - map[K]V: the preferred side (Elem if MapPreferElem, otherwise Key) wins
//     when named, then the other side; if neither is named, unwrapping
//     continues with Elem().
//   - default: if t.Name() != "", return t; otherwise ErrReflectTypeNotNamed.
//
// If MaxUnwrap <= 0, DefaultMaxUnwrap is used.
func Normalize(t reflect.Type, cfg apis.Config) (reflect.Type, error) {
	if t == nil {
		return nil, ErrReflectNilType
	}
	maxUnwrap := cfg.MaxUnwrap
	if maxUnwrap <= 0 {
		maxUnwrap = config.DefaultMaxUnwrap
	}

	for i := 0; t != nil && i < maxUnwrap; i++ {
		// A named type is its own token, even if it is a named slice or map.
		if t.Name() != "" {
			return t, nil
		}
		switch t.Kind() {
		case reflect.Ptr, reflect.Slice, reflect.Array, reflect.Chan:
			t = t.Elem()
		case reflect.Map:
			if named := mapSide(t, cfg.MapPreferElem); named != nil {
				return named, nil
			}
			t = t.Elem()
		default:
			return nil, ErrReflectTypeNotNamed
		}
	}

	// After reaching max depth, ensure we ended on a named type.
	if t != nil && t.Name() != "" {
		return t, nil
	}
	return nil, ErrReflectTypeNotNamed
}

// mapSide returns the named side of map type t, trying the preferred side first.
func mapSide(t reflect.Type, preferElem bool) reflect.Type {
	first, second := t.Key(), t.Elem()
	if preferElem {
		first, second = second, first
	}
	if first.Name() != "" {
		return first
	}
	if second.Name() != "" {
		return second
	}
	return nil
}

// IsBuiltin reports whether t is a named type without a package,
// e.g. int, string or error.
func IsBuiltin(t reflect.Type) bool {
	return t != nil && t.Name() != "" && t.PkgPath() == ""
}
