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

package descriptor

import (
	"fmt"
	"reflect"

	"dirpx.dev/rdx/modifier"
	uref "dirpx.dev/rdx/utils/reflect"
)

var stringerType = reflect.TypeOf((*fmt.Stringer)(nil)).Elem()

// KindOf classifies a Go type in the structural kind vocabulary.
//
// Structs with a method set are classes, structs without one are plain
// structs. Named integer types with a String method are enums. Generic
// instantiations are template instances whatever their underlying kind.
func KindOf(t reflect.Type) modifier.Kind {
	if t == nil {
		return modifier.Unresolved
	}
	if uref.IsGenericInstance(t) {
		return modifier.TypeTemplateInstance
	}
	switch t.Kind() {
	case reflect.Struct:
		if t.NumMethod() > 0 || reflect.PointerTo(t).NumMethod() > 0 {
			return modifier.Class
		}
		return modifier.Struct
	case reflect.Interface:
		return modifier.Class
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if t.PkgPath() != "" && t.Implements(stringerType) {
			return modifier.Enum
		}
		return modifier.Fundamental
	case reflect.Bool, reflect.Float32, reflect.Float64, reflect.Complex64,
		reflect.Complex128, reflect.String, reflect.Uintptr:
		return modifier.Fundamental
	case reflect.Func:
		return modifier.Function
	case reflect.Array, reflect.Slice:
		return modifier.Array
	case reflect.Pointer, reflect.UnsafePointer:
		return modifier.Pointer
	case reflect.Map, reflect.Chan:
		return modifier.Typedef
	default:
		return modifier.Unresolved
	}
}

// modifiersOf derives the type-level qualifiers of t.
func modifiersOf(t reflect.Type) modifier.Set {
	if t == nil {
		return modifier.None
	}
	s := modifier.Public
	if t.Kind() == reflect.Interface {
		s |= modifier.Abstract | modifier.Virtual
	}
	return s
}
