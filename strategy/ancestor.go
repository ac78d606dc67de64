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

package strategy

import (
	"reflect"

	"dirpx.dev/rdx/apis"
)

// NewAncestorStrategy creates an apis.Strategy that finds the nearest
// registered ancestor of a value's dynamic type. Ancestors are embedded
// struct fields; only class, struct and namespace descriptors qualify.
func NewAncestorStrategy(reg apis.Registry) apis.Strategy {
	return &ancestorStrategy{reg: reg}
}

// ancestorStrategy walks embedded fields breadth-first, so the nearest
// registered ancestor wins. Its results are never flagged resolved.
type ancestorStrategy struct {
	reg apis.Registry
}

// Ensure ancestorStrategy implements apis.Strategy.
var _ apis.Strategy = (*ancestorStrategy)(nil)

// TryResolve returns the nearest registered ancestor of obj's dynamic type.
func (s *ancestorStrategy) TryResolve(obj any, _ apis.Descriptor) (apis.Resolution, bool) {
	t := DynamicType(obj)
	if t == nil || s.reg == nil {
		return apis.Resolution{}, false
	}
	if d := NearestAncestor(s.reg, t); d != nil {
		return apis.Resolution{Descriptor: d, Resolved: false}, true
	}
	return apis.Resolution{}, false
}

// NearestAncestor returns the descriptor of the closest embedded struct of
// t that is registered with a scope kind, or nil.
func NearestAncestor(reg apis.Registry, t reflect.Type) apis.Descriptor {
	seen := map[reflect.Type]bool{t: true}
	level := Embedded(t)
	for len(level) > 0 {
		var next []reflect.Type
		for _, bt := range level {
			if seen[bt] {
				continue
			}
			seen[bt] = true
			if d, err := reg.LookupType(bt); err == nil && d.Kind().IsScope() {
				return d
			}
			next = append(next, Embedded(bt)...)
		}
		level = next
	}
	return nil
}

// Embedded returns the struct types embedded in t, pointers dereferenced,
// in field order.
func Embedded(t reflect.Type) []reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	var out []reflect.Type
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.Anonymous {
			continue
		}
		ft := f.Type
		if ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if ft.Kind() == reflect.Struct {
			out = append(out, ft)
		}
	}
	return out
}
