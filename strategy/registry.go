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

// NewRegistryStrategy creates an apis.Strategy that looks up the dynamic
// type of a value in reg.
func NewRegistryStrategy(reg apis.Registry) apis.Strategy {
	return &registryStrategy{reg: reg}
}

// registryStrategy resolves exact registrations of the dynamic type.
type registryStrategy struct {
	reg apis.Registry
}

// Ensure registryStrategy implements apis.Strategy.
var _ apis.Strategy = (*registryStrategy)(nil)

// TryResolve looks up obj's dynamic type in the registry.
func (s *registryStrategy) TryResolve(obj any, _ apis.Descriptor) (apis.Resolution, bool) {
	t := DynamicType(obj)
	if t == nil || s.reg == nil {
		return apis.Resolution{}, false
	}
	d, err := s.reg.LookupType(t)
	if err != nil {
		return apis.Resolution{}, false
	}
	return apis.Resolution{Descriptor: d, Resolved: true}, true
}

// DynamicType returns the named type behind obj after dereferencing
// pointers, or nil when obj is nil or its type is unnamed.
func DynamicType(obj any) reflect.Type {
	if obj == nil {
		return nil
	}
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return nil
	}
	return t
}
