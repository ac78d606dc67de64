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
	"dirpx.dev/rdx/apis"
)

// NewClasserStrategy creates an apis.Strategy that trusts values
// implementing apis.Classer to name their own class.
func NewClasserStrategy(reg apis.Registry) apis.Strategy {
	return &classerStrategy{reg: reg}
}

// classerStrategy is the reflection-free path: if obj implements
// apis.Classer, its ClassName() is looked up by name.
type classerStrategy struct {
	reg apis.Registry
}

// Ensure classerStrategy implements apis.Strategy.
var _ apis.Strategy = (*classerStrategy)(nil)

// TryResolve checks if obj implements apis.Classer and looks up its
// ClassName(). The result is accepted only when the named descriptor is the
// dynamic type's own, or carries no Go type; a ClassName promoted from an
// embedded base falls through.
func (s *classerStrategy) TryResolve(obj any, _ apis.Descriptor) (apis.Resolution, bool) {
	c, ok := obj.(apis.Classer)
	if !ok || s.reg == nil {
		return apis.Resolution{}, false
	}
	name := c.ClassName()
	if name == "" {
		return apis.Resolution{}, false
	}
	d, err := s.reg.Lookup(name)
	if err != nil {
		return apis.Resolution{}, false
	}
	if d.Type() != nil && d.Type() != DynamicType(obj) {
		return apis.Resolution{}, false
	}
	return apis.Resolution{Descriptor: d, Resolved: true}, true
}
