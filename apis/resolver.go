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

package apis

import "errors"

// ErrUnresolvedRuntimeType is the advisory error carried by a Resolution
// that fell back to a less specific descriptor.
var ErrUnresolvedRuntimeType = errors.New("rdx(resolver): unresolved runtime type")

// Resolution is the outcome of a dynamic type resolution.
type Resolution struct {
	// Descriptor is always usable when a static descriptor was supplied.
	Descriptor Descriptor
	// Resolved is false when Descriptor is a fallback.
	Resolved bool
}

// Err returns ErrUnresolvedRuntimeType for fallback results, nil otherwise.
func (r Resolution) Err() error {
	if r.Resolved {
		return nil
	}
	return ErrUnresolvedRuntimeType
}

// Resolver computes the descriptor of the actual most-derived type of obj,
// given the descriptor of the static type it is accessed through.
// Resolve never mutates the registry and is safe for concurrent use.
type Resolver interface {
	Resolve(obj any, static Descriptor) Resolution
}
