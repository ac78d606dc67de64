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

package catalog

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/invopop/jsonschema"

	"dirpx.dev/rdx/apis"
	"dirpx.dev/rdx/descriptor"
)

// ErrNoType is returned by Schema for descriptors without a Go type.
var ErrNoType = errors.New("rdx(catalog): descriptor has no Go type")

// Schema returns a JSON Schema of the persisted members of d. Property
// names follow the rdx tags; transient members are omitted.
func Schema(d apis.Descriptor) (*jsonschema.Schema, error) {
	t := d.Type()
	if t == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoType, d.Name())
	}
	r := &jsonschema.Reflector{
		FieldNameTag:   descriptor.TagKey,
		ExpandedStruct: true,
		DoNotReference: true,
	}
	s := r.ReflectFromType(t)
	s.Title = d.Name()
	s.Description = "class version " + strconv.Itoa(d.Version())

	if s.Properties != nil {
		for _, m := range d.Members() {
			if !m.Modifiers.IsPersistent() {
				s.Properties.Delete(m.Name)
			}
		}
	}
	required := s.Required[:0]
	for _, name := range s.Required {
		if m, ok := d.Member(name); !ok || m.Modifiers.IsPersistent() {
			required = append(required, name)
		}
	}
	s.Required = required
	return s, nil
}
