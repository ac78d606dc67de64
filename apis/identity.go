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

import (
	"reflect"
)

// Identity is the immutable compile-time token of a registered type.
// Two identities are equal only when both the name and the host type token
// are equal; structurally identical types with different tokens are distinct.
// A nil Type denotes a foreign identity, known only by name.
type Identity struct {
	// Name is the textual, globally unique type name.
	Name string
	// Type is the host-level identity token.
	Type reflect.Type
}

// NewIdentity returns the identity for name and t.
func NewIdentity(name string, t reflect.Type) Identity {
	return Identity{Name: name, Type: t}
}

// ForeignIdentity returns an identity that has no Go type attached.
func ForeignIdentity(name string) Identity {
	return Identity{Name: name}
}

// Equal reports whether id and o denote the same identity.
func (id Identity) Equal(o Identity) bool {
	return id.Name == o.Name && id.Type == o.Type
}

// IsZero reports whether id is the zero identity.
func (id Identity) IsZero() bool {
	return id.Name == "" && id.Type == nil
}

// IsForeign reports whether id carries no Go type token.
func (id Identity) IsForeign() bool {
	return id.Type == nil
}

// Context returns the declaring context of id: the package path of its Go
// type, or "" for foreign and builtin identities.
func (id Identity) Context() string {
	if id.Type == nil {
		return ""
	}
	return id.Type.PkgPath()
}

// String returns "name" or "name(go type)".
func (id Identity) String() string {
	if id.Type == nil {
		return id.Name
	}
	return id.Name + "(" + id.Type.String() + ")"
}
