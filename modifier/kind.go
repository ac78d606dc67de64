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

package modifier

import (
	"fmt"
	"strings"
)

// Kind is the closed structural classification of a described entity.
//
// # Overview
//
// Kind answers "what sort of thing is this?" for a descriptor or a member:
// a class, a plain struct, an enum, a pointer, a data member, and so on.
// The set of values is closed. Consumers switch on Kind to decide which
// entities they care about; for example, hierarchy walks only consider
// Class, Struct and Namespace.
//
// # Contract
//
//   - Values MUST NOT be renumbered; Unresolved is always last.
//   - String/Parse round-trip for every defined value.
//   - Unknown integers render as "Unknown(<n>)" and never panic.
type Kind uint8

const (
	// Class is a named type with a method set.
	Class Kind = iota
	// Struct is a named aggregate with no methods.
	Struct
	// Enum is a named integer type with symbolic values.
	Enum
	// Function is a function type.
	Function
	// Array covers fixed arrays and slices.
	Array
	// Fundamental is a builtin scalar type.
	Fundamental
	// Pointer is a pointer type.
	Pointer
	// PointerToMember is kept for vocabulary completeness.
	PointerToMember
	// Typedef is an alternate name for another type.
	Typedef
	// Union is kept for vocabulary completeness.
	Union
	// TypeTemplateInstance is an instantiation of a generic type.
	TypeTemplateInstance
	// MemberTemplateInstance is an instantiation of a generic function member.
	MemberTemplateInstance
	// Namespace is a grouping scope (a Go package).
	Namespace
	// DataMember is a field of an aggregate.
	DataMember
	// FunctionMember is a method.
	FunctionMember
	// Unresolved marks an entity whose shape is not known.
	Unresolved
)

var kindNames = [...]string{
	Class:                  "Class",
	Struct:                 "Struct",
	Enum:                   "Enum",
	Function:               "Function",
	Array:                  "Array",
	Fundamental:            "Fundamental",
	Pointer:                "Pointer",
	PointerToMember:        "PointerToMember",
	Typedef:                "Typedef",
	Union:                  "Union",
	TypeTemplateInstance:   "TypeTemplateInstance",
	MemberTemplateInstance: "MemberTemplateInstance",
	Namespace:              "Namespace",
	DataMember:             "DataMember",
	FunctionMember:         "FunctionMember",
	Unresolved:             "Unresolved",
}

// String returns the canonical token for k, or "Unknown(<n>)".
func (k Kind) String() string {
	if k.Valid() {
		return kindNames[k]
	}
	return fmt.Sprintf("Unknown(%d)", k)
}

// Valid reports whether k is one of the defined kinds.
func (k Kind) Valid() bool {
	return k <= Unresolved
}

// IsScope reports whether k can own members and take part in hierarchy walks.
func (k Kind) IsScope() bool {
	return k == Class || k == Struct || k == Namespace
}

// ParseKind parses a Kind token case-insensitively. Surrounding whitespace
// is ignored. On failure it returns Unresolved and a non-nil error.
func ParseKind(s string) (Kind, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Unresolved, fmt.Errorf("modifier: empty kind")
	}
	for i, n := range kindNames {
		if strings.EqualFold(n, trimmed) {
			return Kind(i), nil
		}
	}
	return Unresolved, fmt.Errorf("modifier: unknown kind %q", s)
}

// MustParseKind is like ParseKind but panics on invalid input.
func MustParseKind(s string) Kind {
	k, err := ParseKind(s)
	if err != nil {
		panic(err)
	}
	return k
}

// MarshalText encodes k as its canonical token. Unknown values are rejected
// rather than persisted as "Unknown(...)".
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("modifier: cannot marshal unknown kind %d", k)
	}
	return []byte(k.String()), nil
}

// UnmarshalText decodes k from text. On failure k is not modified.
func (k *Kind) UnmarshalText(text []byte) error {
	v, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = v
	return nil
}
