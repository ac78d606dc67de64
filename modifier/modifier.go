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
	"math/bits"
	"strings"
)

// Set is an immutable bit set of qualifiers attached to a type or a member.
//
// # Overview
//
// Set carries visibility, storage class, cv-qualification and a few
// bookkeeping markers (transient, artificial). Flags are independent
// booleans: any combination is representable. Exclusivity rules, such as
// "only one of Public/Protected/Private", are a convention of the producers
// of a Set and are NOT enforced here.
//
// Set is pure value-semantics metadata. It has no behavior beyond
// composition; the consuming components decide what a flag means (for
// example, the streamer skips Transient and Artificial members).
//
// # Contract
//
//   - Bit positions are frozen. New flags MAY be appended after Artificial;
//     existing positions MUST NOT move because Sets are persisted in
//     catalogs and compared across builds.
//   - A zero Set means "no qualifiers".
//   - Set values are safe to copy and share between goroutines.
type Set uint32

const (
	Public Set = 1 << iota
	Protected
	Private
	Register
	Static
	Constructor
	Destructor
	Explicit
	Extern
	CopyConstructor
	Operator
	Inline
	Converter
	Auto
	Mutable
	Const
	Volatile
	Reference
	Abstract
	Virtual
	Transient
	Artificial
)

// None is the empty Set.
const None Set = 0

// all lists every known flag in bit order together with its token.
var all = [...]struct {
	flag  Set
	token string
}{
	{Public, "public"},
	{Protected, "protected"},
	{Private, "private"},
	{Register, "register"},
	{Static, "static"},
	{Constructor, "constructor"},
	{Destructor, "destructor"},
	{Explicit, "explicit"},
	{Extern, "extern"},
	{CopyConstructor, "copyconstructor"},
	{Operator, "operator"},
	{Inline, "inline"},
	{Converter, "converter"},
	{Auto, "auto"},
	{Mutable, "mutable"},
	{Const, "const"},
	{Volatile, "volatile"},
	{Reference, "reference"},
	{Abstract, "abstract"},
	{Virtual, "virtual"},
	{Transient, "transient"},
	{Artificial, "artificial"},
}

// known is the union of all defined flags.
const known = Artificial<<1 - 1

// Of builds a Set from the given flags.
func Of(flags ...Set) Set {
	var s Set
	for _, f := range flags {
		s |= f
	}
	return s
}

// Has reports whether every flag in f is present in s.
func (s Set) Has(f Set) bool {
	return s&f == f
}

// Any reports whether at least one flag in f is present in s.
func (s Set) Any(f Set) bool {
	return s&f != 0
}

// With returns s with the flags in f added.
func (s Set) With(f Set) Set {
	return s | f
}

// Without returns s with the flags in f cleared.
func (s Set) Without(f Set) Set {
	return s &^ f
}

// Union returns the union of s and o.
func (s Set) Union(o Set) Set {
	return s | o
}

// Len returns the number of flags set.
func (s Set) Len() int {
	return bits.OnesCount32(uint32(s))
}

// IsPersistent reports whether a member carrying s takes part in default
// streaming, i.e. it is neither Transient nor Artificial.
func (s Set) IsPersistent() bool {
	return !s.Any(Transient | Artificial)
}

// String renders the set as "|"-joined tokens in bit order, "none" for the
// empty set. Unknown bits are rendered as a hex suffix so corrupted values
// are still visible in logs.
func (s Set) String() string {
	if s == None {
		return "none"
	}
	parts := make([]string, 0, s.Len())
	for _, e := range all {
		if s&e.flag != 0 {
			parts = append(parts, e.token)
		}
	}
	if rest := s &^ known; rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(parts, "|")
}

// ParseSet parses the textual form produced by String. Tokens are matched
// case-insensitively and may be separated by "|", "," or whitespace.
func ParseSet(s string) (Set, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || strings.EqualFold(trimmed, "none") {
		return None, nil
	}
	fields := strings.FieldsFunc(trimmed, func(r rune) bool {
		return r == '|' || r == ',' || r == ' ' || r == '\t'
	})
	var out Set
	for _, f := range fields {
		flag, ok := lookupToken(f)
		if !ok {
			return None, fmt.Errorf("modifier: unknown flag %q", f)
		}
		out |= flag
	}
	return out, nil
}

// lookupToken maps a single token to its flag.
func lookupToken(tok string) (Set, bool) {
	for _, e := range all {
		if strings.EqualFold(e.token, tok) {
			return e.flag, true
		}
	}
	return None, false
}

// MarshalText encodes the set as text. Sets with unknown bits are rejected.
func (s Set) MarshalText() ([]byte, error) {
	if s&^known != 0 {
		return nil, fmt.Errorf("modifier: cannot marshal unknown flags 0x%x", uint32(s&^known))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a set from text. On failure s is left unchanged.
func (s *Set) UnmarshalText(text []byte) error {
	v, err := ParseSet(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
