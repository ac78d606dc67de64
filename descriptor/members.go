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
	"strconv"
	"strings"

	"dirpx.dev/rdx/apis"
	"dirpx.dev/rdx/modifier"
)

// TagKey is the struct tag consulted for member metadata.
//
//	X    float64 `rdx:"x"`                 // persisted as "x"
//	Z    float64 `rdx:"z,since=2"`         // added in class version 2
//	Old  int     `rdx:",until=3"`          // dropped after version 3
//	Tmp  []byte  `rdx:"-"`                 // transient
//	Hash uint64  `rdx:",transient,const"`
const TagKey = "rdx"

// tagFlags maps bare tag options to modifier flags.
var tagFlags = map[string]modifier.Set{
	"transient":  modifier.Transient,
	"artificial": modifier.Artificial,
	"const":      modifier.Const,
	"volatile":   modifier.Volatile,
	"mutable":    modifier.Mutable,
	"static":     modifier.Static,
}

// MembersOf derives the member list of a struct type. Non-struct types have
// no members.
func MembersOf(t reflect.Type) ([]apis.Member, error) {
	if t == nil || t.Kind() != reflect.Struct {
		return nil, nil
	}
	members := make([]apis.Member, 0, t.NumField())
	seen := make(map[string]string, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		m, err := memberOf(f)
		if err != nil {
			return nil, fmt.Errorf("rdx(descriptor): %v.%s: %w", t, f.Name, err)
		}
		if prev, dup := seen[m.Name]; dup {
			return nil, fmt.Errorf("rdx(descriptor): %v: fields %s and %s share member name %q", t, prev, f.Name, m.Name)
		}
		seen[m.Name] = f.Name
		members = append(members, m)
	}
	return members, nil
}

// memberOf builds the member description of one struct field.
func memberOf(f reflect.StructField) (apis.Member, error) {
	m := apis.Member{
		Name:     f.Name,
		Field:    f.Name,
		Index:    f.Index,
		Type:     f.Type,
		Offset:   f.Offset,
		Kind:     modifier.DataMember,
		Embedded: f.Anonymous,
	}
	if f.IsExported() {
		m.Modifiers = modifier.Public
	} else {
		// reflect cannot set unexported fields, so they never persist.
		m.Modifiers = modifier.Of(modifier.Private, modifier.Transient)
	}
	if f.Type.Kind() == reflect.Pointer {
		m.Modifiers |= modifier.Reference
	}

	tag, ok := f.Tag.Lookup(TagKey)
	if !ok {
		return m, nil
	}
	if tag == "-" {
		m.Modifiers |= modifier.Transient
		return m, nil
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name = strings.TrimSpace(name); name != "" {
		m.Name = name
	}
	for _, opt := range strings.Split(opts, ",") {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			continue
		}
		if flag, ok := tagFlags[opt]; ok {
			m.Modifiers |= flag
			continue
		}
		key, val, hasVal := strings.Cut(opt, "=")
		if !hasVal {
			return m, fmt.Errorf("unknown tag option %q", opt)
		}
		n, err := strconv.Atoi(val)
		if err != nil || n < 0 {
			return m, fmt.Errorf("tag option %q: invalid version %q", key, val)
		}
		switch key {
		case "since":
			m.Since = n
		case "until":
			m.Until = n
		default:
			return m, fmt.Errorf("unknown tag option %q", key)
		}
	}
	if m.Until > 0 && m.Since > m.Until {
		return m, fmt.Errorf("since=%d is after until=%d", m.Since, m.Until)
	}
	return m, nil
}

// basesOf returns the identities of the embedded struct members of t.
func basesOf(t reflect.Type, members []apis.Member, name func(reflect.Type) string) []apis.Identity {
	var bases []apis.Identity
	for _, m := range members {
		if !m.Embedded {
			continue
		}
		bt := m.Type
		if bt.Kind() == reflect.Pointer {
			bt = bt.Elem()
		}
		if bt.Kind() != reflect.Struct {
			continue
		}
		bases = append(bases, apis.NewIdentity(name(bt), bt))
	}
	return bases
}
