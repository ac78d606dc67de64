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

package reflect

import (
	"path"
	"reflect"
	"strings"
	"sync"

	"dirpx.dev/rdx/apis"
)

// cacheKey ensures memoization respects all config knobs that affect naming.
type cacheKey struct {
	t              reflect.Type
	includeBuiltin bool
	maxUnwrap      int16
	mapPreferElem  bool
}

// typeNameCache caches computed type names by (type, config knobs).
var typeNameCache sync.Map // key: cacheKey, val: string

// TypeName computes the default registered name of t: "<pkg>.<Type>", where
// pkg is the last element of the package path. Generic instantiation
// arguments are kept but shortened the same way, so distinct instantiations
// get distinct names: "pkg.Pair[int,other.Key]".
//
// Builtin types are named by their Go name when cfg.IncludeBuiltins is set,
// otherwise TypeName returns "". Types without a nearest named type also
// yield "".
func TypeName(t reflect.Type, cfg apis.Config) string {
	if t == nil {
		return ""
	}
	key := cacheKey{
		t:              t,
		includeBuiltin: cfg.IncludeBuiltins,
		maxUnwrap:      int16(cfg.MaxUnwrap),
		mapPreferElem:  cfg.MapPreferElem,
	}
	if v, ok := typeNameCache.Load(key); ok {
		return v.(string)
	}

	name := ""
	if base, err := Normalize(t, cfg); err == nil {
		switch {
		case base.PkgPath() != "":
			name = path.Base(base.PkgPath()) + "." + shortenTypeArgs(base.Name())
		case cfg.IncludeBuiltins:
			name = base.Name()
		}
	}

	typeNameCache.Store(key, name)
	return name
}

// IsGenericInstance reports whether t is an instantiation of a generic type.
func IsGenericInstance(t reflect.Type) bool {
	return t != nil && strings.IndexByte(t.Name(), '[') >= 0
}

// shortenTypeArgs rewrites fully qualified type arguments inside an
// instantiation name: "Pair[int,example.com/x/other.Key]" -> "Pair[int,other.Key]".
func shortenTypeArgs(s string) string {
	i := strings.IndexByte(s, '[')
	if i < 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	b.WriteString(s[:i])
	start := i
	for j := i; j < len(s); j++ {
		switch s[j] {
		case '[', ']', ',', '*', ' ':
			b.WriteString(shortenQualified(s[start:j]))
			b.WriteByte(s[j])
			start = j + 1
		}
	}
	b.WriteString(shortenQualified(s[start:]))
	return b.String()
}

// shortenQualified turns "example.com/x/other.Key" into "other.Key".
func shortenQualified(s string) string {
	if s == "" || s[0] == '[' {
		return s
	}
	if slash := strings.LastIndexByte(s, '/'); slash >= 0 {
		return s[slash+1:]
	}
	return s
}
