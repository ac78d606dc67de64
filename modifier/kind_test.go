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

import "testing"

func TestKind_StringParseRoundTrip(t *testing.T) {
	for k := Class; k <= Unresolved; k++ {
		got, err := ParseKind(k.String())
		if err != nil {
			t.Fatalf("ParseKind(%q): unexpected error: %v", k.String(), err)
		}
		if got != k {
			t.Fatalf("ParseKind(%q) = %v, want %v", k.String(), got, k)
		}
	}
}

func TestKind_ParseCaseInsensitive(t *testing.T) {
	cases := map[string]Kind{
		"class":                Class,
		"  STRUCT ":            Struct,
		"typetemplateinstance": TypeTemplateInstance,
		"DataMember":           DataMember,
	}
	for in, want := range cases {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Fatalf("ParseKind(%q) = (%v,%v), want (%v,nil)", in, got, err, want)
		}
	}
}

func TestKind_Invalid(t *testing.T) {
	if _, err := ParseKind(""); err == nil {
		t.Fatal("ParseKind(\"\"): expected error")
	}
	if k, err := ParseKind("interface"); err == nil || k != Unresolved {
		t.Fatalf("ParseKind(interface) = (%v,%v), want (Unresolved,error)", k, err)
	}
	bad := Kind(200)
	if bad.Valid() {
		t.Fatal("Kind(200).Valid() = true")
	}
	if s := bad.String(); s != "Unknown(200)" {
		t.Fatalf("Kind(200).String() = %q", s)
	}
	if _, err := bad.MarshalText(); err == nil {
		t.Fatal("MarshalText(Kind(200)): expected error")
	}
}

func TestKind_UnmarshalLeavesTargetOnError(t *testing.T) {
	k := Enum
	if err := k.UnmarshalText([]byte("bogus")); err == nil {
		t.Fatal("expected error")
	}
	if k != Enum {
		t.Fatalf("k modified on error: %v", k)
	}
	if err := k.UnmarshalText([]byte("namespace")); err != nil || k != Namespace {
		t.Fatalf("UnmarshalText(namespace) = (%v,%v)", k, err)
	}
}

func TestKind_IsScope(t *testing.T) {
	for _, k := range []Kind{Class, Struct, Namespace} {
		if !k.IsScope() {
			t.Fatalf("%v.IsScope() = false", k)
		}
	}
	for _, k := range []Kind{Enum, Pointer, DataMember, Unresolved} {
		if k.IsScope() {
			t.Fatalf("%v.IsScope() = true", k)
		}
	}
}

func TestMustParseKind_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("MustParseKind(bogus): expected panic")
		}
	}()
	_ = MustParseKind("bogus")
}
