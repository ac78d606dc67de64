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

package modifier_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"dirpx.dev/rdx/modifier"
)

func TestSet_Composition(t *testing.T) {
	r := require.New(t)

	s := modifier.Of(modifier.Public, modifier.Const)
	r.True(s.Has(modifier.Public))
	r.True(s.Has(modifier.Public | modifier.Const))
	r.False(s.Has(modifier.Public | modifier.Static))
	r.True(s.Any(modifier.Static | modifier.Const))
	r.Equal(2, s.Len())

	s2 := s.With(modifier.Transient).Without(modifier.Const)
	r.True(s2.Has(modifier.Transient))
	r.False(s2.Has(modifier.Const))
	// s itself is unchanged.
	r.True(s.Has(modifier.Const))

	r.Equal(modifier.Of(modifier.Public, modifier.Const, modifier.Static), s.Union(modifier.Static))
}

func TestSet_BitPositionsAreFrozen(t *testing.T) {
	r := require.New(t)
	r.Equal(modifier.Set(1<<0), modifier.Public)
	r.Equal(modifier.Set(1<<15), modifier.Const)
	r.Equal(modifier.Set(1<<18), modifier.Abstract)
	r.Equal(modifier.Set(1<<20), modifier.Transient)
	r.Equal(modifier.Set(1<<21), modifier.Artificial)
}

func TestSet_IsPersistent(t *testing.T) {
	r := require.New(t)
	r.True(modifier.None.IsPersistent())
	r.True(modifier.Of(modifier.Public, modifier.Const).IsPersistent())
	r.False(modifier.Transient.IsPersistent())
	r.False(modifier.Of(modifier.Public, modifier.Artificial).IsPersistent())
}

func TestSet_StringAndParse(t *testing.T) {
	cases := []struct {
		name string
		set  modifier.Set
		want string
	}{
		{"empty", modifier.None, "none"},
		{"single", modifier.Private, "private"},
		{"ordered by bit", modifier.Of(modifier.Virtual, modifier.Public, modifier.Const), "public|const|virtual"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := require.New(t)
			r.Equal(tc.want, tc.set.String())
			back, err := modifier.ParseSet(tc.want)
			r.NoError(err)
			r.Equal(tc.set, back)
		})
	}

	s, err := modifier.ParseSet(" Public, TRANSIENT ")
	require.NoError(t, err)
	require.Equal(t, modifier.Of(modifier.Public, modifier.Transient), s)

	_, err = modifier.ParseSet("public|bogus")
	require.Error(t, err)
}

func TestSet_UnknownBits(t *testing.T) {
	r := require.New(t)
	s := modifier.Set(1 << 30)
	r.Contains(s.String(), "0x40000000")
	_, err := s.MarshalText()
	r.Error(err)
}

func TestSet_JSON(t *testing.T) {
	r := require.New(t)
	type holder struct {
		Mods modifier.Set `json:"mods"`
	}
	b, err := json.Marshal(holder{Mods: modifier.Of(modifier.Static, modifier.Const)})
	r.NoError(err)
	r.JSONEq(`{"mods":"static|const"}`, string(b))

	var h holder
	r.NoError(json.Unmarshal(b, &h))
	r.Equal(modifier.Of(modifier.Static, modifier.Const), h.Mods)

	h.Mods = modifier.Public
	r.Error(json.Unmarshal([]byte(`{"mods":"nope"}`), &h))
	r.Equal(modifier.Public, h.Mods)
}
