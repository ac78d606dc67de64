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

package factory_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"dirpx.dev/rdx/apis"
	"dirpx.dev/rdx/factory"
)

type plain struct {
	X, Y int
}

// hooked counts its lifecycle hooks through a shared counter.
type hooked struct {
	Ready   bool
	Counter *int
}

func (h *hooked) Init() { h.Ready = true }

func (h *hooked) Destroy() {
	if h.Counter != nil {
		*h.Counter++
	}
}

func bundles[T any]() map[string]apis.Factory {
	var zero T
	return map[string]apis.Factory{
		"typed":   factory.For[T](),
		"reflect": factory.ForType(reflect.TypeOf(zero)),
	}
}

func TestFactory_New(t *testing.T) {
	for name, f := range bundles[plain]() {
		t.Run(name, func(t *testing.T) {
			r := require.New(t)

			obj, err := f.New(nil)
			r.NoError(err)
			r.IsType(&plain{}, obj)
			r.Equal(plain{}, *obj.(*plain))

			// Placement construction resets the caller's memory in place.
			at := &plain{X: 3, Y: 4}
			got, err := f.New(at)
			r.NoError(err)
			r.Same(at, got)
			r.Equal(plain{}, *at)

			_, err = f.New(&hooked{})
			r.ErrorIs(err, factory.ErrTypeMismatch)
			_, err = f.New((*plain)(nil))
			r.ErrorIs(err, factory.ErrTypeMismatch)
		})
	}
}

func TestFactory_InitAndDestroyHooks(t *testing.T) {
	for name, f := range bundles[hooked]() {
		t.Run(name, func(t *testing.T) {
			r := require.New(t)

			obj, err := f.New(nil)
			r.NoError(err)
			h := obj.(*hooked)
			r.True(h.Ready)

			count := 0
			h.Counter = &count
			r.NoError(f.Destruct(h))
			r.Equal(1, count)
			r.Equal(hooked{}, *h)

			obj, err = f.New(nil)
			r.NoError(err)
			obj.(*hooked).Counter = &count
			r.NoError(f.Delete(obj))
			r.Equal(2, count)

			r.ErrorIs(f.Destruct(plain{}), factory.ErrTypeMismatch)
			r.ErrorIs(f.Delete(nil), factory.ErrTypeMismatch)
		})
	}
}

func TestFactory_Arrays(t *testing.T) {
	for name, f := range bundles[hooked]() {
		t.Run(name, func(t *testing.T) {
			r := require.New(t)

			arr, err := f.NewArray(3, nil)
			r.NoError(err)
			s := arr.([]hooked)
			r.Len(s, 3)
			for _, h := range s {
				r.True(h.Ready)
			}

			// A large enough arena is reused.
			arena := make([]hooked, 5)
			arena[0].Counter = new(int)
			arr, err = f.NewArray(2, arena)
			r.NoError(err)
			s = arr.([]hooked)
			r.Len(s, 2)
			r.Same(&arena[0], &s[0])
			r.Nil(s[0].Counter)

			// A too small arena is replaced.
			arr, err = f.NewArray(4, make([]hooked, 1))
			r.NoError(err)
			r.Len(arr.([]hooked), 4)

			count := 0
			for i := range s {
				s[i].Counter = &count
			}
			r.NoError(f.DestructArray(s))
			r.Equal(2, count)
			r.NoError(f.DeleteArray(s))

			_, err = f.NewArray(-1, nil)
			r.ErrorIs(err, factory.ErrNegativeCount)
			_, err = f.NewArray(1, []plain{})
			r.ErrorIs(err, factory.ErrTypeMismatch)
			r.ErrorIs(f.DestructArray([]plain{}), factory.ErrTypeMismatch)
		})
	}
}
