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

package factory

import (
	"fmt"
	"reflect"

	"dirpx.dev/rdx/apis"
)

var (
	initializerType = reflect.TypeOf((*apis.Initializer)(nil)).Elem()
	destroyerType   = reflect.TypeOf((*apis.Destroyer)(nil)).Elem()
)

// ForType returns a factory bundle for t built on package reflect. It is
// the fallback for descriptors created without a typed factory.
func ForType(t reflect.Type) apis.Factory {
	pt := reflect.PointerTo(t)
	return &dynamic{
		t:       t,
		ptr:     pt,
		slice:   reflect.SliceOf(t),
		hasInit: pt.Implements(initializerType),
		hasDtor: pt.Implements(destroyerType),
	}
}

// dynamic is the reflect-based factory bundle.
type dynamic struct {
	t, ptr, slice    reflect.Type
	hasInit, hasDtor bool
}

// Ensure dynamic implements apis.Factory.
var _ apis.Factory = (*dynamic)(nil)

func (f *dynamic) New(at any) (any, error) {
	var p reflect.Value
	if at == nil {
		p = reflect.New(f.t)
	} else {
		v, err := f.pointer(at)
		if err != nil {
			return nil, err
		}
		v.Elem().SetZero()
		p = v
	}
	f.initialize(p)
	return p.Interface(), nil
}

func (f *dynamic) NewArray(n int, arena any) (any, error) {
	if n < 0 {
		return nil, ErrNegativeCount
	}
	var s reflect.Value
	if arena != nil {
		a := reflect.ValueOf(arena)
		if a.Type() != f.slice {
			return nil, f.mismatch(arena, f.slice)
		}
		if a.Cap() >= n {
			s = a.Slice(0, n)
			for i := 0; i < n; i++ {
				s.Index(i).SetZero()
			}
		}
	}
	if !s.IsValid() {
		s = reflect.MakeSlice(f.slice, n, n)
	}
	for i := 0; i < n; i++ {
		f.initialize(s.Index(i).Addr())
	}
	return s.Interface(), nil
}

func (f *dynamic) Destruct(obj any) error {
	p, err := f.pointer(obj)
	if err != nil {
		return err
	}
	f.destroy(p)
	return nil
}

func (f *dynamic) DestructArray(arr any) error {
	s := reflect.ValueOf(arr)
	if arr == nil || s.Type() != f.slice {
		return f.mismatch(arr, f.slice)
	}
	for i := 0; i < s.Len(); i++ {
		f.destroy(s.Index(i).Addr())
	}
	return nil
}

func (f *dynamic) Delete(obj any) error {
	return f.Destruct(obj)
}

func (f *dynamic) DeleteArray(arr any) error {
	return f.DestructArray(arr)
}

// pointer validates that obj is a non-nil pointer to f.t.
func (f *dynamic) pointer(obj any) (reflect.Value, error) {
	v := reflect.ValueOf(obj)
	if obj == nil || v.Type() != f.ptr || v.IsNil() {
		return reflect.Value{}, f.mismatch(obj, f.ptr)
	}
	return v, nil
}

func (f *dynamic) initialize(p reflect.Value) {
	if f.hasInit {
		p.Interface().(apis.Initializer).Init()
	}
}

func (f *dynamic) destroy(p reflect.Value) {
	if f.hasDtor {
		p.Interface().(apis.Destroyer).Destroy()
	}
	p.Elem().SetZero()
}

func (f *dynamic) mismatch(got any, want reflect.Type) error {
	return fmt.Errorf("%w: got %T, want %v", ErrTypeMismatch, got, want)
}
