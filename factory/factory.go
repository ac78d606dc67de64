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

// Package factory provides the construction/destruction bundles exposed by
// descriptors.
//
// For[T] is the statically typed bundle a registering package builds for its
// own types. ForType serves descriptors that only know a reflect.Type.
// Both accept untyped addresses and reject addresses of any other type.
package factory

import (
	"errors"
	"fmt"
	"sync"

	"dirpx.dev/rdx/apis"
)

var (
	// ErrTypeMismatch is returned when an address does not point to the factory's type.
	ErrTypeMismatch = errors.New("rdx(factory): address has the wrong type")
	// ErrNegativeCount is returned by NewArray for n < 0.
	ErrNegativeCount = errors.New("rdx(factory): negative element count")
)

// For returns the factory bundle for T. Objects released with Delete are
// recycled through a sync.Pool.
func For[T any]() apis.Factory {
	f := &typed[T]{}
	f.pool.New = func() any { return new(T) }
	return f
}

// typed is the generic factory bundle for T.
type typed[T any] struct {
	pool sync.Pool
}

// Ensure typed implements apis.Factory.
var _ apis.Factory = (*typed[struct{}])(nil)

// New constructs a T, in place when at is a *T.
func (f *typed[T]) New(at any) (any, error) {
	var p *T
	if at == nil {
		p = f.pool.Get().(*T)
	} else {
		var ok bool
		if p, ok = at.(*T); !ok || p == nil {
			return nil, mismatch[T](at)
		}
	}
	var zero T
	*p = zero
	initialize(p)
	return p, nil
}

// NewArray constructs n values of T, reusing arena when it is a []T with enough capacity.
func (f *typed[T]) NewArray(n int, arena any) (any, error) {
	if n < 0 {
		return nil, ErrNegativeCount
	}
	var s []T
	if arena != nil {
		a, ok := arena.([]T)
		if !ok {
			return nil, mismatch[[]T](arena)
		}
		if cap(a) >= n {
			s = a[:n]
			clear(s)
		}
	}
	if s == nil {
		s = make([]T, n)
	}
	for i := range s {
		initialize(&s[i])
	}
	return s, nil
}

// Destruct runs the destructor of obj and zeroes it.
func (f *typed[T]) Destruct(obj any) error {
	p, ok := obj.(*T)
	if !ok || p == nil {
		return mismatch[T](obj)
	}
	destroy(p)
	return nil
}

// DestructArray destructs every element of arr.
func (f *typed[T]) DestructArray(arr any) error {
	s, ok := arr.([]T)
	if !ok {
		return mismatch[[]T](arr)
	}
	for i := range s {
		destroy(&s[i])
	}
	return nil
}

// Delete destructs obj and returns it to the pool.
func (f *typed[T]) Delete(obj any) error {
	if err := f.Destruct(obj); err != nil {
		return err
	}
	f.pool.Put(obj)
	return nil
}

// DeleteArray destructs every element of arr. Arrays are left to the GC.
func (f *typed[T]) DeleteArray(arr any) error {
	return f.DestructArray(arr)
}

// initialize runs the Initializer hook of p, if any.
func initialize[T any](p *T) {
	if in, ok := any(p).(apis.Initializer); ok {
		in.Init()
	}
}

// destroy runs the Destroyer hook of p, if any, then zeroes *p.
func destroy[T any](p *T) {
	if d, ok := any(p).(apis.Destroyer); ok {
		d.Destroy()
	}
	var zero T
	*p = zero
}

func mismatch[T any](got any) error {
	var want *T
	return fmt.Errorf("%w: got %T, want %T", ErrTypeMismatch, got, want)
}
