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

package resolver_test

import (
	"errors"
	"reflect"
	"runtime"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"dirpx.dev/rdx/apis"
	"dirpx.dev/rdx/config"
	"dirpx.dev/rdx/descriptor"
	"dirpx.dev/rdx/logger"
	"dirpx.dev/rdx/registry"
	"dirpx.dev/rdx/resolver"
)

type Shape interface{ Area() float64 }

type Base struct{ ID int }

func (*Base) Area() float64 { return 0 }

type Circle struct {
	Base
	R float64
}

func (*Circle) ClassName() string { return "geo.Circle" }

// Ring is a Circle nobody registered.
type Ring struct {
	Circle
	Inner float64
}

type Square struct {
	Base
	Side float64
}

type Unrelated struct{}

func (*Unrelated) Area() float64 { return 1 }

func add(t testing.TB, reg apis.Registry, name string, typ reflect.Type) apis.Descriptor {
	t.Helper()
	id := apis.NewIdentity(name, typ)
	d, err := reg.Add(id, func() (apis.Descriptor, error) {
		return descriptor.New(apis.DescriptorSpec{Identity: id, Version: 1})
	})
	if err != nil {
		t.Fatalf("Add(%s): %v", name, err)
	}
	return d
}

func fixture(t testing.TB) (apis.Registry, apis.Descriptor) {
	t.Helper()
	reg := registry.New(config.DefaultConfig())
	base := add(t, reg, "geo.Base", reflect.TypeOf(Base{}))
	add(t, reg, "geo.Circle", reflect.TypeOf(Circle{}))
	return reg, base
}

func TestResolve_Chain(t *testing.T) {
	reg, base := fixture(t)
	res := resolver.NewDefault(reg)

	cases := []struct {
		name     string
		obj      Shape
		want     string
		resolved bool
	}{
		{"exact", &Circle{}, "geo.Circle", true},
		{"static_exact", &Base{}, "geo.Base", true},
		{"ancestor", &Ring{}, "geo.Circle", false},
		{"ancestor_of_unregistered", &Square{}, "geo.Base", false},
		{"fallback", &Unrelated{}, "geo.Base", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := res.Resolve(tc.obj, base)
			if got.Descriptor == nil || got.Descriptor.Name() != tc.want || got.Resolved != tc.resolved {
				t.Fatalf("Resolve(%T) = %+v, want (%s,%v)", tc.obj, got, tc.want, tc.resolved)
			}
			if !tc.resolved && !errors.Is(got.Err(), resolver.ErrUnresolvedRuntimeType) {
				t.Fatalf("fallback must carry ErrUnresolvedRuntimeType, got %v", got.Err())
			}
		})
	}

	if got := res.Resolve(nil, base); got.Resolved || got.Descriptor != base {
		t.Fatalf("Resolve(nil) = %+v, want static fallback", got)
	}
	if got := res.Resolve(&Unrelated{}, nil); got.Descriptor != nil || got.Resolved {
		t.Fatalf("Resolve without static = %+v", got)
	}
}

func TestResolve_CacheFollowsGeneration(t *testing.T) {
	reg, base := fixture(t)
	res := resolver.NewDefault(reg)

	if got := res.Resolve(&Square{}, base); got.Resolved {
		t.Fatalf("Square resolved before registration")
	}
	sq := add(t, reg, "geo.Square", reflect.TypeOf(Square{}))
	if got := res.Resolve(&Square{}, base); !got.Resolved || got.Descriptor != sq {
		t.Fatalf("stale cache after registration: %+v", got)
	}
	reg.Remove("geo.Square")
	if got := res.Resolve(&Square{}, base); got.Resolved || got.Descriptor.Name() != "geo.Base" {
		t.Fatalf("stale cache after removal: %+v", got)
	}
}

func TestResolve_LogsUnresolved(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger.Set(zap.New(core))
	t.Cleanup(func() { logger.Set(nil) })

	reg, base := fixture(t)
	res := resolver.NewDefault(reg)
	res.Resolve(&Unrelated{}, base)

	entries := logs.FilterMessage("unresolved runtime type").All()
	if len(entries) != 1 {
		t.Fatalf("want 1 log entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["fallback"]; got != "geo.Base" {
		t.Fatalf("fallback field = %v", got)
	}
}

func TestNew_IgnoresNilStrategies(t *testing.T) {
	_, base := fixture(t)
	res := resolver.New(nil, nil, nil)
	if got := res.Resolve(&Circle{}, base); got.Resolved || got.Descriptor != base {
		t.Fatalf("empty chain = %+v, want static fallback", got)
	}
}

func TestResolve_Concurrent(t *testing.T) {
	reg, base := fixture(t)
	res := resolver.NewDefault(reg)

	objs := []Shape{&Circle{}, &Ring{}, &Base{}, &Unrelated{}}
	want := []string{"geo.Circle", "geo.Circle", "geo.Base", "geo.Base"}

	var wg sync.WaitGroup
	workers := runtime.GOMAXPROCS(0) * 4
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(n int) {
			defer wg.Done()
			for i := 0; i < 2000; i++ {
				j := (i + n) % len(objs)
				if got := res.Resolve(objs[j], base); got.Descriptor.Name() != want[j] {
					t.Errorf("Resolve(%T) = %s, want %s", objs[j], got.Descriptor.Name(), want[j])
					return
				}
			}
		}(w)
	}
	wg.Wait()
}

func BenchmarkResolve(b *testing.B) {
	reg, base := fixture(b)
	res := resolver.NewDefault(reg)
	objs := []Shape{&Circle{}, &Ring{}, &Square{}, &Unrelated{}}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = res.Resolve(objs[i%len(objs)], base)
	}
}

func TestInheritsFrom(t *testing.T) {
	reg, base := fixture(t)
	circle, _ := reg.Lookup("geo.Circle")
	ring := add(t, reg, "geo.Ring", reflect.TypeOf(Ring{}))
	unrelated := add(t, reg, "geo.Unrelated", reflect.TypeOf(Unrelated{}))

	cases := []struct {
		d, base apis.Descriptor
		want    bool
	}{
		{circle, base, true},
		{ring, base, true},
		{ring, circle, true},
		{base, base, true},
		{base, circle, false},
		{unrelated, base, false},
		{nil, base, false},
	}
	for _, tc := range cases {
		if got := resolver.InheritsFrom(reg, tc.d, tc.base); got != tc.want {
			t.Errorf("InheritsFrom(%v, %v) = %v, want %v", tc.d, tc.base, got, tc.want)
		}
	}
	// without a registry the embedded fields are walked directly
	if !resolver.InheritsFrom(nil, ring, base) {
		t.Fatalf("InheritsFrom without registry")
	}
}
