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

package reflect_test

import (
	"errors"
	"reflect"
	"runtime"
	"sync"
	"testing"

	"dirpx.dev/rdx/apis"
	"dirpx.dev/rdx/config"
	uref "dirpx.dev/rdx/utils/reflect"
)

type Hit struct{ X, Y float64 }

type Track struct{ Hits []Hit }

type Hits []Hit

type Vec[T any] struct{ V []T }

type Anon = struct{ X int }

func TestNormalize_RegistryToken(t *testing.T) {
	hit := reflect.TypeFor[Hit]()
	tests := []struct {
		name string
		typ  reflect.Type
		cfg  apis.Config
		want reflect.Type
	}{
		{"value", hit, config.DefaultConfig(), hit},
		{"pointer", reflect.TypeFor[*Hit](), config.DefaultConfig(), hit},
		{"slice of pointers", reflect.TypeFor[[]*Hit](), config.DefaultConfig(), hit},
		{"array", reflect.TypeFor[[4]Hit](), config.DefaultConfig(), hit},
		{"chan", reflect.TypeFor[chan Hit](), config.DefaultConfig(), hit},
		{"named slice keeps its name", reflect.TypeFor[*Hits](), config.DefaultConfig(), reflect.TypeFor[Hits]()},
		{"generic instance", reflect.TypeFor[*Vec[Track]](), config.DefaultConfig(), reflect.TypeFor[Vec[Track]]()},
		{"map prefers elem by default", reflect.TypeFor[map[string]Hit](), config.DefaultConfig(), hit},
		{"map prefers key", reflect.TypeFor[map[string]Hit](), config.NewConfig(config.WithMapPreferElem(false)), reflect.TypeFor[string]()},
		{"map falls back to the named side", reflect.TypeFor[map[string]Anon](), config.DefaultConfig(), reflect.TypeFor[string]()},
		{"map of unnamed keys continues with elem", reflect.TypeFor[map[Anon][]Hit](), config.DefaultConfig(), hit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := uref.Normalize(tt.typ, tt.cfg)
			if err != nil {
				t.Fatalf("Normalize(%v): %v", tt.typ, err)
			}
			if got != tt.want {
				t.Fatalf("Normalize(%v) = %v, want %v", tt.typ, got, tt.want)
			}
		})
	}
}

func TestNormalize_MaxUnwrap(t *testing.T) {
	deep := reflect.TypeFor[***Hit]()
	if _, err := uref.Normalize(deep, config.NewConfig(config.WithMaxUnwrap(2))); !errors.Is(err, uref.ErrReflectTypeNotNamed) {
		t.Fatalf("MaxUnwrap=2: got %v, want ErrReflectTypeNotNamed", err)
	}
	if got, err := uref.Normalize(deep, config.NewConfig(config.WithMaxUnwrap(3))); err != nil || got != reflect.TypeFor[Hit]() {
		t.Fatalf("MaxUnwrap=3: got (%v,%v), want (Hit,nil)", got, err)
	}
	// a zero limit falls back to the default
	if got, err := uref.Normalize(deep, apis.Config{}); err != nil || got != reflect.TypeFor[Hit]() {
		t.Fatalf("MaxUnwrap=0: got (%v,%v), want (Hit,nil)", got, err)
	}
}

func TestNormalize_Errors(t *testing.T) {
	if _, err := uref.Normalize(nil, config.DefaultConfig()); !errors.Is(err, uref.ErrReflectNilType) {
		t.Fatalf("nil type: got %v", err)
	}
	for _, typ := range []reflect.Type{
		reflect.TypeFor[Anon](),
		reflect.TypeFor[[]struct{}](),
		reflect.TypeFor[func()](),
	} {
		if _, err := uref.Normalize(typ, config.DefaultConfig()); !errors.Is(err, uref.ErrReflectTypeNotNamed) {
			t.Fatalf("Normalize(%v): got %v, want ErrReflectTypeNotNamed", typ, err)
		}
	}
}

func TestIsBuiltin(t *testing.T) {
	tests := []struct {
		typ  reflect.Type
		want bool
	}{
		{reflect.TypeFor[int](), true},
		{reflect.TypeFor[string](), true},
		{reflect.TypeFor[error](), true},
		{reflect.TypeFor[Hit](), false},
		{reflect.TypeFor[*int](), false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := uref.IsBuiltin(tt.typ); got != tt.want {
			t.Fatalf("IsBuiltin(%v) = %v, want %v", tt.typ, got, tt.want)
		}
	}
}

// Normalize is pure; hammer it from many goroutines.
func TestNormalize_Concurrent(t *testing.T) {
	types := []reflect.Type{
		reflect.TypeFor[Hit](),
		reflect.TypeFor[*Track](),
		reflect.TypeFor[[]*Hit](),
		reflect.TypeFor[map[string]Hit](),
		reflect.TypeFor[Vec[Hit]](),
		reflect.TypeFor[int](),
	}
	cfg := config.DefaultConfig()

	workers := runtime.GOMAXPROCS(0) * 4
	var wg sync.WaitGroup
	errCh := make(chan error, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 2000; i++ {
				rt, err := uref.Normalize(types[i%len(types)], cfg)
				if err != nil {
					errCh <- err
					return
				}
				if rt.Name() == "" {
					errCh <- errors.New("unnamed token")
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Fatal(err)
	}
}

func BenchmarkNormalize(b *testing.B) {
	types := []reflect.Type{
		reflect.TypeFor[Hit](),
		reflect.TypeFor[*Track](),
		reflect.TypeFor[map[string]Hit](),
		reflect.TypeFor[Vec[Hit]](),
	}
	cfg := config.DefaultConfig()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = uref.Normalize(types[i%len(types)], cfg)
	}
}
