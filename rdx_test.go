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

package rdx_test

import (
	"errors"
	"reflect"
	"runtime"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/sync/errgroup"

	"dirpx.dev/rdx"
	"dirpx.dev/rdx/apis"
	"dirpx.dev/rdx/behavior"
	"dirpx.dev/rdx/config"
	"dirpx.dev/rdx/registry"
)

type Point struct {
	X, Y float64
}

type Versioned struct {
	N int
}

func (Versioned) ClassVersion() int { return 7 }

type Lazy struct{ A int }

type Redirected struct{ A int }

type ShapeA struct{ A int }

type ShapeB struct{ B int }

type Base struct{ ID int }

type Circle struct {
	Base
	R float64
}

type Square struct {
	Base
	Side float64
}

// isolate installs a fresh process registry for the duration of the test.
func isolate(t *testing.T) apis.Registry {
	t.Helper()
	reg := registry.New(rdx.Config())
	rdx.SetRegistry(reg)
	t.Cleanup(func() { rdx.SetRegistry(registry.New(rdx.Config())) })
	return reg
}

func TestRegisterType_DefaultsFromCaller(t *testing.T) {
	isolate(t)
	if err := rdx.RegisterType[Point](1); err != nil {
		t.Fatalf("RegisterType: %v", err)
	}
	d, err := rdx.DescriptorOf[Point]()
	if err != nil {
		t.Fatalf("DescriptorOf: %v", err)
	}
	if d.Name() != "rdx_test.Point" || d.Version() != 1 {
		t.Fatalf("got %s v%d", d.Name(), d.Version())
	}
	if !strings.HasSuffix(d.DeclFile(), "rdx_test.go") || d.DeclLine() <= 0 {
		t.Fatalf("decl = %s:%d", d.DeclFile(), d.DeclLine())
	}
	if got, err := rdx.Lookup("rdx_test.Point"); err != nil || got != d {
		t.Fatalf("Lookup: (%v,%v)", got, err)
	}
	if got, err := rdx.LookupType(reflect.TypeOf(&Point{})); err != nil || got != d {
		t.Fatalf("LookupType: (%v,%v)", got, err)
	}
}

func TestRegisterType_Options(t *testing.T) {
	isolate(t)
	rule := apis.ReadRule{Version: 1, Upgrade: func(any) error { return nil }}
	err := rdx.RegisterType[Point](2,
		rdx.WithName("geo.Point"),
		rdx.WithDecl("geo/point.h", 10),
		rdx.WithImpl("geo/point.go", 20),
		rdx.WithReadRule(rule),
		rdx.WithStreamer(apis.StreamerFunc(func(apis.Buffer, any, int) error { return nil })),
	)
	if err != nil {
		t.Fatalf("RegisterType: %v", err)
	}
	d, err := rdx.Lookup("geo.Point")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if d.DeclFile() != "geo/point.h" || d.DeclLine() != 10 || d.ImplFile() != "geo/point.go" || d.ImplLine() != 20 {
		t.Fatalf("locations: %s:%d %s:%d", d.DeclFile(), d.DeclLine(), d.ImplFile(), d.ImplLine())
	}
	if _, ok := d.ReadRule(1); !ok {
		t.Fatalf("read rule for v1 missing")
	}
	if d.Streamer() == nil {
		t.Fatalf("custom streamer missing")
	}
}

func TestRegisterType_Versioner(t *testing.T) {
	isolate(t)
	if err := rdx.RegisterType[Versioned](apis.Unversioned); err != nil {
		t.Fatalf("RegisterType: %v", err)
	}
	d, err := rdx.DescriptorOf[Versioned]()
	if err != nil || d.Version() != 7 {
		t.Fatalf("got (%v,%v), want version 7", d, err)
	}
}

func TestRegisterType_DuplicateFromTwoModules(t *testing.T) {
	isolate(t)
	if err := rdx.RegisterType[ShapeA](1, rdx.WithName("geo.Shape"), rdx.WithModule("example.com/a")); err != nil {
		t.Fatalf("first: %v", err)
	}
	err := rdx.RegisterType[ShapeB](1, rdx.WithName("geo.Shape"), rdx.WithModule("example.com/b"))
	if !errors.Is(err, registry.ErrDuplicateName) {
		t.Fatalf("second: got %v, want ErrDuplicateName", err)
	}
	d, _ := rdx.Lookup("geo.Shape")
	if d.Type() != reflect.TypeFor[ShapeA]() {
		t.Fatalf("first registration was replaced by %v", d.Type())
	}
}

func TestRegisterType_Lazy(t *testing.T) {
	reg := isolate(t)
	if err := rdx.RegisterType[Lazy](3, rdx.WithLazy()); err != nil {
		t.Fatalf("RegisterType: %v", err)
	}
	entries := reg.Entries()
	if len(entries) != 1 || !entries[0].Pending() {
		t.Fatalf("entries = %+v, want one pending", entries)
	}
	d, err := rdx.Lookup("rdx_test.Lazy")
	if err != nil || d.Version() != 3 {
		t.Fatalf("Lookup: (%v,%v)", d, err)
	}
	if reg.Entries()[0].Pending() {
		t.Fatalf("entry still pending after lookup")
	}
}

func TestRegisterType_RedirectOverride(t *testing.T) {
	isolate(t)
	other := registry.New(rdx.Config())
	decl := reflect.TypeFor[Redirected]().PkgPath()
	sel := rdx.Behaviors().(*behavior.Selector)
	sel.Install(decl, "example.com/plugin", behavior.NewDefault(other))
	t.Cleanup(func() { rdx.Behaviors().(*behavior.Selector).Install(decl, "example.com/plugin", nil) })

	if err := rdx.RegisterType[Redirected](1, rdx.WithModule("example.com/plugin")); err != nil {
		t.Fatalf("RegisterType: %v", err)
	}
	if _, err := other.Lookup("rdx_test.Redirected"); err != nil {
		t.Fatalf("redirect target: %v", err)
	}
	if _, err := rdx.Lookup("rdx_test.Redirected"); !errors.Is(err, registry.ErrNotFound) {
		t.Fatalf("process registry: got %v, want ErrNotFound", err)
	}
}

func TestRegister_Explicit(t *testing.T) {
	isolate(t)
	id := apis.ForeignIdentity("ext.Blob")
	err := rdx.Register(apis.Registration{
		Name:     "ext.Blob",
		Version:  apis.Unversioned,
		Identity: id,
		Dictionary: func() (apis.Descriptor, error) {
			return rdx.Behaviors().Select("", "").CreateDescriptor(apis.DescriptorSpec{Identity: id, Version: apis.Unversioned})
		},
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	d, err := rdx.Lookup("ext.Blob")
	if err != nil || d.Type() != nil {
		t.Fatalf("Lookup: (%v,%v)", d, err)
	}
}

func TestUnregisterAndTeardown(t *testing.T) {
	reg := isolate(t)
	if err := rdx.RegisterType[Point](1); err != nil {
		t.Fatal(err)
	}
	if err := rdx.RegisterType[Circle](1); err != nil {
		t.Fatal(err)
	}
	if err := rdx.Unregister("rdx_test.Point"); err != nil {
		t.Fatalf("Unregister: %v", err)
	}
	if _, err := rdx.Lookup("rdx_test.Point"); !errors.Is(err, registry.ErrNotFound) {
		t.Fatalf("after Unregister: %v", err)
	}
	// absent names are a no-op
	if err := rdx.Unregister("rdx_test.Point"); err != nil {
		t.Fatalf("Unregister absent: %v", err)
	}
	if err := rdx.Teardown(); err != nil {
		t.Fatalf("Teardown: %v", err)
	}
	if reg.Count() != 0 {
		t.Fatalf("Count after Teardown = %d", reg.Count())
	}
}

func TestIsA(t *testing.T) {
	isolate(t)
	for _, err := range []error{rdx.RegisterType[Base](1), rdx.RegisterType[Circle](1)} {
		if err != nil {
			t.Fatal(err)
		}
	}
	base, _ := rdx.DescriptorOf[Base]()
	circle, _ := rdx.DescriptorOf[Circle]()

	if res := rdx.IsA(&Circle{}, base); !res.Resolved || res.Descriptor != circle {
		t.Fatalf("IsA(circle) = %+v", res)
	}
	// descriptors resolve through the process resolver
	if res := base.IsA(&Circle{}); !res.Resolved || res.Descriptor != circle {
		t.Fatalf("base.IsA(circle) = %+v", res)
	}
	res := rdx.IsA(&Square{}, base)
	if res.Resolved || res.Descriptor != base || !errors.Is(res.Err(), apis.ErrUnresolvedRuntimeType) {
		t.Fatalf("IsA(square) = %+v", res)
	}
}

func TestWriteRead_RoundTrip(t *testing.T) {
	isolate(t)
	if err := rdx.RegisterType[Point](1); err != nil {
		t.Fatal(err)
	}
	data, err := rdx.Write(&Point{X: 3, Y: 4})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(data) != 18 || data[0] != 0x00 || data[1] != 0x01 {
		t.Fatalf("data = % x", data)
	}
	var p Point
	if err := rdx.Read(data, &p); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if p != (Point{X: 3, Y: 4}) {
		t.Fatalf("got %+v", p)
	}

	data, err = rdx.WriteAny(&Point{X: 1, Y: 2})
	if err != nil {
		t.Fatalf("WriteAny: %v", err)
	}
	got, err := rdx.ReadAny(data)
	if err != nil {
		t.Fatalf("ReadAny: %v", err)
	}
	if pp, ok := got.(*Point); !ok || *pp != (Point{X: 1, Y: 2}) {
		t.Fatalf("ReadAny = %#v", got)
	}

	if _, err := rdx.Write(&Square{}); !errors.Is(err, registry.ErrNotFound) {
		t.Fatalf("Write unregistered: %v", err)
	}
}

func TestSetConfig_KeepsRegistrations(t *testing.T) {
	reg := isolate(t)
	t.Cleanup(func() { rdx.SetConfig(config.DefaultConfig()) })
	if err := rdx.RegisterType[Point](1); err != nil {
		t.Fatal(err)
	}

	rdx.SetConfig(config.NewConfig(config.WithByteOrder(config.ByteOrderLittle)))
	if rdx.Registry() != reg || !rdx.IsRegistryPinned() {
		t.Fatalf("pinned registry was rebuilt")
	}
	data, err := rdx.Write(Point{X: 1})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if data[0] != 0x01 || data[1] != 0x00 {
		t.Fatalf("little-endian version = % x", data[:2])
	}

	// unpinned registries are migrated into their replacement
	rdx.UnpinRegistry()
	rdx.SetConfig(config.DefaultConfig())
	if rdx.Registry() == reg {
		t.Fatalf("unpinned registry was not rebuilt")
	}
	if _, err := rdx.DescriptorOf[Point](); err != nil {
		t.Fatalf("migrated lookup: %v", err)
	}
}

type nilBuilder struct{}

func (nilBuilder) BuildRegistry(apis.Config, apis.Registry) apis.Registry { return nil }
func (nilBuilder) BuildResolver(apis.Config, apis.Registry, apis.Resolver) apis.Resolver {
	return nil
}
func (nilBuilder) BuildSelector(apis.Config, apis.Registry, apis.BehaviorSelector) apis.BehaviorSelector {
	return nil
}
func (nilBuilder) BuildDispatcher(apis.Config, apis.Registry, apis.Resolver) apis.ObjectStreamer {
	return nil
}

func TestSetBuilder_NilLayerPanics(t *testing.T) {
	isolate(t)
	before := rdx.Builder()
	defer func() {
		if r := recover(); r != rdx.ErrNilResolver {
			t.Fatalf("recover() = %v, want ErrNilResolver", r)
		}
		if rdx.Builder() != before {
			t.Fatalf("state was published despite the panic")
		}
	}()
	rdx.SetBuilder(nilBuilder{})
}

func TestSetLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	rdx.SetLogger(zap.New(core))
	t.Cleanup(func() { rdx.SetLogger(nil) })
	isolate(t)

	if err := rdx.RegisterType[Point](1); err != nil {
		t.Fatal(err)
	}
	added := logs.FilterLoggerName("registry").FilterMessage("added").All()
	if len(added) != 1 || added[0].ContextMap()["name"] != "rdx_test.Point" {
		t.Fatalf("registry logs = %+v", logs.All())
	}
}

func TestRegisterType_Concurrent(t *testing.T) {
	isolate(t)
	var g errgroup.Group
	for i := 0; i < runtime.GOMAXPROCS(0)*4; i++ {
		g.Go(func() error {
			if err := rdx.RegisterType[Point](1); err != nil {
				return err
			}
			_, err := rdx.DescriptorOf[Point]()
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent registration: %v", err)
	}
	if rdx.Registry().Count() != 1 {
		t.Fatalf("Count = %d, want 1", rdx.Registry().Count())
	}
}
