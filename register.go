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

package rdx

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"strings"

	"dirpx.dev/rdx/apis"
	"dirpx.dev/rdx/behavior"
	"dirpx.dev/rdx/buffer"
	"dirpx.dev/rdx/descriptor"
	"dirpx.dev/rdx/modifier"
	"dirpx.dev/rdx/streamer"
)

// Option customizes a RegisterType call.
type Option func(*options)

type options struct {
	name      string
	module    string
	modifiers modifier.Set
	streamer  apis.Streamer
	rules     []apis.ReadRule
	declFile  string
	declLine  int
	implFile  string
	implLine  int
	lazy      bool
}

// WithName registers the type under name instead of its derived "pkg.Type" name.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithModule overrides the registering package used to select a behavior.
func WithModule(module string) Option {
	return func(o *options) { o.module = module }
}

// WithModifiers adds type-level qualifiers to the descriptor.
func WithModifiers(mods ...modifier.Set) Option {
	return func(o *options) { o.modifiers |= modifier.Of(mods...) }
}

// WithStreamer installs a custom streamer.
func WithStreamer(s apis.Streamer) Option {
	return func(o *options) { o.streamer = s }
}

// WithReadRule adds a schema evolution rule. It may be given repeatedly.
func WithReadRule(rule apis.ReadRule) Option {
	return func(o *options) { o.rules = append(o.rules, rule) }
}

// WithDecl overrides the declaration location taken from the caller.
func WithDecl(file string, line int) Option {
	return func(o *options) { o.declFile, o.declLine = file, line }
}

// WithImpl records the implementation location.
func WithImpl(file string, line int) Option {
	return func(o *options) { o.implFile, o.implLine = file, line }
}

// WithLazy defers building the descriptor until its first lookup. It only
// applies when no behavior override claims the registration.
func WithLazy() Option {
	return func(o *options) { o.lazy = true }
}

// Register runs r through the behavior selected for its declaring context
// and r.Module. An empty Module is filled with the calling package.
func Register(r apis.Registration) error {
	if r.Module == "" {
		_, _, r.Module = caller(2)
	}
	s := load()
	return s.sel.Select(r.Identity.Context(), r.Module).Register(r)
}

// RegisterType registers T at version. With apis.Unversioned, a T
// implementing apis.Versioner supplies its own version. The declaration
// location and registering package default to the caller.
func RegisterType[T any](version int, opts ...Option) error {
	file, line, module := caller(2)
	o := options{declFile: file, declLine: line, module: module}
	for _, opt := range opts {
		opt(&o)
	}
	t := reflect.TypeFor[T]()
	if version == apis.Unversioned {
		version = versionOf[T]()
	}

	s := load()
	id, err := identityFor(t, o.name, s.cfg)
	if err != nil {
		return err
	}
	b := s.sel.Select(id.Context(), o.module)
	if o.lazy {
		if sel, ok := s.sel.(*behavior.Selector); ok && b == sel.Default() {
			b = behavior.NewDeferred(s.reg)
		}
	}

	spec := apis.DescriptorSpec{
		Name:      id.Name,
		Version:   version,
		Identity:  id,
		Proxy:     processResolver{},
		DeclFile:  o.declFile,
		DeclLine:  o.declLine,
		ImplFile:  o.implFile,
		ImplLine:  o.implLine,
		Modifiers: o.modifiers,
		Streamer:  o.streamer,
		ReadRules: o.rules,
	}
	return b.Register(apis.Registration{
		Name:       id.Name,
		Version:    version,
		Identity:   id,
		Dictionary: func() (apis.Descriptor, error) { return b.CreateDescriptor(spec) },
		Modifiers:  o.modifiers,
		DeclFile:   o.declFile,
		DeclLine:   o.declLine,
		Module:     o.module,
	})
}

func identityFor(t reflect.Type, name string, cfg apis.Config) (apis.Identity, error) {
	if name != "" {
		return apis.NewIdentity(name, t), nil
	}
	return descriptor.IdentityFor(t, cfg)
}

// versionOf asks T, or *T, for its class version.
func versionOf[T any]() int {
	var zero T
	if v, ok := any(zero).(apis.Versioner); ok {
		return v.ClassVersion()
	}
	if v, ok := any(&zero).(apis.Versioner); ok {
		return v.ClassVersion()
	}
	return apis.Unversioned
}

// Unregister removes name through the behavior selected for its declaring
// context and the calling package.
func Unregister(name string) error {
	_, _, module := caller(2)
	return unregister(load(), name, module)
}

func unregister(s *state, name, module string) error {
	var decl string
	if d, err := s.reg.Lookup(name); err == nil {
		decl = d.Identity().Context()
	}
	return s.sel.Select(decl, module).Unregister(name)
}

// Teardown unregisters every registered type. It is meant for process exit
// and test cleanup.
func Teardown() error {
	s := load()
	var errs []error
	for _, e := range s.reg.Entries() {
		if err := unregister(s, e.Identity.Name, ""); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", e.Identity.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Lookup returns the descriptor registered under name or one of its aliases.
func Lookup(name string) (apis.Descriptor, error) {
	return load().reg.Lookup(name)
}

// LookupType returns the descriptor registered for t.
func LookupType(t reflect.Type) (apis.Descriptor, error) {
	return load().reg.LookupType(t)
}

// DescriptorOf returns the descriptor registered for T.
func DescriptorOf[T any]() (apis.Descriptor, error) {
	return LookupType(reflect.TypeFor[T]())
}

// IsA resolves the most-derived descriptor of obj accessed through static.
func IsA(obj any, static apis.Descriptor) apis.Resolution {
	return load().res.Resolve(obj, static)
}

// Write streams obj with the descriptor registered for its type.
func Write(obj any) ([]byte, error) {
	s := load()
	d, err := s.reg.LookupType(reflect.TypeOf(obj))
	if err != nil {
		return nil, err
	}
	b := s.newWriter()
	if err := b.WriteObject(d, obj); err != nil {
		return nil, err
	}
	if err := b.Err(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// Read fills obj, a pointer to a registered type, from data.
func Read(data []byte, obj any) error {
	s := load()
	d, err := s.reg.LookupType(reflect.TypeOf(obj))
	if err != nil {
		return err
	}
	b := s.newReader(data)
	if err := b.ReadObject(d, obj); err != nil {
		return err
	}
	return trailing(b)
}

// WriteAny streams a polymorphic value prefixed by its resolved class name.
func WriteAny(obj any) ([]byte, error) {
	b := load().newWriter()
	if err := b.WriteObjectAny(obj); err != nil {
		return nil, err
	}
	if err := b.Err(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// ReadAny constructs and reads a value written by WriteAny.
func ReadAny(data []byte) (any, error) {
	b := load().newReader(data)
	obj, err := b.ReadObjectAny()
	if err != nil {
		return nil, err
	}
	if err := trailing(b); err != nil {
		return nil, err
	}
	return obj, nil
}

func trailing(b *buffer.Buffer) error {
	if n := b.Len(); n != 0 {
		return fmt.Errorf("%w: %d bytes", streamer.ErrTrailingData, n)
	}
	return nil
}

func (s *state) newWriter() *buffer.Buffer {
	return buffer.NewWriter(buffer.WithDispatcher(s.disp), buffer.WithByteOrder(s.cfg.ByteOrder))
}

func (s *state) newReader(data []byte) *buffer.Buffer {
	return buffer.NewReader(data, buffer.WithDispatcher(s.disp), buffer.WithByteOrder(s.cfg.ByteOrder))
}

// processResolver forwards to the resolver of the current state, so
// descriptors keep resolving after the global state is rebuilt.
type processResolver struct{}

func (processResolver) Resolve(obj any, static apis.Descriptor) apis.Resolution {
	return load().res.Resolve(obj, static)
}

// caller returns the file, line and package of the function skip frames up.
func caller(skip int) (file string, line int, pkg string) {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "", 0, ""
	}
	if fn := runtime.FuncForPC(pc); fn != nil {
		pkg = packageOf(fn.Name())
	}
	return file, line, pkg
}

// packageOf strips the function part of a qualified function name such as
// "example.com/geo.init.0" or "example.com/geo.(*Shape).Register".
func packageOf(fn string) string {
	slash := strings.LastIndexByte(fn, '/') + 1
	if dot := strings.IndexByte(fn[slash:], '.'); dot >= 0 {
		return fn[:slash+dot]
	}
	return fn
}
