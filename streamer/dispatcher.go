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

// Package streamer serializes registered types through apis.Buffer.
//
// Every object is written as its class version (int16) followed by its
// data: the descriptor's custom streamer when one is installed, the default
// member walker otherwise. Reading checks the embedded version against the
// descriptor; data written with another version is read only through a
// read rule registered for that version.
package streamer

import (
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"

	"dirpx.dev/rdx/apis"
	"dirpx.dev/rdx/buffer"
	"dirpx.dev/rdx/config"
	"dirpx.dev/rdx/logger"
)

// Dispatcher routes objects to their streamers. It implements
// apis.ObjectStreamer so buffers can call back into it for nested objects.
type Dispatcher struct {
	reg apis.Registry
	res apis.Resolver
	cfg apis.Config

	mu     sync.Mutex
	depths map[apis.Buffer]int
}

var _ apis.ObjectStreamer = (*Dispatcher)(nil)

// New constructs a Dispatcher over reg. res resolves interface-typed
// values; it may be nil when only concrete types are streamed.
func New(reg apis.Registry, res apis.Resolver, cfg apis.Config) *Dispatcher {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = config.DefaultMaxDepth
	}
	return &Dispatcher{reg: reg, res: res, cfg: cfg, depths: make(map[apis.Buffer]int)}
}

// NewWriter returns a writing buffer bound to s with the configured byte order.
func (s *Dispatcher) NewWriter() *buffer.Buffer {
	return buffer.NewWriter(buffer.WithDispatcher(s), buffer.WithByteOrder(s.cfg.ByteOrder))
}

// NewReader returns a reading buffer over data bound to s.
func (s *Dispatcher) NewReader(data []byte) *buffer.Buffer {
	return buffer.NewReader(data, buffer.WithDispatcher(s), buffer.WithByteOrder(s.cfg.ByteOrder))
}

// Marshal writes obj with descriptor d into a new byte slice. A nil d is
// looked up by obj's type.
func (s *Dispatcher) Marshal(d apis.Descriptor, obj any) ([]byte, error) {
	b := s.NewWriter()
	if err := s.Write(b, d, obj); err != nil {
		return nil, err
	}
	if err := b.Err(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// Unmarshal reads data into obj, a pointer to an instance of d's type.
// Data left over after the object is an error.
func (s *Dispatcher) Unmarshal(data []byte, d apis.Descriptor, obj any) error {
	b := s.NewReader(data)
	if err := s.Read(b, d, obj); err != nil {
		return err
	}
	if n := b.Len(); n != 0 {
		return fmt.Errorf("%w: %d bytes left after %T", ErrTrailingData, n, obj)
	}
	return nil
}

// Stream writes or reads obj depending on the direction of b.
func (s *Dispatcher) Stream(b apis.Buffer, d apis.Descriptor, obj any) error {
	if b.IsReading() {
		return s.Read(b, d, obj)
	}
	return s.Write(b, d, obj)
}

// enter tracks object nesting per buffer.
func (s *Dispatcher) enter(b apis.Buffer, d apis.Descriptor) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	depth := s.depths[b] + 1
	if depth > s.cfg.MaxDepth {
		return nil, fmt.Errorf("%w: %d levels at %s", ErrMaxDepth, s.cfg.MaxDepth, d.Name())
	}
	s.depths[b] = depth
	return func() {
		s.mu.Lock()
		if s.depths[b]--; s.depths[b] == 0 {
			delete(s.depths, b)
		}
		s.mu.Unlock()
	}, nil
}

// descriptorFor returns d, or the registered descriptor of obj's type.
func (s *Dispatcher) descriptorFor(d apis.Descriptor, obj any) (apis.Descriptor, error) {
	if d != nil {
		return d, nil
	}
	if obj == nil {
		return nil, ErrNilObject
	}
	found, err := s.reg.LookupType(reflect.TypeOf(obj))
	if err != nil {
		return nil, fmt.Errorf("%w: %T: %w", ErrUnregisteredType, obj, err)
	}
	return found, nil
}

// target returns a non-nil pointer to an instance of d's type for obj.
// Values are accepted when writing and copied behind a fresh pointer.
func target(d apis.Descriptor, obj any, writing bool) (reflect.Value, error) {
	if obj == nil {
		return reflect.Value{}, ErrNilObject
	}
	v := reflect.ValueOf(obj)
	t := d.Type()
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}, fmt.Errorf("%w: nil %T", ErrNilObject, obj)
		}
		if t == nil || v.Type().Elem() == t {
			return v, nil
		}
	}
	if writing && v.Type() == t {
		p := reflect.New(t)
		p.Elem().Set(v)
		return p, nil
	}
	return reflect.Value{}, fmt.Errorf("%w: %T is not a %s", ErrTypeMismatch, obj, d.Name())
}

// Write embeds d's version and streams obj, a pointer to (or value of) an
// instance of d's type.
func (s *Dispatcher) Write(b apis.Buffer, d apis.Descriptor, obj any) error {
	d, err := s.descriptorFor(d, obj)
	if err != nil {
		return err
	}
	p, err := target(d, obj, true)
	if err != nil {
		return err
	}
	leave, err := s.enter(b, d)
	if err != nil {
		return err
	}
	defer leave()

	version := d.Version()
	if !apis.ValidVersion(version) {
		return fmt.Errorf("%w: %s version %d", ErrVersionRange, d.Name(), version)
	}
	b.WriteVersion(version)
	if st := d.Streamer(); st != nil {
		return st.Stream(b, p.Interface(), version)
	}
	if d.Type() == nil {
		return fmt.Errorf("%w: %s has no Go type and no streamer", ErrUnsupportedKind, d.Name())
	}
	return s.writeMembers(b, d, p.Elem(), version)
}

// Read checks the embedded version and fills obj, a pointer to an
// instance of d's type.
func (s *Dispatcher) Read(b apis.Buffer, d apis.Descriptor, obj any) error {
	d, err := s.descriptorFor(d, obj)
	if err != nil {
		return err
	}
	p, err := target(d, obj, false)
	if err != nil {
		return err
	}
	leave, err := s.enter(b, d)
	if err != nil {
		return err
	}
	defer leave()

	version, err := b.ReadVersion()
	if err != nil {
		return fmt.Errorf("rdx(streamer): %s: read version: %w", d.Name(), err)
	}
	current := d.Version()
	if version == current {
		return s.readBody(b, d, p, version)
	}

	rule, ok := d.ReadRule(version)
	if !ok {
		return &VersionMismatchError{Name: d.Name(), Got: version, Want: current}
	}
	logger.Named("streamer").Debug("reading older layout",
		zap.String("name", d.Name()),
		zap.Int("from", version),
		zap.Int("to", current),
	)
	if rule.Read != nil {
		err = rule.Read(b, p.Interface())
	} else {
		err = s.readBody(b, d, p, version)
	}
	if err != nil {
		return err
	}
	if rule.Upgrade != nil {
		if err := rule.Upgrade(p.Interface()); err != nil {
			return fmt.Errorf("rdx(streamer): %s: upgrade from version %d: %w", d.Name(), version, err)
		}
	}
	return nil
}

// readBody reads the data of one object laid out as version.
func (s *Dispatcher) readBody(b apis.Buffer, d apis.Descriptor, p reflect.Value, version int) error {
	if st := d.Streamer(); st != nil {
		return st.Stream(b, p.Interface(), version)
	}
	if d.Type() == nil {
		return fmt.Errorf("%w: %s has no Go type and no streamer", ErrUnsupportedKind, d.Name())
	}
	return s.readMembers(b, d, p.Elem(), version)
}

// WriteAny writes a polymorphic value as its resolved class name, a
// pointer flag and the object. A nil value is written as an empty name.
func (s *Dispatcher) WriteAny(b apis.Buffer, obj any) error {
	if obj == nil {
		b.WriteString("")
		return nil
	}
	v := reflect.ValueOf(obj)
	if v.Kind() == reflect.Pointer && v.IsNil() {
		b.WriteString("")
		return nil
	}
	d, err := s.resolve(obj)
	if err != nil {
		return err
	}
	b.WriteString(d.Name())
	b.WriteBool(v.Kind() == reflect.Pointer)
	return s.Write(b, d, obj)
}

// resolve returns the exact descriptor of obj's dynamic type.
func (s *Dispatcher) resolve(obj any) (apis.Descriptor, error) {
	if s.res != nil {
		res := s.res.Resolve(obj, nil)
		if res.Resolved && res.Descriptor != nil {
			return res.Descriptor, nil
		}
		if res.Descriptor != nil {
			return nil, fmt.Errorf("%w: %T only resolves to %s: %w",
				ErrUnregisteredType, obj, res.Descriptor.Name(), res.Err())
		}
	}
	d, err := s.reg.LookupType(reflect.TypeOf(obj))
	if err != nil {
		return nil, fmt.Errorf("%w: %T", ErrUnregisteredType, obj)
	}
	return d, nil
}

// ReadAny reads a value written by WriteAny. It returns nil for a nil
// value, otherwise a new instance built by the descriptor's factory: a
// pointer if a pointer was written, a value otherwise.
func (s *Dispatcher) ReadAny(b apis.Buffer) (any, error) {
	name, err := b.ReadString()
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, nil
	}
	isPtr, err := b.ReadBool()
	if err != nil {
		return nil, err
	}
	d, err := s.reg.Lookup(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrUnregisteredType, name, err)
	}
	if d.Type() == nil {
		return nil, fmt.Errorf("%w: %s has no Go type to construct", ErrUnsupportedKind, name)
	}
	obj, err := d.Factory().New(nil)
	if err != nil {
		return nil, err
	}
	if err := s.Read(b, d, obj); err != nil {
		return nil, err
	}
	if isPtr {
		return obj, nil
	}
	return reflect.ValueOf(obj).Elem().Interface(), nil
}
