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

package streamer

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"

	"dirpx.dev/rdx/apis"
)

// persisted returns the members of d the default walker streams for version.
func persisted(d apis.Descriptor, version int) []apis.Member {
	all := d.Members()
	out := all[:0]
	for _, m := range all {
		if m.Modifiers.IsPersistent() && m.InVersion(version) {
			out = append(out, m)
		}
	}
	return out
}

func (s *Dispatcher) writeMembers(b apis.Buffer, d apis.Descriptor, v reflect.Value, version int) error {
	for _, m := range persisted(d, version) {
		if err := s.writeValue(b, v.FieldByIndex(m.Index)); err != nil {
			return fmt.Errorf("%s.%s: %w", d.Name(), m.Name, err)
		}
	}
	return nil
}

func (s *Dispatcher) readMembers(b apis.Buffer, d apis.Descriptor, v reflect.Value, version int) error {
	for _, m := range persisted(d, version) {
		if err := s.readValue(b, v.FieldByIndex(m.Index)); err != nil {
			return fmt.Errorf("%s.%s: %w", d.Name(), m.Name, err)
		}
	}
	return nil
}

// nested returns the registered descriptor of the struct type t.
func (s *Dispatcher) nested(t reflect.Type) (apis.Descriptor, error) {
	d, err := s.reg.LookupType(t)
	if err != nil || d.Type() != t {
		return nil, fmt.Errorf("%w: %v", ErrUnregisteredType, t)
	}
	return d, nil
}

// addr returns a pointer to v, copying v when it is not addressable.
func addr(v reflect.Value) reflect.Value {
	if v.CanAddr() {
		return v.Addr()
	}
	p := reflect.New(v.Type())
	p.Elem().Set(v)
	return p
}

func isBytes(t reflect.Type) bool {
	return t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8
}

func (s *Dispatcher) writeValue(b apis.Buffer, v reflect.Value) error {
	switch v.Kind() {
	case reflect.Bool:
		b.WriteBool(v.Bool())
	case reflect.Int8:
		b.WriteInt8(int8(v.Int()))
	case reflect.Int16:
		b.WriteInt16(int16(v.Int()))
	case reflect.Int32:
		b.WriteInt32(int32(v.Int()))
	case reflect.Int, reflect.Int64:
		b.WriteInt64(v.Int())
	case reflect.Uint8:
		b.WriteUint8(uint8(v.Uint()))
	case reflect.Uint16:
		b.WriteUint16(uint16(v.Uint()))
	case reflect.Uint32:
		b.WriteUint32(uint32(v.Uint()))
	case reflect.Uint, reflect.Uint64, reflect.Uintptr:
		b.WriteUint64(v.Uint())
	case reflect.Float32:
		b.WriteFloat32(float32(v.Float()))
	case reflect.Float64:
		b.WriteFloat64(v.Float())
	case reflect.Complex64:
		c := v.Complex()
		b.WriteFloat32(float32(real(c)))
		b.WriteFloat32(float32(imag(c)))
	case reflect.Complex128:
		c := v.Complex()
		b.WriteFloat64(real(c))
		b.WriteFloat64(imag(c))
	case reflect.String:
		b.WriteString(v.String())
	case reflect.Slice:
		if isBytes(v.Type()) {
			b.WriteBytes(v.Bytes())
			return nil
		}
		b.WriteUint32(uint32(v.Len()))
		return s.writeElems(b, v)
	case reflect.Array:
		return s.writeElems(b, v)
	case reflect.Map:
		return s.writeMap(b, v)
	case reflect.Pointer:
		b.WriteBool(!v.IsNil())
		if v.IsNil() {
			return nil
		}
		if v.Elem().Kind() == reflect.Struct {
			d, err := s.nested(v.Type().Elem())
			if err != nil {
				return err
			}
			return s.Write(b, d, v.Interface())
		}
		return s.writeValue(b, v.Elem())
	case reflect.Struct:
		d, err := s.nested(v.Type())
		if err != nil {
			return err
		}
		return s.Write(b, d, addr(v).Interface())
	case reflect.Interface:
		if v.IsNil() {
			return s.WriteAny(b, nil)
		}
		return s.WriteAny(b, v.Elem().Interface())
	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedKind, v.Type())
	}
	return nil
}

func (s *Dispatcher) writeElems(b apis.Buffer, v reflect.Value) error {
	for i := 0; i < v.Len(); i++ {
		if err := s.writeValue(b, v.Index(i)); err != nil {
			return fmt.Errorf("[%d]: %w", i, err)
		}
	}
	return nil
}

// writeMap writes the length and the entries, keys sorted when their kind
// is ordered so equal maps produce equal bytes.
func (s *Dispatcher) writeMap(b apis.Buffer, v reflect.Value) error {
	keys := v.MapKeys()
	if cmpKeys := keyOrder(v.Type().Key()); cmpKeys != nil {
		slices.SortFunc(keys, cmpKeys)
	}
	b.WriteUint32(uint32(len(keys)))
	for _, k := range keys {
		if err := s.writeValue(b, k); err != nil {
			return fmt.Errorf("key %v: %w", k, err)
		}
		if err := s.writeValue(b, v.MapIndex(k)); err != nil {
			return fmt.Errorf("[%v]: %w", k, err)
		}
	}
	return nil
}

// keyOrder returns a comparison for ordered key kinds, nil otherwise.
func keyOrder(t reflect.Type) func(a, b reflect.Value) int {
	switch t.Kind() {
	case reflect.String:
		return func(a, b reflect.Value) int { return cmp.Compare(a.String(), b.String()) }
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(a, b reflect.Value) int { return cmp.Compare(a.Int(), b.Int()) }
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return func(a, b reflect.Value) int { return cmp.Compare(a.Uint(), b.Uint()) }
	case reflect.Float32, reflect.Float64:
		return func(a, b reflect.Value) int { return cmp.Compare(a.Float(), b.Float()) }
	case reflect.Bool:
		return func(a, b reflect.Value) int {
			switch {
			case a.Bool() == b.Bool():
				return 0
			case b.Bool():
				return -1
			default:
				return 1
			}
		}
	default:
		return nil
	}
}

// remaining is implemented by buffers that know how much data is left.
type remaining interface {
	Len() int
}

// checkCount rejects element counts a reader cannot possibly hold, so
// corrupt lengths fail instead of allocating.
func checkCount(b apis.Buffer, n uint32, elem reflect.Type) error {
	r, ok := b.(remaining)
	if !ok || elem.Size() == 0 {
		return nil
	}
	if int64(n) > int64(r.Len()) {
		return fmt.Errorf("rdx(streamer): %d elements of %v exceed the %d bytes left", n, elem, r.Len())
	}
	return nil
}

func (s *Dispatcher) readValue(b apis.Buffer, v reflect.Value) error {
	switch v.Kind() {
	case reflect.Bool:
		x, err := b.ReadBool()
		if err != nil {
			return err
		}
		v.SetBool(x)
	case reflect.Int8:
		x, err := b.ReadInt8()
		if err != nil {
			return err
		}
		v.SetInt(int64(x))
	case reflect.Int16:
		x, err := b.ReadInt16()
		if err != nil {
			return err
		}
		v.SetInt(int64(x))
	case reflect.Int32:
		x, err := b.ReadInt32()
		if err != nil {
			return err
		}
		v.SetInt(int64(x))
	case reflect.Int, reflect.Int64:
		x, err := b.ReadInt64()
		if err != nil {
			return err
		}
		v.SetInt(x)
	case reflect.Uint8:
		x, err := b.ReadUint8()
		if err != nil {
			return err
		}
		v.SetUint(uint64(x))
	case reflect.Uint16:
		x, err := b.ReadUint16()
		if err != nil {
			return err
		}
		v.SetUint(uint64(x))
	case reflect.Uint32:
		x, err := b.ReadUint32()
		if err != nil {
			return err
		}
		v.SetUint(uint64(x))
	case reflect.Uint, reflect.Uint64, reflect.Uintptr:
		x, err := b.ReadUint64()
		if err != nil {
			return err
		}
		v.SetUint(x)
	case reflect.Float32:
		x, err := b.ReadFloat32()
		if err != nil {
			return err
		}
		v.SetFloat(float64(x))
	case reflect.Float64:
		x, err := b.ReadFloat64()
		if err != nil {
			return err
		}
		v.SetFloat(x)
	case reflect.Complex64:
		re, err := b.ReadFloat32()
		if err != nil {
			return err
		}
		im, err := b.ReadFloat32()
		if err != nil {
			return err
		}
		v.SetComplex(complex(float64(re), float64(im)))
	case reflect.Complex128:
		re, err := b.ReadFloat64()
		if err != nil {
			return err
		}
		im, err := b.ReadFloat64()
		if err != nil {
			return err
		}
		v.SetComplex(complex(re, im))
	case reflect.String:
		x, err := b.ReadString()
		if err != nil {
			return err
		}
		v.SetString(x)
	case reflect.Slice:
		return s.readSlice(b, v)
	case reflect.Array:
		return s.readElems(b, v)
	case reflect.Map:
		return s.readMap(b, v)
	case reflect.Pointer:
		present, err := b.ReadBool()
		if err != nil {
			return err
		}
		if !present {
			v.SetZero()
			return nil
		}
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		if v.Elem().Kind() == reflect.Struct {
			d, err := s.nested(v.Type().Elem())
			if err != nil {
				return err
			}
			return s.Read(b, d, v.Interface())
		}
		return s.readValue(b, v.Elem())
	case reflect.Struct:
		d, err := s.nested(v.Type())
		if err != nil {
			return err
		}
		return s.Read(b, d, v.Addr().Interface())
	case reflect.Interface:
		x, err := s.ReadAny(b)
		if err != nil {
			return err
		}
		if x == nil {
			v.SetZero()
			return nil
		}
		xv := reflect.ValueOf(x)
		if !xv.Type().AssignableTo(v.Type()) {
			return fmt.Errorf("%w: %T does not implement %v", ErrTypeMismatch, x, v.Type())
		}
		v.Set(xv)
	default:
		return fmt.Errorf("%w: %v", ErrUnsupportedKind, v.Type())
	}
	return nil
}

func (s *Dispatcher) readSlice(b apis.Buffer, v reflect.Value) error {
	if isBytes(v.Type()) {
		p, err := b.ReadBytes()
		if err != nil {
			return err
		}
		if len(p) == 0 {
			v.SetZero()
			return nil
		}
		v.SetBytes(p)
		return nil
	}
	n, err := b.ReadUint32()
	if err != nil {
		return err
	}
	if n == 0 {
		v.SetZero()
		return nil
	}
	if err := checkCount(b, n, v.Type().Elem()); err != nil {
		return err
	}
	v.Set(reflect.MakeSlice(v.Type(), int(n), int(n)))
	return s.readElems(b, v)
}

func (s *Dispatcher) readElems(b apis.Buffer, v reflect.Value) error {
	for i := 0; i < v.Len(); i++ {
		if err := s.readValue(b, v.Index(i)); err != nil {
			return fmt.Errorf("[%d]: %w", i, err)
		}
	}
	return nil
}

func (s *Dispatcher) readMap(b apis.Buffer, v reflect.Value) error {
	n, err := b.ReadUint32()
	if err != nil {
		return err
	}
	if n == 0 {
		v.SetZero()
		return nil
	}
	t := v.Type()
	if err := checkCount(b, n, t.Key()); err != nil {
		return err
	}
	m := reflect.MakeMapWithSize(t, int(n))
	for i := uint32(0); i < n; i++ {
		k := reflect.New(t.Key()).Elem()
		if err := s.readValue(b, k); err != nil {
			return fmt.Errorf("key %d: %w", i, err)
		}
		e := reflect.New(t.Elem()).Elem()
		if err := s.readValue(b, e); err != nil {
			return fmt.Errorf("[%v]: %w", k, err)
		}
		m.SetMapIndex(k, e)
	}
	v.Set(m)
	return nil
}
