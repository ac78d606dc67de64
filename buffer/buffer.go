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

// Package buffer implements apis.Buffer over an in-memory byte slice.
//
// A Buffer is created either for writing (NewWriter) or for reading
// (NewReader) and keeps that mode for its whole life. Multi-byte values use
// the configured byte order, big-endian unless told otherwise.
//
// Strings are prefixed with their length in one byte, or with 0xFF followed
// by a uint32 when they are 255 bytes or longer. Byte slices are prefixed
// with a uint32 length.
package buffer

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"dirpx.dev/rdx/apis"
	"dirpx.dev/rdx/config"
)

var (
	// ErrVersionRange is recorded when a version does not fit the int16 tag.
	ErrVersionRange = errors.New("rdx(buffer): version out of range")
	// ErrShortBuffer is returned when a read runs past the end of the data.
	ErrShortBuffer = errors.New("rdx(buffer): short buffer")
	// ErrWrongMode is returned when a buffer is used against its mode.
	ErrWrongMode = errors.New("rdx(buffer): wrong mode")
	// ErrNoStreamer is returned by the object methods of a buffer that has
	// no dispatcher attached.
	ErrNoStreamer = errors.New("rdx(buffer): no object streamer attached")
)

// longString marks a string length that does not fit in one byte.
const longString = 0xFF

// order is what a Buffer needs from a byte order.
type order interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// Buffer is the default apis.Buffer.
type Buffer struct {
	reading bool
	order   order
	data    []byte
	off     int
	objs    apis.ObjectStreamer
	err     error
}

var _ apis.Buffer = (*Buffer)(nil)

// Option configures a Buffer.
type Option func(*Buffer)

// WithDispatcher attaches the streamer the object methods call back into.
func WithDispatcher(s apis.ObjectStreamer) Option {
	return func(b *Buffer) { b.objs = s }
}

// WithByteOrder selects the byte order by its config name. Unknown names
// select big-endian.
func WithByteOrder(name string) Option {
	return func(b *Buffer) {
		if name == config.ByteOrderLittle {
			b.order = binary.LittleEndian
		} else {
			b.order = binary.BigEndian
		}
	}
}

// NewWriter returns an empty buffer in writing mode.
func NewWriter(opts ...Option) *Buffer {
	return newBuffer(false, nil, opts)
}

// NewReader returns a buffer reading data. data is not copied.
func NewReader(data []byte, opts ...Option) *Buffer {
	return newBuffer(true, data, opts)
}

func newBuffer(reading bool, data []byte, opts []Option) *Buffer {
	b := &Buffer{reading: reading, order: binary.BigEndian, data: data}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// IsReading reports whether b is a reader.
func (b *Buffer) IsReading() bool { return b.reading }

// Bytes returns the written bytes, or the unread rest of a reader.
func (b *Buffer) Bytes() []byte { return b.data[b.off:] }

// Len returns the number of bytes Bytes would return.
func (b *Buffer) Len() int { return len(b.data) - b.off }

// Err returns the first misuse recorded by a write: a write on a reader or
// a version out of range.
func (b *Buffer) Err() error { return b.err }

// Dispatcher returns the attached object streamer, or nil.
func (b *Buffer) Dispatcher() apis.ObjectStreamer { return b.objs }

// writable reports whether b accepts writes, recording misuse otherwise.
func (b *Buffer) writable() bool {
	if b.reading {
		if b.err == nil {
			b.err = fmt.Errorf("%w: write on a reader", ErrWrongMode)
		}
		return false
	}
	return true
}

// next consumes n bytes.
func (b *Buffer) next(n int) ([]byte, error) {
	if !b.reading {
		return nil, fmt.Errorf("%w: read on a writer", ErrWrongMode)
	}
	if n < 0 || b.Len() < n {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrShortBuffer, n, b.Len())
	}
	p := b.data[b.off : b.off+n]
	b.off += n
	return p, nil
}

// WriteVersion embeds a class version as int16. Versions the tag cannot
// hold are not written; they are recorded in Err.
func (b *Buffer) WriteVersion(v int) {
	if !apis.ValidVersion(v) {
		if b.err == nil {
			b.err = fmt.Errorf("%w: %d", ErrVersionRange, v)
		}
		return
	}
	b.WriteInt16(int16(v))
}

// ReadVersion reads a class version embedded by WriteVersion.
func (b *Buffer) ReadVersion() (int, error) {
	v, err := b.ReadInt16()
	return int(v), err
}

func (b *Buffer) WriteBool(v bool) {
	if v {
		b.WriteUint8(1)
	} else {
		b.WriteUint8(0)
	}
}

func (b *Buffer) ReadBool() (bool, error) {
	v, err := b.ReadUint8()
	return v != 0, err
}

func (b *Buffer) WriteInt8(v int8) { b.WriteUint8(uint8(v)) }

func (b *Buffer) ReadInt8() (int8, error) {
	v, err := b.ReadUint8()
	return int8(v), err
}

func (b *Buffer) WriteInt16(v int16) { b.WriteUint16(uint16(v)) }

func (b *Buffer) ReadInt16() (int16, error) {
	v, err := b.ReadUint16()
	return int16(v), err
}

func (b *Buffer) WriteInt32(v int32) { b.WriteUint32(uint32(v)) }

func (b *Buffer) ReadInt32() (int32, error) {
	v, err := b.ReadUint32()
	return int32(v), err
}

func (b *Buffer) WriteInt64(v int64) { b.WriteUint64(uint64(v)) }

func (b *Buffer) ReadInt64() (int64, error) {
	v, err := b.ReadUint64()
	return int64(v), err
}

func (b *Buffer) WriteUint8(v uint8) {
	if b.writable() {
		b.data = append(b.data, v)
	}
}

func (b *Buffer) ReadUint8() (uint8, error) {
	p, err := b.next(1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

func (b *Buffer) WriteUint16(v uint16) {
	if b.writable() {
		b.data = b.order.AppendUint16(b.data, v)
	}
}

func (b *Buffer) ReadUint16() (uint16, error) {
	p, err := b.next(2)
	if err != nil {
		return 0, err
	}
	return b.order.Uint16(p), nil
}

func (b *Buffer) WriteUint32(v uint32) {
	if b.writable() {
		b.data = b.order.AppendUint32(b.data, v)
	}
}

func (b *Buffer) ReadUint32() (uint32, error) {
	p, err := b.next(4)
	if err != nil {
		return 0, err
	}
	return b.order.Uint32(p), nil
}

func (b *Buffer) WriteUint64(v uint64) {
	if b.writable() {
		b.data = b.order.AppendUint64(b.data, v)
	}
}

func (b *Buffer) ReadUint64() (uint64, error) {
	p, err := b.next(8)
	if err != nil {
		return 0, err
	}
	return b.order.Uint64(p), nil
}

func (b *Buffer) WriteFloat32(v float32) { b.WriteUint32(math.Float32bits(v)) }

func (b *Buffer) ReadFloat32() (float32, error) {
	v, err := b.ReadUint32()
	return math.Float32frombits(v), err
}

func (b *Buffer) WriteFloat64(v float64) { b.WriteUint64(math.Float64bits(v)) }

func (b *Buffer) ReadFloat64() (float64, error) {
	v, err := b.ReadUint64()
	return math.Float64frombits(v), err
}

func (b *Buffer) WriteString(v string) {
	if !b.writable() {
		return
	}
	if len(v) < longString {
		b.data = append(b.data, byte(len(v)))
	} else {
		b.data = append(b.data, longString)
		b.data = b.order.AppendUint32(b.data, uint32(len(v)))
	}
	b.data = append(b.data, v...)
}

func (b *Buffer) ReadString() (string, error) {
	n, err := b.ReadUint8()
	if err != nil {
		return "", err
	}
	size := int(n)
	if n == longString {
		l, err := b.ReadUint32()
		if err != nil {
			return "", err
		}
		size = int(l)
	}
	p, err := b.next(size)
	if err != nil {
		return "", err
	}
	return string(p), nil
}

func (b *Buffer) WriteBytes(v []byte) {
	if !b.writable() {
		return
	}
	b.data = b.order.AppendUint32(b.data, uint32(len(v)))
	b.data = append(b.data, v...)
}

// ReadBytes returns a copy of the next length-prefixed byte slice.
func (b *Buffer) ReadBytes() ([]byte, error) {
	n, err := b.ReadUint32()
	if err != nil {
		return nil, err
	}
	p, err := b.next(int(n))
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), p...), nil
}

func (b *Buffer) WriteObject(d apis.Descriptor, obj any) error {
	if b.objs == nil {
		return ErrNoStreamer
	}
	return b.objs.Write(b, d, obj)
}

func (b *Buffer) ReadObject(d apis.Descriptor, obj any) error {
	if b.objs == nil {
		return ErrNoStreamer
	}
	return b.objs.Read(b, d, obj)
}

func (b *Buffer) WriteObjectAny(obj any) error {
	if b.objs == nil {
		return ErrNoStreamer
	}
	return b.objs.WriteAny(b, obj)
}

func (b *Buffer) ReadObjectAny() (any, error) {
	if b.objs == nil {
		return nil, ErrNoStreamer
	}
	return b.objs.ReadAny(b)
}
