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

package apis

// Buffer is the byte-stream abstraction consumed by streamers.
//
// A Buffer is either reading or writing for its whole life. Write methods
// append and cannot fail; read methods return an error on short or
// malformed input. The Object methods are the recursive entry points that
// hand a registered type back to the streamer dispatcher.
type Buffer interface {
	IsReading() bool

	WriteVersion(v int)
	ReadVersion() (int, error)

	WriteBool(v bool)
	ReadBool() (bool, error)
	WriteInt8(v int8)
	ReadInt8() (int8, error)
	WriteInt16(v int16)
	ReadInt16() (int16, error)
	WriteInt32(v int32)
	ReadInt32() (int32, error)
	WriteInt64(v int64)
	ReadInt64() (int64, error)
	WriteUint8(v uint8)
	ReadUint8() (uint8, error)
	WriteUint16(v uint16)
	ReadUint16() (uint16, error)
	WriteUint32(v uint32)
	ReadUint32() (uint32, error)
	WriteUint64(v uint64)
	ReadUint64() (uint64, error)
	WriteFloat32(v float32)
	ReadFloat32() (float32, error)
	WriteFloat64(v float64)
	ReadFloat64() (float64, error)
	WriteString(v string)
	ReadString() (string, error)
	WriteBytes(v []byte)
	ReadBytes() ([]byte, error)

	// WriteObject streams obj, a pointer to an instance of d's type.
	WriteObject(d Descriptor, obj any) error
	// ReadObject fills obj, a pointer to an instance of d's type.
	ReadObject(d Descriptor, obj any) error
	// WriteObjectAny streams a polymorphic value prefixed by its resolved class name.
	WriteObjectAny(obj any) error
	// ReadObjectAny constructs and reads a value written by WriteObjectAny.
	ReadObjectAny() (any, error)
}

// ObjectStreamer is the dispatcher a Buffer calls back into for registered types.
type ObjectStreamer interface {
	Write(b Buffer, d Descriptor, obj any) error
	Read(b Buffer, d Descriptor, obj any) error
	WriteAny(b Buffer, obj any) error
	ReadAny(b Buffer) (any, error)
}

// Streamer is a user-supplied read/write routine for one type. version is
// the class version being read or written; the dispatcher has already
// handled the embedded version tag.
type Streamer interface {
	Stream(b Buffer, obj any, version int) error
}

// StreamerFunc adapts a plain function to the Streamer interface.
type StreamerFunc func(b Buffer, obj any, version int) error

// Stream implements Streamer for StreamerFunc.
func (f StreamerFunc) Stream(b Buffer, obj any, version int) error {
	return f(b, obj, version)
}
