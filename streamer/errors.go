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
	"errors"
	"fmt"

	"dirpx.dev/rdx/buffer"
)

var (
	// ErrVersionMismatch is matched by every *VersionMismatchError.
	ErrVersionMismatch = errors.New("rdx(streamer): version mismatch")
	// ErrUnregisteredType is returned for nested struct values whose type
	// is not registered, and for polymorphic values that cannot be resolved.
	ErrUnregisteredType = errors.New("rdx(streamer): unregistered type")
	// ErrUnsupportedKind is returned for values that have no stream form,
	// such as channels and functions.
	ErrUnsupportedKind = errors.New("rdx(streamer): unsupported kind")
	// ErrMaxDepth is returned when objects nest deeper than Config.MaxDepth.
	ErrMaxDepth = errors.New("rdx(streamer): max depth exceeded")
	// ErrNilObject is returned when a nil object or nil pointer is streamed.
	ErrNilObject = errors.New("rdx(streamer): nil object")
	// ErrTypeMismatch is returned when an object is not an instance of the
	// descriptor's type, or a decoded value does not fit its destination.
	ErrTypeMismatch = errors.New("rdx(streamer): object type mismatch")
	// ErrTrailingData is returned when a top-level read leaves bytes unread.
	ErrTrailingData = errors.New("rdx(streamer): trailing data")
	// ErrVersionRange is returned for class versions the version tag cannot hold.
	ErrVersionRange = buffer.ErrVersionRange
)

// VersionMismatchError reports data embedded with a version the descriptor
// has no read rule for.
type VersionMismatchError struct {
	// Name is the class name being read.
	Name string
	// Got is the version found in the stream.
	Got int
	// Want is the current class version.
	Want int
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("%v: %s has version %d, stream has %d and no read rule covers it",
		ErrVersionMismatch, e.Name, e.Want, e.Got)
}

// Unwrap makes errors.Is(err, ErrVersionMismatch) hold.
func (e *VersionMismatchError) Unwrap() error { return ErrVersionMismatch }
