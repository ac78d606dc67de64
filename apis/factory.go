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

// Factory is the construction/destruction bundle of a descriptor.
//
// All operations work on untyped object addresses (pointers stored in an
// any, or slices for arrays); callers only need the descriptor, not the
// static type. Implementations must reject addresses of the wrong type.
type Factory interface {
	// New returns a new initialized object. When at is a non-nil address of
	// the right type, the object is constructed in place and at is returned.
	New(at any) (any, error)
	// NewArray returns n initialized objects. When arena is a slice of the
	// right type with capacity >= n, it is reused.
	NewArray(n int, arena any) (any, error)
	// Destruct runs the destructor in place; the memory stays with the caller.
	Destruct(obj any) error
	// DestructArray destructs every element of an array.
	DestructArray(arr any) error
	// Delete destructs obj and releases it back to the factory.
	Delete(obj any) error
	// DeleteArray destructs every element and releases the array.
	DeleteArray(arr any) error
}

// Initializer is implemented by types that need work beyond zeroing on
// construction.
type Initializer interface {
	Init()
}

// Destroyer is implemented by types that release resources on destruction.
type Destroyer interface {
	Destroy()
}
