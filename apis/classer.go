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

// Classer lets an instance report the name of its own most-derived class.
//
// # Overview
//
// Classer is the explicit, reflection-free capability a polymorphic
// hierarchy uses to answer "what am I really?". Generic code holding only a
// base reference (an interface value, or a pointer to an embedded base) can
// ask the instance for its class name and look the descriptor up by name.
//
// Every concrete type of a hierarchy SHOULD implement ClassName on its own
// receiver. A ClassName promoted from an embedded base reports the base's
// class; resolvers detect that case and flag the result as unresolved
// instead of trusting it.
//
// # Usage
//
//	type Shape interface{ Area() float64 }
//
//	type Circle struct{ R float64 }
//
//	func (*Circle) ClassName() string { return "geo.Circle" }
//
// # Contract
//
//   - The returned name MUST be non-empty and MUST be a name (or alias)
//     registered in the registry the resolver consults.
//   - The name MUST NOT depend on mutable instance state.
//   - ClassName MUST be safe for concurrent calls and MUST NOT block.
type Classer interface {
	// ClassName returns the registered name of the receiver's class.
	ClassName() string
}

// Versioner lets a type declare its own class version next to its
// definition, the way a generated dictionary would.
//
// # Contract
//
//   - ClassVersion MUST be callable on the zero value.
//   - The returned value MUST be >= 0, or Unversioned.
//   - Values SHOULD only grow as the layout of the type evolves.
type Versioner interface {
	ClassVersion() int
}

// ClasserFunc adapts a plain function to the Classer interface.
//
// It is mostly useful in tests and for wrapper types that forward the class
// name of the value they wrap.
type ClasserFunc func() string

// ClassName implements Classer for ClasserFunc.
func (f ClasserFunc) ClassName() string {
	return f()
}
