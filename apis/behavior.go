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

import "dirpx.dev/rdx/modifier"

// Registration is the load-time request a type makes to become known.
type Registration struct {
	Name       string
	Version    int
	Identity   Identity
	Dictionary DictionaryFunc
	Modifiers  modifier.Set
	DeclFile   string
	DeclLine   int
	// Module is the actual context: the package performing the registration.
	Module string
}

// Behavior intercepts registration, unregistration and descriptor creation.
// The default behavior forwards to a Registry; alternates may defer, log,
// count or redirect.
type Behavior interface {
	Register(r Registration) error
	Unregister(name string) error
	CreateDescriptor(spec DescriptorSpec) (Descriptor, error)
}

// BehaviorSelector picks the behavior for a (declaring, actual) context pair.
// Select must be deterministic and free of side effects.
type BehaviorSelector interface {
	Select(decl, actual string) Behavior
}
