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

import "reflect"

// Registry is the table from type identity and name to Descriptor.
// Implementations must be safe for concurrent use; every mutation is
// visible to all callers once it returns.
type Registry interface {
	// Add registers id, building its descriptor with build. Re-adding the
	// same identity is idempotent and returns the existing descriptor.
	Add(id Identity, build DictionaryFunc) (Descriptor, error)
	// Declare reserves id and defers dict until the first lookup.
	Declare(id Identity, dict DictionaryFunc) error
	// Lookup finds a descriptor by primary name or alias.
	Lookup(name string) (Descriptor, error)
	// LookupIdentity finds a descriptor by identity.
	LookupIdentity(id Identity) (Descriptor, error)
	// LookupType finds a descriptor by Go type.
	LookupType(t reflect.Type) (Descriptor, error)
	// Remove drops a primary name and all its aliases. Absent names are a no-op.
	Remove(name string)
	// AddAlias binds alias to a registered primary name.
	AddAlias(primary, alias string) error
	// Aliases returns the aliases of primary, sorted.
	Aliases(primary string) []string
	// Entries returns a snapshot for diagnostics/docs (order is unspecified).
	Entries() []Entry
	// Count returns the number of registered identities.
	Count() int
	// Generation is incremented by every successful mutation.
	Generation() uint64
}

// Entry is a single registration in a Registry snapshot.
type Entry struct {
	// Identity is the registered identity.
	Identity Identity
	// Aliases are the alternate names bound to the identity.
	Aliases []string
	// Descriptor is nil while the entry is still pending.
	Descriptor Descriptor
	// Dictionary is the deferred entry point of a pending entry.
	Dictionary DictionaryFunc
}

// Pending reports whether the descriptor has not been built yet.
func (e Entry) Pending() bool {
	return e.Descriptor == nil
}
