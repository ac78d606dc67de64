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

import (
	"math"
	"reflect"

	"dirpx.dev/rdx/modifier"
)

const (
	// Unversioned is the version of foreign or explicitly unversioned types.
	Unversioned = -1
	// MaxVersion is the highest class version the int16 version tag holds.
	MaxVersion = math.MaxInt16
)

// ValidVersion reports whether v fits the embedded version tag.
func ValidVersion(v int) bool {
	return v >= Unversioned && v <= MaxVersion
}

// DictionaryFunc is a zero-argument entry point that produces a Descriptor.
// It is used for lazy and deferred descriptor construction.
type DictionaryFunc func() (Descriptor, error)

// Descriptor is the metadata record for one registered type.
//
// Everything except Version, Streamer, read rules and the implementation
// location is fixed at construction. The mutable parts are guarded by the
// implementation and are safe to update after the descriptor was published.
type Descriptor interface {
	// Identity returns the identity the descriptor was created for.
	Identity() Identity
	// Name returns the primary registered name.
	Name() string
	// Type returns the Go type, nil for foreign descriptors.
	Type() reflect.Type
	// Version returns the current class version.
	Version() int
	// SetVersion raises the version. Lowering it fails; use ResetVersion.
	SetVersion(v int) error
	// ResetVersion sets any valid version, lower ones included.
	ResetVersion(v int) error
	// Size returns the in-memory size in bytes.
	Size() uintptr
	// Kind returns the structural kind.
	Kind() modifier.Kind
	// Modifiers returns the type-level qualifiers.
	Modifiers() modifier.Set
	// DeclFile and DeclLine locate the declaration.
	DeclFile() string
	DeclLine() int
	// ImplFile and ImplLine locate the implementation, if known.
	ImplFile() string
	ImplLine() int
	// SetImplFile records the implementation location.
	SetImplFile(file string, line int)
	// Factory returns the construction/destruction bundle, never nil.
	Factory() Factory
	// Members returns a copy of the member list in declaration order.
	Members() []Member
	// Member returns the member with the given name.
	Member(name string) (Member, bool)
	// Bases returns the identities of embedded struct members.
	Bases() []Identity
	// Streamer returns the custom streamer, or nil for the default one.
	Streamer() Streamer
	// SetStreamer installs (or with nil, clears) a custom streamer.
	SetStreamer(s Streamer)
	// ReadRule returns the rule that reads data written with version v.
	ReadRule(v int) (ReadRule, bool)
	// AddReadRule registers a schema evolution rule.
	AddReadRule(rule ReadRule) error
	// Checksum is a stable hash of the name and member layout.
	Checksum() uint64
	// IsA resolves the most-derived descriptor for obj through the
	// descriptor's resolution proxy.
	IsA(obj any) Resolution
}

// Member describes one data member of an aggregate type.
type Member struct {
	// Name is the persisted member name.
	Name string
	// Field is the Go field name.
	Field string
	// Index is the reflect field index path.
	Index []int
	// Type is the member's Go type.
	Type reflect.Type
	// Offset is the byte offset inside the owner.
	Offset uintptr
	// Kind is the structural kind of the member itself.
	Kind modifier.Kind
	// Modifiers carries visibility and persistence qualifiers.
	Modifiers modifier.Set
	// Embedded is true for embedded (base) members.
	Embedded bool
	// Since is the first class version containing the member (0: always).
	Since int
	// Until is the last class version containing the member (0: still present).
	Until int
}

// InVersion reports whether m is part of the layout of class version v.
func (m Member) InVersion(v int) bool {
	if v == Unversioned {
		return true
	}
	if m.Since > 0 && v < m.Since {
		return false
	}
	if m.Until > 0 && v > m.Until {
		return false
	}
	return true
}

// ReadRule declares how data embedded with an older (or newer) version is
// brought into the current in-memory layout.
//
// If Read is set it replaces the default member walk for that version and
// reads the old layout itself. Otherwise the default walker reads the
// members present in Version. Upgrade, if set, runs afterwards and fills
// in whatever the old layout did not carry.
type ReadRule struct {
	// Version is the embedded version handled by this rule.
	Version int
	// Read optionally reads the old layout from b into obj.
	Read func(b Buffer, obj any) error
	// Upgrade optionally completes obj after the old layout was read.
	Upgrade func(obj any) error
}

// DescriptorSpec carries everything CreateDescriptor needs.
type DescriptorSpec struct {
	Name     string
	Version  int
	Identity Identity
	// Proxy resolves the most-derived descriptor for instances.
	Proxy Resolver

	DeclFile string
	DeclLine int
	ImplFile string
	ImplLine int

	// Modifiers are added to the type-level qualifiers derived from the type.
	Modifiers modifier.Set
	// Factory overrides the default reflect-based factory.
	Factory Factory
	// Streamer installs a custom streamer.
	Streamer Streamer
	// ReadRules are installed at creation.
	ReadRules []ReadRule
}
