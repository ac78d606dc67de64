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

package descriptor

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"dirpx.dev/rdx/apis"
	"dirpx.dev/rdx/config"
	"dirpx.dev/rdx/factory"
	"dirpx.dev/rdx/modifier"
	uref "dirpx.dev/rdx/utils/reflect"
)

var (
	// ErrVersionDecrease is returned by SetVersion when the new version is
	// lower than the current one.
	ErrVersionDecrease = errors.New("rdx(descriptor): version decrease")
	// ErrInvalidVersion is returned for versions outside [Unversioned, MaxVersion].
	ErrInvalidVersion = errors.New("rdx(descriptor): invalid version")
	// ErrNilType is returned when a Go type is required but nil was given.
	ErrNilType = errors.New("rdx(descriptor): nil type")
	// ErrUnnamedType is returned when no registered name can be derived for a type.
	ErrUnnamedType = errors.New("rdx(descriptor): type has no derivable name")
	// ErrEmptyName is returned when neither the DescriptorSpec nor its identity carries a name.
	ErrEmptyName = errors.New("rdx(descriptor): empty name")
	// ErrNameMismatch is returned when DescriptorSpec.Name differs from its identity name.
	ErrNameMismatch = errors.New("rdx(descriptor): name differs from identity")
	// ErrInvalidReadRule is returned for rules that would do nothing.
	ErrInvalidReadRule = errors.New("rdx(descriptor): read rule has neither Read nor Upgrade")
	// ErrDuplicateReadRule is returned when a rule for the version already exists.
	ErrDuplicateReadRule = errors.New("rdx(descriptor): duplicate read rule")
	// ErrForeignType is returned by the factory of a descriptor without a Go type.
	ErrForeignType = errors.New("rdx(descriptor): foreign type has no factory")
)

// IdentityFor derives the identity a Go type is registered under by default.
func IdentityFor(t reflect.Type, cfg apis.Config) (apis.Identity, error) {
	if t == nil {
		return apis.Identity{}, ErrNilType
	}
	name := uref.TypeName(t, cfg)
	if name == "" {
		return apis.Identity{}, fmt.Errorf("%w: %v", ErrUnnamedType, t)
	}
	return apis.NewIdentity(name, t), nil
}

// IdentityOf returns the default identity of T. Builtins and types without
// a derivable name get an identity with an empty name, which registries reject.
func IdentityOf[T any]() apis.Identity {
	t := reflect.TypeFor[T]()
	return apis.NewIdentity(uref.TypeName(t, config.DefaultConfig()), t)
}

// descriptor is the default apis.Descriptor.
type descriptor struct {
	id        apis.Identity
	size      uintptr
	kind      modifier.Kind
	modifiers modifier.Set
	declFile  string
	declLine  int
	factory   apis.Factory
	members   []apis.Member
	byName    map[string]int
	bases     []apis.Identity
	checksum  uint64
	proxy     apis.Resolver

	mu       sync.RWMutex
	version  int
	implFile string
	implLine int
	streamer apis.Streamer
	rules    map[int]apis.ReadRule
}

var _ apis.Descriptor = (*descriptor)(nil)

// New builds a descriptor from spec. Size, kind, members, bases and the
// layout checksum are derived from the identity's Go type; a foreign
// identity yields a descriptor without members and with a failing factory.
func New(spec apis.DescriptorSpec) (apis.Descriptor, error) {
	id := spec.Identity
	switch {
	case id.Name == "" && spec.Name == "":
		return nil, ErrEmptyName
	case id.Name == "":
		id.Name = spec.Name
	case spec.Name != "" && spec.Name != id.Name:
		return nil, fmt.Errorf("%w: %q vs %q", ErrNameMismatch, spec.Name, id.Name)
	}
	if !apis.ValidVersion(spec.Version) {
		return nil, invalidVersion(spec.Version)
	}

	d := &descriptor{
		id:        id,
		kind:      modifier.Unresolved,
		modifiers: spec.Modifiers,
		declFile:  spec.DeclFile,
		declLine:  spec.DeclLine,
		factory:   spec.Factory,
		proxy:     spec.Proxy,
		version:   spec.Version,
		implFile:  spec.ImplFile,
		implLine:  spec.ImplLine,
		streamer:  spec.Streamer,
		rules:     make(map[int]apis.ReadRule, len(spec.ReadRules)),
	}

	if t := id.Type; t != nil {
		members, err := MembersOf(t)
		if err != nil {
			return nil, err
		}
		d.size = t.Size()
		d.kind = KindOf(t)
		d.modifiers |= modifiersOf(t)
		d.members = members
		d.bases = basesOf(t, members, func(bt reflect.Type) string {
			return uref.TypeName(bt, config.DefaultConfig())
		})
		if d.factory == nil {
			d.factory = factory.ForType(t)
		}
	}
	if d.factory == nil {
		d.factory = foreign{name: id.Name}
	}

	d.byName = make(map[string]int, len(d.members))
	for i, m := range d.members {
		d.byName[m.Name] = i
	}
	sum, err := checksumOf(id.Name, d.members)
	if err != nil {
		return nil, err
	}
	d.checksum = sum

	for _, r := range spec.ReadRules {
		if err := d.AddReadRule(r); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (d *descriptor) Identity() apis.Identity { return d.id }
func (d *descriptor) Name() string { return d.id.Name }
func (d *descriptor) Type() reflect.Type { return d.id.Type }
func (d *descriptor) Size() uintptr { return d.size }
func (d *descriptor) Kind() modifier.Kind { return d.kind }
func (d *descriptor) Modifiers() modifier.Set { return d.modifiers }
func (d *descriptor) DeclFile() string { return d.declFile }
func (d *descriptor) DeclLine() int { return d.declLine }
func (d *descriptor) Factory() apis.Factory { return d.factory }
func (d *descriptor) Checksum() uint64 { return d.checksum }
func (d *descriptor) Bases() []apis.Identity { return append([]apis.Identity(nil), d.bases...) }
func (d *descriptor) String() string { return d.id.String() }
func (d *descriptor) Members() []apis.Member { return append([]apis.Member(nil), d.members...) }

func (d *descriptor) Member(name string) (apis.Member, bool) {
	i, ok := d.byName[name]
	if !ok {
		return apis.Member{}, false
	}
	return d.members[i], true
}

func (d *descriptor) Version() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

func (d *descriptor) SetVersion(v int) error {
	if !apis.ValidVersion(v) {
		return invalidVersion(v)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if v < d.version {
		return fmt.Errorf("%w: %s from %d to %d", ErrVersionDecrease, d.id.Name, d.version, v)
	}
	d.version = v
	return nil
}

func (d *descriptor) ResetVersion(v int) error {
	if !apis.ValidVersion(v) {
		return invalidVersion(v)
	}
	d.mu.Lock()
	d.version = v
	d.mu.Unlock()
	return nil
}

func invalidVersion(v int) error {
	return fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidVersion, v, apis.Unversioned, apis.MaxVersion)
}

func (d *descriptor) ImplFile() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.implFile
}

func (d *descriptor) ImplLine() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.implLine
}

func (d *descriptor) SetImplFile(file string, line int) {
	d.mu.Lock()
	d.implFile, d.implLine = file, line
	d.mu.Unlock()
}

func (d *descriptor) Streamer() apis.Streamer {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.streamer
}

func (d *descriptor) SetStreamer(s apis.Streamer) {
	d.mu.Lock()
	d.streamer = s
	d.mu.Unlock()
}

func (d *descriptor) ReadRule(v int) (apis.ReadRule, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	r, ok := d.rules[v]
	return r, ok
}

func (d *descriptor) AddReadRule(rule apis.ReadRule) error {
	if rule.Read == nil && rule.Upgrade == nil {
		return ErrInvalidReadRule
	}
	if !apis.ValidVersion(rule.Version) {
		return invalidVersion(rule.Version)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, dup := d.rules[rule.Version]; dup {
		return fmt.Errorf("%w: %s version %d", ErrDuplicateReadRule, d.id.Name, rule.Version)
	}
	d.rules[rule.Version] = rule
	return nil
}

// RuleVersions returns the versions d has read rules for, ascending.
func RuleVersions(d apis.Descriptor) []int {
	impl, ok := d.(*descriptor)
	if !ok {
		return nil
	}
	impl.mu.RLock()
	defer impl.mu.RUnlock()
	out := make([]int, 0, len(impl.rules))
	for v := range impl.rules {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

// IsA resolves obj through the descriptor's proxy. Without a proxy only
// the exact type is recognized.
func (d *descriptor) IsA(obj any) apis.Resolution {
	if d.proxy != nil {
		return d.proxy.Resolve(obj, d)
	}
	t := reflect.TypeOf(obj)
	if t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return apis.Resolution{Descriptor: d, Resolved: t != nil && t == d.id.Type}
}

// foreign is the factory of descriptors that carry no Go type.
type foreign struct{ name string }

func (f foreign) err() error { return fmt.Errorf("%w: %s", ErrForeignType, f.name) }
func (f foreign) New(any) (any, error) { return nil, f.err() }
func (f foreign) NewArray(int, any) (any, error) { return nil, f.err() }
func (f foreign) Destruct(any) error { return f.err() }
func (f foreign) DestructArray(any) error { return f.err() }
func (f foreign) Delete(any) error { return f.err() }
func (f foreign) DeleteArray(any) error { return f.err() }
