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

package registry

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"dirpx.dev/rdx/apis"
	"dirpx.dev/rdx/config"
	"dirpx.dev/rdx/logger"
	uref "dirpx.dev/rdx/utils/reflect"
)

var (
	// ErrEmptyName is returned when an empty name is provided.
	ErrEmptyName = errors.New("rdx(registry): empty name provided")
	// ErrNilDictionary is returned when no dictionary entry point is provided,
	// or when it produced a nil descriptor.
	ErrNilDictionary = errors.New("rdx(registry): nil dictionary")
	// ErrDuplicateName indicates that a name is already bound to another identity.
	ErrDuplicateName = errors.New("rdx(registry): duplicate name")
	// ErrTypeConflict indicates that a Go type is already registered under
	// another name. Use an alias instead.
	ErrTypeConflict = errors.New("rdx(registry): type already registered under another name")
	// ErrIdentityMismatch is returned when a dictionary builds a descriptor
	// for a different identity than the one registered.
	ErrIdentityMismatch = errors.New("rdx(registry): descriptor identity mismatch")
	// ErrUnknownPrimary is returned by AddAlias for unregistered primaries.
	ErrUnknownPrimary = errors.New("rdx(registry): unknown primary name")
	// ErrAliasConflict is returned when an alias already names something else.
	ErrAliasConflict = errors.New("rdx(registry): alias conflict")
	// ErrNotFound is returned by lookups that miss.
	ErrNotFound = errors.New("rdx(registry): not found")
)

// New constructs a Registry that normalizes Go types according to cfg.
// Only MaxUnwrap and MapPreferElem are used here.
func New(cfg apis.Config) apis.Registry {
	if cfg.MaxUnwrap <= 0 {
		cfg.MaxUnwrap = config.DefaultMaxUnwrap
	}
	return &registry{
		cfg:     cfg,
		byName:  make(map[string]*entry),
		byType:  make(map[reflect.Type]*entry),
		aliases: make(map[string]string),
	}
}

// entry is one registered identity. desc is nil while the entry is pending.
type entry struct {
	id      apis.Identity
	key     reflect.Type
	desc    apis.Descriptor
	dict    apis.DictionaryFunc
	aliases []string
}

// registry is the map-backed Registry implementation.
type registry struct {
	// cfg is the configuration used for type normalization.
	cfg apis.Config
	// mu guards the three indexes and entry contents.
	mu sync.RWMutex
	// byName maps primary names to entries.
	byName map[string]*entry
	// byType maps normalized Go types to entries.
	byType map[reflect.Type]*entry
	// aliases maps alias to primary name.
	aliases map[string]string
	// gen counts successful mutations.
	gen atomic.Uint64
	// pending de-duplicates concurrent materialization of declared entries,
	// keyed by entry address so a re-declared name never joins a stale call.
	pending singleflight.Group
}

var _ apis.Registry = (*registry)(nil)

// key returns the normalized type token id is indexed under, nil for
// foreign identities.
func (r *registry) key(id apis.Identity) (reflect.Type, error) {
	if id.Type == nil {
		return nil, nil
	}
	return uref.Normalize(id.Type, r.cfg)
}

// check validates that id can be bound. It returns the existing entry when
// id is already registered. Must be called with r.mu held.
func (r *registry) check(id apis.Identity, key reflect.Type) (*entry, error) {
	if e, ok := r.byName[id.Name]; ok {
		if e.id.Equal(id) {
			return e, nil
		}
		return nil, fmt.Errorf("%w: %q is bound to %v", ErrDuplicateName, id.Name, e.id)
	}
	if primary, ok := r.aliases[id.Name]; ok {
		return nil, fmt.Errorf("%w: %q is an alias of %q", ErrDuplicateName, id.Name, primary)
	}
	if key != nil {
		if e, ok := r.byType[key]; ok {
			return nil, fmt.Errorf("%w: %v is registered as %q", ErrTypeConflict, key, e.id.Name)
		}
	}
	return nil, nil
}

// Add registers id eagerly. The build function runs outside the lock; the
// insert is re-checked under the write lock.
func (r *registry) Add(id apis.Identity, build apis.DictionaryFunc) (apis.Descriptor, error) {
	if id.Name == "" {
		return nil, ErrEmptyName
	}
	if build == nil {
		return nil, ErrNilDictionary
	}
	key, err := r.key(id)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	existing, err := r.check(id, key)
	r.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	if existing != nil {
		// idempotent re-registration, build is not invoked
		return r.materialize(existing)
	}

	d, err := r.build(id, build)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	existing, err = r.check(id, key)
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	if existing != nil {
		r.mu.Unlock()
		return r.materialize(existing)
	}
	e := &entry{id: id, key: key, desc: d, dict: build}
	r.insert(e)
	r.mu.Unlock()

	logger.Named("registry").Debug("added", zap.String("name", id.Name), zap.Int("version", d.Version()))
	return d, nil
}

// Declare reserves id and defers dict until the entry is first looked up.
func (r *registry) Declare(id apis.Identity, dict apis.DictionaryFunc) error {
	if id.Name == "" {
		return ErrEmptyName
	}
	if dict == nil {
		return ErrNilDictionary
	}
	key, err := r.key(id)
	if err != nil {
		return err
	}

	r.mu.Lock()
	existing, err := r.check(id, key)
	if err != nil || existing != nil {
		r.mu.Unlock()
		return err
	}
	r.insert(&entry{id: id, key: key, dict: dict})
	r.mu.Unlock()

	logger.Named("registry").Debug("declared", zap.String("name", id.Name))
	return nil
}

// insert binds e. Must be called with r.mu held for writing.
func (r *registry) insert(e *entry) {
	r.byName[e.id.Name] = e
	if e.key != nil {
		r.byType[e.key] = e
	}
	r.gen.Add(1)
}

// build runs dict and verifies the descriptor it produced.
func (r *registry) build(id apis.Identity, dict apis.DictionaryFunc) (apis.Descriptor, error) {
	d, err := dict()
	if err != nil {
		return nil, fmt.Errorf("rdx(registry): build %q: %w", id.Name, err)
	}
	if d == nil {
		return nil, fmt.Errorf("%w: %q built nothing", ErrNilDictionary, id.Name)
	}
	if !d.Identity().Equal(id) {
		return nil, fmt.Errorf("%w: registered %v, built %v", ErrIdentityMismatch, id, d.Identity())
	}
	return d, nil
}

// materialize returns the descriptor of e, running a deferred dictionary at
// most once at a time. A failed dictionary leaves the entry pending.
func (r *registry) materialize(e *entry) (apis.Descriptor, error) {
	r.mu.RLock()
	d, dict := e.desc, e.dict
	r.mu.RUnlock()
	if d != nil {
		return d, nil
	}

	v, err, _ := r.pending.Do(fmt.Sprintf("%p", e), func() (any, error) {
		r.mu.RLock()
		done := e.desc
		r.mu.RUnlock()
		if done != nil {
			return done, nil
		}

		d, err := r.build(e.id, dict)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		if e.desc == nil {
			e.desc = d
		}
		d = e.desc
		r.mu.Unlock()
		logger.Named("registry").Debug("materialized", zap.String("name", e.id.Name))
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(apis.Descriptor), nil
}

// Lookup finds a descriptor by primary name or alias.
func (r *registry) Lookup(name string) (apis.Descriptor, error) {
	r.mu.RLock()
	e, ok := r.byName[name]
	if !ok {
		if primary, alias := r.aliases[name]; alias {
			e, ok = r.byName[primary]
		}
	}
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: name %q", ErrNotFound, name)
	}
	return r.materialize(e)
}

// LookupIdentity finds a descriptor by identity.
func (r *registry) LookupIdentity(id apis.Identity) (apis.Descriptor, error) {
	r.mu.RLock()
	e, ok := r.byName[id.Name]
	r.mu.RUnlock()
	if !ok || !e.id.Equal(id) {
		return nil, fmt.Errorf("%w: identity %v", ErrNotFound, id)
	}
	return r.materialize(e)
}

// LookupType finds a descriptor by Go type. Pointers and containers are
// normalized to their nearest named type first.
func (r *registry) LookupType(t reflect.Type) (apis.Descriptor, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil type", ErrNotFound)
	}
	key, err := uref.Normalize(t, r.cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: type %v: %w", ErrNotFound, t, err)
	}
	r.mu.RLock()
	e, ok := r.byType[key]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: type %v", ErrNotFound, t)
	}
	return r.materialize(e)
}

// Remove drops a primary name and its aliases. Absent names are a no-op;
// aliases are not accepted as removal keys.
func (r *registry) Remove(name string) {
	r.mu.Lock()
	e, ok := r.byName[name]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.byName, name)
	if e.key != nil && r.byType[e.key] == e {
		delete(r.byType, e.key)
	}
	for _, a := range e.aliases {
		delete(r.aliases, a)
	}
	r.gen.Add(1)
	r.mu.Unlock()

	logger.Named("registry").Debug("removed", zap.String("name", name), zap.Strings("aliases", e.aliases))
}

// AddAlias binds alias to a registered primary name. Re-adding the same
// binding is a no-op.
func (r *registry) AddAlias(primary, alias string) error {
	if primary == "" || alias == "" {
		return ErrEmptyName
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byName[primary]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPrimary, primary)
	}
	if _, taken := r.byName[alias]; taken {
		return fmt.Errorf("%w: %q is a primary name", ErrAliasConflict, alias)
	}
	if prev, taken := r.aliases[alias]; taken {
		if prev == primary {
			return nil
		}
		return fmt.Errorf("%w: %q already names %q", ErrAliasConflict, alias, prev)
	}
	r.aliases[alias] = primary
	e.aliases = append(e.aliases, alias)
	r.gen.Add(1)

	logger.Named("registry").Debug("aliased", zap.String("name", primary), zap.String("alias", alias))
	return nil
}

// Aliases returns the aliases of primary, sorted.
func (r *registry) Aliases(primary string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byName[primary]
	if !ok || len(e.aliases) == 0 {
		return nil
	}
	out := append([]string(nil), e.aliases...)
	sort.Strings(out)
	return out
}

// Entries returns a snapshot for diagnostics/docs (order is unspecified).
// Pending entries are reported without materializing them.
func (r *registry) Entries() []apis.Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := make([]apis.Entry, 0, len(r.byName))
	for _, e := range r.byName {
		aliases := append([]string(nil), e.aliases...)
		sort.Strings(aliases)
		entries = append(entries, apis.Entry{
			Identity:   e.id,
			Aliases:    aliases,
			Descriptor: e.desc,
			Dictionary: e.dict,
		})
	}
	return entries
}

// Count returns the number of registered identities.
func (r *registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

// Generation is incremented by every successful mutation.
func (r *registry) Generation() uint64 {
	return r.gen.Load()
}
