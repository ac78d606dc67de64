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

package rdx

import (
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"dirpx.dev/rdx/apis"
	"dirpx.dev/rdx/builder"
	"dirpx.dev/rdx/config"
	"dirpx.dev/rdx/logger"
)

var (
	// ErrNilRegistry is returned when a builder returns a nil registry.
	ErrNilRegistry = errors.New("rdx: builder returned nil registry")
	// ErrNilResolver is returned when a builder returns a nil resolver.
	ErrNilResolver = errors.New("rdx: builder returned nil resolver")
	// ErrNilSelector is returned when a builder returns a nil behavior selector.
	ErrNilSelector = errors.New("rdx: builder returned nil behavior selector")
	// ErrNilDispatcher is returned when a builder returns a nil dispatcher.
	ErrNilDispatcher = errors.New("rdx: builder returned nil dispatcher")
)

// buildMu serializes writers (reconfigurations/swaps) so we never publish
// partially-built snapshots.
var buildMu sync.Mutex

// st is the global rdx state.
var st atomic.Pointer[state]

// once guards the lazy bootstrap of st.
var once sync.Once

// state is the global rdx state snapshot.
// Immutable snapshot published atomically via st.Store; never mutate fields
// of a published state. Writers create a new state and swap it atomically.
type state struct {
	cfg  apis.Config
	reg  apis.Registry
	res  apis.Resolver
	sel  apis.BehaviorSelector
	disp apis.ObjectStreamer
	bld  apis.Builder
	// preg and pres mark layers supplied by the caller; rebuilds keep them.
	preg bool
	pres bool
}

// load returns the current state, building the default one on first use.
func load() *state {
	once.Do(func() {
		if st.Load() != nil {
			return
		}
		bld := builder.New()
		st.Store(rebuild(&state{bld: bld}, config.DefaultConfig(), bld))
	})
	return st.Load()
}

// rebuild derives a new state for cfg and bld from old, keeping pinned
// layers. It panics when the builder returns a nil layer.
func rebuild(old *state, cfg apis.Config, bld apis.Builder) *state {
	next := &state{cfg: cfg, bld: bld, reg: old.reg, res: old.res, preg: old.preg, pres: old.pres}
	if !next.preg {
		next.reg = bld.BuildRegistry(cfg, old.reg)
	}
	if next.reg == nil {
		panic(ErrNilRegistry)
	}
	if !next.pres {
		next.res = bld.BuildResolver(cfg, next.reg, old.res)
	}
	if next.res == nil {
		panic(ErrNilResolver)
	}
	next.sel = bld.BuildSelector(cfg, next.reg, old.sel)
	if next.sel == nil {
		panic(ErrNilSelector)
	}
	next.disp = bld.BuildDispatcher(cfg, next.reg, next.res)
	if next.disp == nil {
		panic(ErrNilDispatcher)
	}
	return next
}

// swap publishes the state produced by fn from the current one.
func swap(fn func(old *state) *state) {
	load()
	buildMu.Lock()
	defer buildMu.Unlock()
	st.Store(fn(st.Load()))
}

// Config returns the global rdx configuration.
func Config() apis.Config {
	return load().cfg
}

// SetConfig sets the global rdx configuration to cfg and rebuilds every
// layer that was not supplied explicitly. Registered types are migrated.
func SetConfig(cfg apis.Config) {
	swap(func(old *state) *state { return rebuild(old, cfg, old.bld) })
}

// Registry returns the global rdx registry.
func Registry() apis.Registry {
	return load().reg
}

// SetRegistry installs reg as the global registry and rebuilds the layers
// that depend on it. A nil reg is ignored.
func SetRegistry(reg apis.Registry) {
	if reg == nil {
		return
	}
	swap(func(old *state) *state {
		pinned := *old
		pinned.reg, pinned.preg = reg, true
		return rebuild(&pinned, old.cfg, old.bld)
	})
}

// Resolver returns the global rdx resolver.
func Resolver() apis.Resolver {
	return load().res
}

// SetResolver installs res as the global resolver. A nil res is ignored.
func SetResolver(res apis.Resolver) {
	if res == nil {
		return
	}
	swap(func(old *state) *state {
		pinned := *old
		pinned.res, pinned.pres = res, true
		return rebuild(&pinned, old.cfg, old.bld)
	})
}

// Builder returns the global rdx builder.
func Builder() apis.Builder {
	return load().bld
}

// SetBuilder sets the global rdx builder to b and rebuilds all layers with
// it. A nil b is ignored.
func SetBuilder(b apis.Builder) {
	if b == nil {
		return
	}
	swap(func(old *state) *state { return rebuild(old, old.cfg, b) })
}

// SetAll explicitly sets the global rdx state components.
//
// Nil arguments leave the corresponding component unchanged, except that a
// nil reg or res is rebuilt unless it was supplied by an earlier call.
func SetAll(cfg *apis.Config, reg apis.Registry, res apis.Resolver, bld apis.Builder) {
	swap(func(old *state) *state {
		ncfg := old.cfg
		if cfg != nil {
			ncfg = *cfg
		}
		nbld := old.bld
		if bld != nil {
			nbld = bld
		}
		pinned := *old
		if reg != nil {
			pinned.reg, pinned.preg = reg, true
		}
		if res != nil {
			pinned.res, pinned.pres = res, true
		}
		return rebuild(&pinned, ncfg, nbld)
	})
}

// Dispatcher returns the global streamer dispatcher.
func Dispatcher() apis.ObjectStreamer {
	return load().disp
}

// Behaviors returns the global behavior selector.
func Behaviors() apis.BehaviorSelector {
	return load().sel
}

// IsRegistryPinned reports whether the global registry was supplied by the
// caller and survives rebuilds.
func IsRegistryPinned() bool {
	return load().preg
}

// IsResolverPinned reports whether the global resolver was supplied by the
// caller and survives rebuilds.
func IsResolverPinned() bool {
	return load().pres
}

// SetLogger installs l as the rdx logger. A nil l silences rdx.
func SetLogger(l *zap.Logger) {
	logger.Set(l)
}

// UnpinRegistry lets the next rebuild replace the global registry again.
func UnpinRegistry() {
	swap(func(old *state) *state {
		next := *old
		next.preg = false
		return &next
	})
}

// UnpinResolver lets the next rebuild replace the global resolver again.
func UnpinResolver() {
	swap(func(old *state) *state {
		next := *old
		next.pres = false
		return &next
	})
}
