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

package resolver

import (
	"reflect"
	"sync"

	"go.uber.org/zap"

	"dirpx.dev/rdx/apis"
	"dirpx.dev/rdx/logger"
	"dirpx.dev/rdx/strategy"
)

// ErrUnresolvedRuntimeType is carried by fallback resolutions.
var ErrUnresolvedRuntimeType = apis.ErrUnresolvedRuntimeType

// New constructs an apis.Resolver that tries the given strategies in order
// and falls back to the static descriptor. Nil strategies are ignored.
// Results are memoized per (dynamic type, static name) while reg's
// generation is unchanged; a nil reg disables memoization. The returned
// resolver is safe for concurrent use provided strategies themselves are
// safe for concurrent TryResolve calls.
func New(reg apis.Registry, strategies ...apis.Strategy) apis.Resolver {
	// Filter out nils to avoid nil-interface panics on call sites.
	out := make([]apis.Strategy, 0, len(strategies))
	for _, s := range strategies {
		if s != nil {
			out = append(out, s)
		}
	}
	return &chain{reg: reg, strats: out}
}

// NewDefault constructs the standard chain over reg: exact registry
// lookup, then apis.Classer, then nearest registered ancestor.
func NewDefault(reg apis.Registry) apis.Resolver {
	return New(reg,
		strategy.NewRegistryStrategy(reg),
		strategy.NewClasserStrategy(reg),
		strategy.NewAncestorStrategy(reg),
	)
}

// chain is an order-preserving resolver over a set of strategies.
type chain struct {
	reg    apis.Registry
	strats []apis.Strategy
	cache  sync.Map // cacheKey -> cached
}

type cacheKey struct {
	t      reflect.Type
	static string
}

type cached struct {
	gen uint64
	res apis.Resolution
}

// Resolve runs strategies in order until one handles obj. If none does,
// the static descriptor is returned flagged unresolved.
func (r *chain) Resolve(obj any, static apis.Descriptor) apis.Resolution {
	var key cacheKey
	var gen uint64
	memo := r.reg != nil && obj != nil
	if memo {
		key = cacheKey{t: reflect.TypeOf(obj)}
		if static != nil {
			key.static = static.Name()
		}
		gen = r.reg.Generation()
		if v, ok := r.cache.Load(key); ok && v.(cached).gen == gen {
			return v.(cached).res
		}
	}

	res := r.resolve(obj, static)
	if memo {
		r.cache.Store(key, cached{gen: gen, res: res})
	}
	return res
}

func (r *chain) resolve(obj any, static apis.Descriptor) apis.Resolution {
	res := apis.Resolution{Descriptor: static}
	for _, s := range r.strats {
		if got, ok := s.TryResolve(obj, static); ok {
			res = got
			break
		}
	}
	if !res.Resolved {
		fallback := ""
		if res.Descriptor != nil {
			fallback = res.Descriptor.Name()
		}
		logger.Named("resolver").Debug("unresolved runtime type",
			zap.String("type", typeString(obj)),
			zap.String("fallback", fallback),
		)
	}
	return res
}

func typeString(obj any) string {
	if obj == nil {
		return "<nil>"
	}
	return reflect.TypeOf(obj).String()
}

// InheritsFrom reports whether d is base or has base among its ancestors.
// Registered intermediate types are followed through their descriptors,
// unregistered ones through their embedded fields.
func InheritsFrom(reg apis.Registry, d, base apis.Descriptor) bool {
	if d == nil || base == nil {
		return false
	}
	if d.Identity().Equal(base.Identity()) {
		return true
	}
	target := base.Type()
	if target == nil {
		return false
	}
	seen := make(map[reflect.Type]bool)
	var walk func(types []reflect.Type) bool
	walk = func(types []reflect.Type) bool {
		for _, t := range types {
			if t == nil || seen[t] {
				continue
			}
			seen[t] = true
			if t == target {
				return true
			}
			next := strategy.Embedded(t)
			if reg != nil {
				if bd, err := reg.LookupType(t); err == nil && bd.Type() == t {
					next = identityTypes(bd.Bases())
				}
			}
			if walk(next) {
				return true
			}
		}
		return false
	}
	return walk(identityTypes(d.Bases()))
}

func identityTypes(ids []apis.Identity) []reflect.Type {
	out := make([]reflect.Type, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Type)
	}
	return out
}
