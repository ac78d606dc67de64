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

package behavior

import (
	"sort"
	"sync"

	"dirpx.dev/rdx/apis"
)

// Any matches every context in Install.
const Any = "*"

// Override is one installed (decl, actual) -> behavior binding.
type Override struct {
	Decl     string
	Actual   string
	Behavior apis.Behavior
}

type contexts struct {
	decl, actual string
}

// Selector picks the behavior for a (declaring, actual) context pair.
// The most specific installed binding wins: exact (decl, actual), then
// (decl, Any), then (Any, actual), then the default.
type Selector struct {
	mu        sync.RWMutex
	def       apis.Behavior
	overrides map[contexts]apis.Behavior
}

var _ apis.BehaviorSelector = (*Selector)(nil)

// NewSelector returns a Selector falling back to def.
func NewSelector(def apis.Behavior) *Selector {
	return &Selector{def: def, overrides: make(map[contexts]apis.Behavior)}
}

// Install binds b to (decl, actual); either side may be Any. A nil b
// removes the binding.
func (s *Selector) Install(decl, actual string, b apis.Behavior) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := contexts{decl, actual}
	if b == nil {
		delete(s.overrides, k)
		return
	}
	s.overrides[k] = b
}

// Select returns the behavior for (decl, actual). It has no side effects.
func (s *Selector) Select(decl, actual string) apis.Behavior {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, k := range []contexts{{decl, actual}, {decl, Any}, {Any, actual}} {
		if b, ok := s.overrides[k]; ok {
			return b
		}
	}
	return s.def
}

// Default returns the fallback behavior.
func (s *Selector) Default() apis.Behavior {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.def
}

// SetDefault replaces the fallback behavior.
func (s *Selector) SetDefault(b apis.Behavior) {
	s.mu.Lock()
	s.def = b
	s.mu.Unlock()
}

// Overrides returns the installed bindings sorted by (decl, actual).
func (s *Selector) Overrides() []Override {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Override, 0, len(s.overrides))
	for k, b := range s.overrides {
		out = append(out, Override{Decl: k.decl, Actual: k.actual, Behavior: b})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Decl != out[j].Decl {
			return out[i].Decl < out[j].Decl
		}
		return out[i].Actual < out[j].Actual
	})
	return out
}
