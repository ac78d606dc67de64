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

package builder

import (
	"go.uber.org/zap"

	"dirpx.dev/rdx/apis"
	"dirpx.dev/rdx/behavior"
	"dirpx.dev/rdx/logger"
	"dirpx.dev/rdx/registry"
	"dirpx.dev/rdx/resolver"
	"dirpx.dev/rdx/streamer"
)

// New creates and returns a new instance of an apis.Builder.
func New() apis.Builder {
	return &builder{}
}

// builder is an empty struct to be used as a receiver for builder methods.
type builder struct{}

// BuildRegistry builds and returns a new apis.Registry based on the provided
// configuration. Entries of a pre-existing registry are carried over with
// their aliases; pending entries stay pending.
func (b *builder) BuildRegistry(cfg apis.Config, prev apis.Registry) apis.Registry {
	nreg := registry.New(cfg)
	if prev == nil {
		return nreg
	}
	for _, e := range prev.Entries() {
		var err error
		if e.Pending() {
			err = nreg.Declare(e.Identity, e.Dictionary)
		} else {
			d := e.Descriptor
			_, err = nreg.Add(e.Identity, func() (apis.Descriptor, error) { return d, nil })
		}
		if err != nil {
			// the new config may normalize types differently
			logger.Named("builder").Warn("entry not migrated",
				zap.String("name", e.Identity.Name), zap.Error(err))
			continue
		}
		for _, a := range e.Aliases {
			if err := nreg.AddAlias(e.Identity.Name, a); err != nil {
				logger.Named("builder").Warn("alias not migrated",
					zap.String("name", e.Identity.Name), zap.String("alias", a), zap.Error(err))
			}
		}
	}
	return nreg
}

// BuildResolver builds the standard resolution chain over reg:
// exact registry lookup, apis.Classer, nearest registered ancestor.
func (b *builder) BuildResolver(_ apis.Config, reg apis.Registry, _ apis.Resolver) apis.Resolver {
	return resolver.NewDefault(reg)
}

// BuildSelector builds a selector whose default behavior registers into
// reg. Overrides installed on a previous selector are kept.
func (b *builder) BuildSelector(_ apis.Config, reg apis.Registry, prev apis.BehaviorSelector) apis.BehaviorSelector {
	sel := behavior.NewSelector(behavior.NewDefault(reg))
	if old, ok := prev.(*behavior.Selector); ok {
		for _, o := range old.Overrides() {
			sel.Install(o.Decl, o.Actual, o.Behavior)
		}
	}
	return sel
}

// BuildDispatcher builds the streamer dispatcher over reg and res.
func (b *builder) BuildDispatcher(cfg apis.Config, reg apis.Registry, res apis.Resolver) apis.ObjectStreamer {
	return streamer.New(reg, res, cfg)
}
