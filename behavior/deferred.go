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
	"dirpx.dev/rdx/apis"
	"dirpx.dev/rdx/descriptor"
)

// NewDeferred returns the behavior that only reserves names in reg. The
// dictionary entry point runs on the first lookup of the type.
func NewDeferred(reg apis.Registry) apis.Behavior {
	return &deferredBehavior{reg: reg}
}

type deferredBehavior struct {
	reg apis.Registry
}

var _ apis.Behavior = (*deferredBehavior)(nil)

func (b *deferredBehavior) Register(r apis.Registration) error {
	id, err := identityOf(r)
	if err != nil {
		return err
	}
	return b.reg.Declare(id, r.Dictionary)
}

func (b *deferredBehavior) Unregister(name string) error {
	b.reg.Remove(name)
	return nil
}

func (b *deferredBehavior) CreateDescriptor(spec apis.DescriptorSpec) (apis.Descriptor, error) {
	return descriptor.New(spec)
}
