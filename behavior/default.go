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

// Package behavior implements the registration policies selected per
// (declaring context, actual context) pair.
//
// A context is a Go package path. The declaring context is the package that
// defines the registered type; the actual context is the package performing
// the registration. Exactly one behavior handles each registration and only
// that behavior has side effects.
package behavior

import (
	"errors"
	"fmt"

	"dirpx.dev/rdx/apis"
	"dirpx.dev/rdx/descriptor"
)

// ErrNameMismatch is returned when a registration's name and identity disagree.
var ErrNameMismatch = errors.New("rdx(behavior): registration name differs from identity")

// NewDefault returns the behavior that forwards registrations to reg
// eagerly. Pointing it at a registry other than the process one redirects
// registrations there.
func NewDefault(reg apis.Registry) apis.Behavior {
	return &defaultBehavior{reg: reg}
}

type defaultBehavior struct {
	reg apis.Registry
}

var _ apis.Behavior = (*defaultBehavior)(nil)

func (b *defaultBehavior) Register(r apis.Registration) error {
	id, err := identityOf(r)
	if err != nil {
		return err
	}
	_, err = b.reg.Add(id, r.Dictionary)
	return err
}

func (b *defaultBehavior) Unregister(name string) error {
	b.reg.Remove(name)
	return nil
}

func (b *defaultBehavior) CreateDescriptor(spec apis.DescriptorSpec) (apis.Descriptor, error) {
	return descriptor.New(spec)
}

// identityOf returns the identity a registration binds, filling a missing
// identity name from r.Name.
func identityOf(r apis.Registration) (apis.Identity, error) {
	id := r.Identity
	switch {
	case id.Name == "":
		id.Name = r.Name
	case r.Name != "" && r.Name != id.Name:
		return apis.Identity{}, fmt.Errorf("%w: %q vs %q", ErrNameMismatch, r.Name, id.Name)
	}
	return id, nil
}
