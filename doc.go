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

// Package rdx is a process-wide runtime type dictionary.
//
// Every registered Go type gets a persistent, queryable descriptor: its
// name, class version, size, kind and qualifiers, its data members, a
// factory for constructing and destroying instances and a versioned
// streamer. For polymorphic values rdx resolves the most-derived registered
// type at runtime through explicit bookkeeping rather than trusting the
// static type a value is accessed through.
//
// # Registration
//
// A package registers its types at init time:
//
//	func init() {
//		_ = rdx.RegisterType[Point](2,
//			rdx.WithReadRule(apis.ReadRule{Version: 1, Upgrade: fillZ}),
//		)
//	}
//
// The name defaults to "pkg.Type" and the declaration location to the
// caller. A type implementing apis.Versioner may pass apis.Unversioned and
// report its own version.
//
// Each registration is handled by exactly one behavior, selected from the
// declaring package (the one defining the type) and the registering
// package. The default behavior adds the descriptor to the process
// registry; overrides installed on the behavior selector can defer, log,
// count or redirect registrations:
//
//	sel := rdx.Behaviors().(*behavior.Selector)
//	sel.Install("example.com/geo", behavior.Any, behavior.NewDeferred(reg))
//
// # Streaming
//
// Write and Read stream registered values with their class version
// embedded ahead of the member data; WriteAny and ReadAny prefix the
// resolved class name so the value can be reconstructed without knowing
// its type. Data written with an older version is read through the read
// rules of the descriptor; a version without a rule is an error.
//
// # Design
//
// The package keeps one immutable snapshot of its layers (config,
// registry, resolver, behavior selector, dispatcher and the builder that
// made them) behind an atomic pointer. The snapshot is built on first use.
// Readers load the pointer and never lock. Writers (SetConfig, SetBuilder,
// SetRegistry, SetResolver, SetAll) take a short build mutex, derive a new
// snapshot and publish it with an atomic swap.
//
// # Pinning
//
// A registry or resolver given to SetRegistry, SetResolver or SetAll is
// pinned: later rebuilds keep it until UnpinRegistry or UnpinResolver.
// Unpinned registries are migrated into their replacement, so registered
// types survive a SetConfig.
//
// # Lifecycle
//
// Registrations normally live as long as the process. Teardown unregisters
// everything and is meant for process exit and tests; tests that need
// isolation install a fresh registry.New instance with SetRegistry.
package rdx
