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

package config

import (
	"fmt"
	"strings"

	"sigs.k8s.io/yaml"

	"dirpx.dev/rdx/apis"
)

const (
	// DefaultIncludeBuiltins represents the default for IncludeBuiltins.
	// When false, builtin types cannot be registered by name.
	DefaultIncludeBuiltins = false
	// DefaultMaxUnwrap represents the default for MaxUnwrap.
	// A value of 8 should be sufficient for all practical purposes.
	DefaultMaxUnwrap = 8
	// DefaultMapPreferElem represents the default for MapPreferElem.
	// When true, map value types are preferred when searching for named inner types.
	DefaultMapPreferElem = true
	// DefaultMaxDepth represents the default for MaxDepth.
	DefaultMaxDepth = 64
	// DefaultByteOrder represents the default stream byte order.
	DefaultByteOrder = ByteOrderBig
)

const (
	// ByteOrderBig selects big-endian streams.
	ByteOrderBig = "big"
	// ByteOrderLittle selects little-endian streams.
	ByteOrderLittle = "little"
)

// NewConfig constructs an apis.Config from the given options.
func NewConfig(opts ...Option) apis.Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return sanitize(cfg)
}

// DefaultConfig is the default configuration used when none is provided.
func DefaultConfig() apis.Config {
	return apis.Config{
		IncludeBuiltins: DefaultIncludeBuiltins,
		MaxUnwrap:       DefaultMaxUnwrap,
		MapPreferElem:   DefaultMapPreferElem,
		MaxDepth:        DefaultMaxDepth,
		ByteOrder:       DefaultByteOrder,
	}
}

// FromYAML decodes a configuration document. Fields that are absent keep
// their default values. Unknown fields are rejected.
func FromYAML(data []byte) (apis.Config, error) {
	cfg := DefaultConfig()
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return apis.Config{}, fmt.Errorf("rdx(config): decode: %w", err)
	}
	cfg.ByteOrder = strings.ToLower(strings.TrimSpace(cfg.ByteOrder))
	if err := Validate(cfg); err != nil {
		return apis.Config{}, err
	}
	return sanitize(cfg), nil
}

// Validate reports configuration values that cannot be sanitized silently.
func Validate(cfg apis.Config) error {
	switch cfg.ByteOrder {
	case "", ByteOrderBig, ByteOrderLittle:
		return nil
	default:
		return fmt.Errorf("rdx(config): unknown byte order %q", cfg.ByteOrder)
	}
}

// sanitize resets out-of-range values to their defaults.
func sanitize(cfg apis.Config) apis.Config {
	// Ensure MaxUnwrap is valid.
	if cfg.MaxUnwrap < 0 {
		cfg.MaxUnwrap = DefaultMaxUnwrap
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	if cfg.ByteOrder == "" {
		cfg.ByteOrder = DefaultByteOrder
	}
	return cfg
}

// Option is a functional option that mutates an apis.Config during construction.
type Option func(*apis.Config)

// WithIncludeBuiltins sets the IncludeBuiltins option.
func WithIncludeBuiltins(include bool) Option {
	return func(c *apis.Config) {
		c.IncludeBuiltins = include
	}
}

// WithMaxUnwrap sets the MaxUnwrap option.
// A negative value resets to the default.
func WithMaxUnwrap(max int) Option {
	return func(c *apis.Config) {
		if max < 0 {
			c.MaxUnwrap = DefaultMaxUnwrap
			return
		}
		c.MaxUnwrap = max
	}
}

// WithMapPreferElem sets the MapPreferElem option.
func WithMapPreferElem(prefer bool) Option {
	return func(c *apis.Config) {
		c.MapPreferElem = prefer
	}
}

// WithMaxDepth sets the MaxDepth option.
// A non-positive value resets to the default.
func WithMaxDepth(depth int) Option {
	return func(c *apis.Config) {
		c.MaxDepth = depth
	}
}

// WithByteOrder sets the stream byte order. Unknown values fall back to big-endian.
func WithByteOrder(order string) Option {
	return func(c *apis.Config) {
		switch o := strings.ToLower(order); o {
		case ByteOrderLittle:
			c.ByteOrder = o
		default:
			c.ByteOrder = ByteOrderBig
		}
	}
}
