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

package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"dirpx.dev/rdx/config"
)

func TestDefaultConfigValues(t *testing.T) {
	got := config.DefaultConfig()

	if got.IncludeBuiltins != config.DefaultIncludeBuiltins {
		t.Fatalf("IncludeBuiltins = %v, want %v", got.IncludeBuiltins, config.DefaultIncludeBuiltins)
	}
	if got.MaxUnwrap != config.DefaultMaxUnwrap {
		t.Fatalf("MaxUnwrap = %d, want %d", got.MaxUnwrap, config.DefaultMaxUnwrap)
	}
	if got.MapPreferElem != config.DefaultMapPreferElem {
		t.Fatalf("MapPreferElem = %v, want %v", got.MapPreferElem, config.DefaultMapPreferElem)
	}
	if got.MaxDepth != config.DefaultMaxDepth {
		t.Fatalf("MaxDepth = %d, want %d", got.MaxDepth, config.DefaultMaxDepth)
	}
	if got.ByteOrder != config.ByteOrderBig {
		t.Fatalf("ByteOrder = %q, want %q", got.ByteOrder, config.ByteOrderBig)
	}
}

func TestNewConfig_NoOptions_EqualsDefault(t *testing.T) {
	def := config.DefaultConfig()
	got := config.NewConfig()
	if got != def {
		t.Fatalf("NewConfig() = %+v, want default %+v", got, def)
	}
}

func TestWithMaxUnwrap_Negative_ResetsToDefault(t *testing.T) {
	c := config.NewConfig(config.WithMaxUnwrap(-1))
	if c.MaxUnwrap != config.DefaultMaxUnwrap {
		t.Fatalf("MaxUnwrap = %d, want default %d", c.MaxUnwrap, config.DefaultMaxUnwrap)
	}
}

func TestWithMaxDepth_NonPositive_ResetsToDefault(t *testing.T) {
	if c := config.NewConfig(config.WithMaxDepth(0)); c.MaxDepth != config.DefaultMaxDepth {
		t.Fatalf("MaxDepth = %d, want default %d", c.MaxDepth, config.DefaultMaxDepth)
	}
	if c := config.NewConfig(config.WithMaxDepth(3)); c.MaxDepth != 3 {
		t.Fatalf("MaxDepth = %d, want 3", c.MaxDepth)
	}
}

func TestWithByteOrder(t *testing.T) {
	if c := config.NewConfig(config.WithByteOrder("LITTLE")); c.ByteOrder != config.ByteOrderLittle {
		t.Fatalf("ByteOrder = %q, want little", c.ByteOrder)
	}
	if c := config.NewConfig(config.WithByteOrder("middle")); c.ByteOrder != config.ByteOrderBig {
		t.Fatalf("ByteOrder = %q, want big fallback", c.ByteOrder)
	}
}

func TestOptionsOrder_LastWins(t *testing.T) {
	c := config.NewConfig(
		config.WithIncludeBuiltins(false),
		config.WithIncludeBuiltins(true),
		config.WithMaxUnwrap(2),
		config.WithMaxUnwrap(5),
		config.WithMapPreferElem(false),
		config.WithMapPreferElem(true),
	)

	if !c.IncludeBuiltins {
		t.Errorf("IncludeBuiltins = %v, want true (last option wins)", c.IncludeBuiltins)
	}
	if c.MaxUnwrap != 5 {
		t.Errorf("MaxUnwrap = %d, want 5 (last option wins)", c.MaxUnwrap)
	}
	if !c.MapPreferElem {
		t.Errorf("MapPreferElem = %v, want true (last option wins)", c.MapPreferElem)
	}
}

func TestFromYAML(t *testing.T) {
	r := require.New(t)

	cfg, err := config.FromYAML([]byte("maxDepth: 12\nbyteOrder: Little\nincludeBuiltins: true\n"))
	r.NoError(err)
	r.Equal(12, cfg.MaxDepth)
	r.Equal(config.ByteOrderLittle, cfg.ByteOrder)
	r.True(cfg.IncludeBuiltins)
	// Absent fields keep defaults.
	r.Equal(config.DefaultMaxUnwrap, cfg.MaxUnwrap)
	r.Equal(config.DefaultMapPreferElem, cfg.MapPreferElem)

	empty, err := config.FromYAML(nil)
	r.NoError(err)
	r.Equal(config.DefaultConfig(), empty)
}

func TestFromYAML_Errors(t *testing.T) {
	r := require.New(t)

	_, err := config.FromYAML([]byte("byteOrder: middle\n"))
	r.Error(err)

	_, err = config.FromYAML([]byte("colour: blue\n"))
	r.Error(err)

	_, err = config.FromYAML([]byte("maxDepth: [\n"))
	r.Error(err)
}
