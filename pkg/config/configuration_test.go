// Copyright 2021 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/mocontainer/pkg/common/moerr"
	"github.com/matrixorigin/mocontainer/pkg/common/mpool"
)

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewDefault(t *testing.T) {
	cfg := NewDefault()
	require.NoError(t, cfg.Validate())
	require.Equal(t, 10, cfg.Map.Capacity)
	require.Equal(t, 0.75, cfg.Map.LoadFactor)
	require.Equal(t, 2, cfg.Map.ResizeFactor)
	require.Equal(t, "djb2", cfg.Map.Hasher)
	require.Equal(t, int64(0), cfg.MPool.Cap)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "mo.toml", `
[map]
capacity = 64
load-factor = 0.5
hasher = "xxhash"

[mpool]
name = "test"
cap = 4096

[log]
level = "debug"
format = "json"
`)
	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	require.Equal(t, 64, cfg.Map.Capacity)
	require.Equal(t, 0.5, cfg.Map.LoadFactor)
	// untouched keys keep their defaults
	require.Equal(t, 2, cfg.Map.ResizeFactor)
	require.Equal(t, "xxhash", cfg.Map.Hasher)
	require.Equal(t, "test", cfg.MPool.Name)
	require.Equal(t, int64(4096), cfg.MPool.Cap)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "json", cfg.Log.Format)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "mo.yaml", `
map:
  capacity: 16
  resize-factor: 4
mpool:
  no-fixed: true
`)
	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, 16, cfg.Map.Capacity)
	require.Equal(t, 4, cfg.Map.ResizeFactor)
	require.Equal(t, 0.75, cfg.Map.LoadFactor)
	require.True(t, cfg.MPool.NoFixed)
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrFileNotFound))

	path := writeFile(t, "bad.toml", "[map\ncapacity = ")
	_, err = LoadFile(path)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrBadConfig))
}

func TestLoadFromEnv(t *testing.T) {
	dotenv := writeFile(t, ".env", "MOC_MAP_HASHER=xxhash\nMOC_MAP_CAPACITY=99\n")
	t.Setenv("MOC_MAP_CAPACITY", "32")
	t.Setenv("MOC_MPOOL_CAP", "1024")
	t.Setenv("MOC_LOG_LEVEL", "warn")
	t.Cleanup(func() {
		os.Unsetenv("MOC_MAP_HASHER")
	})

	cfg := NewDefault()
	require.NoError(t, LoadFromEnv(cfg, dotenv, filepath.Join(t.TempDir(), "absent.env")))
	require.Equal(t, 32, cfg.Map.Capacity)
	require.Equal(t, "xxhash", cfg.Map.Hasher)
	require.Equal(t, int64(1024), cfg.MPool.Cap)
	require.Equal(t, "warn", cfg.Log.Level)
	require.Equal(t, 0.75, cfg.Map.LoadFactor)

	t.Setenv("MOC_MAP_LOAD_FACTOR", "not-a-number")
	err := LoadFromEnv(cfg)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrBadConfig))
}

func TestValidate(t *testing.T) {
	kases := []struct {
		name   string
		modify func(*Config)
	}{
		{"capacity", func(c *Config) { c.Map.Capacity = 0 }},
		{"load factor zero", func(c *Config) { c.Map.LoadFactor = 0 }},
		{"load factor above one", func(c *Config) { c.Map.LoadFactor = 1.5 }},
		{"resize factor", func(c *Config) { c.Map.ResizeFactor = 1 }},
		{"hasher", func(c *Config) { c.Map.Hasher = "md5" }},
		{"mpool cap", func(c *Config) { c.MPool.Cap = -1 }},
		{"log format", func(c *Config) { c.Log.Format = "xml" }},
	}
	for _, kase := range kases {
		t.Run(kase.name, func(t *testing.T) {
			cfg := NewDefault()
			kase.modify(cfg)
			require.True(t, moerr.IsMoErrCode(cfg.Validate(), moerr.ErrBadConfig))
		})
	}
}

func TestParameterUnit(t *testing.T) {
	cfg := NewDefault()
	cfg.MPool.Name = "pu"
	cfg.MPool.Cap = 128
	cfg.MPool.NoFixed = true
	mp, err := cfg.NewMPool()
	require.NoError(t, err)
	defer mpool.DeleteMPool(mp)
	require.Equal(t, int64(128), mp.Cap())

	ctx := WithParameterUnit(context.Background(), NewParameterUnit(cfg, mp))
	pu := GetParameterUnit(ctx)
	require.Equal(t, "pu", pu.MPool.Name())
	require.Same(t, cfg, pu.SV)

	require.Panics(t, func() { GetParameterUnit(context.Background()) })
}
