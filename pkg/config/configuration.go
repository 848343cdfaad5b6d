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
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/matrixorigin/mocontainer/pkg/common/moerr"
	"github.com/matrixorigin/mocontainer/pkg/common/mpool"
	"github.com/matrixorigin/mocontainer/pkg/logutil"
)

type ConfigurationKeyType int

const (
	ParameterUnitKey ConfigurationKeyType = 1
)

// EnvPrefix prefixes every environment override, e.g. MOC_MAP_CAPACITY.
const EnvPrefix = "MOC"

// MapParameters of the string hash map
type MapParameters struct {
	//default is 10. the starting number of buckets
	Capacity int `toml:"capacity" yaml:"capacity" envconfig:"capacity"`

	//default is 0.75. the map grows once size reaches load-factor * capacity
	LoadFactor float64 `toml:"load-factor" yaml:"load-factor" envconfig:"load_factor"`

	//default is 2. the capacity multiplier on growth
	ResizeFactor int `toml:"resize-factor" yaml:"resize-factor" envconfig:"resize_factor"`

	//default is 'djb2'. 'djb2' or 'xxhash'
	Hasher string `toml:"hasher" yaml:"hasher" envconfig:"hasher"`
}

// MPoolParameters of the memory pool backing the containers
type MPoolParameters struct {
	//default is 'map'
	Name string `toml:"name" yaml:"name" envconfig:"name"`

	//default is 0, no limit. bytes
	Cap int64 `toml:"cap" yaml:"cap" envconfig:"cap"`

	//default is false. true disables the free list of small buffers
	NoFixed bool `toml:"no-fixed" yaml:"no-fixed" envconfig:"no_fixed"`
}

type Config struct {
	Map   MapParameters      `toml:"map" yaml:"map" envconfig:"map"`
	MPool MPoolParameters    `toml:"mpool" yaml:"mpool" envconfig:"mpool"`
	Log   logutil.LogConfig `toml:"log" yaml:"log" envconfig:"log"`
}

// NewDefault returns the built-in defaults.
func NewDefault() *Config {
	return &Config{
		Map: MapParameters{
			Capacity:     10,
			LoadFactor:   0.75,
			ResizeFactor: 2,
			Hasher:       "djb2",
		},
		MPool: MPoolParameters{
			Name: "map",
		},
		Log: logutil.DefaultLogConfig(),
	}
}

// LoadFile reads path over the defaults. Files ending in .yaml or .yml
// are YAML, everything else is TOML.
func LoadFile(path string) (*Config, error) {
	ctx := moerr.Context()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, moerr.NewFileNotFound(ctx, path)
		}
		return nil, moerr.ConvertGoError(ctx, err)
	}
	cfg := NewDefault()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		_, err = toml.Decode(string(data), cfg)
	}
	if err != nil {
		return nil, moerr.NewBadConfig(ctx, "decode %s: %v", path, err)
	}
	return cfg, nil
}

// LoadFromEnv loads the optional dotenv files and applies MOC_*
// overrides to cfg. Variables already set in the process win over the
// dotenv files.
func LoadFromEnv(cfg *Config, dotenv ...string) error {
	ctx := moerr.Context()
	for _, f := range dotenv {
		if f == "" {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return moerr.NewBadConfig(ctx, "load %s: %v", f, err)
		}
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return moerr.NewBadConfig(ctx, "%v", err)
	}
	return nil
}

// Validate checks every field.
func (cfg *Config) Validate() error {
	ctx := moerr.Context()
	m := cfg.Map
	if m.Capacity <= 0 {
		return moerr.NewBadConfig(ctx, "map capacity %d must be positive", m.Capacity)
	}
	if m.LoadFactor <= 0 || m.LoadFactor > 1 {
		return moerr.NewBadConfig(ctx, "map load-factor %v must be in (0, 1]", m.LoadFactor)
	}
	if m.ResizeFactor < 2 {
		return moerr.NewBadConfig(ctx, "map resize-factor %d must be at least 2", m.ResizeFactor)
	}
	switch m.Hasher {
	case "", "djb2", "xxhash":
	default:
		return moerr.NewBadConfig(ctx, "unknown map hasher %q", m.Hasher)
	}
	if cfg.MPool.Cap < 0 {
		return moerr.NewBadConfig(ctx, "mpool cap %d must not be negative", cfg.MPool.Cap)
	}
	switch cfg.Log.Format {
	case "", "console", "json":
	default:
		return moerr.NewBadConfig(ctx, "unknown log format %q", cfg.Log.Format)
	}
	return nil
}

// NewMPool creates the pool described by the [mpool] section.
func (cfg *Config) NewMPool() (*mpool.MPool, error) {
	flag := 0
	if cfg.MPool.NoFixed {
		flag |= mpool.NoFixed
	}
	return mpool.NewMPool(cfg.MPool.Name, cfg.MPool.Cap, flag)
}

type ParameterUnit struct {
	SV *Config

	//memory pool of the containers
	MPool *mpool.MPool
}

func NewParameterUnit(sv *Config, mp *mpool.MPool) *ParameterUnit {
	return &ParameterUnit{
		SV:    sv,
		MPool: mp,
	}
}

// GetParameterUnit gets the configuration from the context.
func GetParameterUnit(ctx context.Context) *ParameterUnit {
	pu, ok := ctx.Value(ParameterUnitKey).(*ParameterUnit)
	if !ok || pu == nil {
		panic("parameter unit is invalid")
	}
	return pu
}

// WithParameterUnit attaches pu to ctx.
func WithParameterUnit(ctx context.Context, pu *ParameterUnit) context.Context {
	return context.WithValue(ctx, ParameterUnitKey, pu)
}
