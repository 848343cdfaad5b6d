// Copyright 2022 Matrix Origin
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

package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/matrixorigin/mocontainer/pkg/common/mpool"
	"github.com/matrixorigin/mocontainer/pkg/config"
	"github.com/matrixorigin/mocontainer/pkg/logutil"
)

var (
	configFile = flag.String("cfg", "", "toml or yaml configuration file")
	envFile    = flag.String("env", ".env", "dotenv file with MOC_* overrides")
	topN       = flag.Int("top", 10, "number of words printed by the word count")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-cfg file] [-env file] [textFile ...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := loadConfig(*configFile, *envFile)
	if err != nil {
		fmt.Printf("load configuration failed. error:%v\n", err)
		os.Exit(-1)
	}
	logutil.SetupMOLogger(&cfg.Log)

	mp, err := cfg.NewMPool()
	if err != nil {
		logutil.Error("create mpool failed", zap.Error(err))
		os.Exit(-1)
	}
	defer mpool.DeleteMPool(mp)

	ctx := config.WithParameterUnit(context.Background(), config.NewParameterUnit(cfg, mp))
	logutil.Info("mo-container started",
		zap.String("config", *configFile),
		zap.Int("capacity", cfg.Map.Capacity),
		zap.String("hasher", cfg.Map.Hasher),
		zap.Int64("mpool-cap", cfg.MPool.Cap))

	if err = runPersonExample(ctx, os.Stdout); err != nil {
		logutil.Error("person example failed", zap.Error(err))
		os.Exit(-1)
	}
	if flag.NArg() > 0 {
		if err = runWordCount(ctx, os.Stdout, flag.Args(), *topN); err != nil {
			logutil.Error("word count failed", zap.Error(err))
			os.Exit(-1)
		}
	}
	logutil.Info("mo-container done", zap.String("mpool", mp.String()))
}

func loadConfig(path, dotenv string) (*config.Config, error) {
	cfg := config.NewDefault()
	if path != "" {
		var err error
		if cfg, err = config.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := config.LoadFromEnv(cfg, dotenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
