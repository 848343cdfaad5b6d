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

package logutil

import (
	"context"
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/matrixorigin/mocontainer/pkg/common/moerr"
)

const (
	defaultLevel      = "info"
	defaultFormat     = "console"
	defaultTimeLayout = "2006/01/02 15:04:05.000000 -0700"
)

// LogConfig log config
type LogConfig struct {
	Level      string `toml:"level" yaml:"level" envconfig:"level"`
	Format     string `toml:"format" yaml:"format" envconfig:"format"`
	Filename   string `toml:"filename" yaml:"filename" envconfig:"filename"`
	MaxSize    int    `toml:"max-size" yaml:"max-size" envconfig:"max_size"`
	MaxDays    int    `toml:"max-days" yaml:"max-days" envconfig:"max_days"`
	MaxBackups int    `toml:"max-backups" yaml:"max-backups" envconfig:"max_backups"`
	// StacktraceLevel is the lowest level that records a stack trace, fatal by default.
	StacktraceLevel string `toml:"stacktrace-level" yaml:"stacktrace-level" envconfig:"stacktrace_level"`
}

// ZapSink pairs an encoder with the syncer it writes to.
type ZapSink struct {
	enc zapcore.Encoder
	out zapcore.WriteSyncer
}

// DefaultLogConfig returns the config used before SetupMOLogger is called.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:  defaultLevel,
		Format: defaultFormat,
	}
}

func (cfg *LogConfig) getLevel() zap.AtomicLevel {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level.SetLevel(zapcore.InfoLevel)
	}
	return level
}

func (cfg *LogConfig) getStacktraceLevel() zapcore.Level {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.StacktraceLevel)); err != nil || cfg.StacktraceLevel == "" {
		return zapcore.FatalLevel
	}
	return level
}

func (cfg *LogConfig) getOptions() []zap.Option {
	return []zap.Option{zap.AddStacktrace(cfg.getStacktraceLevel()), zap.AddCaller()}
}

func (cfg *LogConfig) getSyncer() zapcore.WriteSyncer {
	if cfg.Filename == "" {
		return getConsoleSyncer()
	}
	if stat, err := os.Stat(cfg.Filename); err == nil && stat.IsDir() {
		panic("log file can't be a directory")
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    cfg.MaxSize,
		MaxAge:     cfg.MaxDays,
		MaxBackups: cfg.MaxBackups,
		LocalTime:  true,
		Compress:   false,
	})
}

func (cfg *LogConfig) getEncoder() zapcore.Encoder {
	return getLoggerEncoder(cfg.Format)
}

func (cfg *LogConfig) getSinks() []ZapSink {
	return []ZapSink{{cfg.getEncoder(), cfg.getSyncer()}}
}

func getConsoleSyncer() zapcore.WriteSyncer {
	return zapcore.AddSync(os.Stdout)
}

func getLoggerEncoder(format string) zapcore.Encoder {
	encoderConfig := zapcore.EncoderConfig{
		MessageKey:       "msg",
		LevelKey:         "level",
		TimeKey:          "time",
		NameKey:          "name",
		CallerKey:        "caller",
		StacktraceKey:    "stacktrace",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeTime:       zapcore.TimeEncoderOfLayout(defaultTimeLayout),
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		ConsoleSeparator: " ",
	}

	switch format {
	case "json":
		return zapcore.NewJSONEncoder(encoderConfig)
	case "console", "":
		return zapcore.NewConsoleEncoder(encoderConfig)
	default:
		panic(moerr.NewInternalError(context.Background(), "unsupported log format: %s", format))
	}
}

var (
	gLogger    atomic.Value
	gLogConfig atomic.Value
)

// SetupMOLogger replaces the global logger with one built from conf.
func SetupMOLogger(conf *LogConfig) {
	logger := initMOLogger(conf)
	gLogger.Store(logger)
	gLogConfig.Store(*conf)
}

func initMOLogger(cfg *LogConfig) *zap.Logger {
	level := cfg.getLevel()
	sinks := cfg.getSinks()
	cores := make([]zapcore.Core, 0, len(sinks))
	for _, sink := range sinks {
		cores = append(cores, zapcore.NewCore(sink.enc, sink.out, level))
	}
	return zap.New(zapcore.NewTee(cores...), cfg.getOptions()...)
}

// GetGlobalLogger returns the current global logger.
func GetGlobalLogger() *zap.Logger {
	return gLogger.Load().(*zap.Logger)
}

func getGlobalLogConfig() LogConfig {
	return gLogConfig.Load().(LogConfig)
}

func init() {
	conf := DefaultLogConfig()
	SetupMOLogger(&conf)
}
