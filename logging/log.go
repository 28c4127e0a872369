// Copyright (C) 2026 Tau Protocol Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// A Level is a logging priority. Higher levels are more important.
type Level int8

// Logging levels, matching zap core internals.
const (
	// DebugLevel logs are typically voluminous, and are usually disabled
	// in production.
	DebugLevel Level = -1
	// InfoLevel is the default logging priority.
	InfoLevel Level = 0
	// WarnLevel logs are more important than Info, but don't need
	// individual human review.
	WarnLevel Level = 1
	// ErrorLevel logs are high-priority. If an application is running
	// smoothly, it shouldn't generate any error-level logs.
	ErrorLevel Level = 2
	// PanicLevel logs a message, then panics.
	PanicLevel Level = 4
	// FatalLevel logs a message, then calls os.Exit(1).
	FatalLevel Level = 5
)

func (l Level) String() string {
	return l.ZapLevel().String()
}

func (l Level) ZapLevel() zapcore.Level {
	return zapcore.Level(l)
}

// ParseLevel converts a level name into a Level value.
func ParseLevel(l string) (Level, error) {
	var zl zapcore.Level
	if err := zl.UnmarshalText([]byte(strings.ToLower(l))); err != nil {
		return InfoLevel, fmt.Errorf("invalid log level %q", l)
	}
	return Level(zl), nil
}

// MarshalText implements encoding.TextMarshaler so levels appear by
// name in TOML.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	lvl, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = lvl
	return nil
}

// Logger is a thin wrapper over a zap logger carrying its atomic level
// so engines can change verbosity at runtime via ReloadConf.
type Logger struct {
	*zap.Logger
	atom        zap.AtomicLevel
	name        string
	environment string
}

// New wraps an already built zap core.
func New(core zapcore.Core, atom zap.AtomicLevel, environment string) *Logger {
	return &Logger{
		Logger:      zap.New(core),
		atom:        atom,
		environment: environment,
	}
}

// Named returns a logger with the given name segment appended,
// segments are joined with dots.
func (log *Logger) Named(name string) *Logger {
	newName := name
	if log.name != "" {
		newName = fmt.Sprintf("%s.%s", log.name, name)
	}
	return &Logger{
		Logger:      log.Logger.Named(name),
		atom:        log.atom,
		name:        newName,
		environment: log.environment,
	}
}

// With returns a logger with the given fields attached to every entry.
func (log *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{
		Logger:      log.Logger.With(fields...),
		atom:        log.atom,
		name:        log.name,
		environment: log.environment,
	}
}

func (log *Logger) GetName() string {
	return log.name
}

func (log *Logger) GetLevel() Level {
	return Level(log.atom.Level())
}

func (log *Logger) GetLevelString() string {
	return log.atom.Level().String()
}

// SetLevel changes the level of this logger and everything sharing its
// core.
func (log *Logger) SetLevel(level Level) {
	if log.atom.Level() == level.ZapLevel() {
		return
	}
	log.atom.SetLevel(level.ZapLevel())
}

// IsDebug returns true when debug entries would be written, used to
// guard expensive field construction.
func (log *Logger) IsDebug() bool {
	return log.GetLevel() <= DebugLevel
}

// AtExit flushes buffered entries before the process exits, meant to be
// deferred right after building the logger.
func (log *Logger) AtExit() {
	if log.Logger != nil {
		_ = log.Logger.Sync()
	}
}

// NewLoggerFromConfig builds a logger according to the given config,
// wiring rotation through lumberjack when file output is enabled.
func NewLoggerFromConfig(cfg Config) *Logger {
	atom := zap.NewAtomicLevelAt(cfg.Level.ZapLevel())

	var encoder zapcore.Encoder
	switch cfg.Environment {
	case "dev":
		encoder = zapcore.NewConsoleEncoder(devEncoderConfig())
	default:
		encoder = zapcore.NewJSONEncoder(prodEncoderConfig())
	}

	sink := zapcore.AddSync(os.Stdout)
	if cfg.File.Enabled {
		rot := &lumberjack.Logger{
			Filename: cfg.File.Path,
			MaxSize:  cfg.File.MaxSizeMB,
			MaxAge:   cfg.File.MaxAgeDays,
			Compress: true,
		}
		sink = zapcore.NewMultiWriteSyncer(sink, zapcore.AddSync(rot))
	}

	core := zapcore.NewCore(encoder, sink, atom)
	return New(core, atom, cfg.Environment)
}

// NewDevLogger returns a console logger at debug level.
func NewDevLogger() *Logger {
	cfg := NewDefaultConfig()
	cfg.Environment = "dev"
	cfg.Level = DebugLevel
	return NewLoggerFromConfig(cfg)
}

// NewProdLogger returns a JSON logger at info level.
func NewProdLogger() *Logger {
	cfg := NewDefaultConfig()
	cfg.Environment = "production"
	return NewLoggerFromConfig(cfg)
}

func devEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		CallerKey:      "C",
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		LevelKey:       "L",
		LineEnding:     "\n",
		MessageKey:     "M",
		NameKey:        "N",
		TimeKey:        "T",
	}
}

func prodEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		CallerKey:      "caller",
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeName:     zapcore.FullNameEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		LevelKey:       "level",
		LineEnding:     "\n",
		MessageKey:     "message",
		NameKey:        "logger",
		StacktraceKey:  "stacktrace",
		TimeKey:        "@timestamp",
	}
}
