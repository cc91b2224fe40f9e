// Package logger provides structured logging using zap.
//
// Subsystems log through named section loggers ("model", "model.piece",
// "import", ...). The section name is written under Options.NameKey and can
// be silenced per section with Options.SectionLevels.
package logger

import (
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Section names used by the module's packages.
const (
	SectionModel  = "model"
	SectionPiece  = "piece"
	SectionImport = "import"
	SectionAssets = "assets"
	SectionGPU    = "gpu"
	SectionTool   = "modeltool"
)

// DefaultNameKey is the encoder key holding the section name.
const DefaultNameKey = "section"

// Log is the global logger instance. It discards everything until
// InitWithOptions is called.
var Log = zap.NewNop()

// Sugar is the sugared logger for convenient logging.
var Sugar = Log.Sugar()

// FileConfig holds file logging configuration.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultFileConfig returns default file logging settings.
func DefaultFileConfig(path string) FileConfig {
	return FileConfig{
		Path:       path,
		MaxSizeMB:  50,
		MaxBackups: 3,
		MaxAgeDays: 7,
		Compress:   true,
	}
}

// Options configures InitWithOptions.
type Options struct {
	Level string
	// ConsoleLevel overrides Level for console output only.
	ConsoleLevel string
	// Console receives colored console output. Nil disables it.
	Console io.Writer
	// File enables rotated file output when Path is set.
	File FileConfig
	// NameKey defaults to DefaultNameKey.
	NameKey string
	// SectionLevels drops entries of a section below the given level. Keys
	// match a logger's full name ("model.piece") or its last element
	// ("piece").
	SectionLevels map[string]string
}

// InitWithOptions builds the global logger from opts.
func InitWithOptions(opts Options) error {
	lvl := parseLevel(opts.Level)
	nameKey := opts.NameKey
	if nameKey == "" {
		nameKey = DefaultNameKey
	}

	var cores []zapcore.Core

	if opts.Console != nil {
		consoleLvl := lvl
		if opts.ConsoleLevel != "" {
			consoleLvl = parseLevel(opts.ConsoleLevel)
		}
		consoleEncoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			TimeKey:          "time",
			LevelKey:         "level",
			NameKey:          nameKey,
			MessageKey:       "msg",
			CallerKey:        "caller",
			EncodeTime:       zapcore.TimeEncoderOfLayout("15:04:05"),
			EncodeLevel:      zapcore.CapitalColorLevelEncoder,
			EncodeCaller:     zapcore.ShortCallerEncoder,
			ConsoleSeparator: " ",
		})
		cores = append(cores, zapcore.NewCore(consoleEncoder, zapcore.AddSync(opts.Console), consoleLvl))
	}

	if opts.File.Path != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   opts.File.Path,
			MaxSize:    opts.File.MaxSizeMB,
			MaxBackups: opts.File.MaxBackups,
			MaxAge:     opts.File.MaxAgeDays,
			Compress:   opts.File.Compress,
			LocalTime:  true,
		}
		fileEncoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			TimeKey:          "time",
			LevelKey:         "level",
			NameKey:          nameKey,
			MessageKey:       "msg",
			CallerKey:        "caller",
			EncodeTime:       zapcore.ISO8601TimeEncoder,
			EncodeLevel:      zapcore.CapitalLevelEncoder,
			EncodeCaller:     zapcore.ShortCallerEncoder,
			ConsoleSeparator: " ",
		})
		cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.AddSync(fileWriter), lvl))
	}

	core := zapcore.NewTee(cores...)
	if len(opts.SectionLevels) > 0 {
		levels := make(map[string]zapcore.Level, len(opts.SectionLevels))
		for name, l := range opts.SectionLevels {
			levels[name] = parseLevel(l)
		}
		core = &sectionCore{Core: core, levels: levels}
	}

	Log = zap.New(core, zap.AddCaller())
	Sugar = Log.Sugar()
	return nil
}

// sectionCore filters entries by the level configured for their section.
type sectionCore struct {
	zapcore.Core
	levels map[string]zapcore.Level
}

func (c *sectionCore) With(fields []zapcore.Field) zapcore.Core {
	return &sectionCore{Core: c.Core.With(fields), levels: c.levels}
}

func (c *sectionCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if floor, ok := c.levelFor(ent.LoggerName); ok && ent.Level < floor {
		return ce
	}
	return c.Core.Check(ent, ce)
}

func (c *sectionCore) levelFor(name string) (zapcore.Level, bool) {
	if name == "" {
		return 0, false
	}
	if l, ok := c.levels[name]; ok {
		return l, true
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		l, ok := c.levels[name[i+1:]]
		return l, ok
	}
	return 0, false
}

// parseLevel converts a string level to zapcore.Level.
func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Section returns a child logger tagged with a subsystem name.
func Section(name string) *zap.Logger {
	return Log.Named(name)
}

// Sync flushes any buffered log entries.
func Sync() {
	if Log != nil {
		_ = Log.Sync()
	}
}

// Debug logs a debug message.
func Debug(msg string, fields ...zap.Field) {
	Log.Debug(msg, fields...)
}

// Info logs an info message.
func Info(msg string, fields ...zap.Field) {
	Log.Info(msg, fields...)
}

// Warn logs a warning message.
func Warn(msg string, fields ...zap.Field) {
	Log.Warn(msg, fields...)
}

// Error logs an error message.
func Error(msg string, fields ...zap.Field) {
	Log.Error(msg, fields...)
}
