// Package logger holds the two package-level loggers used by the layout
// engine, backed by zap.
package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ProgressLogger logs the main steps of the layout.
var ProgressLogger *zap.SugaredLogger

// WarningLogger emits a warning for each non fatal error, like unsupported CSS
// properties, image loading errors or URL resolutions.
var WarningLogger *zap.SugaredLogger

// Config selects the level, the encoding and an optional
// rotating log file.
type Config struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // "console" or "json"
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"` // megabytes
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
	Compress   bool   `mapstructure:"compress"`
}

// DefaultConfig only reports warnings, on stderr.
func DefaultConfig() Config {
	return Config{Level: "warn", Format: "console"}
}

func init() {
	Initialize(DefaultConfig(), os.Stderr)
}

func getEncoder(format string) zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02T15:04:05.000Z07:00")
	if format == "json" {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewJSONEncoder(encoderConfig)
	}
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.EncodeName = func(loggerName string, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(loggerName + ":")
	}
	return zapcore.NewConsoleEncoder(encoderConfig)
}

// Initialize replaces the loggers, writing to [w] and, when [cfg.File]
// is set, to a rotated JSON log file.
// An invalid level falls back to "warn".
func Initialize(cfg Config, w io.Writer) {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level.SetLevel(zap.WarnLevel)
	}
	cores := []zapcore.Core{zapcore.NewCore(getEncoder(cfg.Format), zapcore.AddSync(w), level)}
	if cfg.File != "" {
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		})
		cores = append(cores, zapcore.NewCore(getEncoder("json"), fileWriter, level))
	}
	Use(zapcore.NewTee(cores...))
}

// Use installs [core] for both loggers and returns a function
// restoring the previous ones.
func Use(core zapcore.Core) (restore func()) {
	oldProgress, oldWarning := ProgressLogger, WarningLogger
	base := zap.New(core).Named("boxlayout")
	ProgressLogger = base.Named("progress").Sugar()
	WarningLogger = base.Named("warning").Sugar()
	return func() {
		ProgressLogger, WarningLogger = oldProgress, oldWarning
	}
}

// Sync flushes both loggers.
func Sync() {
	_ = ProgressLogger.Sync()
	_ = WarningLogger.Sync()
}
