// Package logging builds the process-wide structured logger and the
// single call-logging decorator applied at the pkg/hecras facade.
//
// Log level and rotation are driven entirely by config.LogConfig, the
// way the wider example pack's codenerd CLI builds a *zap.Logger from a
// zap.Config gated on a verbose flag at startup — generalized here into
// one constructor instead of being rebuilt inline in cmd/hecras.
package logging

import (
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/jra3/hecras-orchestrator/internal/config"
)

// New builds a *zap.Logger from the ambient logging configuration
// surface (§6.4: log_level, log_to_file, log_file_path, max_log_bytes,
// log_backup_count).
func New(cfg config.LogConfig) (*zap.Logger, error) {
	level := parseLevel(cfg.Level)

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderCfg)

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(os.Stdout)), level),
	}

	if cfg.ToFile && cfg.FilePath != "" {
		maxMB := cfg.MaxBytes / (1024 * 1024)
		if maxMB <= 0 {
			maxMB = 10
		}
		backups := cfg.BackupCount
		if backups <= 0 {
			backups = 5
		}
		rotator := &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    maxMB,
			MaxBackups: backups,
			Compress:   false,
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(rotator), level))
	}

	core := zapcore.NewTee(cores...)
	return zap.New(core, zap.AddCaller()), nil
}

func parseLevel(s string) zapcore.Level {
	switch s {
	case "DEBUG", "debug":
		return zapcore.DebugLevel
	case "WARNING", "warning", "WARN", "warn":
		return zapcore.WarnLevel
	case "ERROR", "error":
		return zapcore.ErrorLevel
	case "CRITICAL", "critical":
		return zapcore.DPanicLevel
	default:
		return zapcore.InfoLevel
	}
}

// WithCall wraps op with a single decorator that logs entry, exit, and
// duration under a caller-supplied correlation id. This is the
// "@log_call-equivalent decoration" from §7, composed once at the
// pkg/hecras facade rather than repeated at every call site (Design
// Notes: "decorator stack ... implement as composition of wrappers
// applied once").
func WithCall[T any](logger *zap.Logger, callID, opName string, op func() (T, error)) (T, error) {
	start := time.Now()
	logger.Debug("call start", zap.String("call_id", callID), zap.String("op", opName))
	result, err := op()
	fields := []zap.Field{
		zap.String("call_id", callID),
		zap.String("op", opName),
		zap.Duration("duration", time.Since(start)),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
		logger.Error("call failed", fields...)
	} else {
		logger.Debug("call ok", fields...)
	}
	return result, err
}
