// File: internal/platform/logger/zap.go
package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"sipaling_preloved_client/internal/config"
)

// New builds the process-wide Zap logger from configuration. Release builds
// emit structured JSON; everything else gets a readable console encoder so
// local debugging of API traffic stays pleasant.
func New(cfg *config.Config) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.AppEnv == "release" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.Level = zap.NewAtomicLevelAt(parseLevel(cfg.LogLevel))

	if strings.EqualFold(cfg.LogFormat, "json") {
		zc.Encoding = "json"
	} else {
		zc.Encoding = "console"
	}

	return zc.Build()
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
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
