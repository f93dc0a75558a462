package main

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// initLogger builds the stderr logger from log.level, raised to debug by
// --verbose.
func (a *app) initLogger() error {
	level, err := zapcore.ParseLevel(a.v.GetString("log.level"))
	if err != nil {
		return fmt.Errorf("invalid log.level: %w", err)
	}
	if a.v.GetBool("log.verbose") {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(a.stderr),
		zap.NewAtomicLevelAt(level),
	)
	a.logger = zap.New(core)
	return nil
}
