// Package logger provides a process-wide zap logger with context scoping.
//
// Initialise once from main:
//
//	logger.Init(logger.Config{Env: cfg.Env, Level: cfg.LogLevel})
//	defer logger.Sync()
//
// Request handlers and repositories pull a scoped logger from the context:
//
//	log := logger.From(ctx)
//	log.Info("record created", logger.Table("seller"))
package logger
