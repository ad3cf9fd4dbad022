package logger

import (
	"time"

	"go.uber.org/zap"
)

// HTTP

func RequestID(v string) zap.Field { return zap.String("request_id", v) }

func Method(v string) zap.Field { return zap.String("method", v) }

func Path(v string) zap.Field { return zap.String("path", v) }

func Status(v int) zap.Field { return zap.Int("status", v) }

func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }

func ClientIP(v string) zap.Field { return zap.String("client_ip", v) }

// Data access

func Op(v string) zap.Field { return zap.String("op", v) }

func Table(v string) zap.Field { return zap.String("table", v) }

func Count(v int) zap.Field { return zap.Int("count", v) }

func Email(v string) zap.Field { return zap.String("email", v) }

func Err(err error) zap.Field { return zap.Error(err) }

// Generic

func String(key, v string) zap.Field { return zap.String(key, v) }

func Int(key string, v int) zap.Field { return zap.Int(key, v) }
