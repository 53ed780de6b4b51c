// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"os"

	"github.com/rs/zerolog"
)

var base zerolog.Logger

// Init 初始化全局 logger，所有日志都会带上 service 字段。
// 必须在进程启动时调用一次。
func Init(serviceName string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	base = zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", serviceName).
		Logger()
	zerolog.DefaultContextLogger = &base
}

// Ctx 返回与 context 关联的 logger；没有关联时退回全局 logger。
func Ctx(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}

// L 返回全局 logger，用于没有 context 的场景（启动、关停）。
func L() *zerolog.Logger {
	return &base
}
