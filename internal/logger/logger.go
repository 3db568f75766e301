// Package logger 提供 go-multiaddr 的统一日志
//
// 基于标准库 log/slog，按子系统缓存 Logger，支持通过环境变量配置：
//   - MULTIADDR_LOG_LEVEL: 日志级别，支持按子系统配置
//     格式: 子系统=级别,子系统=级别,默认级别
//     示例: resolver=debug,info
//   - MULTIADDR_LOG_FORMAT: 日志格式 (text 或 json)
//
// 使用示例:
//
//	var log = logger.Logger("resolver")
//
//	func foo() {
//	    log.Debug("query sent", "domain", domain)
//	}
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// loggers 缓存各子系统的 Logger
var loggers sync.Map // map[string]*slog.Logger

// Logger 获取指定子系统的 Logger
//
// 同一子系统多次调用返回相同实例。
func Logger(subsystem string) *slog.Logger {
	if l, ok := loggers.Load(subsystem); ok {
		return l.(*slog.Logger)
	}

	l := slog.New(newHandler(subsystem))
	actual, _ := loggers.LoadOrStore(subsystem, l)
	return actual.(*slog.Logger)
}

// Discard 返回一个丢弃所有日志的 Logger
//
// 主要用于测试，避免日志输出干扰测试结果。
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(127),
	}))
}

// newHandler 创建带子系统属性的 handler
func newHandler(subsystem string) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: levelFromEnv(subsystem),
	}

	var h slog.Handler
	if strings.EqualFold(os.Getenv("MULTIADDR_LOG_FORMAT"), "json") {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	return h.WithAttrs([]slog.Attr{slog.String("subsystem", subsystem)})
}

// levelFromEnv 解析 MULTIADDR_LOG_LEVEL
//
// 格式: 子系统=级别,子系统=级别,默认级别
// 未配置时默认 Info。
func levelFromEnv(subsystem string) slog.Level {
	def := slog.LevelInfo

	for _, part := range strings.Split(os.Getenv("MULTIADDR_LOG_LEVEL"), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if name, lvl, ok := strings.Cut(part, "="); ok {
			if name == subsystem {
				if l, ok := parseLevel(lvl); ok {
					return l
				}
			}
		} else if l, ok := parseLevel(part); ok {
			def = l
		}
	}
	return def
}

// parseLevel 解析级别名称
func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return 0, false
	}
}
