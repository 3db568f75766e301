package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestLoggerCached 测试同一子系统返回相同实例
func TestLoggerCached(t *testing.T) {
	a := Logger("cache-test")
	b := Logger("cache-test")
	assert.Same(t, a, b)

	c := Logger("cache-test-other")
	assert.NotSame(t, a, c)
}

// TestParseLevel 测试级别名称解析
func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		ok   bool
	}{
		{"debug", slog.LevelDebug, true},
		{"info", slog.LevelInfo, true},
		{"warn", slog.LevelWarn, true},
		{"warning", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"ERROR", slog.LevelError, true},
		{" info ", slog.LevelInfo, true},
		{"bogus", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		lvl, ok := parseLevel(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		if ok {
			assert.Equal(t, tt.want, lvl, "input %q", tt.in)
		}
	}
}

// TestLevelFromEnv 测试环境变量配置
func TestLevelFromEnv(t *testing.T) {
	t.Setenv("MULTIADDR_LOG_LEVEL", "resolver=debug,warn")

	assert.Equal(t, slog.LevelDebug, levelFromEnv("resolver"))
	assert.Equal(t, slog.LevelWarn, levelFromEnv("other"))

	t.Setenv("MULTIADDR_LOG_LEVEL", "")
	assert.Equal(t, slog.LevelInfo, levelFromEnv("resolver"))
}

// TestDiscard 测试丢弃日志的 Logger
func TestDiscard(t *testing.T) {
	l := Discard()
	assert.False(t, l.Enabled(context.Background(), slog.LevelError))
}
