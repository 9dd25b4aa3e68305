// Package logger 基于zap构建结构化日志
//
// 配置项与config.LogConfig一一对应：
// - level: debug | info | warn | error
// - format: console（开发环境，便于阅读） | json（生产环境，便于ELK/Loki检索）
// - output: stdout | stderr | 文件路径
// - enable_caller: 是否输出调用位置
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New 创建zap Logger
func New(level, format, output string, enableCaller bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(defaultString(level, "info")))
	if err != nil {
		return nil, fmt.Errorf("无效的日志级别 %q: %w", level, err)
	}

	var cfg zap.Config
	switch defaultString(format, "json") {
	case "console":
		cfg = zap.NewDevelopmentConfig()
	case "json":
		cfg = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("无效的日志格式: %s", format)
	}

	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.DisableCaller = !enableCaller

	out := defaultString(output, "stdout")
	cfg.OutputPaths = []string{out}
	cfg.ErrorOutputPaths = []string{"stderr"}

	return cfg.Build()
}

// NewNop 测试或未配置时使用，丢弃所有日志
func NewNop() *zap.Logger {
	return zap.NewNop()
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
