// Package logger 提供简单的分级日志工具
package logger

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

// Level 日志级别
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// 当前日志级别，默认为 Info
var currentLevel atomic.Int32

func init() {
	currentLevel.Store(int32(LevelInfo))
}

// SetLevel 设置日志级别
func SetLevel(level Level) {
	currentLevel.Store(int32(level))
}

// SetLevelFromString 从字符串设置日志级别
func SetLevelFromString(level string) {
	switch strings.ToLower(level) {
	case "debug":
		SetLevel(LevelDebug)
	case "info":
		SetLevel(LevelInfo)
	case "warn", "warning":
		SetLevel(LevelWarn)
	case "error":
		SetLevel(LevelError)
	default:
		SetLevel(LevelInfo)
	}
}

// IsDebugEnabled 检查是否启用调试日志
func IsDebugEnabled() bool {
	return Level(currentLevel.Load()) <= LevelDebug
}

func logf(level Level, tag, format string, args ...any) {
	if Level(currentLevel.Load()) > level {
		return
	}
	ts := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(os.Stderr, "%s [%s] "+format+"\n", append([]any{ts, tag}, args...)...)
}

// Debug 输出调试日志
func Debug(format string, args ...any) { logf(LevelDebug, "DEBUG", format, args...) }

// Info 输出信息日志
func Info(format string, args ...any) { logf(LevelInfo, "INFO", format, args...) }

// Warn 输出警告日志
func Warn(format string, args ...any) { logf(LevelWarn, "WARN", format, args...) }

// Error 输出错误日志
func Error(format string, args ...any) { logf(LevelError, "ERROR", format, args...) }

// Component 返回带组件前缀的日志器，用于区分引擎各部分的输出。
type Component struct {
	name string
}

// WithComponent 创建组件日志器
func WithComponent(name string) *Component {
	return &Component{name: name}
}

func (c *Component) Debug(format string, args ...any) { Debug("["+c.name+"] "+format, args...) }
func (c *Component) Info(format string, args ...any)  { Info("["+c.name+"] "+format, args...) }
func (c *Component) Warn(format string, args ...any)  { Warn("["+c.name+"] "+format, args...) }
func (c *Component) Error(format string, args ...any) { Error("["+c.name+"] "+format, args...) }
