package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	Log *zap.Logger
)

func init() {
	// 默认 Nop Logger，防止未 Init 就调用导致 panic (单元测试里很常见)
	Log = zap.NewNop()
}

// Init initializes the global logger
func Init(env string) {
	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var err error
	Log, err = config.Build(zap.AddCallerSkip(1))
	if err != nil {
		panic(err)
	}

	zap.ReplaceGlobals(Log)
}

// Sync flushes any buffered log entries
func Sync() {
	_ = Log.Sync()
}

func Info(msg string, fields ...zap.Field) {
	Log.Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	Log.Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	Log.Error(msg, fields...)
}

func Fatal(msg string, fields ...zap.Field) {
	Log.Fatal(msg, fields...)
}

func Debug(msg string, fields ...zap.Field) {
	Log.Debug(msg, fields...)
}

// AsynqLogger 把 asynq 内部日志转发到 zap
type AsynqLogger struct {
	l *zap.SugaredLogger
}

func NewAsynqLogger() *AsynqLogger {
	return &AsynqLogger{l: Log.WithOptions(zap.AddCallerSkip(1)).Sugar().Named("asynq")}
}

func (a *AsynqLogger) Debug(args ...interface{}) { a.l.Debug(fmt.Sprint(args...)) }
func (a *AsynqLogger) Info(args ...interface{})  { a.l.Info(fmt.Sprint(args...)) }
func (a *AsynqLogger) Warn(args ...interface{})  { a.l.Warn(fmt.Sprint(args...)) }
func (a *AsynqLogger) Error(args ...interface{}) { a.l.Error(fmt.Sprint(args...)) }
func (a *AsynqLogger) Fatal(args ...interface{}) { a.l.Fatal(fmt.Sprint(args...)) }
