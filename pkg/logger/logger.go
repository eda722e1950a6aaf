// Package logger содержит настройку логгера.
package logger

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options задает параметры логгера
type Options struct {
	// Level уровень логирования (debug, info, warn, error, fatal)
	Level string
	// Path путь к файлу логов; пустая строка - путь по умолчанию
	Path string
	// DataDir директория данных приложения, используется если Path пустой
	DataDir string
}

// New создает новый логгер с выводом в stdout и в ротируемый файл
func New(opts Options) *zap.Logger {
	level := ParseLevel(opts.Level)

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	consoleCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		level,
	)

	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(&lumberjack.Logger{
			Filename:   resolvePath(opts),
			MaxSize:    100, // MB
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}),
		level,
	)

	core := zapcore.NewTee(consoleCore, fileCore)

	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}

// ParseLevel переводит строковый уровень в zapcore.Level, по умолчанию info
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// resolvePath выбирает путь к файлу логов: явный путь, затем директория данных, затем logs/
func resolvePath(opts Options) string {
	if opts.Path != "" {
		return opts.Path
	}

	if opts.DataDir != "" {
		if err := os.MkdirAll(opts.DataDir, 0755); err == nil {
			return filepath.Join(opts.DataDir, "app.log")
		}
	}

	if err := os.MkdirAll("logs", 0755); err == nil {
		return "logs/app.log"
	}

	return "app.log"
}
