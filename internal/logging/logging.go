package logging

import (
	"io"
	"os"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	maxSizeMB  = 10
	maxBackups = 5
	maxAgeDays = 28
)

// Logger bundles the process logger with the level it was built with, so the level can be switched once
// the configuration has been read without rebuilding the cores.
type Logger struct {
	*zap.Logger
	Level zap.AtomicLevel

	file *lumberjack.Logger
}

// New logs colored console output to stderr and, when file is not empty, JSON lines into a rotated file.
// It starts at debug level.
func New(file string) *Logger {
	l := &Logger{Level: zap.NewAtomicLevelAt(zapcore.DebugLevel)}
	l.SetFile(file)
	return l
}

// SetFile rebuilds the logger to write into file, closing the previous file. Loggers handed out before
// the call keep writing to the old sinks.
func (l *Logger) SetFile(file string) {
	if l.file != nil {
		_ = l.file.Close()
		l.file = nil
	}
	var fw io.Writer
	if file != "" {
		l.file = &lumberjack.Logger{
			Filename:   file,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
		}
		fw = l.file
	}
	l.Logger = zap.New(NewCore(l.Level, os.Stderr, fw))
}

// NewCore tees a development console encoder over console with a JSON encoder over file. A nil file
// writer leaves the JSON side out.
func NewCore(level zap.AtomicLevel, console, file io.Writer) zapcore.Core {
	cc := zap.NewDevelopmentEncoderConfig()
	cc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(cc), zapcore.Lock(zapcore.AddSync(console)), level),
	}
	if file != nil {
		fc := zap.NewProductionEncoderConfig()
		fc.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fc), zapcore.AddSync(file), level))
	}
	return zapcore.NewTee(cores...)
}

// Close flushes buffered entries and closes the log file.
func (l *Logger) Close() error {
	_ = l.Sync()
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
