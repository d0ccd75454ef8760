package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ANSI color codes
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"
	Gray    = "\033[90m"

	BrightRed     = "\033[91m"
	BrightGreen   = "\033[92m"
	BrightYellow  = "\033[93m"
	BrightBlue    = "\033[94m"
	BrightMagenta = "\033[95m"
	BrightCyan    = "\033[96m"
	BrightWhite   = "\033[97m"
)

// ColoredLogger wraps zap.Logger with colored, component-tagged output
type ColoredLogger struct {
	*zap.Logger
	enableColors bool
}

// Component represents different parts of the console for color coding
type Component string

const (
	ComponentConsole  Component = "CONSOLE"
	ComponentAuth     Component = "AUTH"
	ComponentExec     Component = "EXEC"
	ComponentResolver Component = "RESOLVER"
	ComponentTail     Component = "TAIL"
	ComponentQuery    Component = "QUERY"
	ComponentService  Component = "SERVICE"
	ComponentGateway  Component = "GATEWAY"
	ComponentMetrics  Component = "METRICS"
	ComponentGeneral  Component = "GENERAL"
)

// getComponentColor returns the color for a specific component
func getComponentColor(component Component) string {
	switch component {
	case ComponentConsole:
		return BrightBlue
	case ComponentAuth:
		return BrightMagenta
	case ComponentExec:
		return Magenta
	case ComponentResolver:
		return BrightCyan
	case ComponentTail:
		return Cyan
	case ComponentQuery:
		return Blue
	case ComponentService:
		return BrightYellow
	case ComponentGateway:
		return BrightGreen
	case ComponentMetrics:
		return Green
	case ComponentGeneral:
		return Yellow
	default:
		return White
	}
}

// getLevelColor returns the color for a log level
func getLevelColor(level zapcore.Level) string {
	switch level {
	case zapcore.DebugLevel:
		return Gray
	case zapcore.InfoLevel:
		return BrightWhite
	case zapcore.WarnLevel:
		return BrightYellow
	case zapcore.ErrorLevel:
		return BrightRed
	case zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return Red
	default:
		return White
	}
}

var levelLetters = map[zapcore.Level]string{
	zapcore.DebugLevel: "D",
	zapcore.InfoLevel:  "I",
	zapcore.WarnLevel:  "W",
	zapcore.ErrorLevel: "E",
}

// coloredConsoleEncoder creates a compact console encoder: HH:MM:SS, one-letter
// level, caller file without extension.
func coloredConsoleEncoder(enableColors bool) zapcore.Encoder {
	config := zap.NewDevelopmentEncoderConfig()

	config.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(paint(enableColors, Dim, t.Format("15:04:05")))
	}

	config.EncodeLevel = func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		letter := levelLetters[level]
		if letter == "" {
			letter = "?"
		}
		enc.AppendString(paint(enableColors, getLevelColor(level)+Bold, letter))
	}

	config.EncodeCaller = func(caller zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
		file := caller.File
		if idx := strings.LastIndex(file, "/"); idx >= 0 {
			file = file[idx+1:]
		}
		file = strings.TrimSuffix(file, ".go")
		enc.AppendString(paint(enableColors, Dim, file))
	}

	return zapcore.NewConsoleEncoder(config)
}

func paint(enabled bool, color, s string) string {
	if !enabled {
		return s
	}
	return color + s + Reset
}

// Options configures New.
type Options struct {
	Level        string // debug, info, warn, error
	Format       string // console or json
	OutputFile   string // empty means stdout
	EnableColors bool
}

// New builds a logger from options. JSON format never carries colors.
func New(opts Options) (*ColoredLogger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	var sink io.Writer = os.Stdout
	if opts.OutputFile != "" {
		f, err := os.OpenFile(opts.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", opts.OutputFile, err)
		}
		sink = f
	}

	colors := opts.EnableColors && opts.Format != "json"
	var encoder zapcore.Encoder
	if opts.Format == "json" {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		encoder = coloredConsoleEncoder(colors)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(sink), level)
	return &ColoredLogger{
		Logger:       zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)),
		enableColors: colors,
	}, nil
}

// ParseLevel maps a config level name to a zap level. Empty means info.
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
}

// NewNopLogger returns a logger that discards everything. Used by tests.
func NewNopLogger() *ColoredLogger {
	return &ColoredLogger{Logger: zap.NewNop()}
}

// NewObservedLogger wraps an arbitrary core, e.g. zaptest/observer in tests.
func NewObservedLogger(core zapcore.Core) *ColoredLogger {
	return &ColoredLogger{Logger: zap.New(core)}
}

func (l *ColoredLogger) tag(component Component, msg string) string {
	if l.enableColors {
		return fmt.Sprintf("%s[%s]%s %s", getComponentColor(component), component, Reset, msg)
	}
	return fmt.Sprintf("[%s] %s", component, msg)
}

// Component-specific logging methods
func (l *ColoredLogger) ComponentInfo(component Component, msg string, fields ...zap.Field) {
	l.Info(l.tag(component, msg), fields...)
}

func (l *ColoredLogger) ComponentWarn(component Component, msg string, fields ...zap.Field) {
	l.Warn(l.tag(component, msg), fields...)
}

func (l *ColoredLogger) ComponentError(component Component, msg string, fields ...zap.Field) {
	l.Error(l.tag(component, msg), fields...)
}

func (l *ColoredLogger) ComponentDebug(component Component, msg string, fields ...zap.Field) {
	l.Debug(l.tag(component, msg), fields...)
}

// StdLogger returns a standard library logger that writes through zap at
// error level, for http.Server.ErrorLog and similar hooks.
func (l *ColoredLogger) StdLogger(component Component) *log.Logger {
	std, err := zap.NewStdLogAt(l.Logger.With(zap.String("component", string(component))), zapcore.ErrorLevel)
	if err != nil {
		return zap.NewStdLog(l.Logger)
	}
	return std
}
