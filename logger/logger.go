// Package logger adapts a zap sugared logger to the core's log sink
// interface: log(message, severity) with severities success, accent,
// warning, danger, used for non-fatal diagnostics only.
package logger

import (
	"log"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"modpack-merger/ui"
)

var (
	Log       *zap.SugaredLogger
	ZapLogger *zap.Logger
)

// Sink is the core's consumed log interface (§6).
type Sink interface {
	Log(message string, severity ui.Severity)
}

// ZapSink adapts the package-level zap logger to the Sink interface,
// mapping each severity onto the nearest zap level and colorizing the
// console line to match.
type ZapSink struct{}

func (ZapSink) Log(message string, severity ui.Severity) {
	colored := ui.Colorize(message, severity)
	switch severity {
	case ui.SeverityDanger:
		Log.Error(colored)
	case ui.SeverityWarning:
		Log.Warn(colored)
	case ui.SeveritySuccess, ui.SeverityAccent:
		Log.Info(colored)
	default:
		Log.Info(colored)
	}
}

func InitLogger() {
	encoderCfg := zapcore.EncoderConfig{
		TimeKey:          "T",
		LevelKey:         "L",
		NameKey:          "N",
		CallerKey:        "",
		FunctionKey:      zapcore.OmitKey,
		MessageKey:       "M",
		StacktraceKey:    "S",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeTime:       zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05"),
		EncodeDuration:   zapcore.SecondsDurationEncoder,
		EncodeCaller:     zapcore.ShortCallerEncoder,
		ConsoleSeparator: "  ",
	}

	logFile, err := os.OpenFile("modpack-merger.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Fatalf("can't open log file: %v", err)
	}
	fileWriter := zapcore.AddSync(logFile)

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		fileWriter,
		zap.InfoLevel,
	)

	ZapLogger = zap.New(core)
	Log = ZapLogger.Sugar()
	Log.Info("Logger initialized, logging to modpack-merger.log")
}

func Sync() {
	if ZapLogger != nil {
		_ = ZapLogger.Sync()
	}
}
