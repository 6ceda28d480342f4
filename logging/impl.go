package logging

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// appenderLogger fans every enabled entry out to its appenders.
type appenderLogger struct {
	name      string
	level     AtomicLevel
	utc       bool
	appenders []Appender
}

// callerDepth is the number of frames between emit and the code that called a public log method.
const callerDepth = 2

func (l *appenderLogger) enabled(level Level) bool {
	return GlobalLogLevel.Level() == zapcore.DebugLevel || level >= l.level.Get()
}

// emit builds and writes one entry. It must be called directly from a public log method so that
// the recorded caller is the user's call site.
func (l *appenderLogger) emit(level Level, msg string, keysAndValues []interface{}) {
	entry := zapcore.Entry{
		Level:      level.AsZap(),
		Time:       time.Now(),
		LoggerName: l.name,
		Message:    msg,
	}
	if l.utc {
		entry.Time = entry.Time.UTC()
	}
	if pc, file, line, ok := runtime.Caller(callerDepth); ok {
		entry.Caller = zapcore.NewEntryCaller(pc, file, line, true)
		if fn := runtime.FuncForPC(pc); fn != nil {
			entry.Caller.Function = fn.Name()
		}
	}

	fields := toFields(keysAndValues)
	for _, appender := range l.appenders {
		if err := appender.Write(entry, fields); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

// toFields pairs up alternating keys and values. A trailing key without a value is kept with a
// placeholder so it stays visible in the output.
func toFields(keysAndValues []interface{}) []zapcore.Field {
	if len(keysAndValues) == 0 {
		return nil
	}
	fields := make([]zapcore.Field, 0, (len(keysAndValues)+1)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		if i+1 == len(keysAndValues) {
			fields = append(fields, zap.String(key, "unpaired log key"))
			break
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}

func (l *appenderLogger) AddAppender(appender Appender) {
	l.appenders = append(l.appenders, appender)
}

func (l *appenderLogger) SetLevel(level Level) {
	l.level.Set(level)
}

func (l *appenderLogger) GetLevel() Level {
	return l.level.Get()
}

func (l *appenderLogger) Level() zapcore.Level {
	return l.GetLevel().AsZap()
}

// Sublogger returns a logger named "<name>.<subname>" that starts at the current level and shares
// the appenders.
func (l *appenderLogger) Sublogger(subname string) Logger {
	name := subname
	if l.name != "" {
		name = l.name + "." + subname
	}
	return &appenderLogger{name, NewAtomicLevelAt(l.level.Get()), l.utc, l.appenders}
}

func (l *appenderLogger) Sync() error {
	var err error
	for _, appender := range l.appenders {
		err = multierr.Combine(err, appender.Sync())
	}
	return err
}

// AsZap returns a zap logger for libraries that need one. It follows GlobalLogLevel and also
// writes to any appender that is a zapcore.Core.
func (l *appenderLogger) AsZap() *zap.SugaredLogger {
	cfg := NewZapLoggerConfig()
	cfg.Level = GlobalLogLevel
	base := zap.Must(cfg.Build())
	var cores []zapcore.Core
	for _, appender := range l.appenders {
		if core, ok := appender.(zapcore.Core); ok {
			cores = append(cores, core)
		}
	}
	if len(cores) > 0 {
		base = base.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
			return zapcore.NewTee(append([]zapcore.Core{c}, cores...)...)
		}))
	}
	return base.Sugar().Named(l.name)
}

func (l *appenderLogger) Desugar() *zap.Logger {
	return l.AsZap().Desugar()
}

func (l *appenderLogger) Debug(args ...interface{}) {
	if l.enabled(DEBUG) {
		l.emit(DEBUG, fmt.Sprint(args...), nil)
	}
}

func (l *appenderLogger) Debugf(template string, args ...interface{}) {
	if l.enabled(DEBUG) {
		l.emit(DEBUG, fmt.Sprintf(template, args...), nil)
	}
}

func (l *appenderLogger) Debugw(msg string, keysAndValues ...interface{}) {
	if l.enabled(DEBUG) {
		l.emit(DEBUG, msg, keysAndValues)
	}
}

func (l *appenderLogger) Info(args ...interface{}) {
	if l.enabled(INFO) {
		l.emit(INFO, fmt.Sprint(args...), nil)
	}
}

func (l *appenderLogger) Infof(template string, args ...interface{}) {
	if l.enabled(INFO) {
		l.emit(INFO, fmt.Sprintf(template, args...), nil)
	}
}

func (l *appenderLogger) Infow(msg string, keysAndValues ...interface{}) {
	if l.enabled(INFO) {
		l.emit(INFO, msg, keysAndValues)
	}
}

func (l *appenderLogger) Warn(args ...interface{}) {
	if l.enabled(WARN) {
		l.emit(WARN, fmt.Sprint(args...), nil)
	}
}

func (l *appenderLogger) Warnf(template string, args ...interface{}) {
	if l.enabled(WARN) {
		l.emit(WARN, fmt.Sprintf(template, args...), nil)
	}
}

func (l *appenderLogger) Warnw(msg string, keysAndValues ...interface{}) {
	if l.enabled(WARN) {
		l.emit(WARN, msg, keysAndValues)
	}
}

func (l *appenderLogger) Error(args ...interface{}) {
	if l.enabled(ERROR) {
		l.emit(ERROR, fmt.Sprint(args...), nil)
	}
}

func (l *appenderLogger) Errorf(template string, args ...interface{}) {
	if l.enabled(ERROR) {
		l.emit(ERROR, fmt.Sprintf(template, args...), nil)
	}
}

func (l *appenderLogger) Errorw(msg string, keysAndValues ...interface{}) {
	if l.enabled(ERROR) {
		l.emit(ERROR, msg, keysAndValues)
	}
}

// Fatal logs at ERROR regardless of the level and exits the process.
func (l *appenderLogger) Fatal(args ...interface{}) {
	l.emit(ERROR, fmt.Sprint(args...), nil)
	os.Exit(1)
}

// Fatalf logs at ERROR regardless of the level and exits the process.
func (l *appenderLogger) Fatalf(template string, args ...interface{}) {
	l.emit(ERROR, fmt.Sprintf(template, args...), nil)
	os.Exit(1)
}

// Fatalw logs at ERROR regardless of the level and exits the process.
func (l *appenderLogger) Fatalw(msg string, keysAndValues ...interface{}) {
	l.emit(ERROR, msg, keysAndValues)
	os.Exit(1)
}
