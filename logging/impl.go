package logging

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// debugRunField names the run of entries logged only because their context is in debug mode.
const debugRunField = "debug_run"

type impl struct {
	name      string
	level     AtomicLevel
	inUTC     bool
	appenders []Appender
	// fields are attached to every entry, see With.
	fields []zapcore.Field
}

// LogEntry embeds a zapcore Entry and slice of Fields.
type LogEntry struct {
	zapcore.Entry
	fields []zapcore.Field
}

func (imp *impl) AddAppender(appender Appender) {
	imp.appenders = append(imp.appenders, appender)
}

func (imp *impl) SetLevel(level Level) {
	imp.level.Set(level)
}

func (imp *impl) GetLevel() Level {
	return imp.level.Get()
}

func (imp *impl) Level() zapcore.Level {
	return imp.GetLevel().AsZap()
}

func (imp *impl) Sublogger(subname string) Logger {
	newName := subname
	if imp.name != "" {
		newName = fmt.Sprintf("%s.%s", imp.name, subname)
	}
	sublogger := &impl{
		name:      newName,
		level:     NewAtomicLevelAt(imp.level.Get()),
		inUTC:     imp.inUTC,
		appenders: imp.appenders,
		fields:    imp.fields,
	}
	// Level patterns apply to the most recent sublogger of a given name.
	return globalLoggerRegistry.register(newName, sublogger)
}

// With returns a logger sharing the name, level and appenders of this one that adds the given
// key/value pairs to every entry. The returned logger is not registered.
func (imp *impl) With(keysAndValues ...interface{}) Logger {
	fields := make([]zapcore.Field, 0, len(imp.fields)+len(keysAndValues)/2)
	fields = append(fields, imp.fields...)
	return &impl{
		name:      imp.name,
		level:     imp.level,
		inUTC:     imp.inUTC,
		appenders: imp.appenders,
		fields:    append(fields, toFields(keysAndValues)...),
	}
}

func (imp *impl) Sync() error {
	var err error
	for _, appender := range imp.appenders {
		err = multierr.Append(err, appender.Sync())
	}
	return err
}

func (imp *impl) AsZap() *zap.SugaredLogger {
	// Appenders that are also zap cores, such as the observed logs of tests, keep receiving entries.
	config := NewZapLoggerConfig()
	config.Level = GlobalLogLevel
	ret := zap.Must(config.Build()).Sugar().Named(imp.name).With(fieldsToArgs(imp.fields)...)
	for _, appender := range imp.appenders {
		core, ok := appender.(zapcore.Core)
		if !ok {
			continue
		}
		ret = ret.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
			return zapcore.NewTee(c, core)
		}))
	}
	return ret
}

func fieldsToArgs(fields []zapcore.Field) []interface{} {
	args := make([]interface{}, 0, len(fields))
	for _, f := range fields {
		args = append(args, f)
	}
	return args
}

func (imp *impl) shouldLog(logLevel Level) bool {
	if GlobalLogLevel.Level() == zapcore.DebugLevel {
		return true
	}
	return logLevel >= imp.level.Get()
}

// emit builds and writes one entry. It must be called directly by the exported logging methods so
// that the reported caller is the user of the logger.
func (imp *impl) emit(logLevel Level, msg string, keysAndValues []interface{}) {
	entry := &LogEntry{}
	entry.Time = time.Now()
	if imp.inUTC {
		entry.Time = entry.Time.UTC()
	}
	entry.LoggerName = imp.name
	entry.Caller = getCaller()
	entry.Level = logLevel.AsZap()
	entry.Message = msg
	if len(imp.fields) > 0 || len(keysAndValues) > 0 {
		entry.fields = append(append(make([]zapcore.Field, 0, len(imp.fields)), imp.fields...), toFields(keysAndValues)...)
	}

	for _, appender := range imp.appenders {
		if err := appender.Write(entry.Entry, entry.fields); err != nil {
			fmt.Fprint(os.Stderr, err)
		}
	}
}

// toFields pairs up odd keys with the even values following them. Values are serialized as JSON,
// so only their exported fields show up.
func toFields(keysAndValues []interface{}) []zapcore.Field {
	fields := make([]zapcore.Field, 0, (len(keysAndValues)+1)/2)
	for keyIdx := 0; keyIdx < len(keysAndValues); keyIdx += 2 {
		var key string
		if stringer, ok := keysAndValues[keyIdx].(fmt.Stringer); ok {
			key = stringer.String()
		} else {
			key = fmt.Sprintf("%v", keysAndValues[keyIdx])
		}
		if keyIdx+1 == len(keysAndValues) {
			fields = append(fields, zap.Any(key, errors.New("unpaired log key")))
			break
		}
		fields = append(fields, zap.Any(key, keysAndValues[keyIdx+1]))
	}
	return fields
}

func (imp *impl) Debug(args ...interface{}) {
	if imp.shouldLog(DEBUG) {
		imp.emit(DEBUG, fmt.Sprint(args...), nil)
	}
}

// CDebug logs at debug level, or regardless of the level when the context is in debug mode. The
// latter entries carry the name of the debug run.
func (imp *impl) CDebug(ctx context.Context, args ...interface{}) {
	if imp.shouldLog(DEBUG) {
		imp.emit(DEBUG, fmt.Sprint(args...), nil)
	} else if run := debugRunName(ctx); run != "" {
		imp.emit(DEBUG, fmt.Sprint(args...), []interface{}{debugRunField, run})
	}
}

func (imp *impl) Debugf(template string, args ...interface{}) {
	if imp.shouldLog(DEBUG) {
		imp.emit(DEBUG, fmt.Sprintf(template, args...), nil)
	}
}

func (imp *impl) CDebugf(ctx context.Context, template string, args ...interface{}) {
	if imp.shouldLog(DEBUG) {
		imp.emit(DEBUG, fmt.Sprintf(template, args...), nil)
	} else if run := debugRunName(ctx); run != "" {
		imp.emit(DEBUG, fmt.Sprintf(template, args...), []interface{}{debugRunField, run})
	}
}

func (imp *impl) Debugw(msg string, keysAndValues ...interface{}) {
	if imp.shouldLog(DEBUG) {
		imp.emit(DEBUG, msg, keysAndValues)
	}
}

func (imp *impl) CDebugw(ctx context.Context, msg string, keysAndValues ...interface{}) {
	if imp.shouldLog(DEBUG) {
		imp.emit(DEBUG, msg, keysAndValues)
	} else if run := debugRunName(ctx); run != "" {
		imp.emit(DEBUG, msg, append([]interface{}{debugRunField, run}, keysAndValues...))
	}
}

func (imp *impl) Info(args ...interface{}) {
	if imp.shouldLog(INFO) {
		imp.emit(INFO, fmt.Sprint(args...), nil)
	}
}

func (imp *impl) Infof(template string, args ...interface{}) {
	if imp.shouldLog(INFO) {
		imp.emit(INFO, fmt.Sprintf(template, args...), nil)
	}
}

func (imp *impl) Infow(msg string, keysAndValues ...interface{}) {
	if imp.shouldLog(INFO) {
		imp.emit(INFO, msg, keysAndValues)
	}
}

func (imp *impl) Warn(args ...interface{}) {
	if imp.shouldLog(WARN) {
		imp.emit(WARN, fmt.Sprint(args...), nil)
	}
}

func (imp *impl) Warnf(template string, args ...interface{}) {
	if imp.shouldLog(WARN) {
		imp.emit(WARN, fmt.Sprintf(template, args...), nil)
	}
}

func (imp *impl) Warnw(msg string, keysAndValues ...interface{}) {
	if imp.shouldLog(WARN) {
		imp.emit(WARN, msg, keysAndValues)
	}
}

func (imp *impl) Error(args ...interface{}) {
	if imp.shouldLog(ERROR) {
		imp.emit(ERROR, fmt.Sprint(args...), nil)
	}
}

func (imp *impl) Errorf(template string, args ...interface{}) {
	if imp.shouldLog(ERROR) {
		imp.emit(ERROR, fmt.Sprintf(template, args...), nil)
	}
}

func (imp *impl) Errorw(msg string, keysAndValues ...interface{}) {
	if imp.shouldLog(ERROR) {
		imp.emit(ERROR, msg, keysAndValues)
	}
}

// getCaller returns the caller of the exported logging method, e.g. "surfaceplan/planner.go:98".
func getCaller() zapcore.EntryCaller {
	// getCaller <- emit <- exported method <- caller
	const skipToLogCaller = 3
	var entryCaller zapcore.EntryCaller
	var ok bool
	entryCaller.PC, entryCaller.File, entryCaller.Line, ok = runtime.Caller(skipToLogCaller)
	if !ok {
		return entryCaller
	}
	entryCaller.Defined = true
	if fn := runtime.FuncForPC(entryCaller.PC); fn != nil {
		entryCaller.Function = fn.Name()
	}
	return entryCaller
}
