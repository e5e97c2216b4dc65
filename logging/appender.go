package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// DefaultTimeFormatStr is the default time format string for log appenders.
const DefaultTimeFormatStr = "2006-01-02T15:04:05.000Z0700"

// Appender is an output for log entries. This is a subset of the `zapcore.Core` interface.
type Appender interface {
	// Write submits a structured log entry to the appender for logging.
	Write(zapcore.Entry, []zapcore.Field) error
	// Sync is for signaling that any buffered logs to `Write` should be flushed. E.g: at shutdown.
	Sync() error
}

// ConsoleAppender will create human readable tab-delimited log lines.
type ConsoleAppender struct {
	io.Writer
}

// NewStdoutAppender creates a new appender that writes to stdout.
func NewStdoutAppender() ConsoleAppender {
	return ConsoleAppender{os.Stdout}
}

// NewWriterAppender creates a new appender that writes to the input writer.
func NewWriterAppender(writer io.Writer) ConsoleAppender {
	return ConsoleAppender{writer}
}

// NewFileAppender creates a new appender that writes to a size-rotated log file. The returned
// closer must be closed once the logger using the appender is done.
func NewFileAppender(filename string) (ConsoleAppender, io.Closer) {
	rotator := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    64,
		MaxBackups: 2,
		Compress:   true,
	}
	return ConsoleAppender{rotator}, rotator
}

// Write outputs the log entry to the underlying stream.
func (appender ConsoleAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	line, encodeErr := formatLine(entry, fields)
	if _, err := fmt.Fprintln(appender.Writer, line); err != nil {
		return err
	}
	return encodeErr
}

// formatLine renders an entry as tab separated columns: time, level, logger name (when set),
// caller, message and the structured fields as a JSON object. The fields keep their order. When the
// fields fail to encode, the line without them is returned alongside the error.
func formatLine(entry zapcore.Entry, fields []zapcore.Field) (string, error) {
	columns := []string{entry.Time.Format(DefaultTimeFormatStr), strings.ToUpper(entry.Level.String())}
	if entry.LoggerName != "" {
		columns = append(columns, entry.LoggerName)
	}
	if entry.Caller.Defined {
		columns = append(columns, entry.Caller.TrimmedPath())
	}
	columns = append(columns, entry.Message)
	if len(fields) == 0 {
		return strings.Join(columns, "\t"), nil
	}

	encoder := zapcore.NewJSONEncoder(zapcore.EncoderConfig{SkipLineEnding: true})
	buf, err := encoder.EncodeEntry(zapcore.Entry{}, fields)
	if err != nil {
		return strings.Join(columns, "\t"), err
	}
	defer buf.Free()
	return strings.Join(append(columns, buf.String()), "\t"), nil
}

// Sync is a no-op unless the underlying writer can be synced.
func (appender ConsoleAppender) Sync() error {
	if syncer, ok := appender.Writer.(interface{ Sync() error }); ok && appender.Writer != os.Stdout {
		return syncer.Sync()
	}
	return nil
}
