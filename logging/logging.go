// Package logging builds labeled, leveled line loggers on zap. Lines look
// like:
//
//	[I] 2024-05-01 12:00:00.000 registry type registered {"type": "Base"}
//
// i.e. the level initial in brackets, a millisecond timestamp, the label
// padded or truncated to eight columns, then the message and any fields.
package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	// DefaultLabel is used when a logger is created without a label.
	DefaultLabel = "main"
	// TimeLayout is the timestamp layout of every line.
	TimeLayout = "2006-01-02 15:04:05.000"

	labelWidth = 8
)

// New returns a sugared logger writing labeled lines to stderr at level and above.
func New(label string, level zapcore.Level) *zap.SugaredLogger {
	return NewWithSink(label, level, zapcore.Lock(os.Stderr))
}

// NewWithSink is New writing to ws.
func NewWithSink(label string, level zapcore.Level, ws zapcore.WriteSyncer) *zap.SugaredLogger {
	if label == "" {
		label = DefaultLabel
	}
	core := zapcore.NewCore(NewEncoder(), ws, zap.NewAtomicLevelAt(level))
	return zap.New(core).Named(label).Sugar()
}

// Nop returns a logger that discards everything.
func Nop() *zap.SugaredLogger { return zap.NewNop().Sugar() }

// NewEncoder returns the line encoder used by New.
func NewEncoder() zapcore.Encoder {
	cfg := zapcore.EncoderConfig{
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		ConsoleSeparator: " ",
	}
	return &lineEncoder{Encoder: zapcore.NewConsoleEncoder(cfg)}
}

var pool = buffer.NewPool()

// lineEncoder prefixes the console encoder's "message fields" output with
// level, time and label.
type lineEncoder struct {
	zapcore.Encoder
}

func (e *lineEncoder) Clone() zapcore.Encoder {
	return &lineEncoder{Encoder: e.Encoder.Clone()}
}

func (e *lineEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	body, err := e.Encoder.EncodeEntry(ent, fields)
	if err != nil {
		return nil, err
	}
	defer body.Free()

	line := pool.Get()
	line.AppendString(Level(ent.Level))
	line.AppendByte(' ')
	line.AppendString(ent.Time.Format(TimeLayout))
	line.AppendByte(' ')
	line.AppendString(Label(ent.LoggerName))
	line.AppendByte(' ')
	_, _ = line.Write(body.Bytes())
	return line, nil
}

// Level renders a level as its bracketed upper-case initial, e.g. "[W]".
func Level(l zapcore.Level) string {
	s := l.CapitalString()
	if s == "" {
		return "[?]"
	}
	return "[" + s[:1] + "]"
}

// Label fits a label into eight columns; an empty label becomes DefaultLabel.
func Label(label string) string {
	if label == "" {
		label = DefaultLabel
	}
	r := []rune(label)
	if len(r) > labelWidth {
		r = r[:labelWidth]
	}
	return string(r) + strings.Repeat(" ", labelWidth-len(r))
}
