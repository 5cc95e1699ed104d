package telemetry

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// JSONLogger writes one JSON object per line. Loggers derived with With share
// the writer and its lock.
type JSONLogger struct {
	out    *output
	fields map[string]any
	debug  bool
}

type output struct {
	mu sync.Mutex
	w  io.WriteCloser
}

// NewJSONLogger appends to path. An empty path discards everything.
func NewJSONLogger(path string) (*JSONLogger, error) {
	if path == "" {
		return NewWriterLogger(io.Discard), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &JSONLogger{out: &output{w: f}}, nil
}

func NewWriterLogger(w io.Writer) *JSONLogger {
	return &JSONLogger{out: &output{w: nopCloser{Writer: w}}}
}

// With returns a logger that adds fields to every entry.
func (l *JSONLogger) With(fields map[string]any) *JSONLogger {
	if l == nil {
		return nil
	}
	merged := make(map[string]any, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &JSONLogger{out: l.out, fields: merged, debug: l.debug}
}

func (l *JSONLogger) SetDebug(on bool) {
	if l != nil {
		l.debug = on
	}
}

func (l *JSONLogger) Debug(msg string, fields map[string]any) {
	if l == nil || !l.debug {
		return
	}
	l.log("debug", msg, fields)
}

func (l *JSONLogger) Info(msg string, fields map[string]any) {
	l.log("info", msg, fields)
}

func (l *JSONLogger) Error(msg string, fields map[string]any) {
	l.log("error", msg, fields)
}

func (l *JSONLogger) log(level, msg string, fields map[string]any) {
	if l == nil || l.out == nil {
		return
	}
	entry := map[string]any{}
	for k, v := range l.fields {
		entry[k] = v
	}
	for k, v := range fields {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		entry[k] = v
	}
	entry["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	entry["level"] = level
	entry["msg"] = msg
	b, err := json.Marshal(entry)
	if err != nil {
		b, _ = json.Marshal(map[string]any{"ts": entry["ts"], "level": "error", "msg": "telemetry.encode_failed", "event": msg})
	}
	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	_, _ = l.out.w.Write(append(b, '\n'))
}

func (l *JSONLogger) Close() error {
	if l == nil || l.out == nil {
		return nil
	}
	return l.out.w.Close()
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
