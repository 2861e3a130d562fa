package logger

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// LogMessage is one captured log line
type LogMessage struct {
	Level   string
	Message string
	Fields  map[string]interface{}
	Error   error
}

// capture is the sink shared by a TestLogger and all of its children
type capture struct {
	mu       sync.Mutex
	messages []LogMessage
	buffer   bytes.Buffer
	zlog     zerolog.Logger
}

// TestLogger records messages in memory so tests can assert on them
type TestLogger struct {
	sink   *capture
	fields map[string]interface{}
	err    error
}

// NewTestLogger creates a new capturing logger
func NewTestLogger() *TestLogger {
	c := &capture{}
	c.zlog = zerolog.New(&c.buffer).With().Timestamp().Logger()
	return &TestLogger{sink: c, fields: map[string]interface{}{}}
}

func (t *TestLogger) record(level, msg string, extra map[string]interface{}) {
	fields := make(map[string]interface{}, len(t.fields)+len(extra))
	for k, v := range t.fields {
		fields[k] = v
	}
	for k, v := range extra {
		fields[k] = v
	}

	t.sink.mu.Lock()
	defer t.sink.mu.Unlock()
	t.sink.messages = append(t.sink.messages, LogMessage{
		Level:   level,
		Message: msg,
		Fields:  fields,
		Error:   t.err,
	})
	t.sink.buffer.WriteString(fmt.Sprintf("[%s] %s\n", strings.ToUpper(level), msg))
}

func (t *TestLogger) Debug(msg string) { t.record("debug", msg, nil) }
func (t *TestLogger) Info(msg string)  { t.record("info", msg, nil) }
func (t *TestLogger) Warn(msg string)  { t.record("warn", msg, nil) }
func (t *TestLogger) Error(msg string) { t.record("error", msg, nil) }

func (t *TestLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	t.record("debug", msg, fields)
}

func (t *TestLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	t.record("info", msg, fields)
}

func (t *TestLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	t.record("warn", msg, fields)
}

func (t *TestLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	t.record("error", msg, fields)
}

func (t *TestLogger) WithField(key string, value interface{}) Logger {
	return t.WithFields(map[string]interface{}{key: value})
}

func (t *TestLogger) WithFields(fields map[string]interface{}) Logger {
	merged := make(map[string]interface{}, len(t.fields)+len(fields))
	for k, v := range t.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &TestLogger{sink: t.sink, fields: merged, err: t.err}
}

func (t *TestLogger) WithError(err error) Logger {
	if err == nil {
		return t
	}
	return &TestLogger{sink: t.sink, fields: t.fields, err: err}
}

func (t *TestLogger) GetZerolog() *zerolog.Logger {
	return &t.sink.zlog
}

// GetMessages returns a copy of everything logged so far
func (t *TestLogger) GetMessages() []LogMessage {
	t.sink.mu.Lock()
	defer t.sink.mu.Unlock()
	out := make([]LogMessage, len(t.sink.messages))
	copy(out, t.sink.messages)
	return out
}

// GetMessagesByLevel returns the messages logged at level
func (t *TestLogger) GetMessagesByLevel(level string) []LogMessage {
	var out []LogMessage
	for _, m := range t.GetMessages() {
		if m.Level == level {
			out = append(out, m)
		}
	}
	return out
}

// HasMessage reports whether msg was logged at level
func (t *TestLogger) HasMessage(level, msg string) bool {
	for _, m := range t.GetMessagesByLevel(level) {
		if m.Message == msg {
			return true
		}
	}
	return false
}

// HasError reports whether any message carried an error containing substr
func (t *TestLogger) HasError(substr string) bool {
	for _, m := range t.GetMessages() {
		if m.Error != nil && strings.Contains(m.Error.Error(), substr) {
			return true
		}
	}
	return false
}

// Clear drops all captured messages
func (t *TestLogger) Clear() {
	t.sink.mu.Lock()
	defer t.sink.mu.Unlock()
	t.sink.messages = nil
	t.sink.buffer.Reset()
}

// String returns the captured lines as plain text
func (t *TestLogger) String() string {
	t.sink.mu.Lock()
	defer t.sink.mu.Unlock()
	return t.sink.buffer.String()
}
