package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Event represents a registration, authentication or sharing event.
// Metadata must never contain secrets or PHI.
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType string            `json:"eventType"` // e.g., "register", "authenticate", "share_record"
	EntityID  string            `json:"entityId"`  // e.g., user id or record id
	Result    string            `json:"result"`    // e.g., "success", "failure"
	Reason    string            `json:"reason"`    // error message or reason code
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Logger is the interface for logging audit events.
type Logger interface {
	LogEvent(event Event)
}

// StdoutLogger is a simple implementation that logs to stdout.
type StdoutLogger struct{}

func (l *StdoutLogger) LogEvent(event Event) {
	fmt.Printf("[%s] [%s] Entity: %s, Result: %s, Reason: %s, Metadata: %+v\n",
		event.Timestamp.Format(time.RFC3339), event.EventType, event.EntityID, event.Result, event.Reason, event.Metadata)
}

// NewStdoutLogger returns a new StdoutLogger.
func NewStdoutLogger() Logger {
	return &StdoutLogger{}
}

// FileLogger appends events as JSON lines to a compliance log file.
type FileLogger struct {
	mu   sync.Mutex
	path string
}

func NewFileLogger(path string) Logger {
	return &FileLogger{path: path}
}

func (l *FileLogger) LogEvent(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[AUDIT] could not open %s: %v\n", l.path, err)
		return
	}
	defer f.Close()
	b, err := json.Marshal(event)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[AUDIT] could not marshal event: %v\n", err)
		return
	}
	f.Write(append(b, '\n'))
}

// NopLogger discards all events. Useful in tests.
type NopLogger struct{}

func (NopLogger) LogEvent(Event) {}
