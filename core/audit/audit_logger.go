package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// TimestampLayout is the layout of the bracketed prefix on every audit line.
const TimestampLayout = "2006-01-02 15:04:05"

// AuditLogger records ledger operations for later review. Implementations
// must never fail the operation being logged.
type AuditLogger interface {
	Append(message string)
}

// FileAuditLogger appends "[timestamp] message" lines to a text file.
// Write errors (missing directory, full disk, permissions) are dropped.
type FileAuditLogger struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// NewFileAuditLogger returns a logger appending to path.
func NewFileAuditLogger(path string) *FileAuditLogger {
	return &FileAuditLogger{path: path, now: time.Now}
}

func (l *FileAuditLogger) Path() string { return l.path }

func (l *FileAuditLogger) Append(message string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	line := fmt.Sprintf("[%s] %s\n", l.now().Format(TimestampLayout), message)
	_ = os.MkdirAll(filepath.Dir(l.path), 0o755)
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = f.WriteString(line)
}

// NopAuditLogger discards every entry.
type NopAuditLogger struct{}

func (NopAuditLogger) Append(string) {}

// NewNopAuditLogger returns a logger that records nothing.
func NewNopAuditLogger() AuditLogger {
	return NopAuditLogger{}
}
