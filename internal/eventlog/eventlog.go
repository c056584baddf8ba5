// Package eventlog appends a CSV row for every inspector lifecycle event
// (open, close, params, halted) to a daily-rotated session log file, in
// the spirit of a radio logging session's daily-named packet log: the
// file is opened lazily, reopened whenever the day's name changes, and
// never consulted by control-flow logic — it is purely an audit trail.
package eventlog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/lestrrat-go/strftime"
)

const defaultNamePattern = "inspector-%Y%m%d.csv"

// Log writes lifecycle events to a daily-rotated CSV file under dir.
type Log struct {
	mu          sync.Mutex
	dir         string
	namePattern *strftime.Strftime
	openName    string
	file        *os.File
	writer      *csv.Writer
}

// Open prepares a Log that writes under dir, creating dir if necessary.
// The file itself is opened lazily on the first Write.
func Open(dir string) (*Log, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("eventlog: create directory: %w", err)
	}
	pattern, err := strftime.New(defaultNamePattern)
	if err != nil {
		return nil, fmt.Errorf("eventlog: compile name pattern: %w", err)
	}
	return &Log{dir: dir, namePattern: pattern}, nil
}

// Write appends one event row: timestamp, handle, inspector_id, event.
func (l *Log) Write(now time.Time, handle int, inspectorID, event string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	name := l.namePattern.FormatString(now)
	if l.file == nil || name != l.openName {
		if err := l.rotateLocked(name); err != nil {
			return err
		}
	}

	l.writer.Write([]string{
		strconv.FormatInt(now.Unix(), 10),
		strconv.Itoa(handle),
		inspectorID,
		event,
	})
	l.writer.Flush()
	return l.writer.Error()
}

func (l *Log) rotateLocked(name string) error {
	if l.file != nil {
		l.file.Close()
	}
	full := filepath.Join(l.dir, name)
	f, err := os.OpenFile(full, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		l.file = nil
		l.writer = nil
		l.openName = ""
		return fmt.Errorf("eventlog: open %s: %w", full, err)
	}
	l.file = f
	l.writer = csv.NewWriter(f)
	l.openName = name
	return nil
}

// Close flushes and closes the currently open file, if any.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	l.writer.Flush()
	err := l.file.Close()
	l.file = nil
	l.writer = nil
	l.openName = ""
	return err
}
