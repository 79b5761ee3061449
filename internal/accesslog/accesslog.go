// Package accesslog appends one line per HTTP request to a plain-text file.
package accesslog

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// DefaultFileName is used when no path is configured.
const DefaultFileName = "logs.txt"

const (
	backlog    = 256
	timeLayout = "2006-01-02T15:04:05.000Z07:00"
)

// Log is an append-only request log. Observe never blocks and never fails;
// lines are written by a background goroutine.
type Log struct {
	path    string
	file    *os.File
	entries chan string
	done    chan struct{}
	now     func() time.Time

	mu     sync.RWMutex
	closed bool
}

// Open creates the file if needed and starts the writer.
func Open(path string) (*Log, error) {
	if path == "" {
		path = DefaultFileName
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open access log: %w", err)
	}
	l := &Log{
		path:    path,
		file:    f,
		entries: make(chan string, backlog),
		done:    make(chan struct{}),
		now:     time.Now,
	}
	go l.run()
	return l, nil
}

// Observe records a request. The timestamp is taken now, not when the line
// is written.
func (l *Log) Observe(method, url string) {
	line := fmt.Sprintf("%s - %s %s\n", l.now().UTC().Format(timeLayout), method, url)

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return
	}
	select {
	case l.entries <- line:
	default:
		slog.Warn("access log backlog full, dropping entry", "method", method, "url", url)
	}
}

func (l *Log) run() {
	defer close(l.done)
	for line := range l.entries {
		if _, err := l.file.WriteString(line); err != nil {
			slog.Error("could not write access log", "path", l.path, "err", err)
		}
	}
}

// Close flushes pending lines and closes the file.
func (l *Log) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.entries)
	l.mu.Unlock()

	<-l.done
	return l.file.Close()
}
