// Package applog is a small structured file logger. Every call is an
// event name plus key/value pairs, one line per event. The TUI owns the
// terminal, so nothing ever goes to stdout or stderr.
package applog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	maxFileSize = 5 << 20
	maxValueLen = 240
)

var (
	mu      sync.Mutex
	file    *os.File
	verbose bool
)

// Init opens lernbruecke.log in dir for appending, rotating it to
// .log.1 once it passes 5 MB. Safe to skip entirely: without Init every
// log call is a no-op.
func Init(dir string) error {
	path := filepath.Join(dir, "lernbruecke.log")

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if info, err := os.Stat(path); err == nil && info.Size() > maxFileSize {
		os.Rename(path, path+".1")
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	mu.Lock()
	file = f
	verbose = os.Getenv("LERNBRUECKE_DEBUG") != ""
	mu.Unlock()
	return nil
}

// Close flushes and closes the log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		file.Close()
		file = nil
	}
}

// Info logs a structured event line.
//
//	applog.Info("surface.connected", "remote", addr)
//	applog.Info("session.saved", "user", id)
func Info(event string, kv ...any) {
	emit("INFO", event, nil, kv)
}

// Error logs an event together with an error.
//
//	applog.Error("store.write", err, "key", key)
func Error(event string, err error, kv ...any) {
	emit("ERROR", event, err, kv)
}

// Debug logs only when LERNBRUECKE_DEBUG is set in the environment.
func Debug(event string, kv ...any) {
	mu.Lock()
	on := verbose
	mu.Unlock()
	if on {
		emit("DEBUG", event, nil, kv)
	}
}

func emit(level, event string, err error, kv []any) {
	mu.Lock()
	defer mu.Unlock()
	if file == nil {
		return
	}

	var b strings.Builder
	b.WriteString(time.Now().UTC().Format("2006-01-02T15:04:05.000Z"))
	b.WriteByte(' ')
	b.WriteString(level)
	b.WriteByte(' ')
	b.WriteString(event)
	if err != nil {
		b.WriteString(" err=")
		b.WriteString(render(err.Error()))
	}
	for i := 0; i+1 < len(kv); i += 2 {
		b.WriteByte(' ')
		b.WriteString(fmt.Sprint(kv[i]))
		b.WriteByte('=')
		b.WriteString(render(fmt.Sprint(kv[i+1])))
	}
	b.WriteByte('\n')
	file.WriteString(b.String())
}

func render(s string) string {
	if len(s) > maxValueLen {
		s = s[:maxValueLen] + "…"
	}
	if strings.ContainsAny(s, " \t\n\"") {
		return "\"" + strings.ReplaceAll(s, "\"", "\\\"") + "\""
	}
	return s
}
