package logging

import (
	"fmt"
	"log"
	"sort"
	"strings"
)

// Level classifies a log entry
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Logger is the observability collaborator injected into the core services.
// Category groups entries by subsystem (sync, dispatch, location, ...).
type Logger interface {
	Log(level Level, category, message string, context map[string]any)
}

// StdLogger writes entries through the standard library logger.
type StdLogger struct{}

func NewStdLogger() *StdLogger {
	return &StdLogger{}
}

func (l *StdLogger) Log(level Level, category, message string, context map[string]any) {
	if len(context) == 0 {
		log.Printf("[%s] %s: %s", level, category, message)
		return
	}

	// Sort keys so entries are stable and greppable
	keys := make([]string, 0, len(context))
	for k := range context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, context[k])
	}
	log.Printf("[%s] %s: %s%s", level, category, message, b.String())
}

// NopLogger discards everything. Used in tests.
type NopLogger struct{}

func (NopLogger) Log(Level, string, string, map[string]any) {}
