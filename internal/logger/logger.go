// Package logger provides the structured console logger shared by the
// daemon, the CLI and the internal packages.
package logger

import "sync"

// Log levels accepted in configuration.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

var (
	processLogger *Logger
	processOnce   sync.Once
)

// Get returns the process-wide logger, built at level on first use. Later
// calls apply level to the existing instance, so a logger obtained before
// configuration is loaded follows the configured level afterwards.
func Get(level string) *Logger {
	created := false
	processOnce.Do(func() {
		processLogger = New(level)
		created = true
	})
	if !created {
		processLogger.SetLevel(level)
	}
	return processLogger
}
