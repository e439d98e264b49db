package logger

import (
	"os"
	"sync"
)

var (
	globalLogger *Logger
	once         sync.Once
)

// GetLogger returns the process default logger. Components should take a
// *Logger at construction; this accessor exists for the entry points that
// have to bootstrap one.
func GetLogger() *Logger {
	once.Do(func() {
		if globalLogger == nil {
			level := "info"
			if os.Getenv("DEBUG") == "true" {
				level = "debug"
			} else if v := os.Getenv("LOG_LEVEL"); v != "" {
				level = v
			}

			globalLogger = New(Config{
				Level:  level,
				Format: "json",
				Output: "stdout",
			})
		}
	})
	return globalLogger
}

// SetLogger replaces the process default logger.
func SetLogger(logger *Logger) {
	globalLogger = logger
}
