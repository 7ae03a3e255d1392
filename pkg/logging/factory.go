package logging

import (
	"sync"

	"go.uber.org/zap/zapcore"
)

// DefaultLoggerFactory implements LoggerFactory using zap loggers
type DefaultLoggerFactory struct {
	loggers map[string]Logger
	level   zapcore.Level
	mu      sync.Mutex
}

// NewLoggerFactory creates a new logger factory at info level
func NewLoggerFactory() LoggerFactory {
	return NewLoggerFactoryWithLevel("info")
}

// NewLoggerFactoryWithLevel creates a new logger factory at the given level.
// Unknown level strings fall back to info.
func NewLoggerFactoryWithLevel(level string) LoggerFactory {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		parsed = zapcore.InfoLevel
	}
	return &DefaultLoggerFactory{
		loggers: make(map[string]Logger),
		level:   parsed,
	}
}

// CreateLogger creates a basic logger for the specified component
func (f *DefaultLoggerFactory) CreateLogger(component string) Logger {
	f.mu.Lock()
	defer f.mu.Unlock()

	if logger, exists := f.loggers[component]; exists {
		return logger
	}

	logger := NewZapLoggerWithLevel(component, f.level)
	f.loggers[component] = logger
	return logger
}

// CreateIngestLogger creates a logger scoped to a registry ingestion
func (f *DefaultLoggerFactory) CreateIngestLogger(registryURL string) Logger {
	return f.CreateLogger("registry_ingest").WithRegistry(registryURL)
}

// CreateSyncLogger creates a logger scoped to a sync run
func (f *DefaultLoggerFactory) CreateSyncLogger(runID string) Logger {
	return f.CreateLogger("registry_sync").WithContext(map[string]interface{}{
		"sync_run_id": runID,
	})
}

// GlobalLoggerFactory provides a singleton logger factory instance
var (
	globalFactory LoggerFactory
	factoryOnce   sync.Once
)

// GetGlobalLoggerFactory returns the global logger factory instance
func GetGlobalLoggerFactory() LoggerFactory {
	factoryOnce.Do(func() {
		globalFactory = NewLoggerFactory()
	})
	return globalFactory
}

// SetGlobalLoggerFactory sets the global logger factory (useful for dependency injection)
func SetGlobalLoggerFactory(factory LoggerFactory) {
	globalFactory = factory
}
