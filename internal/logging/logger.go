// Package logging provides config-driven categorized logging for pokedex.
// Each subsystem logs through its own Category; categories can be toggled
// individually. Output is produced by a single shared zap logger. Until
// Initialize is called every logger is a no-op, which keeps the TUI screen
// clean when logging is not configured.
package logging

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot      Category = "boot"      // Startup, config loading
	CategoryAPI       Category = "api"       // Catalog HTTP requests
	CategoryListing   Category = "listing"   // Page loads and sprite fan-out
	CategoryDetail    Category = "detail"    // Single pokemon lookups
	CategoryEvolution Category = "evolution" // Species -> chain -> stages
	CategorySearch    Category = "search"    // Listing match vs remote lookup
	CategoryUI        Category = "ui"        // TUI lifecycle and published state
)

// Config mirrors config.LoggingConfig to avoid an import cycle.
type Config struct {
	Level      string          // debug, info, warn, error
	Format     string          // json, console
	Output     string          // file path; "" or "stderr" for stderr
	Categories map[string]bool // per-category toggles; missing means enabled
}

// Logger writes to one category.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
}

var (
	mu         sync.RWMutex
	base       *zap.Logger
	categories map[string]bool
	loggers    = make(map[Category]*Logger)
)

var nopLogger = zap.NewNop()

// Initialize builds the shared zap logger. Calling it again replaces the
// previous logger; call Sync before exiting.
func Initialize(cfg Config) error {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return err
	}

	var zcfg zap.Config
	switch strings.ToLower(cfg.Format) {
	case "console", "text":
		zcfg = zap.NewDevelopmentConfig()
	case "", "json":
		zcfg = zap.NewProductionConfig()
	default:
		return fmt.Errorf("unknown log format %q (valid: json, console)", cfg.Format)
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.Sampling = nil

	out := strings.TrimSpace(cfg.Output)
	if out == "" {
		out = "stderr"
	}
	zcfg.OutputPaths = []string{out}
	zcfg.ErrorOutputPaths = []string{"stderr"}

	z, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if base != nil {
		_ = base.Sync()
	}
	base = z
	categories = cfg.Categories
	loggers = make(map[Category]*Logger)
	return nil
}

// UseLogger installs an existing zap logger, mainly for tests (zaptest/observer).
func UseLogger(z *zap.Logger, cats map[string]bool) {
	mu.Lock()
	defer mu.Unlock()
	base = z
	categories = cats
	loggers = make(map[Category]*Logger)
}

// Reset drops the shared logger; every category becomes a no-op again.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	base = nil
	categories = nil
	loggers = make(map[Category]*Logger)
}

// Sync flushes buffered entries.
func Sync() error {
	mu.RLock()
	defer mu.RUnlock()
	if base == nil {
		return nil
	}
	err := base.Sync()
	// stderr cannot be fsynced on most platforms; that is not a failure.
	if err != nil && strings.Contains(err.Error(), "invalid argument") {
		return nil
	}
	return err
}

// IsCategoryEnabled reports whether a category produces output.
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabledLocked(category)
}

func enabledLocked(category Category) bool {
	if base == nil {
		return false
	}
	if categories == nil {
		return true
	}
	enabled, exists := categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns (or creates) the logger for a category.
func Get(category Category) *Logger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}

	z := nopLogger
	if enabledLocked(category) {
		z = base.Named(string(category))
	}
	l := &Logger{category: category, sugar: z.Sugar()}
	loggers[category] = l
	return l
}

// With returns a child logger carrying structured fields.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{category: l.category, sugar: l.sugar.Desugar().With(fields...).Sugar()}
}

func (l *Logger) Debug(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.sugar.Infof(format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.sugar.Warnf(format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }

// Structured writes msg at level with explicit zap fields.
func (l *Logger) Structured(level zapcore.Level, msg string, fields ...zap.Field) {
	if ce := l.sugar.Desugar().Check(level, msg); ce != nil {
		ce.Write(fields...)
	}
}

func parseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	}
	return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", s)
}

// Fatalf reports an unrecoverable startup error to stderr and exits.
func Fatalf(format string, args ...interface{}) {
	Get(CategoryBoot).Error(format, args...)
	_ = Sync()
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

// =============================================================================
// CONVENIENCE FUNCTIONS - Quick logging without getting a logger first
// These are no-ops if the category is disabled
// =============================================================================

// Boot logs to the boot category
func Boot(format string, args ...interface{}) { Get(CategoryBoot).Info(format, args...) }

// API logs to the api category
func API(format string, args ...interface{}) { Get(CategoryAPI).Info(format, args...) }

// APIDebug logs debug to the api category
func APIDebug(format string, args ...interface{}) { Get(CategoryAPI).Debug(format, args...) }

// Listing logs to the listing category
func Listing(format string, args ...interface{}) { Get(CategoryListing).Info(format, args...) }

// ListingDebug logs debug to the listing category
func ListingDebug(format string, args ...interface{}) { Get(CategoryListing).Debug(format, args...) }

// Detail logs to the detail category
func Detail(format string, args ...interface{}) { Get(CategoryDetail).Info(format, args...) }

// DetailDebug logs debug to the detail category
func DetailDebug(format string, args ...interface{}) { Get(CategoryDetail).Debug(format, args...) }

// Evolution logs to the evolution category
func Evolution(format string, args ...interface{}) { Get(CategoryEvolution).Info(format, args...) }

// EvolutionDebug logs debug to the evolution category
func EvolutionDebug(format string, args ...interface{}) {
	Get(CategoryEvolution).Debug(format, args...)
}

// Search logs to the search category
func Search(format string, args ...interface{}) { Get(CategorySearch).Info(format, args...) }

// SearchDebug logs debug to the search category
func SearchDebug(format string, args ...interface{}) { Get(CategorySearch).Debug(format, args...) }

// UI logs to the ui category
func UI(format string, args ...interface{}) { Get(CategoryUI).Info(format, args...) }

// UIDebug logs debug to the ui category
func UIDebug(format string, args ...interface{}) { Get(CategoryUI).Debug(format, args...) }
