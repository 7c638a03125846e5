package logger

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// ObservabilityLogger provides structured JSONL logging using logrus, for
// ingestion by whatever log pipeline the host process feeds.
type ObservabilityLogger struct {
	logger *logrus.Logger
	file   *os.File
}

// Component constants for consistent labeling
const (
	ComponentEngine   = "engine_core"
	ComponentScanner  = "scanner"
	ComponentRepair   = "repair_pipeline"
	ComponentDetector = "format_detector"
	ComponentStream   = "stream_adapter"
	ComponentRenderer = "renderer"
	ComponentCache    = "result_cache"
	ComponentConfig   = "configuration"
)

// Category constants for log classification
const (
	CategoryRequest        = "request"
	CategoryTransformation = "transformation"
	CategorySuccess        = "success"
	CategoryWarning        = "warning"
	CategoryError          = "error"
	CategoryClassification = "classification"
	CategoryCaching        = "caching"
	CategoryDebug          = "debug"
)

// NewObservabilityLogger creates a new structured logger writing JSONL to
// the given directory.
func NewObservabilityLogger(logDir string) (*ObservabilityLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, err
	}

	logPath := filepath.Join(logDir, "jsonlens.jsonl")
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetOutput(file)
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})
	logger.SetLevel(logrus.InfoLevel)

	return &ObservabilityLogger{
		logger: logger,
		file:   file,
	}, nil
}

// Close closes the log file
func (o *ObservabilityLogger) Close() error {
	if o.file != nil {
		return o.file.Close()
	}
	return nil
}

// createEntry creates a logrus entry with standard fields
func (o *ObservabilityLogger) createEntry(component, category, requestID string, fields map[string]interface{}) *logrus.Entry {
	entry := o.logger.WithFields(logrus.Fields{
		"service":   "jsonlens",
		"component": component,
		"category":  category,
	})

	if requestID != "" {
		entry = entry.WithField("request_id", requestID)
	}

	if fields != nil {
		entry = entry.WithFields(fields)
	}

	return entry
}

// Debug logs a debug message
func (o *ObservabilityLogger) Debug(component, category, requestID, message string, fields map[string]interface{}) {
	o.createEntry(component, category, requestID, fields).Debug(message)
}

// Info logs an info message
func (o *ObservabilityLogger) Info(component, category, requestID, message string, fields map[string]interface{}) {
	o.createEntry(component, category, requestID, fields).Info(message)
}

// Warn logs a warning message
func (o *ObservabilityLogger) Warn(component, category, requestID, message string, fields map[string]interface{}) {
	o.createEntry(component, category, requestID, fields).Warn(message)
}

// Error logs an error message
func (o *ObservabilityLogger) Error(component, category, requestID, message string, fields map[string]interface{}) {
	o.createEntry(component, category, requestID, fields).Error(message)
}

// RepairEvent logs an accepted repair with its operation log
func (o *ObservabilityLogger) RepairEvent(requestID string, operations int, attempts int, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["operations"] = operations
	fields["attempts"] = attempts
	o.Info(ComponentRepair, CategoryTransformation, requestID, "Document repaired", fields)
}

// ClassificationDecision logs a format detection outcome
func (o *ObservabilityLogger) ClassificationDecision(requestID, format string, repaired bool, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["format"] = format
	fields["repaired"] = repaired
	o.Info(ComponentDetector, CategoryClassification, requestID, "Document classified", fields)
}

// CacheEvent logs a cache hit or miss
func (o *ObservabilityLogger) CacheEvent(requestID string, hit bool, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["hit"] = hit
	o.Debug(ComponentCache, CategoryCaching, requestID, "Render cache lookup", fields)
}

// StreamEvent logs a completed or halted stream
func (o *ObservabilityLogger) StreamEvent(requestID string, elements int, mixed bool, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields["elements"] = elements
	fields["mixed_format"] = mixed
	o.Info(ComponentStream, CategoryRequest, requestID, "Stream completed", fields)
}
