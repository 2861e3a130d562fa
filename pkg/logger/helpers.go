package logger

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// LogRequest logs HTTP request information
func LogRequest(method, url string, statusCode int, duration time.Duration) {
	fields := map[string]interface{}{
		"method":      method,
		"url":         url,
		"status_code": statusCode,
		"duration_ms": float64(duration.Microseconds()) / 1000,
	}

	switch {
	case statusCode >= 200 && statusCode < 300:
		GetLogger().DebugWithFields("HTTP request completed", fields)
	case statusCode >= 400 && statusCode < 500:
		GetLogger().WarnWithFields("HTTP request client error", fields)
	case statusCode >= 500:
		GetLogger().ErrorWithFields("HTTP request server error", fields)
	default:
		GetLogger().InfoWithFields("HTTP request finished", fields)
	}
}

// LogItem logs the outcome of one category/term pair
func LogItem(category, term, status, path string, err error) {
	logItem(false, category, term, status, path, err)
}

// LogItemDebug logs the outcome of one category/term pair at debug level,
// for runs where another display already reports each item
func LogItemDebug(category, term, status, path string, err error) {
	logItem(true, category, term, status, path, err)
}

func logItem(debug bool, category, term, status, path string, err error) {
	log := GetLogger().WithFields(map[string]interface{}{
		"category": category,
		"term":     term,
		"status":   status,
	})
	if path != "" {
		log = log.WithField("path", path)
	}
	if err != nil {
		log = log.WithError(err)
	}

	msg := "Item skipped"
	if err == nil && status == "saved" {
		msg = "Image saved"
	}

	switch {
	case debug:
		log.Debug(msg)
	case msg == "Image saved":
		log.Info(msg)
	default:
		log.Warn(msg)
	}
}

// LogRateLimit logs the quota headers returned by the API
func LogRateLimit(limit, remaining int) {
	log := GetLogger().WithFields(map[string]interface{}{
		"limit":     limit,
		"remaining": remaining,
	})
	if limit > 0 && remaining*10 < limit {
		log.Warn("API quota running low")
		return
	}
	log.Debug("API quota")
}

// LogRunSummary logs the end-of-run counters
func LogRunSummary(saved, skipped, failed int, elapsed time.Duration) {
	total := saved + skipped + failed
	rate := 0.0
	if total > 0 {
		rate = float64(saved) / float64(total) * 100
	}

	GetLogger().WithFields(map[string]interface{}{
		"saved":        saved,
		"skipped":      skipped,
		"failed":       failed,
		"success_rate": fmt.Sprintf("%.1f%%", rate),
		"elapsed":      elapsed,
	}).Info("Run finished")
}

// LogComponentStart logs when a component starts
func LogComponentStart(component string, settings map[string]interface{}) {
	log := GetLogger().WithField("component", component)
	if len(settings) > 0 {
		log = log.WithFields(settings)
	}
	log.Info("Component started")
}

// LogComponentStop logs when a component stops
func LogComponentStop(component string, reason string) {
	GetLogger().WithFields(map[string]interface{}{
		"component": component,
		"reason":    reason,
	}).Info("Component stopped")
}

// NewNopLogger creates a logger that discards everything
func NewNopLogger() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}
