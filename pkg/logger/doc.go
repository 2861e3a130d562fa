// Package logger provides structured logging for productimg.
//
// It wraps zerolog behind a small Logger interface. Console output is
// colorized and human readable; an optional log file receives the same
// lines. Every line carries the app name and version.
//
//	err := logger.Initialize(&cfg.Logging)
//	logger.WithField("category", "food").Info("Image saved")
//
// Tests can swap the global logger for a TestLogger and assert on what
// was logged:
//
//	tl := logger.NewTestLogger()
//	logger.SetLogger(tl)
//	defer logger.SetLogger(nil)
package logger
