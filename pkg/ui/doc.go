// Package ui renders human-facing terminal output: styled messages and a
// per-item progress display. Structured logs go through pkg/logger; this
// package is only for the operator watching a run.
package ui
