// Package errors implements the scanner's error taxonomy (spec.md §7):
// configuration errors fail the whole run before any scan starts, capture
// and transient errors are contained to a single target's report, and
// fatal runtime errors terminate the scheduler.
package errors

import (
	"encoding/json"
	"fmt"
	"os"
)

// Kind classifies an error for propagation-policy purposes.
type Kind int

const (
	// KindConfig: malformed target URL, missing file, unreadable output
	// path. Fails fast before any scan; exit code 1.
	KindConfig Kind = iota
	// KindCapture: browser launch failed, navigation failed, session
	// crashed. Aborts the current target only.
	KindCapture
	// KindTransient: timeouts/5xx on script, map, or registry fetches.
	// Logged and skipped; never recorded as a finding.
	KindTransient
	// KindFatal: an unrecoverable runtime failure such as a worker panic.
	// The scheduler does not recover worker panics or replace workers.
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindCapture:
		return "capture"
	case KindTransient:
		return "transient"
	case KindFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// ScanError wraps an underlying error with a Kind so callers up the stack
// can decide whether to abort a target, abort the run, or just log.
type ScanError struct {
	Kind Kind
	Op   string // short operation name, e.g. "capture.navigate"
	Err  error
}

func (e *ScanError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *ScanError) Unwrap() error { return e.Err }

// Config wraps err as a KindConfig ScanError.
func Config(op string, err error) error { return &ScanError{Kind: KindConfig, Op: op, Err: err} }

// Capture wraps err as a KindCapture ScanError.
func Capture(op string, err error) error { return &ScanError{Kind: KindCapture, Op: op, Err: err} }

// Transient wraps err as a KindTransient ScanError.
func Transient(op string, err error) error { return &ScanError{Kind: KindTransient, Op: op, Err: err} }

// Fatal wraps err as a KindFatal ScanError.
func Fatal(op string, err error) error { return &ScanError{Kind: KindFatal, Op: op, Err: err} }

// FatalError prints err to stderr (as JSON when jsonMode is set) and
// terminates the process with exit code 1. The command entry point uses
// it for every error that ends a subcommand: flag parsing, configuration,
// browser setup, and report writing.
func FatalError(err error, jsonMode bool) {
	if jsonMode {
		payload, _ := json.Marshal(map[string]string{"error": err.Error()})
		fmt.Fprintln(os.Stderr, string(payload))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(1)
}
