package elevate

import (
	"errors"
	"fmt"
)

// WriteKind classifies a failed Write. A helper that cannot be spawned is
// WriteCopyFailed with ExitCode -1. A helper that exits nonzero is
// WriteAuthFailed when its stderr reports a rejected password and
// WriteCopyFailed otherwise.
type WriteKind int

const (
	// WriteIO means the content never reached the helper: the direct write
	// or the staging file write failed.
	WriteIO WriteKind = iota
	// WriteAuthFailed means the helper rejected the cached secret.
	WriteAuthFailed
	// WriteCopyFailed means the helper could not be started or its copy
	// failed for a reason other than authentication.
	WriteCopyFailed
)

func (k WriteKind) String() string {
	switch k {
	case WriteAuthFailed:
		return "auth failed"
	case WriteCopyFailed:
		return "copy failed"
	default:
		return "io"
	}
}

// WriteError is returned by Writer.Write.
type WriteError struct {
	Kind     WriteKind
	Path     string
	ExitCode int    // helper exit status; -1 if it never ran
	Stderr   string // helper diagnostics, trimmed
	Err      error
}

func (e *WriteError) Error() string {
	msg := fmt.Sprintf("write %s: %s", e.Path, e.Kind)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *WriteError) Unwrap() error { return e.Err }

// ErrHelperNotFound is reported when the configured helper binary cannot
// be located on PATH.
var ErrHelperNotFound = errors.New("elevation helper not found")
