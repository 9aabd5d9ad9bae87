package document

import (
	"errors"
	"fmt"
)

// Authentication errors.
var (
	// ErrAuthFailed is returned when the elevation helper rejects a secret.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrAuthCancelled is returned when the user declines to supply a secret.
	ErrAuthCancelled = errors.New("authentication cancelled")
)

// State errors.
var (
	// ErrModeLocked is returned by SetMode while the document has content.
	ErrModeLocked = errors.New("cannot change mode while the document has content")

	// ErrNoPendingPrompt is returned when a prompt answer arrives and no
	// matching prompt is outstanding.
	ErrNoPendingPrompt = errors.New("no pending prompt")

	// ErrPromptPending is returned when a command would issue a prompt
	// while another one is still waiting for an answer.
	ErrPromptPending = errors.New("another prompt is pending")

	// ErrNotUTF8 is wrapped by LoadError for files that are not valid UTF-8.
	ErrNotUTF8 = errors.New("file is not valid UTF-8 text")
)

// SaveKind classifies a failed save.
type SaveKind int

const (
	SaveIO SaveKind = iota
	SaveAuthFailed
	SaveAuthCancelled
	SaveCopyFailed
)

func (k SaveKind) String() string {
	switch k {
	case SaveAuthFailed:
		return "authentication failed"
	case SaveAuthCancelled:
		return "authentication cancelled"
	case SaveCopyFailed:
		return "privileged copy failed"
	default:
		return "write failed"
	}
}

// SaveError reports a save that did not complete. The document stays dirty
// and the file on disk is unchanged.
type SaveError struct {
	Kind SaveKind
	Path string
	Err  error
}

func (e *SaveError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("save %s: %s", e.Path, e.Kind)
	}
	return fmt.Sprintf("save %s: %s: %v", e.Path, e.Kind, e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }

// Is lets callers test auth outcomes with errors.Is regardless of the
// underlying cause.
func (e *SaveError) Is(target error) bool {
	switch target {
	case ErrAuthFailed:
		return e.Kind == SaveAuthFailed
	case ErrAuthCancelled:
		return e.Kind == SaveAuthCancelled
	}
	return false
}

// LoadError reports a file that could not be opened. The current document
// is left untouched.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
