package elevate

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/kobzarvs/qpad/internal/logger"
)

// StagingName is the fixed file name used to hand content to the helper.
const StagingName = "qpad_sudo_save.tmp"

// Copier copies src over dst with elevated rights.
type Copier interface {
	Copy(ctx context.Context, secret, src, dst string) (string, error)
}

// Writer persists text either directly or through a Copier. It never
// decides whether to escalate; the caller passes a credential or nil.
type Writer struct {
	copier     Copier
	stagingDir string

	mu sync.Mutex
}

// NewWriter returns a Writer staging elevated writes in dir, or in
// os.TempDir when dir is empty.
func NewWriter(c Copier, dir string) *Writer {
	return &Writer{copier: c, stagingDir: dir}
}

// StagingPath returns the path of the shared staging file.
func (w *Writer) StagingPath() string {
	dir := w.stagingDir
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, StagingName)
}

// Write saves content to path. With a nil credential it is a plain file
// write; otherwise the content is staged and copied by the helper.
func (w *Writer) Write(ctx context.Context, path, content string, cred *Credential) error {
	if cred == nil {
		return writeDirect(path, content)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	staging := w.StagingPath()
	perm := stagingPerm(path)
	if err := os.WriteFile(staging, []byte(content), perm); err != nil {
		return &WriteError{Kind: WriteIO, Path: path, ExitCode: -1, Err: err}
	}
	defer func() {
		if err := os.Remove(staging); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("remove staging file", "path", staging, "err", err)
		}
	}()
	if err := os.Chmod(staging, perm); err != nil {
		return &WriteError{Kind: WriteIO, Path: path, ExitCode: -1, Err: err}
	}

	if w.copier == nil {
		return &WriteError{Kind: WriteCopyFailed, Path: path, ExitCode: -1, Err: ErrHelperNotFound}
	}

	stderr, err := w.copier.Copy(ctx, cred.Secret, staging, path)
	if err == nil {
		logger.Debug("elevated write done", "path", path, "bytes", len(content))
		return nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return &WriteError{Kind: WriteCopyFailed, Path: path, ExitCode: -1, Stderr: stderr, Err: err}
	}
	kind := WriteCopyFailed
	if passwordRejected(stderr) {
		kind = WriteAuthFailed
	}
	return &WriteError{Kind: kind, Path: path, ExitCode: exitErr.ExitCode(), Stderr: stderr, Err: err}
}

// stagingPerm picks the staging file mode. cp keeps the mode of a file it
// overwrites but gives a new file the mode of its source, so only a new
// destination needs a readable staging file.
func stagingPerm(dest string) os.FileMode {
	if _, err := os.Stat(dest); err == nil {
		return 0o600
	}
	return 0o644
}

func writeDirect(path, content string) error {
	perm := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := os.WriteFile(path, []byte(content), perm); err != nil {
		return &WriteError{Kind: WriteIO, Path: path, ExitCode: -1, Err: err}
	}
	return nil
}

// passwordRejected recognises sudo's messages for a bad or missing password.
func passwordRejected(stderr string) bool {
	s := strings.ToLower(stderr)
	for _, marker := range []string{
		"incorrect password",
		"sorry, try again",
		"password is required",
		"no password was provided",
		"authentication failure",
	} {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}
