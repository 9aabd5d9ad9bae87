// Package elevate runs privileged writes through an external helper such as
// sudo and caches the secret that unlocks it for a short time.
package elevate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/kobzarvs/qpad/internal/logger"
)

// DefaultHelper is the helper binary used when none is configured.
const DefaultHelper = "sudo"

// Helper invokes the privilege helper. The secret is always written to the
// helper's stdin followed by a newline (sudo -S convention).
type Helper struct {
	Path string
}

// NewHelper returns a Helper for path, falling back to DefaultHelper.
func NewHelper(path string) Helper {
	if strings.TrimSpace(path) == "" {
		path = DefaultHelper
	}
	return Helper{Path: path}
}

// Validate asks the helper to verify secret without using any cached
// timestamp of its own. Any failure, including a missing helper, reports false.
func (h Helper) Validate(ctx context.Context, secret string) bool {
	cmd := exec.CommandContext(ctx, h.Path, "-S", "-v", "-k")
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return false
	}
	if err := cmd.Start(); err != nil {
		logger.Debug("helper validate: start failed", "helper", h.Path, "err", err)
		return false
	}
	_, werr := io.WriteString(stdin, secret+"\n")
	_ = stdin.Close()
	if err := cmd.Wait(); err != nil {
		logger.Debug("helper validate: rejected", "helper", h.Path, "err", err)
		return false
	}
	return werr == nil
}

// Copy runs "<helper> -S cp src dst". It returns the trimmed stderr of the
// helper together with the process error, if any.
func (h Helper) Copy(ctx context.Context, secret, src, dst string) (string, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, h.Path, "-S", "cp", src, dst)
	cmd.Stdin = strings.NewReader(secret + "\n")
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			err = fmt.Errorf("%w: %s", ErrHelperNotFound, h.Path)
		}
		return "", err
	}
	err := cmd.Wait()
	return strings.TrimSpace(stderr.String()), err
}
