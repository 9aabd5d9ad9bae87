package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/kobzarvs/qpad/internal/document"
	"github.com/kobzarvs/qpad/internal/logger"
)

// executeCommand runs a cobra command with the given args and captures combined output.
func executeCommand(root *cobra.Command, stdin string, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	_, err = root.ExecuteC()
	return buf.String(), err
}

func setupConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("QPAD_CONFIG_HOME", dir)
	t.Setenv("QPAD_LOG_FILE", "")
	t.Cleanup(logger.Close)
	if contents != "" {
		if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(contents), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
	}
	return dir
}

// fakeHelper behaves like "sudo -S" for validation and copying. The
// accepted password is "secret".
func fakeHelper(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake helper needs /bin/sh")
	}
	script := `#!/bin/sh
read pw
if [ "$pw" != "secret" ]; then
  echo "Sorry, try again." >&2
  exit 1
fi
shift
case "$1" in
  -v) exit 0 ;;
  cp) cp "$2" "$3"; exit $? ;;
esac
exit 2
`
	path := filepath.Join(t.TempDir(), "fake-sudo")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write helper: %v", err)
	}
	return path
}

func secretOf(pw string, err error) secretReader {
	return func(string, io.Writer) (string, error) { return pw, err }
}

func TestWritePlain(t *testing.T) {
	setupConfig(t, "")
	dest := filepath.Join(t.TempDir(), "out.txt")

	out, err := executeCommand(newRootCmdWith(secretOf("", errNoTerminal)), "hello\n", "write", dest)
	if err != nil {
		t.Fatalf("write error: %v (output %q)", err, out)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read dest: %v", err)
	}
	if string(data) != "hello\n" {
		t.Fatalf("dest = %q, want %q", data, "hello\n")
	}
	if !strings.Contains(out, "wrote 6 bytes") {
		t.Fatalf("output = %q", out)
	}
}

func TestWriteSudo(t *testing.T) {
	helper := fakeHelper(t)
	setupConfig(t, "[elevate]\nhelper = \""+helper+"\"\n")
	dest := filepath.Join(t.TempDir(), "root.conf")

	_, err := executeCommand(newRootCmdWith(secretOf("secret", nil)), "key=value\n", "write", "--sudo", dest)
	if err != nil {
		t.Fatalf("write --sudo error: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read dest: %v", err)
	}
	if string(data) != "key=value\n" {
		t.Fatalf("dest = %q, want %q", data, "key=value\n")
	}
}

func TestWriteSudoWrongPassword(t *testing.T) {
	helper := fakeHelper(t)
	setupConfig(t, "[elevate]\nhelper = \""+helper+"\"\n")
	dest := filepath.Join(t.TempDir(), "root.conf")

	_, err := executeCommand(newRootCmdWith(secretOf("nope", nil)), "x", "write", "--sudo", dest)
	if !errors.Is(err, document.ErrAuthFailed) {
		t.Fatalf("error = %v, want ErrAuthFailed", err)
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Fatalf("dest written after rejected password")
	}
}

func TestWriteSudoNoTerminal(t *testing.T) {
	setupConfig(t, "")
	dest := filepath.Join(t.TempDir(), "x.txt")
	_, err := executeCommand(newRootCmdWith(secretOf("", errNoTerminal)), "x", "write", "--sudo", dest)
	if !errors.Is(err, errNoTerminal) {
		t.Fatalf("error = %v, want errNoTerminal", err)
	}
}

func TestWriteRejectsBadInput(t *testing.T) {
	setupConfig(t, "")
	dest := filepath.Join(t.TempDir(), "x.txt")

	_, err := executeCommand(newRootCmdWith(secretOf("", nil)), "\xff\xfe", "write", dest)
	if !errors.Is(err, document.ErrNotUTF8) {
		t.Fatalf("error = %v, want ErrNotUTF8", err)
	}

	_, err = executeCommand(newRootCmdWith(secretOf("", nil)), "x", "--mode", "rich", "write", dest)
	if err == nil || !strings.Contains(err.Error(), "unknown mode") {
		t.Fatalf("error = %v, want unknown mode", err)
	}
}

func TestRootRejectsExtraArgs(t *testing.T) {
	setupConfig(t, "")
	if _, err := executeCommand(newRootCmdWith(secretOf("", nil)), "", "a.txt", "b.txt"); err == nil {
		t.Fatalf("error = nil for two file arguments")
	}
}

func TestWriteUnwritableDest(t *testing.T) {
	setupConfig(t, "")
	dest := filepath.Join(t.TempDir(), "missing", "x.txt")
	_, err := executeCommand(newRootCmdWith(secretOf("", nil)), "x", "write", dest)
	var se *document.SaveError
	if !errors.As(err, &se) || se.Kind != document.SaveIO {
		t.Fatalf("error = %v, want SaveIO", err)
	}
}
