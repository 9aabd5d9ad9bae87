package document

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/kobzarvs/qpad/internal/elevate"
)

// fakeBuffer stands in for the text widget. Like a real widget it reports
// every content change back to the session, including ones the session made.
type fakeBuffer struct {
	session  *Session
	text     []rune
	cursor   int
	selStart int
	selEnd   int
	scrolls  int
	failSet  error
}

func (b *fakeBuffer) Cursor() int { return b.cursor }

func (b *fakeBuffer) SetText(text string) error {
	if b.failSet != nil {
		return b.failSet
	}
	b.text = []rune(text)
	b.cursor = 0
	b.notify()
	return nil
}

func (b *fakeBuffer) ReplaceRange(start, end int, text string) error {
	if start < 0 || end > len(b.text) || start > end {
		return errors.New("range out of bounds")
	}
	out := append([]rune{}, b.text[:start]...)
	out = append(out, []rune(text)...)
	out = append(out, b.text[end:]...)
	b.text = out
	b.cursor = start + len([]rune(text))
	b.notify()
	return nil
}

func (b *fakeBuffer) SelectRange(start, end int) {
	b.selStart, b.selEnd = start, end
	b.cursor = end
}

func (b *fakeBuffer) ScrollToRange(start, end int) { b.scrolls++ }

// typeText simulates the user replacing the buffer contents.
func (b *fakeBuffer) typeText(text string) {
	b.text = []rune(text)
	b.cursor = len(b.text)
	b.notify()
}

func (b *fakeBuffer) notify() {
	if b.session != nil {
		b.session.OnTextChanged(string(b.text))
	}
}

type fakeShell struct {
	title         string
	errors        []string
	infos         []string
	indicator     bool
	highlight     Mode
	saveRequests  []string
	secretReasons []string
	closeChoices  int
	closed        int
}

func (s *fakeShell) SetTitle(title string)             { s.title = title }
func (s *fakeShell) ShowError(msg string)              { s.errors = append(s.errors, msg) }
func (s *fakeShell) ShowInfo(msg string)               { s.infos = append(s.infos, msg) }
func (s *fakeShell) SetElevatedIndicator(visible bool) { s.indicator = visible }
func (s *fakeShell) ApplyHighlighting(mode Mode)       { s.highlight = mode }
func (s *fakeShell) RequestSaveLocation(name string)   { s.saveRequests = append(s.saveRequests, name) }
func (s *fakeShell) RequestSecret(reason string)       { s.secretReasons = append(s.secretReasons, reason) }
func (s *fakeShell) RequestCloseChoice()               { s.closeChoices++ }
func (s *fakeShell) Close()                            { s.closed++ }

// fakeHelper writes a sudo stand-in accepting the password "secret". Each
// call appends its arguments to calls.log next to the script.
func fakeHelper(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake helper needs /bin/sh")
	}
	script := `#!/bin/sh
echo "$*" >> "$(dirname "$0")/calls.log"
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

func helperCalls(t *testing.T, helper string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(filepath.Dir(helper), "calls.log"))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("read calls.log: %v", err)
	}
	return string(data)
}

type fixture struct {
	session *Session
	buffer  *fakeBuffer
	shell   *fakeShell
	writer  *elevate.Writer
	helper  string
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		buffer: &fakeBuffer{},
		shell:  &fakeShell{},
		helper: fakeHelper(t),
		now:    time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
	}
	h := elevate.NewHelper(f.helper)
	cache := elevate.NewCache(h, elevate.WithClock(func() time.Time { return f.now }))
	f.writer = elevate.NewWriter(h, t.TempDir())
	f.session = NewSession(f.buffer, f.shell, cache, f.writer, ModePlain)
	f.buffer.session = f.session
	return f
}
