package shell_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"go.trai.ch/mason/internal/adapters/shell"
	"go.trai.ch/mason/internal/core/domain"
)

type recordingLogger struct {
	mu   sync.Mutex
	info []string
	warn []string
	errs []error
}

func (l *recordingLogger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.info = append(l.info, msg)
}

func (l *recordingLogger) Warn(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warn = append(l.warn, msg)
}

func (l *recordingLogger) Error(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs = append(l.errs, err)
}

func newSite(t *testing.T, command []string) *domain.Site {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "content"), 0o750); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	return &domain.Site{
		Root:         root,
		Source:       "content",
		Output:       "public",
		BuildCommand: command,
	}
}

func TestExecutor_Execute(t *testing.T) {
	site := newSite(t, []string{"sh", "-c",
		`cp "$MASON_SOURCE" "$MASON_OUTPUT" && printf 'layout.html\npartials/nav.html\n' >> "$MASON_DEPS_FILE"`,
	})
	srcPath := filepath.Join(site.Root, "content", "index.md")
	if err := os.WriteFile(srcPath, []byte("hello"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	exec := shell.NewExecutor(&recordingLogger{})
	deps, err := exec.Execute(context.Background(), site, domain.NewPath("index.md"))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	want := domain.NewDepSet(
		domain.NewPath("layout.html"),
		domain.NewPath("partials/nav.html"),
	)
	if !deps.Equal(want) {
		t.Errorf("deps = %v, want %v", deps.Paths(), want.Paths())
	}

	out, err := os.ReadFile(filepath.Join(site.Root, "public", "index.md"))
	if err != nil {
		t.Fatalf("output was not written: %v", err)
	}
	if string(out) != "hello" {
		t.Errorf("output = %q, want %q", string(out), "hello")
	}
}

func TestExecutor_NoDepsReported(t *testing.T) {
	site := newSite(t, []string{"true"})

	deps, err := shell.NewExecutor(&recordingLogger{}).
		Execute(context.Background(), site, domain.NewPath("index.md"))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !deps.IsEmpty() {
		t.Errorf("deps = %v, want empty", deps.Paths())
	}
}

func TestExecutor_CommandFailure(t *testing.T) {
	site := newSite(t, []string{"sh", "-c", "exit 3"})

	_, err := shell.NewExecutor(&recordingLogger{}).
		Execute(context.Background(), site, domain.NewPath("index.md"))
	if err == nil {
		t.Fatal("Execute succeeded, want error")
	}
	if !strings.Contains(err.Error(), "build command failed") {
		t.Errorf("err = %v, want build command failure", err)
	}
}

func TestExecutor_StreamsOutputToLogger(t *testing.T) {
	site := newSite(t, []string{"sh", "-c", "echo building; echo careful >&2"})

	log := &recordingLogger{}
	if _, err := shell.NewExecutor(log).
		Execute(context.Background(), site, domain.NewPath("index.md")); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if len(log.info) != 1 || log.info[0] != "building" {
		t.Errorf("info lines = %v, want [building]", log.info)
	}
	if len(log.warn) != 1 || log.warn[0] != "careful" {
		t.Errorf("warn lines = %v, want [careful]", log.warn)
	}
}

func TestExecutor_ContextCancellation(t *testing.T) {
	site := newSite(t, []string{"sleep", "60"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := shell.NewExecutor(&recordingLogger{}).
		Execute(ctx, site, domain.NewPath("index.md")); err == nil {
		t.Error("Execute with cancelled context succeeded, want error")
	}
}
