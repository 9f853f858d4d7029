// Package shell provides the page build executor adapter.
package shell

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Executor = (*Executor)(nil)

// Executor implements ports.Executor using os/exec. It runs the site's build
// command once per page and collects the dynamic dependencies the command
// reports through its depfile.
type Executor struct {
	logger ports.Logger
}

// NewExecutor creates a new Executor.
func NewExecutor(logger ports.Logger) *Executor {
	return &Executor{logger: logger}
}

// Execute runs the build command for page with the following environment:
//
//	MASON_SOURCE     absolute path of the page source
//	MASON_OUTPUT     absolute path the page output should be written to
//	MASON_DEPS_FILE  file the command may append dependency paths to,
//	                 one site-relative path per line
//
// plus the site's configured environment on top of the host environment.
// The command runs with the site root as its working directory.
func (e *Executor) Execute(ctx context.Context, site *domain.Site, page domain.Path) (domain.DepSet, error) {
	rel := filepath.FromSlash(page.String())
	srcPath := filepath.Join(site.Root, site.Source, rel)
	outPath := filepath.Join(site.Root, site.Output, rel)

	if err := os.MkdirAll(filepath.Dir(outPath), 0o750); err != nil {
		return domain.DepSet{}, zerr.Wrap(err, "failed to create output directory")
	}

	depsFile, err := os.CreateTemp("", "mason-deps-*")
	if err != nil {
		return domain.DepSet{}, zerr.Wrap(err, "failed to create depfile")
	}
	depsPath := depsFile.Name()
	_ = depsFile.Close()
	defer os.Remove(depsPath) //nolint:errcheck // Best effort cleanup

	name := site.BuildCommand[0]
	args := site.BuildCommand[1:]

	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec // user provided command
	cmd.Dir = site.Root
	cmd.Env = buildEnv(site, srcPath, outPath, depsPath)
	cmd.Stdout = &logWriter{log: e.logger.Info}
	cmd.Stderr = &logWriter{log: e.logger.Warn}

	if err := cmd.Run(); err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		wrapped := zerr.With(zerr.Wrap(err, "build command failed"), "exit_code", exitCode)
		return domain.DepSet{}, zerr.With(wrapped, "page", page.String())
	}

	return readDeps(depsPath)
}

func buildEnv(site *domain.Site, srcPath, outPath, depsPath string) []string {
	env := os.Environ()
	for key, value := range site.Environment {
		env = append(env, key+"="+value)
	}
	return append(env,
		"MASON_SOURCE="+srcPath,
		"MASON_OUTPUT="+outPath,
		"MASON_DEPS_FILE="+depsPath,
	)
}

// readDeps parses the depfile written by the build command: one site-relative
// path per line, blank lines ignored.
func readDeps(path string) (domain.DepSet, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Temp file owned by this process
	if err != nil {
		return domain.DepSet{}, zerr.Wrap(err, "failed to read depfile")
	}

	var paths []domain.Path
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		paths = append(paths, domain.NewPath(filepath.ToSlash(line)))
	}
	return domain.NewDepSet(paths...), nil
}

// logWriter forwards command output to the logger line by line.
type logWriter struct {
	log func(string)
	buf strings.Builder
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)
	for {
		s := w.buf.String()
		idx := strings.IndexByte(s, '\n')
		if idx < 0 {
			break
		}
		if line := strings.TrimRight(s[:idx], "\r"); line != "" {
			w.log(line)
		}
		w.buf.Reset()
		w.buf.WriteString(s[idx+1:])
	}
	return len(p), nil
}
