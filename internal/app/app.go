// Package app implements the application layer for mason.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/mason/internal/adapters/watcher"
	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
	"go.trai.ch/mason/internal/engine/builder"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	builder      *builder.Builder
	store        ports.CacheStore
	watcher      ports.Watcher
	logger       ports.Logger
	telemetry    ports.Telemetry

	otelOnce sync.Once
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	b *builder.Builder,
	store ports.CacheStore,
	w ports.Watcher,
	log ports.Logger,
	telemetry ports.Telemetry,
) *App {
	return &App{
		configLoader: loader,
		builder:      b,
		store:        store,
		watcher:      w,
		logger:       log,
		telemetry:    telemetry,
	}
}

// RunOptions configuration for the Run method.
type RunOptions struct {
	Force bool
	Jobs  int
}

// Run executes one incremental build of the site in the current directory.
func (a *App) Run(ctx context.Context, opts RunOptions) error {
	a.setupOTel()

	site, err := a.configLoader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	return a.buildOnce(ctx, site, opts)
}

// Watch builds the site once and then rebuilds whenever a source file
// changes. It blocks until the context is cancelled.
func (a *App) Watch(ctx context.Context, opts RunOptions) error {
	a.setupOTel()

	site, err := a.configLoader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	if err := a.buildOnce(ctx, site, opts); err != nil {
		// Keep watching through build failures; the next change may fix them.
		a.logger.Error(err)
	}
	// Force only applies to the initial build.
	opts.Force = false

	if err := a.watcher.Start(ctx, site.Root); err != nil {
		return zerr.Wrap(err, "failed to start file watcher")
	}
	defer func() {
		_ = a.watcher.Stop()
	}()

	rebuilds := make(chan struct{}, 1)
	debouncer := watcher.NewDebouncer(watcher.DefaultDebounceWindow, func(_ []string) {
		select {
		case rebuilds <- struct{}{}:
		default:
		}
	})

	go func() {
		defer close(rebuilds)
		outputDir := filepath.Join(site.Root, site.Output) + string(filepath.Separator)
		cachePath := a.cachePath(site)
		cacheDir := filepath.Dir(cachePath)
		for event := range a.watcher.Events() {
			// Changes produced by the build itself must not retrigger it.
			// That includes creating the cache file's directory on first save.
			if strings.HasPrefix(event.Path, outputDir) ||
				event.Path == cacheDir ||
				strings.HasPrefix(event.Path, cacheDir+string(filepath.Separator)) {
				continue
			}
			debouncer.Add(event.Path)
		}
	}()

	a.logger.Info("watching " + site.Root + " for changes")
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-rebuilds:
			if !ok {
				return nil
			}
			if err := a.buildOnce(ctx, site, opts); err != nil {
				a.logger.Error(err)
			}
		}
	}
}

// Clean removes the generated output directory and the build cache.
func (a *App) Clean(_ context.Context) error {
	site, err := a.configLoader.Load(".")
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	var errs error
	remove := func(path string, name string) {
		a.logger.Info(fmt.Sprintf("removing %s...", name))
		if err := os.RemoveAll(path); err != nil {
			errs = errors.Join(errs, zerr.Wrap(err, fmt.Sprintf("failed to remove %s", name)))
			return
		}
		a.logger.Info(fmt.Sprintf("removed %s", name))
	}

	remove(filepath.Join(site.Root, site.Output), "output directory")
	remove(a.cachePath(site), "build cache")

	return errs
}

// Close flushes and releases the telemetry session.
func (a *App) Close() error {
	return a.telemetry.Close()
}

// buildOnce loads the cache, runs the builder, and persists the resulting
// cache. The cache accumulated before a failure is still written out so
// completed pages are not rebuilt next time.
func (a *App) buildOnce(ctx context.Context, site *domain.Site, opts RunOptions) error {
	sourceDir := filepath.Join(site.Root, site.Source)
	if _, err := os.Stat(sourceDir); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrSourceNotFound, "cannot read source directory"), "path", sourceDir)
	}

	cachePath := a.cachePath(site)
	cache, err := a.store.Load(cachePath)
	if err != nil {
		a.logger.Warn("build cache unreadable, rebuilding from scratch: " + err.Error())
		cache = domain.EmptyCache()
	}

	next, summary, buildErr := a.builder.Run(ctx, site, cache, builder.Options{
		Force: opts.Force,
		Jobs:  opts.Jobs,
	})

	if err := a.store.Save(cachePath, next); err != nil {
		return errors.Join(buildErr, zerr.Wrap(err, "failed to persist build cache"))
	}

	a.logger.Info(fmt.Sprintf(
		"build finished: %d built, %d fresh, %d failed",
		summary.Built, summary.Fresh, summary.Failed,
	))
	return buildErr
}

// cachePath resolves the configured cache file against the site root.
func (a *App) cachePath(site *domain.Site) string {
	if filepath.IsAbs(site.CacheFile) {
		return site.CacheFile
	}
	return filepath.Join(site.Root, site.CacheFile)
}

// setupOTel installs the global OpenTelemetry tracer provider used by the
// tracer adapter. Registered once per process.
func (a *App) setupOTel() {
	a.otelOnce.Do(func() {
		otel.SetTracerProvider(sdktrace.NewTracerProvider())
	})
}
