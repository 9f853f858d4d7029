// Package builder implements the incremental build engine. It walks the page
// sources, consults the build cache to decide which pages are stale, executes
// the build command for those pages, and folds the results into a new cache
// value.
package builder

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Builder executes incremental site builds.
type Builder struct {
	walker    ports.Walker
	hasher    ports.Hasher
	executor  ports.Executor
	logger    ports.Logger
	telemetry ports.Telemetry
	tracer    ports.Tracer
}

// NewBuilder creates a new Builder with the given dependencies.
func NewBuilder(
	walker ports.Walker,
	hasher ports.Hasher,
	executor ports.Executor,
	logger ports.Logger,
	telemetry ports.Telemetry,
	tracer ports.Tracer,
) *Builder {
	return &Builder{
		walker:    walker,
		hasher:    hasher,
		executor:  executor,
		logger:    logger,
		telemetry: telemetry,
		tracer:    tracer,
	}
}

// Options configure a build run.
type Options struct {
	// Force rebuilds every page regardless of cache state.
	Force bool
	// Jobs caps parallel page builds; 0 falls back to the site setting,
	// then to one per CPU.
	Jobs int
	// Now supplies build timestamps in unix seconds. Defaults to the wall
	// clock; tests inject a fixed value.
	Now func() int64
}

// Summary reports what a build run did.
type Summary struct {
	Built  int
	Fresh  int
	Failed int
}

// run is the mutable state of one build. Cache updates are folded under mu so
// that successive cache values form a single accumulating chain even when
// pages build in parallel.
type run struct {
	site   *domain.Site
	source string
	force  bool
	now    func() int64

	mu      sync.Mutex
	cache   domain.Cache
	summary Summary
}

// Run builds every stale page under the site's source directory and returns
// the resulting cache. The input cache value is never mutated. On failure the
// cache accumulated so far is still returned so completed work can be
// persisted.
func (b *Builder) Run(
	ctx context.Context,
	site *domain.Site,
	cache domain.Cache,
	opts Options,
) (domain.Cache, Summary, error) {
	r := &run{
		site:   site,
		source: filepath.Join(site.Root, site.Source),
		force:  opts.Force,
		now:    opts.Now,
		cache:  cache,
	}
	if r.now == nil {
		r.now = func() int64 { return time.Now().Unix() }
	}

	// The output directory may sit inside the source tree (source: ".");
	// build products must never be walked as pages.
	outputDir := filepath.Join(site.Root, site.Output) + string(filepath.Separator)

	var pages []domain.Path
	for path := range b.walker.WalkFiles(r.source, site.Ignore) {
		if strings.HasPrefix(path, outputDir) {
			continue
		}
		rel, err := filepath.Rel(r.source, path)
		if err != nil {
			return cache, Summary{}, zerr.Wrap(err, "failed to resolve page path")
		}
		pages = append(pages, domain.NewPath(filepath.ToSlash(rel)))
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = site.Jobs
	}
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for _, page := range pages {
		g.Go(func() error {
			return b.buildPage(gctx, r, page)
		})
	}

	if err := g.Wait(); err != nil {
		return r.cache, r.summary, zerr.Wrap(err, "build execution failed")
	}
	return r.cache, r.summary, nil
}

// buildPage rebuilds one page if it is stale and records the result.
func (b *Builder) buildPage(ctx context.Context, r *run, page domain.Path) error {
	ctx, span := b.tracer.Start(ctx, "build_page")
	defer span.End()
	span.SetAttribute("page", page.String())

	srcPath := filepath.Join(r.source, filepath.FromSlash(page.String()))
	digest, err := b.hasher.ComputeDigest(srcPath)
	if err != nil {
		span.RecordError(err)
		r.count(func(s *Summary) { s.Failed++ })
		return err
	}

	ctx, vertex := b.telemetry.Record(ctx, page.String())
	if !r.force && !b.stale(r, page, digest) {
		span.SetAttribute("cached", true)
		vertex.Cached()
		vertex.Done(nil)
		r.count(func(s *Summary) { s.Fresh++ })
		return nil
	}

	deps, err := b.executor.Execute(ctx, r.site, page)
	vertex.Done(err)
	if err != nil {
		span.RecordError(err)
		b.logger.Error(err)
		r.count(func(s *Summary) { s.Failed++ })
		return errors.Join(domain.ErrBuildFailed, err)
	}

	r.mu.Lock()
	r.cache = r.cache.Update(page, deps, r.now(), digest)
	r.summary.Built++
	r.mu.Unlock()

	b.logger.Info("built " + page.String())
	return nil
}

// stale decides whether a page must be rebuilt: the cache has no entry, the
// source digest changed, the entry has no build timestamp, the output is
// missing, or a recorded dynamic dependency was modified after the last
// build.
func (b *Builder) stale(r *run, page domain.Path, digest string) bool {
	r.mu.Lock()
	entry, ok := r.cache.Get(page)
	r.mu.Unlock()

	if !ok || entry.Digest != digest || entry.BuiltAt == nil {
		return true
	}

	outPath := filepath.Join(r.site.Root, r.site.Output, filepath.FromSlash(page.String()))
	if _, err := b.hasher.ModTime(outPath); err != nil {
		return true
	}

	for _, dep := range entry.Deps.Paths() {
		depPath := filepath.Join(r.site.Root, filepath.FromSlash(dep.String()))
		mtime, err := b.hasher.ModTime(depPath)
		if err != nil || mtime > *entry.BuiltAt {
			return true
		}
	}
	return false
}

func (r *run) count(update func(*Summary)) {
	r.mu.Lock()
	update(&r.summary)
	r.mu.Unlock()
}
