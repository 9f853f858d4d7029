package app_test

import (
	"context"
	"errors"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/mason/internal/adapters/telemetry"
	"go.trai.ch/mason/internal/adapters/watcher"
	"go.trai.ch/mason/internal/app"
	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
	"go.trai.ch/mason/internal/core/ports/mocks"
	"go.trai.ch/mason/internal/engine/builder"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

type appMocks struct {
	loader   *mocks.MockConfigLoader
	walker   *mocks.MockWalker
	hasher   *mocks.MockHasher
	executor *mocks.MockExecutor
	store    *mocks.MockCacheStore
	watcher  *mocks.MockWatcher
	logger   *mocks.MockLogger
}

func newTestApp(t *testing.T) (*app.App, *appMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)

	m := &appMocks{
		loader:   mocks.NewMockConfigLoader(ctrl),
		walker:   mocks.NewMockWalker(ctrl),
		hasher:   mocks.NewMockHasher(ctrl),
		executor: mocks.NewMockExecutor(ctrl),
		store:    mocks.NewMockCacheStore(ctrl),
		watcher:  mocks.NewMockWatcher(ctrl),
		logger:   mocks.NewMockLogger(ctrl),
	}
	m.logger.EXPECT().Info(gomock.Any()).AnyTimes()
	m.logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	m.logger.EXPECT().Error(gomock.Any()).AnyTimes()

	span := mocks.NewMockSpan(ctrl)
	span.EXPECT().End().AnyTimes()
	span.EXPECT().RecordError(gomock.Any()).AnyTimes()
	span.EXPECT().SetAttribute(gomock.Any(), gomock.Any()).AnyTimes()
	tracer := mocks.NewMockTracer(ctrl)
	tracer.EXPECT().Start(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string) (context.Context, ports.Span) {
			return ctx, span
		}).AnyTimes()

	noop := telemetry.NewNoOpTelemetry()
	b := builder.NewBuilder(m.walker, m.hasher, m.executor, m.logger, noop, tracer)
	a := app.New(m.loader, b, m.store, m.watcher, m.logger, noop)
	return a, m
}

// testSite creates a site rooted in a temp directory with one page source.
func testSite(t *testing.T) (*domain.Site, string) {
	t.Helper()
	root := t.TempDir()
	sourceDir := filepath.Join(root, "pages")
	require.NoError(t, os.MkdirAll(sourceDir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(sourceDir, "a.md"), []byte("# a\n"), 0o600))

	return &domain.Site{
		Root:         root,
		Source:       "pages",
		Output:       "public",
		CacheFile:    filepath.Join(".mason", "cache.sx"),
		BuildCommand: []string{"sh", "-c", "true"},
	}, sourceDir
}

func files(paths ...string) iter.Seq[string] {
	return slices.Values(paths)
}

func TestApp_Run(t *testing.T) {
	a, m := newTestApp(t)
	site, sourceDir := testSite(t)
	cachePath := filepath.Join(site.Root, ".mason", "cache.sx")

	m.loader.EXPECT().Load(".").Return(site, nil)
	m.store.EXPECT().Load(cachePath).Return(domain.EmptyCache(), nil)
	m.walker.EXPECT().WalkFiles(sourceDir, gomock.Any()).
		Return(files(filepath.Join(sourceDir, "a.md")))
	m.hasher.EXPECT().ComputeDigest(filepath.Join(sourceDir, "a.md")).Return("d1", nil)
	m.executor.EXPECT().Execute(gomock.Any(), site, domain.NewPath("a.md")).
		Return(domain.EmptyDepSet(), nil)
	m.store.EXPECT().Save(cachePath, gomock.Any()).
		DoAndReturn(func(_ string, cache domain.Cache) error {
			entry, ok := cache.Get(domain.NewPath("a.md"))
			require.True(t, ok)
			assert.Equal(t, "d1", entry.Digest)
			return nil
		})

	err := a.Run(context.Background(), app.RunOptions{Jobs: 1})
	require.NoError(t, err)
}

func TestApp_Run_ConfigLoaderError(t *testing.T) {
	a, m := newTestApp(t)

	m.loader.EXPECT().Load(".").Return(nil, zerr.New("no mason.yaml found"))

	err := a.Run(context.Background(), app.RunOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}

func TestApp_Run_SourceMissing(t *testing.T) {
	a, m := newTestApp(t)
	site := &domain.Site{
		Root:         t.TempDir(),
		Source:       "pages",
		Output:       "public",
		CacheFile:    "cache.sx",
		BuildCommand: []string{"sh", "-c", "true"},
	}

	m.loader.EXPECT().Load(".").Return(site, nil)

	err := a.Run(context.Background(), app.RunOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSourceNotFound))
}

func TestApp_Run_CorruptCacheStartsFresh(t *testing.T) {
	a, m := newTestApp(t)
	site, sourceDir := testSite(t)

	m.loader.EXPECT().Load(".").Return(site, nil)
	m.store.EXPECT().Load(gomock.Any()).
		Return(domain.Cache{}, zerr.New("failed to decode build cache"))
	m.walker.EXPECT().WalkFiles(sourceDir, gomock.Any()).
		Return(files(filepath.Join(sourceDir, "a.md")))
	m.hasher.EXPECT().ComputeDigest(gomock.Any()).Return("d1", nil)
	m.executor.EXPECT().Execute(gomock.Any(), site, domain.NewPath("a.md")).
		Return(domain.EmptyDepSet(), nil)
	m.store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

	err := a.Run(context.Background(), app.RunOptions{Jobs: 1})
	require.NoError(t, err)
}

func TestApp_Run_BuildFailureStillPersistsCache(t *testing.T) {
	a, m := newTestApp(t)
	site, sourceDir := testSite(t)

	m.loader.EXPECT().Load(".").Return(site, nil)
	m.store.EXPECT().Load(gomock.Any()).Return(domain.EmptyCache(), nil)
	m.walker.EXPECT().WalkFiles(sourceDir, gomock.Any()).
		Return(files(filepath.Join(sourceDir, "a.md")))
	m.hasher.EXPECT().ComputeDigest(gomock.Any()).Return("d1", nil)
	m.executor.EXPECT().Execute(gomock.Any(), site, domain.NewPath("a.md")).
		Return(domain.EmptyDepSet(), zerr.New("command exited 1"))
	m.store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

	err := a.Run(context.Background(), app.RunOptions{Jobs: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBuildFailed))
}

func TestApp_Watch_IgnoresOwnArtifacts(t *testing.T) {
	a, m := newTestApp(t)
	site, sourceDir := testSite(t)
	cacheDir := filepath.Join(site.Root, ".mason")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Exactly one build: the initial one. Any event slipping through the
	// filter would schedule a second build and fail the strict expectations.
	m.loader.EXPECT().Load(".").Return(site, nil)
	m.store.EXPECT().Load(gomock.Any()).Return(domain.EmptyCache(), nil)
	m.walker.EXPECT().WalkFiles(sourceDir, gomock.Any()).
		Return(files(filepath.Join(sourceDir, "a.md")))
	m.hasher.EXPECT().ComputeDigest(gomock.Any()).Return("d1", nil)
	m.executor.EXPECT().Execute(gomock.Any(), site, domain.NewPath("a.md")).
		Return(domain.EmptyDepSet(), nil)
	m.store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)

	var events iter.Seq[ports.WatchEvent] = func(yield func(ports.WatchEvent) bool) {
		artifacts := []ports.WatchEvent{
			{Path: cacheDir, Operation: ports.OpCreate},
			{Path: filepath.Join(cacheDir, "cache.sx"), Operation: ports.OpCreate},
			{Path: filepath.Join(site.Root, "public", "a.html"), Operation: ports.OpWrite},
		}
		for _, event := range artifacts {
			if !yield(event) {
				return
			}
		}
		<-ctx.Done()
	}
	m.watcher.EXPECT().Start(gomock.Any(), site.Root).Return(nil)
	m.watcher.EXPECT().Events().Return(events)
	m.watcher.EXPECT().Stop().Return(nil)

	done := make(chan error, 1)
	go func() {
		done <- a.Watch(ctx, app.RunOptions{Jobs: 1})
	}()

	// Wait past the debounce window so a leaked event would have fired.
	time.Sleep(2 * watcher.DefaultDebounceWindow)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancellation")
	}
}

func TestApp_Clean(t *testing.T) {
	a, m := newTestApp(t)
	site, _ := testSite(t)

	outputDir := filepath.Join(site.Root, site.Output)
	cachePath := filepath.Join(site.Root, site.CacheFile)
	require.NoError(t, os.MkdirAll(outputDir, 0o750))
	require.NoError(t, os.MkdirAll(filepath.Dir(cachePath), 0o750))
	require.NoError(t, os.WriteFile(cachePath, []byte("(())\n"), 0o600))

	m.loader.EXPECT().Load(".").Return(site, nil)

	require.NoError(t, a.Clean(context.Background()))

	_, err := os.Stat(outputDir)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(cachePath)
	assert.True(t, os.IsNotExist(err))
}
