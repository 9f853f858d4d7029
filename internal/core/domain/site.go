package domain

// Site describes a configured site build: where page sources live, where
// build products go, and how a single page is built.
type Site struct {
	// Root is the absolute directory containing mason.yaml.
	Root string
	// Source is the page source directory, relative to Root.
	Source string
	// Output is the build product directory, relative to Root.
	Output string
	// CacheFile is the persisted build cache location, relative to Root.
	CacheFile string
	// BuildCommand is the argv executed once per page.
	BuildCommand []string
	// Ignore holds glob patterns for names skipped while walking sources.
	Ignore []string
	// Environment holds extra variables passed to the build command.
	Environment map[string]string
	// Jobs caps parallel page builds; 0 means one per CPU.
	Jobs int
}
