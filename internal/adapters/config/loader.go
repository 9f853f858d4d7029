// Package config provides the configuration loader for mason.
package config

import (
	"os"
	"path/filepath"

	"go.trai.ch/mason/internal/core/domain"
	"go.trai.ch/mason/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// DefaultFilename is the configuration file mason looks for at the site root.
const DefaultFilename = "mason.yaml"

var _ ports.ConfigLoader = (*FileConfigLoader)(nil)

// FileConfigLoader implements ports.ConfigLoader using a YAML file.
type FileConfigLoader struct {
	Filename string
}

// Load reads the configuration from the given site directory.
func (l *FileConfigLoader) Load(cwd string) (*domain.Site, error) {
	name := l.Filename
	if name == "" {
		name = DefaultFilename
	}
	return Load(filepath.Join(cwd, name))
}

// Masonfile represents the structure of the mason.yaml configuration file.
type Masonfile struct {
	Version     string            `yaml:"version"`
	Source      string            `yaml:"source"`
	Output      string            `yaml:"output"`
	Cache       string            `yaml:"cache"`
	Build       []string          `yaml:"build"`
	Ignore      []string          `yaml:"ignore"`
	Environment map[string]string `yaml:"environment"`
	Jobs        int               `yaml:"jobs"`
}

// Load reads a configuration file from the given path and returns the
// described site.
func Load(path string) (*domain.Site, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read config file")
	}

	var masonfile Masonfile
	if err := yaml.Unmarshal(data, &masonfile); err != nil {
		return nil, zerr.Wrap(err, "failed to parse config file")
	}

	if masonfile.Source == "" {
		return nil, zerr.With(zerr.New("no source directory configured"), "config", path)
	}
	if len(masonfile.Build) == 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrNoBuildCommand, "invalid config file"), "config", path)
	}
	if masonfile.Jobs < 0 {
		return nil, zerr.With(zerr.New("jobs must not be negative"), "jobs", masonfile.Jobs)
	}

	root, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, zerr.Wrap(err, "failed to resolve site root")
	}

	site := &domain.Site{
		Root:         root,
		Source:       masonfile.Source,
		Output:       masonfile.Output,
		CacheFile:    masonfile.Cache,
		BuildCommand: masonfile.Build,
		Ignore:       masonfile.Ignore,
		Environment:  masonfile.Environment,
		Jobs:         masonfile.Jobs,
	}
	if site.Output == "" {
		site.Output = "public"
	}
	if site.CacheFile == "" {
		site.CacheFile = filepath.Join(".mason", "cache.sx")
	}

	return site, nil
}
