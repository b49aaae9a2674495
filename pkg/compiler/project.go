package compiler

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// ProjectConfig is a trb.toml project configuration file.
type ProjectConfig struct {
	// Sources lists source globs, relative to the config file.
	Sources []string `toml:"sources"`

	// Dependencies maps a file to the files it depends on, feeding the
	// incremental compiler's edge set.
	Dependencies map[string][]string `toml:"dependencies,omitempty"`

	// Output is where generated Ruby goes; empty means alongside sources.
	Output string `toml:"output,omitempty"`

	// Workers bounds the parallel batch processor. Zero means default.
	Workers int `toml:"workers,omitempty"`
}

// LoadProjectConfig loads a trb.toml file from the given path.
func LoadProjectConfig(path string) (*ProjectConfig, error) {
	var config ProjectConfig
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return &config, nil
}

// FindProjectConfig searches for a trb.toml starting at dir and walking up
// parent directories. Returns ("", nil, nil) when no config exists.
func FindProjectConfig(dir string) (string, *ProjectConfig, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, err
	}
	for {
		path := filepath.Join(dir, "trb.toml")
		if _, err := os.Stat(path); err == nil {
			config, err := LoadProjectConfig(path)
			if err != nil {
				return "", nil, err
			}
			return path, config, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil, nil
		}
		dir = parent
	}
}

// SourceFiles expands the config's source globs relative to baseDir,
// deduplicated and sorted for deterministic batch order.
func (c *ProjectConfig) SourceFiles(baseDir string) ([]string, error) {
	seen := map[string]bool{}
	var files []string
	for _, glob := range c.Sources {
		matches, err := filepath.Glob(filepath.Join(baseDir, glob))
		if err != nil {
			return nil, errors.Wrapf(err, "bad source glob %q", glob)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// ApplyDependencies feeds the config's dependency edges into the compiler.
func (c *ProjectConfig) ApplyDependencies(comp *Compiler, baseDir string) {
	for path, deps := range c.Dependencies {
		for _, dep := range deps {
			comp.AddDependency(filepath.Join(baseDir, path), filepath.Join(baseDir, dep))
		}
	}
}
