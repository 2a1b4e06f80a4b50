package config

import (
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"git.home.luguber.info/inful/sphinxbuild/internal/sphinx"
)

// Invocation derives a fresh sphinx.Invocation from the configuration.
// Paths are resolved against BaseDir; slices and maps are copied.
func (c *Config) Invocation() sphinx.Invocation {
	return sphinx.Invocation{
		SourceDirectory:       c.Resolve(c.Sphinx.SourceDirectory),
		OutputDirectory:       c.Resolve(c.Sphinx.OutputDirectory),
		IntermediateDirectory: c.Resolve(c.Sphinx.IntermediateDirectory),
		Builder:               c.Sphinx.Builder,
		Tags:                  slices.Clone(c.Sphinx.Tags),
		Verbose:               c.Sphinx.IsVerbose(),
		WarningsAsErrors:      c.Sphinx.WarningsAsErrors,
		Force:                 c.Sphinx.Force,
		Executable:            c.ResolveExecutable(c.Sphinx.Executable),
		Env:                   maps.Clone(c.Sphinx.Env),
	}
}

// HistoryPath is the resolved history database location.
func (c *Config) HistoryPath() string {
	return c.Resolve(c.History.Path)
}

// ResolveExecutable resolves an executable given as a path against BaseDir.
// Bare names are left for PATH lookup.
func (c *Config) ResolveExecutable(name string) string {
	if !strings.ContainsRune(name, '/') && !strings.ContainsRune(name, filepath.Separator) {
		return name
	}
	return c.Resolve(name)
}
