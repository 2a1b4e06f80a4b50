package sphinx

import (
	"fmt"
	"os"

	ferrors "git.home.luguber.info/inful/sphinxbuild/internal/foundation/errors"
)

// DefaultBuilder is the sphinx-build output mode used when none is configured.
const DefaultBuilder = "html"

// DefaultExecutable is the name of the external tool looked up on PATH.
const DefaultExecutable = "sphinx-build"

// Invocation is everything needed for one sphinx-build run.
type Invocation struct {
	SourceDirectory       string
	OutputDirectory       string
	IntermediateDirectory string
	Builder               string
	Tags                  []string
	Verbose               bool
	WarningsAsErrors      bool
	Force                 bool

	// Executable defaults to DefaultExecutable.
	Executable string
	// Env is merged over the inherited environment.
	Env map[string]string
}

// SourcePath is the absolute source directory.
func (inv Invocation) SourcePath() string {
	return absPath(inv.SourceDirectory)
}

// OutputPath is the absolute output directory, without the builder suffix.
func (inv Invocation) OutputPath() string {
	return absPath(inv.OutputDirectory)
}

// ArtifactRoot is the directory sphinx-build writes its output to.
// The builder is appended verbatim, filepath.Join would clean it.
func (inv Invocation) ArtifactRoot() string {
	return inv.OutputPath() + string(os.PathSeparator) + inv.Builder
}

// Validate checks the invocation before anything is launched.
func (inv Invocation) Validate() error {
	if inv.Builder == "" {
		return ferrors.ConfigError("sphinx builder is required").Build()
	}
	if inv.SourceDirectory == "" {
		return ferrors.ConfigError("sphinx source directory is required").Build()
	}
	if inv.OutputDirectory == "" {
		return ferrors.ConfigError("sphinx output directory is required").Build()
	}
	info, err := os.Stat(inv.SourceDirectory)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryConfig, "sphinx source directory is not readable").
			Fatal().
			WithContext("path", absPath(inv.SourceDirectory)).
			Build()
	}
	if !info.IsDir() {
		return ferrors.ConfigError(fmt.Sprintf("sphinx source %s is not a directory", inv.SourceDirectory)).
			WithContext("path", absPath(inv.SourceDirectory)).
			Build()
	}
	return nil
}

// PrepareDirectories creates the output and intermediate directories when absent.
func (inv Invocation) PrepareDirectories() error {
	for _, dir := range []string{inv.OutputDirectory, inv.IntermediateDirectory} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create directory").
				Fatal().
				WithContext("path", dir).
				Build()
		}
	}
	return nil
}

func (inv Invocation) executable() string {
	if inv.Executable == "" {
		return DefaultExecutable
	}
	return inv.Executable
}
