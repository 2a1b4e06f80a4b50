package sphinx

import "path/filepath"

// sphinx-build command line flags.
const (
	FlagVerbose          = "-v"
	FlagQuiet            = "-Q"
	FlagWarningsAsErrors = "-W"
	FlagRebuildAll       = "-a"
	FlagFreshEnv         = "-E"
	FlagTag              = "-t"
	FlagBuilder          = "-b"
	FlagNitpicky         = "-n"
)

// Arguments builds the sphinx-build argument vector for the invocation.
func (inv Invocation) Arguments() []string {
	args := make([]string, 0, 8+2*len(inv.Tags))

	if inv.Verbose {
		args = append(args, FlagVerbose)
	} else {
		args = append(args, FlagQuiet)
	}

	if inv.WarningsAsErrors {
		args = append(args, FlagWarningsAsErrors)
	}

	if inv.Force {
		args = append(args, FlagRebuildAll, FlagFreshEnv)
	}

	for _, tag := range inv.Tags {
		args = append(args, FlagTag, tag)
	}

	args = append(args, FlagBuilder, inv.Builder)
	args = append(args, FlagNitpicky)
	args = append(args, inv.SourcePath(), inv.ArtifactRoot())
	return args
}

func absPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}
