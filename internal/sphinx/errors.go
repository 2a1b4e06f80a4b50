package sphinx

import (
	ferrors "git.home.luguber.info/inful/sphinxbuild/internal/foundation/errors"
)

// ExitCode returns the exit status carried by an external tool failure.
func ExitCode(err error) (int, bool) {
	classified, ok := ferrors.AsClassified(err)
	if !ok || classified.Category() != ferrors.CategoryExternalTool {
		return 0, false
	}
	return classified.Context().GetInt("exit_code")
}

// IsLaunchError reports whether the external tool could not be started.
func IsLaunchError(err error) bool {
	return ferrors.HasCategory(err, ferrors.CategoryLaunch)
}

// IsExternalToolFailure reports whether the external tool ran and exited nonzero.
func IsExternalToolFailure(err error) bool {
	return ferrors.HasCategory(err, ferrors.CategoryExternalTool)
}

// IsConfigurationError reports whether the invocation was rejected before launch.
func IsConfigurationError(err error) bool {
	return ferrors.HasCategory(err, ferrors.CategoryConfig) || ferrors.HasCategory(err, ferrors.CategoryValidation)
}
