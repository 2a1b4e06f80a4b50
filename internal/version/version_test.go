package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	if Version == "" || BuildTime == "" || GitCommit == "" {
		t.Fatal("build metadata should be initialized")
	}

	got := String()
	if !strings.HasPrefix(got, "sphinxbuild "+Version) {
		t.Errorf("String() = %q, want prefix %q", got, "sphinxbuild "+Version)
	}
	if !strings.Contains(got, GitCommit) {
		t.Errorf("String() = %q, want commit %q", got, GitCommit)
	}
}
