package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"InvocationID", KeyInvocationID, "abc", InvocationID("abc")},
		{"Builder", KeyBuilder, "html", Builder("html")},
		{"Source", KeySource, "/p/src", Source("/p/src")},
		{"Output", KeyOutput, "/p/out", Output("/p/out")},
		{"Stage", KeyStage, "validate", Stage("validate")},
		{"State", KeyState, "failed", State("failed")},
		{"Path", KeyPath, "/tmp/x", Path("/tmp/x")},
		{"Revision", KeyRevision, "deadbeef", Revision("deadbeef")},
		{"ScheduleID", KeyScheduleID, "sch1", ScheduleID("sch1")},
	}
	for _, c := range cases {
		if c.attr.Key != c.attrKey {
			t.Errorf("%s: key = %q, want %q", c.name, c.attr.Key, c.attrKey)
		}
		if got := c.attr.Value.String(); got != c.attrVal {
			t.Errorf("%s: value = %q, want %q", c.name, got, c.attrVal)
		}
	}
}

func TestNumericHelpers(t *testing.T) {
	if a := ExitCode(2); a.Key != KeyExitCode || a.Value.Int64() != 2 {
		t.Errorf("ExitCode attr = %v", a)
	}
	if a := DurationMS(12.5); a.Key != KeyDurationMS || a.Value.Float64() != 12.5 {
		t.Errorf("DurationMS attr = %v", a)
	}
}

func TestErrorHelper(t *testing.T) {
	if a := Error(nil); a.Value.String() != "" {
		t.Errorf("Error(nil) = %q, want empty", a.Value.String())
	}
	if a := Error(errors.New("boom")); a.Key != KeyError || a.Value.String() != "boom" {
		t.Errorf("Error(err) = %v", a)
	}
}
