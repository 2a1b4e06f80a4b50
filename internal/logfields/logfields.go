package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyInvocationID = "invocation_id"
	KeyBuilder      = "builder"
	KeySource       = "source"
	KeyOutput       = "output"
	KeyStage        = "stage"
	KeyState        = "state"
	KeyExitCode     = "exit_code"
	KeyDurationMS   = "duration_ms"
	KeyPath         = "path"
	KeyRevision     = "revision"
	KeyScheduleID   = "schedule_id"
	KeyError        = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func InvocationID(id string) slog.Attr { return slog.String(KeyInvocationID, id) }
func Builder(name string) slog.Attr    { return slog.String(KeyBuilder, name) }
func Source(path string) slog.Attr     { return slog.String(KeySource, path) }
func Output(path string) slog.Attr     { return slog.String(KeyOutput, path) }
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func State(s string) slog.Attr         { return slog.String(KeyState, s) }
func ExitCode(code int) slog.Attr      { return slog.Int(KeyExitCode, code) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func Revision(r string) slog.Attr      { return slog.String(KeyRevision, r) }
func ScheduleID(id string) slog.Attr   { return slog.String(KeyScheduleID, id) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
