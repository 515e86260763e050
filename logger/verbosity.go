package logger

import (
	"sync/atomic"

	"go.uber.org/zap/zapcore"
)

// Counts of -v on the command line.
const (
	VerbosityUser  = 0 // results and errors only
	VerbosityInfo  = 1 // -v: downloads, row counts
	VerbosityDebug = 2 // -vv: URLs, SQL, timing
	VerbosityTrace = 3 // -vvv: per-candidate match scores
)

var levelNames = []string{"User", "Info (-v)", "Debug (-vv)", "Trace (-vvv)"}

// verbosity is the count the global logger was last initialised with.
var verbosity atomic.Int32

// VerbosityToLevel maps a -v count to a zap level: warn by default, info
// at -v, debug from -vv on. Trace output is debug-level logging gated by
// TraceEnabled.
func VerbosityToLevel(v int) zapcore.Level {
	switch {
	case v <= VerbosityUser:
		return zapcore.WarnLevel
	case v == VerbosityInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// ShouldLogTrace reports whether v asks for trace output.
func ShouldLogTrace(v int) bool {
	return v >= VerbosityTrace
}

// TraceEnabled reports whether the global logger was initialised at -vvv or
// above.
func TraceEnabled() bool {
	return ShouldLogTrace(int(verbosity.Load()))
}

// LevelName names a -v count for log output.
func LevelName(v int) string {
	switch {
	case v < 0:
		return "Unknown"
	case v < len(levelNames):
		return levelNames[v]
	default:
		return "Trace (-vvv+)"
	}
}
