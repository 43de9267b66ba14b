package internal

import (
	"log/slog"
	"strconv"
	"sync/atomic"
)

const (

	// Name of the service, used for logger groups and directory naming.
	Name = "procurement"

	// File name of the compiled service binary and of the image entrypoint.
	BinaryName = "procurement_microservice"

	// Import path of this package, used to stamp linker variables.
	ImportPath = "github.com/gardenzilla/procurement/internal"
)

var (
	quietMode   atomic.Bool // Suppress informational output.
	debugMode   atomic.Bool // Emit debug records.
	verboseMode atomic.Bool // Attach source locations to records.
)

// Seeds the output modes from linker flags.
//
// rawQuiet, rawDebug and rawVerbose are set with -X during release builds.
// Values that do not parse as booleans leave the mode disabled.
func init() {
	seed(&quietMode, rawQuiet)
	seed(&debugMode, rawDebug)
	seed(&verboseMode, rawVerbose)
}

func seed(mode *atomic.Bool, raw string) {
	if v, err := strconv.ParseBool(raw); err == nil {
		mode.Store(v)
	}
}

// Applies CLI overrides on top of the build-time modes. A false flag never
// clears a mode enabled at build time.
func ApplyFlags(quiet, verbose, debug bool) {
	if quiet {
		quietMode.Store(true)
	}
	if verbose {
		verboseMode.Store(true)
	}
	if debug {
		debugMode.Store(true)
	}
}

// Returns true if quiet mode is enabled.
func IsQuiet() bool {
	return quietMode.Load()
}

// Returns true if debug mode is enabled.
func IsDebug() bool {
	return debugMode.Load()
}

// Returns true if verbose logging is enabled.
func IsVerbose() bool {
	return verboseMode.Load()
}

// Returns the log level implied by the current modes. Debug wins over quiet.
func LogLevel() slog.Level {
	if IsDebug() {
		return slog.LevelDebug
	}
	if IsQuiet() {
		return slog.LevelWarn
	}
	return slog.LevelInfo
}
