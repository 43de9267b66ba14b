package main

import (
	"log/slog"
	"os"

	"github.com/gardenzilla/procurement/internal"
	"github.com/gardenzilla/procurement/internal/cli"
)

// The entry point for the procurement service.
//
// Seeds logging from build-time linker flags, displays startup information,
// and executes the root command. Exits with a non-zero code on error.
func main() {
	slog.SetDefault(logger())

	slog.Debug("build", "version", internal.VersionString(), "commit", internal.GitCommit())

	slog.Debug("process started",
		"pid", os.Getpid(),
		"cwd", cwd(),
		"args", os.Args,
	)

	if err := cli.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

// Creates the startup logger. Replaced after flag parsing by cli.Execute.
func logger() *slog.Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: internal.LogLevel()})
	return slog.New(handler).With("service", internal.Name)
}

// Returns the current working directory or "(unknown)".
func cwd() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "(unknown)"
	}
	return cwd
}
