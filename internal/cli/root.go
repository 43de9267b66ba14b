package cli

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/gardenzilla/procurement/internal"
	"github.com/gardenzilla/procurement/internal/envfile"
	"github.com/gardenzilla/procurement/internal/paths"
	"github.com/gardenzilla/procurement/internal/server"
)

// Environment variable naming the env list file loaded before parsing.
const envFileVar = "PROCUREMENT_ENV_FILE"

// Represents the root command for the procurement service.
var RootCmd struct {
	Quiet    bool       `short:"q" help:"Suppress informational output."`
	Verbose  bool       `short:"v" help:"Attach source locations to log records."`
	Debug    bool       `short:"d" help:"Enable debug output."`
	LogLevel string     `help:"Log level (debug, info, warn, error)." env:"PROCUREMENT_LOG_LEVEL"`
	Address  string     `short:"a" help:"Listen address." env:"SERVICE_ADDR_PROCUREMENT" default:"${address}"`
	DataDir  string     `help:"Directory holding the procurement store." env:"PROCUREMENT_DATA_DIR" default:"${data_dir}" type:"path"`
	PIDFile  string     `help:"PID file path, or - to disable." placeholder:"PATH"`
	Serve    ServeCmd   `cmd:"" default:"1" help:"Run the procurement service (default)."`
	Version  VersionCmd `cmd:"" help:"Show version information."`
}

// Parses arguments, configures logging, and runs the selected subcommand.
func Execute() error {

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := loadEnvFile(); err != nil {
		return err
	}

	kongCtx := kong.Parse(&RootCmd,
		kong.Name(internal.BinaryName),
		kong.Description("The procurement service.\n\nServes procurements over HTTP until interrupted."),
		kong.UsageOnError(),
		kong.Vars{
			"version":  internal.VersionString(),
			"address":  server.DefaultAddress,
			"data_dir": paths.DefaultDataDir,
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	internal.ApplyFlags(RootCmd.Quiet, RootCmd.Verbose, RootCmd.Debug)
	configureLogger()

	return kongCtx.Run()
}

// Loads the env list file into the process environment. The default file
// is optional; a file named through $PROCUREMENT_ENV_FILE must exist.
func loadEnvFile() error {
	path := os.Getenv(envFileVar)
	explicit := path != ""
	if !explicit {
		path = envfile.DefaultName
	}

	err := envfile.Load(path)
	if err != nil && !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Replaces the global logger with one reflecting the parsed flags.
func configureLogger() {
	level := internal.LogLevel()
	if RootCmd.LogLevel != "" {
		level = parseLevel(RootCmd.LogLevel)
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: internal.IsVerbose(),
	})
	slog.SetDefault(slog.New(handler).With("service", internal.Name))
}

func parseLevel(name string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(name))); err != nil {
		return slog.LevelInfo
	}
	return level
}
