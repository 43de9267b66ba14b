package cli

import (
	"context"
	"log/slog"

	"github.com/gardenzilla/procurement/internal/server"
)

// Represents the 'procurement_microservice serve' command.
type ServeCmd struct{}

// Executes the serve command.
//
// Starts the HTTP server and blocks in the foreground until the context is
// cancelled by SIGINT or SIGTERM.
func (c *ServeCmd) Run(ctx context.Context) error {
	srv, err := server.New(server.Config{
		Address: RootCmd.Address,
		DataDir: RootCmd.DataDir,
		PIDFile: RootCmd.PIDFile,
	})
	if err != nil {
		return err
	}

	if err := srv.Start(); err != nil {
		srv.Stop()
		return err
	}

	slog.Info("procurement service is running", "address", srv.Addr().String(), "data_dir", RootCmd.DataDir)

	<-ctx.Done()

	slog.Info("shutting down")
	return srv.Stop()
}
