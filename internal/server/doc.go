// Package server runs the procurement HTTP API.
//
// The server listens on a TCP address, serves JSON requests under
// /api/v1/procurements, and exposes /status and /healthz for operators.
// It owns the store for its lifetime: [Server.Stop] shuts the listener down
// gracefully, closes the store and removes the PID file.
//
// Example usage:
//
//	srv, err := server.New(server.Config{
//	    Address: "[::1]:50063",
//	    DataDir: "data/procurement",
//	})
//	if err != nil {
//	    return err
//	}
//
//	if err := srv.Start(); err != nil {
//	    return err
//	}
//	defer srv.Stop()
//
//	srv.Wait()
package server
