package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/gardenzilla/procurement/internal/paths"
	"github.com/gardenzilla/procurement/internal/service"
	"github.com/gardenzilla/procurement/internal/store"
)

const (

	// Address used when none is configured.
	DefaultAddress = "[::1]:50063"

	// Upper bound for in-flight requests to finish during shutdown.
	shutdownTimeout = 10 * time.Second
)

// Holds server configuration.
type Config struct {
	Address string // TCP listen address. Empty uses [DefaultAddress].
	DataDir string // Directory of the store file. Empty uses [paths.DefaultDataDir].
	PIDFile string // PID file path. Empty uses [paths.PIDFile]; "-" disables it.
}

// Serves the procurement API.
type Server struct {
	address   string           // TCP listen address.
	pidFile   string           // Path of the PID file, or "" when disabled.
	app       *fiber.App       // HTTP application.
	store     *store.Store     // Procurement store, closed on Stop.
	listener  net.Listener     // Listener for incoming connections.
	startedAt time.Time        // Timestamp when the server started.
	requests  atomic.Uint64    // Total number of API requests handled.
	service   *service.Service // Procurement operations.
	done      chan struct{}    // Closed once the server has stopped.
	stopOnce  sync.Once        // Guards Stop against double invocation.
}

// Opens the store and prepares the routes.
//
// The address is not bound until [Server.Start] is called.
func New(cfg Config) (*Server, error) {
	address := cfg.Address
	if address == "" {
		address = DefaultAddress
	}

	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = paths.DefaultDataDir
	}

	pidFile := cfg.PIDFile
	switch pidFile {
	case "":
		pidFile = paths.PIDFile()
	case "-":
		pidFile = ""
	}

	st, err := store.Open(paths.StoreFile(dataDir))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrServer, err)
	}

	s := &Server{
		address: address,
		pidFile: pidFile,
		store:   st,
		service: service.New(st),
		done:    make(chan struct{}),
	}
	s.app = s.newApp()

	return s, nil
}

// Binds the listen address and begins serving in the background.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("%w: failed to listen on %s: %w", ErrServer, s.address, err)
	}

	s.listener = listener
	s.startedAt = time.Now()

	if err := s.writePID(); err != nil {
		slog.Warn("failed to write PID file", "error", err)
	}

	slog.Info("server listening", "address", listener.Addr().String())

	go s.serve()
	return nil
}

// Address the server is bound to, or nil before [Server.Start].
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) serve() {
	if err := s.app.Listener(s.listener); err != nil {
		select {
		case <-s.done:
		default:
			slog.Error("serve error", "error", err)
		}
	}
}

// Shuts down the listener, waits for in-flight requests, and releases the
// store and PID file. Safe to call more than once.
func (s *Server) Stop() error {
	var err error

	s.stopOnce.Do(func() {
		close(s.done)

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if shutdownErr := s.app.ShutdownWithContext(ctx); shutdownErr != nil {
			slog.Warn("graceful shutdown incomplete", "error", shutdownErr)
		}

		if closeErr := s.store.Close(); closeErr != nil {
			err = fmt.Errorf("%w: %w", ErrServer, closeErr)
		}

		if s.pidFile != "" {
			os.Remove(s.pidFile)
		}
	})

	return err
}

// Blocks until the server stops.
func (s *Server) Wait() {
	<-s.done
}

// Writes the process id so that operators can signal the service.
func (s *Server) writePID() error {
	if s.pidFile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.pidFile), paths.DefaultDirMode); err != nil {
		return err
	}
	return os.WriteFile(s.pidFile, []byte(fmt.Sprintf("%d", os.Getpid())), paths.DefaultFileMode)
}
