package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dd0wney/cluso-dyncomm/pkg/logging"
)

// DefaultShutdownTimeout bounds how long in-flight requests may drain.
const DefaultShutdownTimeout = 30 * time.Second

// ConfigReloadFunc is a function that reloads configuration
type ConfigReloadFunc func() error

// GracefulServer wraps an HTTP server with signal handling: SIGINT and
// SIGTERM drain in-flight requests, SIGHUP reloads configuration.
type GracefulServer struct {
	server          *http.Server
	logger          logging.Logger
	shutdownTimeout time.Duration
	shutdownCh      chan struct{}
	shutdownOnce    sync.Once
	shutdownErr     error
	configReloadFn  ConfigReloadFunc
	configMu        sync.RWMutex
	addrMu          sync.Mutex
	addr            net.Addr
	ready           chan struct{}
}

// NewGracefulServer creates a new graceful HTTP server. Write timeouts are
// generous since one request may run a full detection.
func NewGracefulServer(addr string, handler http.Handler, logger logging.Logger) *GracefulServer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &GracefulServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       60 * time.Second,
			WriteTimeout:      5 * time.Minute,
			IdleTimeout:       120 * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
		logger:          logger.With(logging.Component("server")),
		shutdownTimeout: DefaultShutdownTimeout,
		shutdownCh:      make(chan struct{}),
		ready:           make(chan struct{}),
	}
}

// SetShutdownTimeout overrides DefaultShutdownTimeout. d <= 0 is ignored.
func (gs *GracefulServer) SetShutdownTimeout(d time.Duration) {
	if d > 0 {
		gs.shutdownTimeout = d
	}
}

// Run listens on the configured address and serves until ctx is done, a
// termination signal arrives or the server fails.
func (gs *GracefulServer) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", gs.server.Addr)
	if err != nil {
		return err
	}
	return gs.Serve(ctx, ln)
}

// Serve is Run on an existing listener. It may be called once.
func (gs *GracefulServer) Serve(ctx context.Context, ln net.Listener) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	gs.addrMu.Lock()
	gs.addr = ln.Addr()
	gs.addrMu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		errCh <- gs.server.Serve(ln)
	}()
	close(gs.ready)

	gs.logger.Info("HTTP server started", logging.String("addr", ln.Addr().String()))

	for {
		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return gs.shutdownErr
			}
			return err

		case <-ctx.Done():
			return gs.Shutdown(gs.shutdownTimeout)

		case sig := <-sigCh:
			if sig == syscall.SIGHUP {
				gs.logger.Info("received SIGHUP, reloading configuration")
				gs.ReloadConfig()
				continue
			}
			gs.logger.Info("received signal, shutting down", logging.String("signal", sig.String()))
			return gs.Shutdown(gs.shutdownTimeout)
		}
	}
}

// Addr returns the listening address once Serve has started, or nil.
func (gs *GracefulServer) Addr() net.Addr {
	gs.addrMu.Lock()
	defer gs.addrMu.Unlock()
	return gs.addr
}

// Ready returns a channel that closes once the server is listening.
func (gs *GracefulServer) Ready() <-chan struct{} {
	return gs.ready
}

// Shutdown stops accepting connections and waits up to timeout for
// in-flight requests. Only the first call has an effect.
func (gs *GracefulServer) Shutdown(timeout time.Duration) error {
	gs.shutdownOnce.Do(func() {
		close(gs.shutdownCh)

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		gs.logger.Info("initiating graceful shutdown", logging.Duration("timeout", timeout))

		if err := gs.server.Shutdown(ctx); err != nil {
			gs.shutdownErr = err
			gs.logger.Error("shutdown failed", logging.Error(err))
			return
		}
		gs.logger.Info("server shutdown complete")
	})
	return gs.shutdownErr
}

// IsShuttingDown returns true if shutdown has been initiated
func (gs *GracefulServer) IsShuttingDown() bool {
	select {
	case <-gs.shutdownCh:
		return true
	default:
		return false
	}
}

// ShutdownChannel returns a channel that closes when shutdown is initiated
func (gs *GracefulServer) ShutdownChannel() <-chan struct{} {
	return gs.shutdownCh
}

// SetConfigReloadFunc sets the function to call when configuration reload is triggered
func (gs *GracefulServer) SetConfigReloadFunc(fn ConfigReloadFunc) {
	gs.configMu.Lock()
	defer gs.configMu.Unlock()
	gs.configReloadFn = fn
}

// ReloadConfig triggers a configuration reload
func (gs *GracefulServer) ReloadConfig() error {
	gs.configMu.RLock()
	reloadFn := gs.configReloadFn
	gs.configMu.RUnlock()

	if reloadFn == nil {
		gs.logger.Warn("configuration reload requested, but no reload function configured")
		return nil
	}

	if err := reloadFn(); err != nil {
		gs.logger.Error("configuration reload failed", logging.Error(err))
		return err
	}

	gs.logger.Info("configuration reload complete")
	return nil
}
