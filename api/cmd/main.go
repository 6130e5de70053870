package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/baechuer/real-time-ressys/services/reset-service/internal/bootstrap"
	"github.com/baechuer/real-time-ressys/services/reset-service/internal/logger"
)

// shutdownGrace bounds how long in-flight provider calls may finish after a signal.
const shutdownGrace = 15 * time.Second

// httpServer is what Run needs from *http.Server.
type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
	Close() error
	Addr() string
}

type realServer struct{ *http.Server }

func (r realServer) Addr() string { return r.Server.Addr }

type serverBuilder func() (httpServer, func(), error)

// Run builds the server, serves until a stop signal or a listener failure,
// then drains. A second signal during the drain closes open connections
// without waiting for pending provider calls.
func Run(build serverBuilder, sigCh <-chan os.Signal, lg zerolog.Logger) int {
	srv, cleanup, err := build()
	if err != nil {
		lg.Error().Err(err).Msg("bootstrap failed")
		return 1
	}
	defer cleanup()

	select {
	case err := <-serve(srv, lg):
		lg.Error().Err(err).Msg("listener failed")
		return 1
	case sig := <-sigCh:
		lg.Info().Str("signal", sig.String()).Dur("grace", shutdownGrace).Msg("draining reset-service")
	}

	if err := drain(srv, sigCh); err != nil {
		lg.Error().Err(err).Msg("drain incomplete; closing connections")
		_ = srv.Close()
	}

	lg.Info().Msg("reset-service stopped")
	return 0
}

// serve reports listener failures. A clean Shutdown sends nothing.
func serve(srv httpServer, lg zerolog.Logger) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		lg.Info().Str("addr", srv.Addr()).Msg("reset-service listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	return errCh
}

func drain(srv httpServer, sigCh <-chan os.Signal) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	return srv.Shutdown(ctx)
}

func buildFromBootstrap() (httpServer, func(), error) {
	srv, cleanup, err := bootstrap.NewServer()
	if err != nil {
		return nil, nil, err
	}
	return realServer{srv}, cleanup, nil
}

func main() {
	logger.Init()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	os.Exit(Run(buildFromBootstrap, sigCh, zlog.Logger))
}
