package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
)

type fakeServer struct {
	listenErr   error
	shutdownErr error

	// blockShutdown makes Shutdown wait for its context like a slow drain.
	blockShutdown bool

	listenCalled   atomic.Bool
	shutdownCalled atomic.Bool
	closeCalled    atomic.Bool
}

func (f *fakeServer) ListenAndServe() error {
	f.listenCalled.Store(true)
	return f.listenErr
}

func (f *fakeServer) Shutdown(ctx context.Context) error {
	f.shutdownCalled.Store(true)
	if f.blockShutdown {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.shutdownErr
}

func (f *fakeServer) Close() error {
	f.closeCalled.Store(true)
	return nil
}

func (f *fakeServer) Addr() string { return ":0" }

func signalled() chan os.Signal {
	ch := make(chan os.Signal, 1)
	ch <- os.Interrupt
	return ch
}

func TestRun_BootstrapFailure(t *testing.T) {
	build := func() (httpServer, func(), error) {
		return nil, nil, errors.New("missing required env vars")
	}

	if got := Run(build, make(chan os.Signal), zerolog.Nop()); got != 1 {
		t.Fatalf("expected exit 1, got %d", got)
	}
}

func TestRun_GracefulShutdown(t *testing.T) {
	fs := &fakeServer{listenErr: http.ErrServerClosed}
	cleaned := false
	build := func() (httpServer, func(), error) {
		return fs, func() { cleaned = true }, nil
	}

	if got := Run(build, signalled(), zerolog.Nop()); got != 0 {
		t.Fatalf("expected exit 0, got %d", got)
	}
	if !fs.shutdownCalled.Load() {
		t.Fatalf("expected Shutdown")
	}
	if fs.closeCalled.Load() {
		t.Fatalf("did not expect Close after a clean shutdown")
	}
	if !cleaned {
		t.Fatalf("expected cleanup")
	}
}

func TestRun_ListenerFailure(t *testing.T) {
	fs := &fakeServer{listenErr: errors.New("listen tcp :8080: bind: address already in use")}
	cleaned := false
	build := func() (httpServer, func(), error) {
		return fs, func() { cleaned = true }, nil
	}

	if got := Run(build, make(chan os.Signal), zerolog.Nop()); got != 1 {
		t.Fatalf("expected exit 1, got %d", got)
	}
	if fs.shutdownCalled.Load() {
		t.Fatalf("did not expect Shutdown after a listener failure")
	}
	if !cleaned {
		t.Fatalf("expected cleanup")
	}
}

func TestRun_ShutdownFailureForcesClose(t *testing.T) {
	fs := &fakeServer{listenErr: http.ErrServerClosed, shutdownErr: context.DeadlineExceeded}
	build := func() (httpServer, func(), error) {
		return fs, func() {}, nil
	}

	_ = Run(build, signalled(), zerolog.Nop())

	if !fs.closeCalled.Load() {
		t.Fatalf("expected Close when Shutdown fails")
	}
}

func TestRun_SecondSignalAbortsDrain(t *testing.T) {
	fs := &fakeServer{listenErr: http.ErrServerClosed, blockShutdown: true}
	build := func() (httpServer, func(), error) {
		return fs, func() {}, nil
	}

	sigCh := make(chan os.Signal, 2)
	sigCh <- os.Interrupt
	sigCh <- os.Interrupt

	if got := Run(build, sigCh, zerolog.Nop()); got != 0 {
		t.Fatalf("expected exit 0, got %d", got)
	}
	if !fs.closeCalled.Load() {
		t.Fatalf("expected Close after the drain was aborted")
	}
}
