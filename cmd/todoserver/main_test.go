package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeServer struct {
	listenErr error
	block     chan struct{}
	shutdown  chan struct{}
}

func (f *fakeServer) Listen(string) error {
	if f.listenErr != nil {
		return f.listenErr
	}
	<-f.block
	return nil
}

func (f *fakeServer) Shutdown(context.Context) error {
	close(f.shutdown)
	close(f.block)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestServe_ListenFailureIsReturned(t *testing.T) {
	srv := &fakeServer{listenErr: errors.New("address already in use"), shutdown: make(chan struct{})}

	done := make(chan error, 1)
	go func() { done <- serve(srv, ":3000", make(chan os.Signal), discardLogger()) }()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "address already in use")
	case <-time.After(time.Second):
		t.Fatal("serve did not return after Listen failed")
	}

	select {
	case <-srv.shutdown:
		t.Fatal("Shutdown called after a failed Listen")
	default:
	}
}

func TestServe_SignalShutsDown(t *testing.T) {
	srv := &fakeServer{block: make(chan struct{}), shutdown: make(chan struct{})}
	quit := make(chan os.Signal, 1)
	quit <- syscall.SIGTERM

	require.NoError(t, serve(srv, ":3000", quit, discardLogger()))

	select {
	case <-srv.shutdown:
	default:
		t.Fatal("Shutdown was not called")
	}
}
