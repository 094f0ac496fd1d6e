package httptransport

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeServer struct {
	listenErr error
	stop      chan struct{}
	shutdowns int
}

func newFakeServer(listenErr error) *fakeServer {
	return &fakeServer{listenErr: listenErr, stop: make(chan struct{})}
}

func (f *fakeServer) ListenAndServe() error {
	if f.listenErr != nil {
		return f.listenErr
	}
	<-f.stop
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(context.Context) error {
	f.shutdowns++
	close(f.stop)
	return nil
}

func TestServiceShutsDownOnCancel(t *testing.T) {
	srv := newFakeServer(nil)
	svc := NewService("api", srv, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("service did not stop")
	}
	require.Equal(t, 1, srv.shutdowns)
}

func TestServiceReturnsListenError(t *testing.T) {
	boom := errors.New("address in use")
	svc := NewService("api", newFakeServer(boom), 0)

	err := svc.Serve(context.Background())
	require.ErrorIs(t, err, boom)
	require.Equal(t, "api", svc.String())
}

func TestNewServerAppliesConfig(t *testing.T) {
	cfg := DefaultServerConfig(":0")
	srv := NewServer(cfg, http.NotFoundHandler())

	require.Equal(t, ":0", srv.Addr)
	require.Equal(t, cfg.ReadTimeout, srv.ReadTimeout)
	require.Equal(t, cfg.IdleTimeout, srv.IdleTimeout)
}
