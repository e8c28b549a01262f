package agent

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestServer_StartStop(t *testing.T) {
	h, _ := newTestHandler(t, &stubSystem{})
	srv, err := NewServer(ServerConfig{Addr: "127.0.0.1:0", Handler: h})
	require.NoError(t, err)
	require.NotZero(t, srv.Port())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/", srv.Port()))
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(ctx))
	require.True(t, errors.Is(<-errCh, http.ErrServerClosed))
}

func TestNewServer_AddressInUse(t *testing.T) {
	h, _ := newTestHandler(t, &stubSystem{})
	first, err := NewServer(ServerConfig{Addr: "127.0.0.1:0", Handler: h})
	require.NoError(t, err)
	t.Cleanup(func() { _ = first.listener.Close() })

	_, err = NewServer(ServerConfig{Addr: first.Addr(), Handler: h})
	require.ErrorContains(t, err, "failed to listen")
}
