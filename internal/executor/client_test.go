package executor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/deskctl/internal/command"
	"github.com/zjrosen/deskctl/internal/retry"
)

const testToken = "s3cret"

func fastPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 4 * time.Millisecond}
}

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(ClientConfig{
		BaseURL:        srv.URL + "/",
		Token:          testToken,
		RequestTimeout: time.Second,
		Policy:         fastPolicy(),
	})
	require.NoError(t, err)
	return c
}

func TestNewClient_RejectsBadURL(t *testing.T) {
	_, err := NewClient(ClientConfig{BaseURL: "ftp://pc"})
	require.ErrorContains(t, err, "http or https")
}

func TestClient_Execute(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/command", r.URL.Path)
		assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))

		var req command.Request
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, command.Volume, req.Command)
		assert.Equal(t, float64(50), req.Params["level"])

		_, _ = w.Write([]byte(`{"status":"success","message":"Volume set to 50%"}`))
	}))

	res, err := c.Execute(context.Background(), command.Volume, map[string]any{"level": 50})
	require.NoError(t, err)
	require.True(t, res.Succeeded())
	require.Equal(t, "Volume set to 50%", res.Message)
}

func TestClient_RetriesTemporaryStatus(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"status":"success","message":"Screen locked"}`))
	}))

	res, err := c.Execute(context.Background(), command.Lock, nil)
	require.NoError(t, err)
	require.Equal(t, "Screen locked", res.Message)
	require.Equal(t, int32(3), calls.Load())
}

func TestClient_UnauthorizedIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status":"error","message":"Invalid auth token"}`))
	}))

	_, err := c.Execute(context.Background(), command.Lock, nil)
	require.ErrorIs(t, err, ErrUnauthorized)
	require.Equal(t, int32(1), calls.Load())
	require.Equal(t, MsgUnauthorized, ErrorResult(err).Message)
}

func TestClient_PermanentStatusError(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status":"error","message":"File not found"}`))
	}))

	_, err := c.Fetch(context.Background(), "/tmp/missing.txt")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, http.StatusNotFound, se.Code)
	require.Equal(t, "File not found", se.Message)
	require.Equal(t, int32(1), calls.Load())
	require.Equal(t, "File not found", ErrorResult(err).Message)
}

func TestClient_PerAttemptTimeoutIsRetried(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	c, err := NewClient(ClientConfig{BaseURL: srv.URL, Token: testToken, RequestTimeout: 20 * time.Millisecond, Policy: fastPolicy()})
	require.NoError(t, err)

	_, err = c.Execute(context.Background(), command.Battery, nil)
	require.Error(t, err)
	require.True(t, retry.IsTimeout(err))
	require.Equal(t, int32(3), calls.Load())
	require.Equal(t, MsgTimeout, ErrorResult(err).Message)
}

func TestClient_UnreachableAgent(t *testing.T) {
	// Grab a free port and close it so the dial is refused.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	var retries atomic.Int32
	policy := fastPolicy()
	policy.OnRetry = func(int, error, time.Duration) { retries.Add(1) }

	c, err := NewClient(ClientConfig{BaseURL: "http://" + addr, Policy: policy})
	require.NoError(t, err)

	_, err = c.Status(context.Background())
	require.Error(t, err)
	require.True(t, retry.IsUnreachable(err))
	require.Equal(t, int32(2), retries.Load(), "three attempts, two waits")
	require.Equal(t, MsgUnreachable, ErrorResult(err).Message)
}

func TestClient_CallerCancellationStopsRetries(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-r.Context().Done()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := c.Execute(ctx, command.Processes, nil)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, int32(1), calls.Load())
}

func TestClient_Status(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/status", r.URL.Path)
		_ = json.NewEncoder(w).Encode(command.SystemStatus{Hostname: "desk", OS: "linux 6.1", CPU: 12.5, Memory: 40, Uptime: "3h 12m"})
	}))

	st, err := c.Status(context.Background())
	require.NoError(t, err)
	require.Equal(t, "desk", st.Hostname)
	require.Equal(t, "3h 12m", st.Uptime)
}

func TestClient_Upload(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req command.UploadRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "report.pdf", req.Filename)
		assert.Equal(t, int64(1024), req.Size)
		_, _ = fmt.Fprintf(w, `{"status":"success","message":"Saved %s","path":"/home/me/Downloads/%s"}`, req.Filename, req.Filename)
	}))

	res, err := c.Upload(context.Background(), command.UploadRequest{Filename: "report.pdf", URL: "https://files/1", Size: 1024})
	require.NoError(t, err)
	require.Equal(t, "/home/me/Downloads/report.pdf", res.String("path"))
}

func TestClient_FetchUsesContentDisposition(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Disposition", `attachment; filename="notes.txt"`)
		_, _ = w.Write([]byte("hello"))
	}))

	f, err := c.Fetch(context.Background(), `C:\Users\me\other.txt`)
	require.NoError(t, err)
	require.Equal(t, "notes.txt", f.Name)
	require.Equal(t, []byte("hello"), f.Data)
}

func TestClient_Screenshot(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/download/screenshot_1.png", r.URL.Path)
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
	}))

	f, err := c.Screenshot(context.Background(), "screenshot_1.png")
	require.NoError(t, err)
	require.Equal(t, "screenshot_1.png", f.Name)
	require.Len(t, f.Data, 4)
}

func TestStatusError_Temporary(t *testing.T) {
	for code, want := range map[int]bool{408: true, 502: true, 503: true, 504: true, 500: false, 400: false, 404: false} {
		require.Equal(t, want, (&StatusError{Code: code}).Temporary(), "code %d", code)
	}
}

func TestErrorResult(t *testing.T) {
	refused := &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"unauthorized", fmt.Errorf("wrap: %w", ErrUnauthorized), MsgUnauthorized},
		{"unreachable", refused, MsgUnreachable},
		{"timeout", context.DeadlineExceeded, MsgTimeout},
		{"status without message", &StatusError{Code: 500}, "Request failed: agent returned 500 Internal Server Error"},
		{"other", errors.New("boom"), "Request failed: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ErrorResult(tt.err)
			require.False(t, res.Succeeded())
			require.Equal(t, tt.want, res.Message)
		})
	}
}
