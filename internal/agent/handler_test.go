package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/deskctl/internal/command"
)

const testToken = "0123456789abcdef0123456789abcdef"

type stubSystem struct {
	calls  []command.Request
	result command.Result
	status command.SystemStatus
	err    error
}

func (s *stubSystem) Execute(_ context.Context, name string, params map[string]any) command.Result {
	s.calls = append(s.calls, command.Request{Command: name, Params: params})
	return s.result
}

func (s *stubSystem) Status(context.Context) (command.SystemStatus, error) {
	return s.status, s.err
}

func newTestHandler(t *testing.T, sys System, mutate ...func(*HandlerConfig)) (*Handler, HandlerConfig) {
	t.Helper()
	cfg := HandlerConfig{
		Token:         testToken,
		System:        sys,
		UploadDir:     filepath.Join(t.TempDir(), "uploads"),
		ScreenshotDir: t.TempDir(),
	}
	for _, m := range mutate {
		m(&cfg)
	}
	return NewHandler(cfg), cfg
}

func do(h *Handler, method, path, body string, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if authed {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, req)
	return w
}

func decodeResult(t *testing.T, w *httptest.ResponseRecorder) command.Result {
	t.Helper()
	var res command.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func TestHandler_HealthIsPublic(t *testing.T) {
	h, _ := newTestHandler(t, &stubSystem{})

	w := do(h, http.MethodGet, "/", "", false)

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"online","service":"deskctl agent"}`, w.Body.String())
}

func TestHandler_Auth(t *testing.T) {
	h, _ := newTestHandler(t, &stubSystem{})

	t.Run("missing", func(t *testing.T) {
		w := do(h, http.MethodGet, "/status", "", false)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.Equal(t, "Missing auth token", decodeResult(t, w).Message)
	})

	t.Run("invalid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/status", nil)
		req.Header.Set("Authorization", "Bearer nope")
		w := httptest.NewRecorder()
		h.Routes().ServeHTTP(w, req)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.Equal(t, "Invalid auth token", decodeResult(t, w).Message)
	})

	t.Run("raw token without scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/status", nil)
		req.Header.Set("Authorization", testToken)
		w := httptest.NewRecorder()
		h.Routes().ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	})
}

func TestHandler_Status(t *testing.T) {
	sys := &stubSystem{status: command.SystemStatus{Hostname: "desk", OS: "Linux 6.8", CPU: 3.5, Memory: 41.2, Uptime: "5h 2m"}}
	h, _ := newTestHandler(t, sys)

	w := do(h, http.MethodGet, "/status", "", true)

	require.Equal(t, http.StatusOK, w.Code)
	var st command.SystemStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
	require.Equal(t, sys.status, st)
}

func TestHandler_StatusError(t *testing.T) {
	h, _ := newTestHandler(t, &stubSystem{err: fmt.Errorf("read host info: boom")})

	w := do(h, http.MethodGet, "/status", "", true)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.False(t, decodeResult(t, w).Succeeded())
}

func TestHandler_Command(t *testing.T) {
	sys := &stubSystem{result: command.OK("🔊 Volume set to 75%")}
	h, _ := newTestHandler(t, sys)

	w := do(h, http.MethodPost, "/command", `{"command":"volume","params":{"level":75}}`, true)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "🔊 Volume set to 75%", decodeResult(t, w).Message)
	require.Len(t, sys.calls, 1)
	require.Equal(t, command.Volume, sys.calls[0].Command)
	require.Equal(t, float64(75), sys.calls[0].Params["level"])
}

func TestHandler_CommandValidation(t *testing.T) {
	h, _ := newTestHandler(t, &stubSystem{})

	require.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/command", `not json`, true).Code)
	require.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/command", `{"params":{}}`, true).Code)
}

func TestHandler_Upload(t *testing.T) {
	src := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("quarterly numbers"))
	}))
	defer src.Close()

	h, cfg := newTestHandler(t, &stubSystem{})

	body := fmt.Sprintf(`{"filename":"../../etc/report.txt","url":%q,"size":17}`, src.URL)
	w := do(h, http.MethodPost, "/upload", body, true)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decodeResult(t, w)
	want := filepath.Join(cfg.UploadDir, "report.txt")
	require.Equal(t, want, res.String("path"), "filename is reduced to its base name")

	data, err := os.ReadFile(want)
	require.NoError(t, err)
	require.Equal(t, "quarterly numbers", string(data))
}

func TestHandler_UploadTooLarge(t *testing.T) {
	src := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(bytes.Repeat([]byte("x"), 64))
	}))
	defer src.Close()

	h, cfg := newTestHandler(t, &stubSystem{}, func(c *HandlerConfig) { c.MaxUploadBytes = 16 })

	t.Run("declared size", func(t *testing.T) {
		w := do(h, http.MethodPost, "/upload", fmt.Sprintf(`{"filename":"a.bin","url":%q,"size":64}`, src.URL), true)
		require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	})

	t.Run("actual size", func(t *testing.T) {
		w := do(h, http.MethodPost, "/upload", fmt.Sprintf(`{"filename":"b.bin","url":%q,"size":1}`, src.URL), true)
		require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		require.NoFileExists(t, filepath.Join(cfg.UploadDir, "b.bin"))
	})
}

func TestHandler_FailedUploadKeepsExistingFile(t *testing.T) {
	src := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write(bytes.Repeat([]byte("x"), 2048))
	}))
	defer src.Close()

	h, cfg := newTestHandler(t, &stubSystem{}, func(c *HandlerConfig) { c.MaxUploadBytes = 1024 })
	existing := filepath.Join(cfg.UploadDir, "report.pdf")
	require.NoError(t, os.MkdirAll(cfg.UploadDir, 0o750))
	require.NoError(t, os.WriteFile(existing, []byte("precious"), 0o600))

	tests := []struct {
		name string
		url  string
		want int
	}{
		{"body over limit", src.URL + "/big", http.StatusRequestEntityTooLarge},
		{"source error", src.URL + "/missing", http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(h, http.MethodPost, "/upload", fmt.Sprintf(`{"filename":"report.pdf","url":%q,"size":1}`, tt.url), true)
			require.Equal(t, tt.want, w.Code, w.Body.String())

			data, err := os.ReadFile(existing)
			require.NoError(t, err)
			require.Equal(t, "precious", string(data))
		})
	}

	entries, err := os.ReadDir(cfg.UploadDir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no staging files left behind")
}

func TestHandler_UploadReplacesExistingFile(t *testing.T) {
	src := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("v2"))
	}))
	defer src.Close()

	h, cfg := newTestHandler(t, &stubSystem{})
	existing := filepath.Join(cfg.UploadDir, "notes.txt")
	require.NoError(t, os.MkdirAll(cfg.UploadDir, 0o750))
	require.NoError(t, os.WriteFile(existing, []byte("v1"), 0o600))

	w := do(h, http.MethodPost, "/upload", fmt.Sprintf(`{"filename":"notes.txt","url":%q,"size":2}`, src.URL), true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	require.Equal(t, "v2", string(data))
}

func TestHandler_UnresolvedDownloadRootsDenyAll(t *testing.T) {
	h, _ := newTestHandler(t, &stubSystem{}, func(c *HandlerConfig) { c.DownloadRoots = []string{t.TempDir()} })
	// Every configured root failed to resolve.
	h.downloadRoots = nil

	file := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(file, []byte("hello"), 0o600))

	w := do(h, http.MethodPost, "/getfile", fmt.Sprintf(`{"path":%q}`, file), true)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandler_GetFile(t *testing.T) {
	root := t.TempDir()
	inside := filepath.Join(root, "notes.txt")
	require.NoError(t, os.WriteFile(inside, []byte("hello"), 0o600))

	outsideDir := t.TempDir()
	outside := filepath.Join(outsideDir, "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("nope"), 0o600))

	h, _ := newTestHandler(t, &stubSystem{}, func(c *HandlerConfig) { c.DownloadRoots = []string{root} })

	t.Run("inside root", func(t *testing.T) {
		w := do(h, http.MethodPost, "/getfile", fmt.Sprintf(`{"path":%q}`, inside), true)
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "hello", w.Body.String())
		assert.Contains(t, w.Header().Get("Content-Disposition"), `filename=notes.txt`)
	})

	t.Run("outside root", func(t *testing.T) {
		w := do(h, http.MethodPost, "/getfile", fmt.Sprintf(`{"path":%q}`, outside), true)
		require.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("traversal out of root", func(t *testing.T) {
		sneaky := filepath.Join(root, "..", filepath.Base(outsideDir), "secret.txt")
		w := do(h, http.MethodPost, "/getfile", fmt.Sprintf(`{"path":%q}`, sneaky), true)
		require.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("missing", func(t *testing.T) {
		w := do(h, http.MethodPost, "/getfile", fmt.Sprintf(`{"path":%q}`, filepath.Join(root, "gone.txt")), true)
		require.Equal(t, http.StatusNotFound, w.Code)
		require.Equal(t, "File not found", decodeResult(t, w).Message)
	})

	t.Run("directory", func(t *testing.T) {
		w := do(h, http.MethodPost, "/getfile", fmt.Sprintf(`{"path":%q}`, root), true)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("empty path", func(t *testing.T) {
		w := do(h, http.MethodPost, "/getfile", `{"path":"  "}`, true)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_Download(t *testing.T) {
	h, cfg := newTestHandler(t, &stubSystem{})
	require.NoError(t, os.WriteFile(filepath.Join(cfg.ScreenshotDir, "screenshot_1.png"), []byte("png"), 0o600))

	w := do(h, http.MethodGet, "/download/screenshot_1.png", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "png", w.Body.String())

	w = do(h, http.MethodGet, "/download/missing.png", "", true)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestMaskToken(t *testing.T) {
	require.Equal(t, "0123456789…cdef", MaskToken(testToken))
	require.Equal(t, "*****", MaskToken("short"))
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"report.pdf":            "report.pdf",
		"../../etc/passwd":      "passwd",
		`C:\Users\me\photo.jpg`: "photo.jpg",
		"..":                    "",
		"":                      "",
		"/":                     "",
	}
	for in, want := range tests {
		require.Equal(t, want, sanitizeFilename(in), "input %q", in)
	}
}
