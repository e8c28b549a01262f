// Package agent is the PC-side HTTP endpoint that executes commands sent by
// the bot. Every route except the health check requires the bearer token.
package agent

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/deskctl/internal/command"
	"github.com/zjrosen/deskctl/internal/log"
	"github.com/zjrosen/deskctl/internal/tracing"
)

// DefaultMaxUploadBytes matches the chat API's bot download limit.
const DefaultMaxUploadBytes = 20 << 20

// HandlerConfig configures a Handler.
type HandlerConfig struct {
	// Token is the shared bearer token (required).
	Token string
	// System executes commands (required).
	System System
	// UploadDir receives files sent from the chat.
	UploadDir string
	// ScreenshotDir is served by GET /download/{filename}.
	ScreenshotDir string
	// DownloadRoots limits POST /getfile. Empty allows any path.
	DownloadRoots []string
	// MaxUploadBytes caps one upload. Zero means DefaultMaxUploadBytes.
	MaxUploadBytes int64
	// HTTPClient fetches upload URLs.
	HTTPClient *http.Client
	// Tracer defaults to the global otel tracer.
	Tracer trace.Tracer
}

// Handler serves the agent routes.
type Handler struct {
	token          []byte
	system         System
	uploadDir      string
	screenshotDir  string
	downloadRoots  []string
	restricted     bool
	maxUploadBytes int64
	http           *http.Client
	tracer         trace.Tracer
}

// NewHandler builds a Handler from cfg.
func NewHandler(cfg HandlerConfig) *Handler {
	h := &Handler{
		token:          []byte(cfg.Token),
		system:         cfg.System,
		uploadDir:      cfg.UploadDir,
		screenshotDir:  cfg.ScreenshotDir,
		maxUploadBytes: cfg.MaxUploadBytes,
		http:           cfg.HTTPClient,
		tracer:         cfg.Tracer,
		restricted:     len(cfg.DownloadRoots) > 0,
	}
	for _, root := range cfg.DownloadRoots {
		abs, err := filepath.Abs(root)
		if err != nil {
			log.ErrorErr(log.CatAgent, "ignoring download root", err, "root", root)
			continue
		}
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			abs = resolved
		}
		h.downloadRoots = append(h.downloadRoots, abs)
	}
	if h.maxUploadBytes <= 0 {
		h.maxUploadBytes = DefaultMaxUploadBytes
	}
	if h.http == nil {
		h.http = &http.Client{Timeout: 5 * time.Minute}
	}
	if h.tracer == nil {
		h.tracer = otel.Tracer("github.com/zjrosen/deskctl/internal/agent")
	}
	return h
}

// Routes returns the agent mux.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.Health)

	mux.Handle("GET /status", h.authed("status", h.Status))
	mux.Handle("POST /command", h.authed("command", h.Command))
	mux.Handle("POST /upload", h.authed("upload", h.Upload))
	mux.Handle("POST /getfile", h.authed("getfile", h.GetFile))
	mux.Handle("GET /download/{filename}", h.authed("download", h.Download))

	return mux
}

// authed wraps next with bearer-token checks and a server span.
func (h *Handler) authed(route string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := h.tracer.Start(r.Context(), tracing.SpanAgentPrefix+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String(tracing.AttrHTTPMethod, r.Method),
				attribute.String(tracing.AttrHTTPRoute, r.URL.Path),
			))
		defer span.End()

		header := r.Header.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" {
			log.Warn(log.CatAgent, "missing auth token", "remote", r.RemoteAddr, "route", route)
			writeResult(w, http.StatusUnauthorized, command.Fail("Missing auth token"))
			return
		}
		if subtle.ConstantTimeCompare([]byte(token), h.token) != 1 {
			log.Warn(log.CatAgent, "invalid auth token", "remote", r.RemoteAddr, "route", route, "token", MaskToken(token))
			writeResult(w, http.StatusUnauthorized, command.Fail("Invalid auth token"))
			return
		}

		next(w, r.WithContext(ctx))
	})
}

// Health is the unauthenticated liveness probe.
// GET /
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "online", "service": "deskctl agent"})
}

// Status reports host metrics.
// GET /status
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	st, err := h.system.Status(r.Context())
	if err != nil {
		log.ErrorErr(log.CatAgent, "status failed", err)
		writeResult(w, http.StatusInternalServerError, command.Fail(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Command executes a named command. Command failures are reported in the
// body with status 200.
// POST /command
func (h *Handler) Command(w http.ResponseWriter, r *http.Request) {
	var req command.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeResult(w, http.StatusBadRequest, command.Fail("Invalid JSON body"))
		return
	}
	if req.Command == "" {
		writeResult(w, http.StatusBadRequest, command.Fail("command is required"))
		return
	}

	log.Info(log.CatAgent, "command received", "command", req.Command)
	res := h.system.Execute(r.Context(), req.Command, req.Params)
	log.Info(log.CatAgent, "command finished", "command", req.Command, "status", string(res.Status))

	writeResult(w, http.StatusOK, res)
}

// Upload downloads a file from the given URL into the upload directory.
// POST /upload
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	var req command.UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeResult(w, http.StatusBadRequest, command.Fail("Invalid JSON body"))
		return
	}

	name := sanitizeFilename(req.Filename)
	if name == "" || req.URL == "" {
		writeResult(w, http.StatusBadRequest, command.Fail("filename and url are required"))
		return
	}
	if req.Size > h.maxUploadBytes {
		writeResult(w, http.StatusRequestEntityTooLarge, command.Fail(fmt.Sprintf("File too large (max %d MB)", h.maxUploadBytes>>20)))
		return
	}

	dest := filepath.Join(h.uploadDir, name)
	if err := h.download(r.Context(), req.URL, dest); err != nil {
		log.ErrorErr(log.CatAgent, "upload failed", err, "file", name)
		status := http.StatusUnprocessableEntity
		if errors.Is(err, errTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeResult(w, status, command.Fail(err.Error()))
		return
	}

	log.Info(log.CatAgent, "file saved", "path", dest)
	writeResult(w, http.StatusOK, command.OK("📥 File saved").With("path", dest))
}

var errTooLarge = errors.New("file exceeds upload limit")

func (h *Handler) download(ctx context.Context, url, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build download request: %w", err)
	}
	resp, err := h.http.Do(req)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download: source returned %d", resp.StatusCode)
	}

	// Stage next to dest so a failed upload never touches an existing file.
	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*")
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	tmpName := tmp.Name()

	n, err := io.Copy(tmp, io.LimitReader(resp.Body, h.maxUploadBytes+1))
	closeErr := tmp.Close()
	switch {
	case err != nil:
		err = fmt.Errorf("write file: %w", err)
	case n > h.maxUploadBytes:
		err = errTooLarge
	case closeErr != nil:
		err = fmt.Errorf("close file: %w", closeErr)
	default:
		err = os.Rename(tmpName, dest)
		if err != nil {
			err = fmt.Errorf("save file: %w", err)
		}
	}
	if err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

// GetFile streams a file from disk by absolute path.
// POST /getfile
func (h *Handler) GetFile(w http.ResponseWriter, r *http.Request) {
	var req command.FetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Path) == "" {
		writeResult(w, http.StatusBadRequest, command.Fail("path is required"))
		return
	}

	path, err := filepath.Abs(strings.TrimSpace(req.Path))
	if err != nil {
		writeResult(w, http.StatusBadRequest, command.Fail("Invalid path"))
		return
	}
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	if !h.allowed(path) {
		log.Warn(log.CatAgent, "download outside allowed roots", "path", path)
		writeResult(w, http.StatusForbidden, command.Fail("Access denied"))
		return
	}

	h.serveFile(w, r, path)
}

// Download serves a screenshot by file name.
// GET /download/{filename}
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("filename")
	if name != sanitizeFilename(name) || name == "" {
		writeResult(w, http.StatusBadRequest, command.Fail("Invalid file name"))
		return
	}
	h.serveFile(w, r, filepath.Join(h.screenshotDir, name))
}

func (h *Handler) serveFile(w http.ResponseWriter, r *http.Request, path string) {
	f, err := os.Open(path) // #nosec G304 -- callers restrict path
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			writeResult(w, http.StatusNotFound, command.Fail("File not found"))
			return
		}
		writeResult(w, http.StatusInternalServerError, command.Fail(err.Error()))
		return
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		writeResult(w, http.StatusInternalServerError, command.Fail(err.Error()))
		return
	}
	if st.IsDir() {
		writeResult(w, http.StatusBadRequest, command.Fail("Not a file"))
		return
	}

	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": st.Name()}))
	http.ServeContent(w, r, st.Name(), st.ModTime(), f)
}

func (h *Handler) allowed(path string) bool {
	if !h.restricted {
		return true
	}
	// A restricted handler whose roots all failed to resolve denies everything.
	for _, root := range h.downloadRoots {
		rel, err := filepath.Rel(root, path)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// sanitizeFilename reduces name to a plain base name, or "" if nothing safe
// remains.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	switch name {
	case ".", "..", "/", "":
		return ""
	}
	return name
}

// MaskToken shows the first 10 and last 4 characters of a token.
func MaskToken(token string) string {
	if len(token) <= 14 {
		return strings.Repeat("*", len(token))
	}
	return token[:10] + "…" + token[len(token)-4:]
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error(log.CatAgent, "failed to encode JSON response", "error", err)
	}
}

func writeResult(w http.ResponseWriter, status int, res command.Result) {
	writeJSON(w, status, res)
}
