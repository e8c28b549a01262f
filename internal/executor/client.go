package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/deskctl/internal/command"
	"github.com/zjrosen/deskctl/internal/log"
	"github.com/zjrosen/deskctl/internal/retry"
	"github.com/zjrosen/deskctl/internal/tracing"
)

const (
	// DefaultRequestTimeout bounds a single attempt.
	DefaultRequestTimeout = 30 * time.Second

	// maxResponseBytes caps any response body read into memory.
	maxResponseBytes = 64 << 20
)

// ClientConfig configures a Client.
type ClientConfig struct {
	// BaseURL is the agent root, e.g. "http://192.168.1.20:5000".
	BaseURL string
	// Token is sent as "Authorization: Bearer <token>".
	Token string
	// RequestTimeout bounds each attempt. Zero means DefaultRequestTimeout.
	RequestTimeout time.Duration
	// Policy is the retry policy. Zero fields take retry defaults.
	Policy retry.Policy
	// HTTPClient defaults to a client with its own connection pool.
	HTTPClient *http.Client
	// Tracer defaults to the global otel tracer.
	Tracer trace.Tracer
}

// Client talks to the agent over HTTP. Each call is one retry sequence and
// each attempt is one HTTP request. Connections are pooled by the underlying
// http.Client independently of retries.
type Client struct {
	base    *url.URL
	token   string
	timeout time.Duration
	http    *http.Client
	tracer  trace.Tracer

	mu     sync.RWMutex
	policy retry.Policy
}

var _ Agent = (*Client)(nil)

// NewClient validates cfg and builds a Client.
func NewClient(cfg ClientConfig) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse agent url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("agent url must be http or https, got %q", cfg.BaseURL)
	}

	c := &Client{
		base:    base,
		token:   cfg.Token,
		timeout: cfg.RequestTimeout,
		http:    cfg.HTTPClient,
		tracer:  cfg.Tracer,
		policy:  cfg.Policy,
	}
	if c.timeout <= 0 {
		c.timeout = DefaultRequestTimeout
	}
	if c.http == nil {
		c.http = &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()}
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer("github.com/zjrosen/deskctl/internal/executor")
	}
	return c, nil
}

// SetPolicy swaps the retry policy used by later calls.
func (c *Client) SetPolicy(p retry.Policy) {
	c.mu.Lock()
	c.policy = p
	c.mu.Unlock()
}

func (c *Client) currentPolicy() retry.Policy {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.policy
}

// Execute sends POST /command.
func (c *Client) Execute(ctx context.Context, name string, params map[string]any) (command.Result, error) {
	var res command.Result
	_, err := c.call(ctx, "execute", http.MethodPost, "/command", command.Request{Command: name, Params: params}, &res)
	return res, err
}

// Status sends GET /status.
func (c *Client) Status(ctx context.Context) (command.SystemStatus, error) {
	var st command.SystemStatus
	_, err := c.call(ctx, "status", http.MethodGet, "/status", nil, &st)
	return st, err
}

// Upload asks the agent to download req.URL into its upload directory.
func (c *Client) Upload(ctx context.Context, req command.UploadRequest) (command.Result, error) {
	var res command.Result
	_, err := c.call(ctx, "upload", http.MethodPost, "/upload", req, &res)
	return res, err
}

// Fetch downloads a file from the PC by absolute path.
func (c *Client) Fetch(ctx context.Context, filePath string) (*File, error) {
	resp, err := c.call(ctx, "fetch", http.MethodPost, "/getfile", command.FetchRequest{Path: filePath}, nil)
	if err != nil {
		return nil, err
	}
	return resp.file(path.Base(strings.ReplaceAll(filePath, `\`, "/"))), nil
}

// Screenshot downloads a screenshot produced by the screenshot command.
func (c *Client) Screenshot(ctx context.Context, name string) (*File, error) {
	resp, err := c.call(ctx, "screenshot", http.MethodGet, "/download/"+url.PathEscape(name), nil, nil)
	if err != nil {
		return nil, err
	}
	return resp.file(name), nil
}

type response struct {
	header http.Header
	body   []byte
}

func (r *response) file(fallback string) *File {
	name := fallback
	if _, params, err := mime.ParseMediaType(r.header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		name = params["filename"]
	}
	return &File{Name: name, Data: r.body}
}

// call runs one retried request. When out is non-nil the 2xx body is decoded
// into it.
func (c *Client) call(ctx context.Context, op, method, route string, in, out any) (*response, error) {
	ctx, span := c.tracer.Start(ctx, tracing.SpanExecutorPrefix+op, trace.WithAttributes(
		attribute.String(tracing.AttrHTTPMethod, method),
		attribute.String(tracing.AttrHTTPRoute, route),
	), trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return nil, fmt.Errorf("encode %s request: %w", op, err)
		}
	}

	policy := c.currentPolicy()
	userOnRetry := policy.OnRetry
	policy.OnRetry = func(attempt int, err error, delay time.Duration) {
		span.AddEvent(tracing.EventRetry, trace.WithAttributes(
			attribute.Int(tracing.AttrRetryAttempt, attempt),
			attribute.String(tracing.AttrErrorMessage, err.Error()),
		))
		if userOnRetry != nil {
			userOnRetry(attempt, err, delay)
		}
	}

	resp, err := retry.Do(ctx, policy, func(ctx context.Context, _ int) (*response, error) {
		return c.attempt(ctx, method, route, payload)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Debug(log.CatTransport, "agent request failed", "op", op, "route", route, "error", err)
		return nil, err
	}

	if out != nil {
		if err := json.Unmarshal(resp.body, out); err != nil {
			return nil, fmt.Errorf("decode %s response: %w", op, err)
		}
	}
	return resp, nil
}

func (c *Client) attempt(ctx context.Context, method, route string, payload []byte) (*response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+route, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	trace.SpanFromContext(ctx).SetAttributes(attribute.Int(tracing.AttrHTTPStatus, resp.StatusCode))

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &StatusError{Code: resp.StatusCode, Message: errorMessage(data)}
	}
	return &response{header: resp.Header, body: data}, nil
}

// errorMessage pulls a readable message out of an agent error body.
func errorMessage(body []byte) string {
	var fields struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &fields); err == nil {
		if fields.Message != "" {
			return fields.Message
		}
		if fields.Error != "" {
			return fields.Error
		}
	}
	return strings.TrimSpace(string(body))
}
