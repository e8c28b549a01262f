// Package executor is the bot's view of the PC agent: a Command Executor
// contract and the HTTP client that implements it.
package executor

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/zjrosen/deskctl/internal/command"
	"github.com/zjrosen/deskctl/internal/retry"
)

// Executor turns a command name and parameters into a Result. Transport
// failures come back as errors; failures reported by the agent come back as
// a Result with status error.
type Executor interface {
	Execute(ctx context.Context, name string, params map[string]any) (command.Result, error)
}

// Agent is the full surface of the PC agent used by the bot.
type Agent interface {
	Executor
	Status(ctx context.Context) (command.SystemStatus, error)
	Upload(ctx context.Context, req command.UploadRequest) (command.Result, error)
	Fetch(ctx context.Context, path string) (*File, error)
	Screenshot(ctx context.Context, name string) (*File, error)
}

// File is a file body returned by the agent.
type File struct {
	Name string
	Data []byte
}

// ErrUnauthorized means the agent rejected the bearer token.
var ErrUnauthorized = errors.New("agent rejected auth token")

// StatusError is a non-2xx agent response other than 401.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("agent returned %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("agent returned %d: %s", e.Code, e.Message)
}

// Temporary reports whether the status is worth retrying.
func (e *StatusError) Temporary() bool {
	switch e.Code {
	case http.StatusRequestTimeout, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// User-facing messages for transport failures.
const (
	MsgUnreachable  = "PC agent is not running. Start it with `deskctl agent`."
	MsgTimeout      = "Request timed out. Try again."
	MsgUnauthorized = "Authentication failed. Check auth_token."
)

// ErrorResult converts a transport error into the error Result shown to the
// operator.
func ErrorResult(err error) command.Result {
	var se *StatusError
	switch {
	case errors.Is(err, ErrUnauthorized):
		return command.Fail(MsgUnauthorized)
	case retry.IsUnreachable(err):
		return command.Fail(MsgUnreachable)
	case retry.IsTimeout(err):
		return command.Fail(MsgTimeout)
	case errors.As(err, &se):
		if se.Message != "" {
			return command.Fail(se.Message)
		}
		return command.Fail("Request failed: " + se.Error())
	default:
		return command.Fail("Request failed: " + err.Error())
	}
}
