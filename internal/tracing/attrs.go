package tracing

// Span attribute keys.
const (
	AttrSessionKey     = "session.key"
	AttrCommandID      = "command.id"
	AttrCommandName    = "command.name"
	AttrCommandOutcome = "command.outcome"

	AttrHTTPMethod   = "http.method"
	AttrHTTPRoute    = "http.route"
	AttrHTTPStatus   = "http.status_code"
	AttrRetryAttempt = "retry.attempt"

	AttrErrorMessage = "error.message"
)

// Span names.
const (
	SpanRunExclusive   = "coordinator.run_exclusive"
	SpanExecutorPrefix = "executor."
	SpanAgentPrefix    = "agent."
)

// Span event names.
const (
	EventSupersededPrevious = "command.superseded_previous"
	EventRetry              = "transport.retry"
)
