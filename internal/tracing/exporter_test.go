package tracing

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func readRecords(t *testing.T, path string) []SpanRecord {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var out []SpanRecord
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var rec SpanRecord
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec))
		out = append(out, rec)
	}
	require.NoError(t, sc.Err())
	return out
}

func TestNewFileExporter_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "traces.jsonl")

	exp, err := NewFileExporter(path)
	require.NoError(t, err)
	require.FileExists(t, path)
	require.NoError(t, exp.Shutdown(context.Background()))
}

func TestFileExporter_WritesAttributesStatusAndEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces.jsonl")
	exp, err := NewFileExporter(path)
	require.NoError(t, err)

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	_, span := tp.Tracer("test").Start(context.Background(), SpanRunExclusive)
	span.SetAttributes(
		attribute.String(AttrSessionKey, "chat-1"),
		attribute.String(AttrCommandOutcome, "failed"),
	)
	span.AddEvent(EventSupersededPrevious)
	span.RecordError(errors.New("boom"))
	span.SetStatus(codes.Error, "boom")
	span.End()

	require.NoError(t, exp.ExportSpans(context.Background(), recorder.Ended()))
	require.NoError(t, exp.Shutdown(context.Background()))

	records := readRecords(t, path)
	require.Len(t, records, 1)
	rec := records[0]
	require.Equal(t, "ERROR", rec.Status)
	require.Equal(t, "boom", rec.StatusMsg)
	require.Equal(t, "chat-1", rec.Attributes[AttrSessionKey])
	require.Len(t, rec.Events, 2)
	require.Equal(t, EventSupersededPrevious, rec.Events[0].Name)
	require.Equal(t, "exception", rec.Events[1].Name)
}

func TestFileExporter_ExportAfterShutdownFails(t *testing.T) {
	exp, err := NewFileExporter(filepath.Join(t.TempDir(), "t.jsonl"))
	require.NoError(t, err)
	require.NoError(t, exp.Shutdown(context.Background()))
	require.NoError(t, exp.Shutdown(context.Background()), "second shutdown is a no-op")

	err = exp.ExportSpans(context.Background(), nil)
	require.Error(t, err)
}
