package logger_i

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestWith_FieldsLiveOnTheReturnedLogger(t *testing.T) {
	var buf bytes.Buffer
	old := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(old) })

	base := NewLogger("test")
	traced := base.With("traceId", "trace-123")

	// With does not mutate the receiver - callers have to use the
	// returned logger or the fields are lost
	base.Info("no fields here")
	if strings.Contains(buf.String(), "trace-123") {
		t.Errorf("Base logger picked up fields it was never given: %q", buf.String())
	}

	buf.Reset()
	traced.Info("field attached")
	if !strings.Contains(buf.String(), "traceId=trace-123") {
		t.Errorf("Derived logger did not attach traceId: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "component=test") {
		t.Errorf("Component tag lost on derived logger: %q", buf.String())
	}
}
