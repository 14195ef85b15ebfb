package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stdout)
		SetLevel("info")
	})
	return &buf
}

func TestInfoWritesJSONWithFields(t *testing.T) {
	buf := capture(t)

	Info("analysis.complete", map[string]any{"document_id": "doc-1", "keywords": 3})

	var payload map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &payload); err != nil {
		t.Fatalf("decode log json: %v (%s)", err, buf.String())
	}
	if payload["msg"] != "analysis.complete" {
		t.Fatalf("unexpected msg: %v", payload["msg"])
	}
	if payload["level"] != "info" {
		t.Fatalf("unexpected level: %v", payload["level"])
	}
	if payload["document_id"] != "doc-1" {
		t.Fatalf("unexpected document_id: %v", payload["document_id"])
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("missing ts field")
	}
}

func TestSetLevelFiltersDebug(t *testing.T) {
	buf := capture(t)

	Debug("hidden", nil)
	if buf.Len() != 0 {
		t.Fatalf("expected debug suppressed at info level, got %s", buf.String())
	}

	SetLevel("debug")
	Debug("shown", nil)
	if !strings.Contains(buf.String(), `"msg":"shown"`) {
		t.Fatalf("expected debug line, got %s", buf.String())
	}
}

func TestSetLevelUnknownFallsBackToInfo(t *testing.T) {
	buf := capture(t)

	SetLevel("chatty")
	Debug("hidden", nil)
	Warn("visible", nil)

	if strings.Contains(buf.String(), "hidden") {
		t.Fatalf("expected debug suppressed")
	}
	if !strings.Contains(buf.String(), `"level":"warning"`) {
		t.Fatalf("expected warning line, got %s", buf.String())
	}
}

func TestRequestIDRoundTripsThroughContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-7")
	if got := RequestID(ctx); got != "req-7" {
		t.Fatalf("RequestID = %q", got)
	}
	if got := RequestID(context.Background()); got != "" {
		t.Fatalf("expected empty id, got %q", got)
	}
}
