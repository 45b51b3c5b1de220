package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestTextLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, WarnLevel)

	l.Debug("should not appear")
	l.Info("should not appear")
	l.Warn("warn line")
	l.Error("error line")

	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Errorf("below-threshold lines leaked: %q", out)
	}
	if !strings.Contains(out, "WARN warn line") || !strings.Contains(out, "ERROR error line") {
		t.Errorf("expected warn and error lines, got %q", out)
	}
}

func TestTextLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, InfoLevel).With("component", "board")

	l.Info("saved", "count", 3)

	out := buf.String()
	for _, want := range []string{"component=board", "count=3", "saved"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestFromContext_Fallback(t *testing.T) {
	if l := FromContext(context.Background()); l == nil {
		t.Fatal("FromContext should never return nil")
	}

	var buf bytes.Buffer
	base := New(&buf, InfoLevel)
	ctx := NewContext(context.Background(), base)
	FromContext(ctx).Info("via context")
	if !strings.Contains(buf.String(), "via context") {
		t.Errorf("context logger not used: %q", buf.String())
	}
}
