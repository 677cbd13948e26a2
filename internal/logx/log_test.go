package logx

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestRedactor(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(NewRedactor(&buf))
	logger.Info().Str("access_token", "abc123").Str("waringmode", "open").Msg("test")
	if strings.Contains(buf.String(), "abc123") {
		t.Fatalf("token leaked to log: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "***redacted***") {
		t.Fatalf("redacted marker missing: %s", buf.String())
	}
	if !strings.Contains(buf.String(), `"waringmode":"open"`) {
		t.Fatalf("plain field lost: %s", buf.String())
	}
}

func TestNewLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "warn")
	l.Info().Msg("hidden")
	l.Warn().Msg("shown")
	if strings.Contains(buf.String(), "hidden") {
		t.Fatalf("info logged at warn level: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("warn missing: %s", buf.String())
	}
	if got := New(&buf, "nonsense").GetLevel(); got != zerolog.InfoLevel {
		t.Fatalf("level = %v, want info", got)
	}
}

func TestFrom(t *testing.T) {
	if got := From(context.Background()); got != &log.Logger {
		t.Fatalf("expected global logger fallback")
	}
	var buf bytes.Buffer
	l := zerolog.New(&buf)
	ctx := l.WithContext(context.Background())
	From(ctx).Info().Msg("ctx")
	if !strings.Contains(buf.String(), "ctx") {
		t.Fatalf("context logger not used: %s", buf.String())
	}
}

func TestBody(t *testing.T) {
	long := bytes.Repeat([]byte("a"), MaxBody+10)
	if got := Body(long); len(got) != MaxBody {
		t.Fatalf("len = %d, want %d", len(got), MaxBody)
	}
	if got := Body([]byte(`{"success":"1"}`)); got != `{"success":"1"}` {
		t.Fatalf("short body changed: %q", got)
	}
}
