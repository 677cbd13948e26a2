package logx

import (
	"context"
	"io"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// MaxBody is the largest body prefix written to a log field.
const MaxBody = 1024

var fieldRE = regexp.MustCompile(`(?i)"([^"\\]*?(token|secret|password|authorization)[^"\\]*)":"[^"]*"`)

// NewRedactor returns a writer that blanks credential-like JSON fields.
func NewRedactor(w io.Writer) io.Writer {
	return &redactor{w: w}
}

type redactor struct {
	w io.Writer
}

func (r *redactor) Write(p []byte) (int, error) {
	s := fieldRE.ReplaceAllStringFunc(string(p), func(m string) string {
		parts := strings.SplitN(m, ":", 2)
		if len(parts) != 2 {
			return m
		}
		return parts[0] + ":\"***redacted***\""
	})
	if _, err := r.w.Write([]byte(s)); err != nil {
		return 0, err
	}
	return len(p), nil
}

// New builds the process logger: JSON lines with timestamps, redacted.
func New(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(NewRedactor(w)).Level(lvl).With().Timestamp().Logger()
}

// From returns the logger attached to ctx, falling back to the global one.
func From(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
			return l
		}
	}
	return &log.Logger
}

// Body returns b as a string, cut to MaxBody bytes.
func Body(b []byte) string {
	if len(b) > MaxBody {
		b = b[:MaxBody]
	}
	return string(b)
}
