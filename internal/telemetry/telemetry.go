package telemetry

import (
	"context"

	"warnmode/internal/logx"
)

// Event logs a telemetry event with optional fields. Callers must leave out
// request payloads.
func Event(ctx context.Context, name string, fields map[string]string) {
	e := logx.From(ctx).Info().Str("event", name)
	for k, v := range fields {
		e = e.Str(k, v)
	}
	e.Msg("telemetry")
}
