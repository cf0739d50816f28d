package command

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"github.com/shandysiswandi/gotransfer/internal/pkg/config"
	"github.com/shandysiswandi/gotransfer/internal/pkg/goerror"
	"github.com/shandysiswandi/gotransfer/internal/pkg/instrument"
)

func getMaskKeys(cfg config.Config) map[string]struct{} {
	maskKeys := make(map[string]struct{})
	if cfg != nil {
		for _, field := range cfg.GetArray("instrument.log_mask_fields") {
			field = strings.TrimSpace(strings.ToLower(field))
			if field == "" {
				continue
			}
			maskKeys[field] = struct{}{}
		}
	}

	return maskKeys
}

// maskFlags hides flag values whose name contains a masked field, so
// "--password" and "--second-factor-secret" are both covered by "password"
// and "secret".
func maskFlags(flags map[string]string, maskKeys map[string]struct{}) map[string]string {
	for name := range flags {
		lower := strings.ToLower(name)
		for key := range maskKeys {
			if strings.Contains(lower, key) {
				flags[name] = "***"
				break
			}
		}
	}
	return flags
}

func middlewareObservability(cfg config.Config, ins instrument.Instrumentation) Middleware {
	if ins == nil {
		ins = instrument.NewNoop()
	}
	maskKeys := getMaskKeys(cfg)
	tracer := ins.Tracer("cli.command")
	meter := ins.Meter("cli.command")

	invocations, err := meter.Int64Counter("cli.command.invocations", metric.WithDescription("Number of command invocations"))
	if err != nil {
		slog.Error("failed to create command counter", "error", err)
	}

	duration, err := meter.Float64Histogram("cli.command.duration", metric.WithDescription("Command duration in milliseconds"))
	if err != nil {
		slog.Error("failed to create command duration histogram", "error", err)
	}

	return func(next Handler) Handler {
		return func(r *Request) (any, error) {
			path := r.Path()
			start := time.Now()

			ctx, span := tracer.Start(r.Context(), path)
			defer span.End()

			slog.InfoContext(ctx, "command received", "command", path, "flags", maskFlags(r.flags(), maskKeys))

			resp, err := next(r.WithContext(ctx))

			result := "ok"
			if err != nil {
				result = "error"
				span.RecordError(err)
				var gerr *goerror.Error
				switch {
				case errors.As(err, &gerr) && gerr.Type() == goerror.TypeValidation:
					result = "invalid"
				case errors.As(err, &gerr) && gerr.Type() == goerror.TypeBusiness:
					result = "rejected"
				default:
					span.SetStatus(codes.Error, err.Error())
				}
			} else {
				span.SetStatus(codes.Ok, "")
			}

			attrs := []attribute.KeyValue{
				attribute.String("command", path),
				attribute.String("result", result),
			}
			span.SetAttributes(attrs...)
			if invocations != nil {
				invocations.Add(ctx, 1, metric.WithAttributes(attrs...))
			}
			if duration != nil {
				duration.Record(ctx, float64(time.Since(start).Milliseconds()), metric.WithAttributes(attrs...))
			}

			slog.InfoContext(ctx, "command finished", "command", path, "result", result, "latency_ms", time.Since(start).Milliseconds())

			return resp, err
		}
	}
}
