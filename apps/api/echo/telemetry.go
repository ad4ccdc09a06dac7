package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// telemetryMiddleware opens a span per request and counts requests by route and status.
// Without a configured otel SDK both are no-ops.
func telemetryMiddleware(name string) echo.MiddlewareFunc {
	tracer := otel.Tracer(name)
	requestsCnt, err := otel.Meter(name).Int64Counter("requests.count", metric.WithDescription("Total number of requests"))
	if err != nil {
		otel.Handle(err)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			req := ctx.Request()
			spanCtx, span := tracer.Start(req.Context(), req.Method+" "+ctx.Path(), trace.WithSpanKind(trace.SpanKindServer))
			defer span.End()
			ctx.SetRequest(req.WithContext(spanCtx))

			err := next(ctx)
			if err != nil {
				span.RecordError(err)
				ctx.Error(err) // let the error handler set the status
			}

			attrs := []attribute.KeyValue{
				attribute.String("http.method", req.Method),
				attribute.String("http.route", ctx.Path()),
				attribute.String("http.status", strconv.Itoa(ctx.Response().Status)),
			}
			span.SetAttributes(attrs...)
			if requestsCnt != nil {
				requestsCnt.Add(spanCtx, 1, metric.WithAttributes(attrs...))
			}
			return nil
		}
	}
}
