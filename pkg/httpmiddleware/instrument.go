package httpmiddleware

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Instrument returns a middleware that wraps handlers with otelhttp tracing
// and metrics under the given operation name. Route patterns registered on a
// ServeMux surface through r.Pattern for per-route span names.
func Instrument(operation string, tracerProvider trace.TracerProvider, meterProvider metric.MeterProvider) Middleware {
	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, operation,
			otelhttp.WithTracerProvider(tracerProvider),
			otelhttp.WithMeterProvider(meterProvider),
			otelhttp.WithSpanNameFormatter(func(op string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Method + " " + r.Pattern
				}
				return op
			}),
		)
	}
}
