// Package observability provides OpenTelemetry tracing and the metric
// instruments recorded by the lazy-registration extender and the
// unregistered-type caches.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, &cfg)
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanBuild)
//	defer observability.EndSpan(span, err)
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, &meterCfg)
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter(observability.DefaultMeterName))
//	metrics.RecordFallbackResolve(ctx, "scoped", "ok", duration)
package observability
