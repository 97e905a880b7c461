// Package telemetry sets up OpenTelemetry tracing and metrics.
//
// Spans and metrics are exported over OTLP (gRPC by default, or
// http/protobuf) to a collector. Telemetry is disabled by default, in which
// case Tracer and Meter hand out the global no-op providers and the
// classifier's instruments cost nothing.
//
//	tel, err := telemetry.New(ctx, &cfg.Telemetry, telemetry.WithLogger(zl))
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(ctx)
//
//	metrics, err := classifier.NewMetrics(tel.Meter(classifier.InstrumentationName))
//	if err != nil {
//	    return err
//	}
//	c := classifier.New(
//	    classifier.WithTracer(tel.Tracer(classifier.InstrumentationName)),
//	    classifier.WithMetrics(metrics),
//	)
//
// Configuration:
//
//	telemetry:
//	  enabled: true
//	  endpoint: "localhost:4317"
//	  protocol: grpc
//	  sampling:
//	    rate: 0.25
//	  metrics:
//	    export_interval: "15s"
//
// Provider failures mark the instance degraded (see Health) instead of
// failing startup.
//
// Tests use NewTestTelemetry, which records spans in memory and reads
// metrics through a manual reader.
package telemetry
