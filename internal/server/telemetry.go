package server

import (
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	ttrace "image_conversion/internal/telemetry/trace"
	traceExporter "image_conversion/internal/telemetry/trace/exporter"
)

func (s *Server) InitGlobalProvider(name, exporter, endpoint string) {
	var spanExporter sdktrace.SpanExporter
	switch exporter {
	case "otlp":
		spanExporter = traceExporter.NewOTLP(endpoint)
	default:
		jaegerExp, err := traceExporter.NewJaeger(endpoint)
		if err != nil {
			log.Fatal().Err(err).Msgf("failed initializing the tracer exporter")
		}
		spanExporter = jaegerExp
	}

	tracerProvider, tracerProviderCloseFn, err := ttrace.NewTraceProviderBuilder(name).
		SetExporter(spanExporter).
		Build()
	if err != nil {
		log.Fatal().Err(err).Msgf("failed initializing the tracer provider")
	}
	s.traceProviderCloseFn = append(s.traceProviderCloseFn, tracerProviderCloseFn)

	// set global propagator to tracecontext (the default is no-op).
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	otel.SetTracerProvider(tracerProvider)
}
