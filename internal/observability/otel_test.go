package observability

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/africanjoy/feedback-backend/internal/config"
)

func preserveOTelGlobals(t *testing.T) func() {
	t.Helper()
	prevTP := otel.GetTracerProvider()
	prevProp := otel.GetTextMapPropagator()
	return func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	}
}

func TestSetupOTelDisabledNoOp(t *testing.T) {
	restore := preserveOTelGlobals(t)
	defer restore()

	shutdown, err := SetupOTel(context.Background(), config.OTELConfig{
		Enabled:     false,
		Insecure:    true,
		Endpoint:    "ignored:4317",
		ServiceName: "svc",
		SampleRatio: 1.0,
	}, "v0.0.0")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if shutdown == nil {
		t.Fatalf("expected non-nil shutdown func")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("no-op shutdown returned error: %v", err)
	}
}

func TestSetupOTelInsecureSetsProvider(t *testing.T) {
	restore := preserveOTelGlobals(t)
	defer restore()

	cfg := config.OTELConfig{
		Enabled:     true,
		Insecure:    true,
		Endpoint:    "localhost:4317",
		ServiceName: "feedback-backend",
		SampleRatio: 1.0,
	}
	shutdown, err := SetupOTel(context.Background(), cfg, "v1.2.3")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); !ok {
		t.Fatalf("expected *sdktrace.TracerProvider")
	}
}

func TestSetupOTelExporterError(t *testing.T) {
	restore := preserveOTelGlobals(t)
	defer restore()

	prev := newOTLPExporterFn
	t.Cleanup(func() { newOTLPExporterFn = prev })
	newOTLPExporterFn = func(ctx context.Context, client otlptrace.Client) (*otlptrace.Exporter, error) {
		return nil, errors.New("exporter boom")
	}

	_, err := SetupOTel(context.Background(), config.OTELConfig{
		Enabled: true, Insecure: true, Endpoint: "localhost:4317",
	}, "v0")
	if err == nil {
		t.Fatal("expected exporter error")
	}
}

func TestSetupOTelResourceError(t *testing.T) {
	restore := preserveOTelGlobals(t)
	defer restore()

	prev := newServiceResourceFn
	t.Cleanup(func() { newServiceResourceFn = prev })
	newServiceResourceFn = func(ctx context.Context, serviceName, version string) (*resource.Resource, error) {
		return nil, errors.New("resource boom")
	}

	_, err := SetupOTel(context.Background(), config.OTELConfig{
		Enabled: true, Insecure: true, Endpoint: "localhost:4317",
	}, "v0")
	if err == nil {
		t.Fatal("expected resource error")
	}
}
