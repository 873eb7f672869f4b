/*
Copyright 2024 The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package tracing

import (
	"context"
	"crypto/x509"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc/credentials"
	"k8s.io/klog/v2"
)

const (
	// DefaultServiceName is the service name reported when none is configured.
	DefaultServiceName = "attachopt"
	// TracerName is the instrumentation scope of every span of this module.
	TracerName = "github.com/cellsim/attachopt"
)

var (
	provider trace.TracerProvider = noop.NewTracerProvider()
	tracer                        = provider.Tracer(TracerName)
)

// Tracer returns the tracer used across the module. It is a no-op until
// NewTracerProvider succeeds.
func Tracer() trace.Tracer {
	return tracer
}

// Config selects where spans are exported.
type Config struct {
	// CollectorEndpoint is the OTLP gRPC endpoint. Empty disables tracing.
	CollectorEndpoint string
	// CACert is a PEM file used to verify the collector. Empty means insecure.
	CACert      string
	ServiceName string
	// SampleRate is the fraction of root spans recorded.
	SampleRate float64
}

// NewTracerProvider configures the global tracer provider from cfg. When no
// endpoint is set the no-op provider stays in place.
func NewTracerProvider(ctx context.Context, cfg Config) error {
	if cfg.CollectorEndpoint == "" {
		klog.V(2).InfoS("Tracing disabled, no collector endpoint configured")
		return nil
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.CACert != "" {
		data, err := os.ReadFile(cfg.CACert)
		if err != nil {
			return fmt.Errorf("failed to read collector CA certificate: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(data) {
			return fmt.Errorf("no certificates found in %s", cfg.CACert)
		}
		opts = append(opts, otlptracegrpc.WithTLSCredentials(credentials.NewClientTLSFromCert(pool, "")))
	} else {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	exporter, err := otlptrace.New(ctx, otlptracegrpc.NewClient(opts...))
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = DefaultServiceName
	}
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return fmt.Errorf("failed to build trace resource: %w", err)
	}

	sdkProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRate))),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(sdkProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	provider = sdkProvider
	tracer = provider.Tracer(TracerName)
	klog.InfoS("Tracing enabled", "endpoint", cfg.CollectorEndpoint, "sampleRate", cfg.SampleRate)
	return nil
}

// Shutdown flushes pending spans. It is a no-op for the default provider.
func Shutdown(ctx context.Context) {
	p, ok := provider.(*sdktrace.TracerProvider)
	if !ok {
		return
	}
	if err := p.Shutdown(ctx); err != nil {
		klog.ErrorS(err, "Failed to shut down tracer provider")
	}
}
