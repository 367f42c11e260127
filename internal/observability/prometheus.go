package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// PrometheusHandler creates a Prometheus exporter backed by an OTel MeterProvider.
// It returns the provider, whose meters feed the exporter, and an [http.Handler]
// serving the /metrics scrape endpoint. Each call uses an independent registry.
func PrometheusHandler() (*sdkmetric.MeterProvider, http.Handler, error) {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(
		promexporter.WithRegisterer(registry),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	return provider, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), nil
}

// NewMetricsServer wires pipeline metrics to a Prometheus endpoint served at addr.
// The caller starts the returned server and shuts down the provider.
func NewMetricsServer(addr string) (*PipelineMetrics, *sdkmetric.MeterProvider, *http.Server, error) {
	provider, handler, err := PrometheusHandler()
	if err != nil {
		return nil, nil, nil, err
	}

	pm, err := NewPipelineMetrics(provider.Meter(MeterName))
	if err != nil {
		return nil, nil, nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	return pm, provider, &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}, nil
}
