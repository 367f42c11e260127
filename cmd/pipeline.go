package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/huangsam/reposcore/core"
	"github.com/huangsam/reposcore/internal/contract"
	"github.com/huangsam/reposcore/internal/ghclient"
	"github.com/huangsam/reposcore/internal/iocache"
	"github.com/huangsam/reposcore/internal/observability"
	"github.com/huangsam/reposcore/schema"
)

// metricsShutdown stops the metrics endpoint started by buildAnalyzer, if any.
var (
	metricsShutdown func()
	metricsOnce     sync.Once
)

// buildAnalyzer wires the GitHub fetcher, the probes and the stores into an Analyzer.
func buildAnalyzer() (*core.Analyzer, error) {
	client, err := ghclient.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	opts := []core.AnalyzerOption{
		core.WithHistory(core.NewHistoryTracker(iocache.Manager.GetHistoryStore())),
	}
	if cfg.CacheEnabled {
		opts = append(opts, core.WithCache(iocache.NewCache[schema.AnalysisResult](iocache.Manager.GetCacheStore())))
	}
	if cfg.MetricsAddr != "" {
		pm, err := startMetrics(cfg.MetricsAddr)
		if err != nil {
			return nil, err
		}
		opts = append(opts, core.WithMetrics(pm))
	}

	return core.NewAnalyzer(cfg, ghclient.NewFetcher(client), ghclient.NewProbeSet(client), opts...), nil
}

// startMetrics serves pipeline metrics for Prometheus at addr until StopMetrics runs.
func startMetrics(addr string) (*observability.PipelineMetrics, error) {
	pm, provider, srv, err := observability.NewMetricsServer(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to start metrics: %w", err)
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			contract.LogWarn("Metrics endpoint stopped", err)
		}
	}()
	contract.LogDebug("Serving metrics", "addr", addr)

	metricsShutdown = func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
		_ = provider.Shutdown(ctx)
	}
	return pm, nil
}

// StopMetrics shuts down the metrics endpoint if one was started.
func StopMetrics() {
	metricsOnce.Do(func() {
		if metricsShutdown != nil {
			metricsShutdown()
		}
	})
}
