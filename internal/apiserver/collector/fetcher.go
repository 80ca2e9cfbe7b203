package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/amoylab/ifood-dashboard/internal/common/cnst"
	"github.com/amoylab/ifood-dashboard/internal/common/config"
	"github.com/amoylab/ifood-dashboard/pkg/trace"
)

// JobFetch is the name of the periodic upstream fetch
const JobFetch = "ifood-fetch"

// Fetcher polls the upstream order feed. The response is drained and
// discarded; nothing in the application state depends on it.
type Fetcher struct {
	url    string
	client *http.Client
	logger *zap.Logger
	tracer *trace.Builder
}

// NewFetcher builds a fetcher with a traced client bounded by cfg.Timeout
func NewFetcher(cfg config.CollectorConfig, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		url:    cfg.URL,
		client: trace.NewHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		logger: logger.Named("collector"),
		tracer: trace.Tracer(cnst.TraceCollector),
	}
}

// Run performs one fetch
func (f *Fetcher) Run(ctx context.Context) error {
	scope := f.tracer.Start(ctx, cnst.SpanCollectorRun).
		WithAttrs(attribute.String(cnst.AttrCollectorJob, JobFetch))
	defer scope.End()

	err := f.fetch(scope)
	scope.Fail(err)
	return err
}

func (f *Fetcher) fetch(scope *trace.SpanScope) error {
	req, err := http.NewRequestWithContext(scope.Ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", f.url, err)
	}
	defer resp.Body.Close()

	n, _ := io.Copy(io.Discard, resp.Body)
	scope.WithAttrs(attribute.Int(cnst.AttrHTTPStatusCode, resp.StatusCode))
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("fetch %s: unexpected status %d", f.url, resp.StatusCode)
	}

	f.logger.Debug("upstream fetched",
		zap.Int("status", resp.StatusCode),
		zap.Int64("bytes", n),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}
