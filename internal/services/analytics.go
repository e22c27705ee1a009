package services

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"ecommerce-eda/internal/dataset"
	"ecommerce-eda/internal/models"
	"ecommerce-eda/internal/observability"
	"ecommerce-eda/internal/pipeline"
)

const cacheVersion = "v3"

// ErrNoData is returned by accessors before any dataset has been loaded.
var ErrNoData = errors.New("no dataset loaded")

// Snapshot is one analyzed dataset. It is replaced wholesale, never mutated.
type Snapshot struct {
	Report       *models.Report
	Customers    []models.KeyTotal
	Options      pipeline.Options
	Source       string
	LastModified time.Time
}

type Analytics struct {
	mu       sync.RWMutex
	snapshot *Snapshot

	opts     pipeline.Options
	cacheDir string
	metrics  *observability.Metrics
	logger   *slog.Logger
}

type Option func(*Analytics)

// WithCacheDir enables the gob report cache in dir. An empty dir disables it.
func WithCacheDir(dir string) Option {
	return func(a *Analytics) { a.cacheDir = dir }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(a *Analytics) { a.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(a *Analytics) { a.logger = logger }
}

func WithOptions(opts pipeline.Options) Option {
	return func(a *Analytics) { a.opts = opts }
}

func NewAnalytics(options ...Option) *Analytics {
	a := &Analytics{
		opts:   pipeline.DefaultOptions(),
		logger: slog.Default(),
	}
	for _, o := range options {
		o(a)
	}
	return a
}

// LoadFromCSV loads and analyzes an order export, replacing the served
// snapshot. A cached report is reused when it is newer than the file and was
// built with the same pipeline options.
func (a *Analytics) LoadFromCSV(ctx context.Context, filename string) (err error) {
	ctx, span := observability.StartSpan(ctx, "analytics.load", attribute.String("file", filename))
	defer func() { observability.FinishSpan(span, err) }()

	if cached, err := a.loadFromCache(filename); err == nil {
		fileInfo, err := os.Stat(filename)
		if err == nil && fileInfo.ModTime().Before(cached.LastModified) && cached.Options == a.opts {
			a.replace(cached)
			span.SetAttributes(attribute.Bool("cache.hit", true))
			a.logger.Info("loaded from cache", "records", cached.Report.RecordCount)
			return nil
		}
	}

	start := time.Now()
	a.logger.Info("processing dataset", "filename", filename)

	snap, err := a.build(ctx, "file", func(ctx context.Context) ([]models.RawOrder, error) {
		return dataset.LoadFile(ctx, filename)
	})
	if err != nil {
		return fmt.Errorf("process dataset: %w", err)
	}
	snap.Source = filename
	a.replace(snap)

	if err := a.saveToCache(filename, snap); err != nil {
		a.logger.Warn("failed to save cache", "error", err)
	}

	duration := time.Since(start)
	count := snap.Report.RecordCount
	a.logger.Info("dataset processing complete",
		"records", count,
		"duration", duration,
		"rate", fmt.Sprintf("%.0f records/sec", float64(count)/duration.Seconds()))

	return nil
}

// SetData analyzes in-memory records and serves the result.
func (a *Analytics) SetData(raw []models.RawOrder) error {
	snap, err := a.build(context.Background(), "memory", func(context.Context) ([]models.RawOrder, error) {
		return raw, nil
	})
	if err != nil {
		return err
	}
	snap.Source = "memory"
	a.replace(snap)
	return nil
}

// Analyze runs the pipeline over an uploaded CSV and returns its report
// without touching the served snapshot.
func (a *Analytics) Analyze(ctx context.Context, r io.Reader) (_ *models.Report, err error) {
	ctx, span := observability.StartSpan(ctx, "analytics.analyze_upload")
	defer func() { observability.FinishSpan(span, err) }()

	snap, err := a.build(ctx, "upload", func(ctx context.Context) ([]models.RawOrder, error) {
		return dataset.Load(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	return snap.Report, nil
}

func (a *Analytics) build(ctx context.Context, source string, load func(context.Context) ([]models.RawOrder, error)) (snap *Snapshot, err error) {
	start := time.Now()
	defer func() {
		if a.metrics != nil {
			a.metrics.ObservePipeline(source, time.Since(start), err)
		}
	}()

	raw, err := load(ctx)
	if err != nil {
		return nil, err
	}

	_, span := observability.StartSpan(ctx, "pipeline.analyze", attribute.Int("records", len(raw)))
	res, err := pipeline.Run(raw, a.opts)
	observability.FinishSpan(span, err)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	res.Report.GeneratedAt = now.UTC()
	// The full customer ranking backs TopCustomers for any limit.
	return &Snapshot{Report: res.Report, Customers: res.Customers, Options: a.opts, LastModified: now}, nil
}

func (a *Analytics) replace(snap *Snapshot) {
	a.mu.Lock()
	a.snapshot = snap
	a.mu.Unlock()

	if a.metrics != nil {
		a.metrics.SetRecords(snap.Report.RecordCount)
	}
}

func (a *Analytics) current() (*Snapshot, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.snapshot == nil {
		return nil, ErrNoData
	}
	return a.snapshot, nil
}

// Cache management
func (a *Analytics) getCacheFilename(path string) string {
	name := strings.NewReplacer("/", "_", `\`, "_", ":", "_").Replace(path)
	return filepath.Join(a.cacheDir, fmt.Sprintf("%s_%s.gob", name, cacheVersion))
}

func (a *Analytics) saveToCache(path string, snap *Snapshot) error {
	if a.cacheDir == "" {
		return nil
	}
	if err := os.MkdirAll(a.cacheDir, 0o755); err != nil {
		return err
	}

	file, err := os.Create(a.getCacheFilename(path))
	if err != nil {
		return err
	}
	defer file.Close()

	return gob.NewEncoder(file).Encode(snap)
}

func (a *Analytics) loadFromCache(path string) (*Snapshot, error) {
	if a.cacheDir == "" {
		return nil, os.ErrNotExist
	}

	file, err := os.Open(a.getCacheFilename(path))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var snap Snapshot
	if err := gob.NewDecoder(file).Decode(&snap); err != nil {
		return nil, err
	}
	if snap.Report == nil {
		return nil, fmt.Errorf("cache %s: empty report", path)
	}
	return &snap, nil
}

// Report returns the served report, or nil before the first load.
func (a *Analytics) Report() *models.Report {
	snap, err := a.current()
	if err != nil {
		return nil
	}
	return snap.Report
}

// TopCustomers returns the n highest-revenue customers; n <= 0 returns all.
func (a *Analytics) TopCustomers(n int) ([]models.KeyTotal, error) {
	snap, err := a.current()
	if err != nil {
		return nil, err
	}
	if n <= 0 || n >= len(snap.Customers) {
		return snap.Customers, nil
	}
	return snap.Customers[:n], nil
}

// RevenueBy returns the full revenue rollup for one grouping column.
func (a *Analytics) RevenueBy(key pipeline.GroupKey) ([]models.KeyTotal, error) {
	snap, err := a.current()
	if err != nil {
		return nil, err
	}

	switch key {
	case pipeline.GroupCustomer:
		return snap.Customers, nil
	case pipeline.GroupCategory:
		return snap.Report.RevenueByCategory, nil
	case pipeline.GroupRegion:
		return snap.Report.RevenueByRegion, nil
	case pipeline.GroupPaymentMethod:
		return snap.Report.RevenueByPayment, nil
	}
	return nil, fmt.Errorf("%w: %q", pipeline.ErrUnknownColumn, key)
}

func (a *Analytics) RevenueTrend() ([]models.DateTotal, error) {
	snap, err := a.current()
	if err != nil {
		return nil, err
	}
	return snap.Report.RevenueTrend, nil
}

func (a *Analytics) Independence() (models.TestResult, error) {
	snap, err := a.current()
	if err != nil {
		return models.TestResult{}, err
	}
	return snap.Report.Independence, nil
}

func (a *Analytics) Correlation() (models.CorrelationMatrix, error) {
	snap, err := a.current()
	if err != nil {
		return models.CorrelationMatrix{}, err
	}
	return snap.Report.Correlation, nil
}

func (a *Analytics) Summary() ([]models.ColumnSummary, error) {
	snap, err := a.current()
	if err != nil {
		return nil, err
	}
	return snap.Report.Summary, nil
}

// Utility method for monitoring
func (a *Analytics) Stats() map[string]any {
	snap, err := a.current()
	if err != nil {
		return map[string]any{"loaded": false}
	}

	r := snap.Report
	return map[string]any{
		"loaded":         true,
		"source":         snap.Source,
		"record_count":   r.RecordCount,
		"total_revenue":  r.TotalRevenue,
		"last_processed": snap.LastModified,
		"customers":      len(snap.Customers),
		"categories":     len(r.RevenueByCategory),
		"regions":        len(r.RevenueByRegion),
		"dates":          len(r.RevenueTrend),
	}
}
