package report

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pocket/internal/cache"
	"pocket/internal/core"
	applog "pocket/internal/log"
)

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/pdf"
}

// Source provides a consistent snapshot of the ledger and its revision.
type Source interface {
	Snapshot() ([]core.Transaction, uint64)
}

type ExporterConfig struct {
	Currency  string
	Location  *time.Location
	CacheSize int
	CacheTTL  time.Duration
	Now       func() time.Time
}

// Exporter renders reports from a Source and caches the bytes per ledger
// revision and generation minute, so repeated downloads of an unchanged
// ledger skip rendering while the printed timestamp stays current.
type Exporter struct {
	src    Source
	cfg    ExporterConfig
	cache  *cache.LRUCache[[]byte]
	logger *applog.Logger
}

func NewExporter(src Source, cfg ExporterConfig, logger *applog.Logger) *Exporter {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 16
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Exporter{
		src:    src,
		cfg:    cfg,
		cache:  cache.NewLRUCache[[]byte](cfg.CacheSize, cfg.CacheTTL),
		logger: logger.WithComponent(applog.ComponentReport),
	}
}

// Cache exposes the render cache for registration with a cache.Manager.
func (e *Exporter) Cache() *cache.LRUCache[[]byte] { return e.cache }

// Export renders the ledger between start and end (zero means unbounded on
// that side). It returns ErrEmptyReport when nothing falls in the range.
func (e *Exporter) Export(ctx context.Context, format Format, start, end time.Time) ([]byte, error) {
	if format != FormatPDF && format != FormatXLSX {
		return nil, fmt.Errorf("unsupported report format %q", format)
	}
	txs, rev := e.src.Snapshot()
	// Reports print the time to the minute; the cached bytes are valid for that long.
	now := e.cfg.Now().Truncate(time.Minute)
	rng := Bounds(txs, start, end, now, e.cfg.Location)
	key := cacheKey(format, rev, rng, now)
	if b, ok := e.cache.Get(key); ok {
		e.logger.DebugContext(ctx, "Report served from cache", applog.FieldFormat, string(format))
		return b, nil
	}

	r, err := Build(txs, Options{
		Start:    rng.From,
		End:      rng.To,
		Now:      now,
		Location: e.cfg.Location,
		Currency: e.cfg.Currency,
	})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	switch format {
	case FormatPDF:
		err = r.WritePDF(&buf)
	case FormatXLSX:
		err = r.WriteXLSX(&buf)
	}
	if err != nil {
		return nil, err
	}
	e.cache.Set(key, buf.Bytes())
	e.logger.InfoContext(ctx, "Report rendered",
		applog.FieldFormat, string(format),
		applog.FieldCount, len(r.Transactions),
		"bytes", buf.Len())
	return buf.Bytes(), nil
}

func cacheKey(format Format, rev uint64, rng Range, generated time.Time) string {
	return strings.Join([]string{
		string(format),
		strconv.FormatUint(rev, 10),
		strconv.FormatInt(generated.Unix(), 10),
		strconv.FormatInt(rng.From.UnixMilli(), 10),
		strconv.FormatInt(rng.To.UnixMilli(), 10),
	}, "|")
}
