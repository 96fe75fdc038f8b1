// Package engine ties discovery, parsing and aggregation into the two
// read operations the API exposes. Every call re-scans the configured
// directories; all state is request-scoped.
package engine

import (
	"errors"
	"sort"
	"time"

	"logsieve/internal/aggregate"
	"logsieve/internal/config"
	"logsieve/internal/discover"
	"logsieve/internal/logger"
	"logsieve/internal/model"
	"logsieve/internal/parse"
	"logsieve/internal/report"
)

// ErrHostNotFound reports that discovery attributed no files to the host.
var ErrHostNotFound = errors.New("host not found")

// statsLimit caps how many records feed the statistics paths.
const statsLimit = 10000

// Engine executes read requests against the current configuration snapshot.
type Engine struct {
	store *config.Store
	now   func() time.Time
}

// New returns an Engine reading configuration from store.
func New(store *config.Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// SetNow overrides the clock, for tests.
func (e *Engine) SetNow(now func() time.Time) {
	e.now = now
}

// Hosts returns the sorted host identifiers from a fresh discovery pass.
func (e *Engine) Hosts() []string {
	cfg := e.store.Current()
	return discover.Hosts(discover.Find(cfg.Logs, nil))
}

// LogsForHost parses every file attributed to host and returns up to limit
// records, sorted by raw timestamp descending. Per-file and per-line failures
// are absorbed; only an unknown host is an error.
func (e *Engine) LogsForHost(host string, limit int) ([]model.LogRecord, error) {
	cfg := e.store.Current()
	rep := report.New()

	files := discover.Find(cfg.Logs, rep)
	paths, ok := files[host]
	if !ok {
		logger.Warn("no log files found for host", "host", host)
		return nil, ErrHostNotFound
	}

	parser := parse.New(e.now().Year(), cfg.ReferenceZone())
	var records []model.LogRecord
	for _, path := range paths {
		recs, err := parser.ParseFile(path, rep)
		if err != nil {
			logger.Warn("error parsing log file", "file", path, "err", err)
		}
		records = append(records, recs...)
	}
	logger.Debug("scan complete", rep.Attrs()...)

	// Raw-string ordering is best-effort across formats; exact chronological
	// ordering for ambiguous timestamps is out of contract.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].TimestampRaw > records[j].TimestampRaw
	})
	// limit 0 is a valid, empty window, not "unlimited".
	if limit >= 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// StatsForHost returns flat severity counters over the host's record set.
func (e *Engine) StatsForHost(host string) (model.HostStats, error) {
	records, err := e.LogsForHost(host, statsLimit)
	if err != nil {
		return model.HostStats{}, err
	}

	stats := model.HostStats{Total: len(records)}
	for _, r := range records {
		switch r.Level {
		case model.LevelInfo:
			stats.Info++
		case model.LevelWarn:
			stats.Warn++
		case model.LevelError:
			stats.Error++
		case model.LevelDebug:
			stats.Debug++
		}
	}
	return stats, nil
}

// AggregateForHost buckets the host's records into the time series for the
// given range.
func (e *Engine) AggregateForHost(host, timeRange string) (model.Aggregation, error) {
	records, err := e.LogsForHost(host, statsLimit)
	if err != nil {
		return model.Aggregation{}, err
	}

	cfg := e.store.Current()
	return aggregate.Aggregate(records, timeRange, e.referenceNow(cfg)), nil
}

// referenceNow expresses the current wall-clock time in the reference zone as
// a zone-less instant, the frame normalized timestamps live in.
func (e *Engine) referenceNow(cfg *config.Config) time.Time {
	n := e.now().In(cfg.ReferenceZone())
	return time.Date(n.Year(), n.Month(), n.Day(), n.Hour(), n.Minute(), n.Second(), 0, time.UTC)
}
