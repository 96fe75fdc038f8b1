// Package aggregate buckets parsed records into dense time series with
// severity counts. Each call is stateless given its record set and range.
package aggregate

import (
	"time"

	"logsieve/internal/model"
)

const maxPoints = 100

type granularity int

const (
	byMinute granularity = iota
	byHour
	byDay
)

func (g granularity) step() time.Duration {
	switch g {
	case byMinute:
		return time.Minute
	case byHour:
		return time.Hour
	default:
		return 24 * time.Hour
	}
}

// label renders the bucket a time falls into. Buckets one hour wide carry the
// literal ":00" suffix the chart consumer expects.
func (g granularity) label(t time.Time) string {
	switch g {
	case byMinute:
		return t.Format("15:04")
	case byHour:
		return t.Format("01/02 15") + ":00"
	default:
		return t.Format("01/02")
	}
}

// spanGranularity picks the bucket width for the "all" range from the total
// span, using the same tiers as the fixed ranges.
func spanGranularity(span time.Duration) granularity {
	switch {
	case span <= time.Hour:
		return byMinute
	case span <= 24*time.Hour:
		return byHour
	default:
		return byDay
	}
}

// Aggregate computes severity statistics for one host's records. Total and
// Levels always cover the entire record set. Records without a normalized
// timestamp are excluded from the time series and the filtered counters but
// stay in the whole-set numbers. now anchors the fixed windows and is expected
// in the same reference frame as the normalized timestamps.
func Aggregate(records []model.LogRecord, timeRange string, now time.Time) model.Aggregation {
	agg := model.Aggregation{
		Total:          len(records),
		Levels:         countLevels(records),
		TimeSeries:     []model.TimeSeriesPoint{},
		FilteredLevels: map[string]int{},
	}

	var valid []model.LogRecord
	for _, r := range records {
		if r.Timestamp != nil {
			valid = append(valid, r)
		}
	}

	// With no placeable records the filtered view degrades to the whole set.
	if len(valid) == 0 {
		agg.FilteredTotal = agg.Total
		agg.FilteredLevels = agg.Levels
		return agg
	}

	var cutoff, end time.Time
	var gran granularity
	var filtered []model.LogRecord

	if timeRange == "all" {
		cutoff, end = timeBounds(valid)
		gran = spanGranularity(end.Sub(cutoff))
		filtered = valid
	} else {
		gran, cutoff = fixedWindow(timeRange, now)
		end = now
		for _, r := range valid {
			if !r.Timestamp.Before(cutoff) {
				filtered = append(filtered, r)
			}
		}
	}

	agg.FilteredTotal = len(filtered)
	agg.FilteredLevels = countLevels(filtered)

	type cell struct{ info, warn, errs int }
	counts := make(map[string]*cell)
	for _, r := range filtered {
		label := gran.label(*r.Timestamp)
		c := counts[label]
		if c == nil {
			c = &cell{}
			counts[label] = c
		}
		switch r.Level {
		case model.LevelInfo:
			c.info++
		case model.LevelWarn:
			c.warn++
		case model.LevelError:
			c.errs++
		}
	}

	// Dense series: every bucket in the window appears, zero-valued buckets
	// included, so charts can tell empty from missing.
	var series []model.TimeSeriesPoint
	for cur := cutoff; !cur.After(end); cur = cur.Add(gran.step()) {
		label := gran.label(cur)
		point := model.TimeSeriesPoint{Time: label}
		if c := counts[label]; c != nil {
			point.Info = c.info
			point.Warn = c.warn
			point.Error = c.errs
		}
		series = append(series, point)
	}

	agg.TimeSeries = decimate(series)
	return agg
}

// decimate caps the series length by keeping every Nth bucket, N being
// len/maxPoints. Dropped buckets are lost, not merged; tests pin this.
func decimate(series []model.TimeSeriesPoint) []model.TimeSeriesPoint {
	if len(series) <= maxPoints {
		return series
	}
	step := len(series) / maxPoints
	if step <= 1 {
		return series
	}
	kept := make([]model.TimeSeriesPoint, 0, len(series)/step+1)
	for i := 0; i < len(series); i += step {
		kept = append(kept, series[i])
	}
	return kept
}

func fixedWindow(timeRange string, now time.Time) (granularity, time.Time) {
	switch timeRange {
	case "1d":
		return byHour, now.Add(-24 * time.Hour)
	case "1w":
		return byDay, now.Add(-7 * 24 * time.Hour)
	case "1m":
		return byDay, now.Add(-30 * 24 * time.Hour)
	default: // "1h" and anything unrecognized
		return byMinute, now.Add(-time.Hour)
	}
}

func timeBounds(records []model.LogRecord) (min, max time.Time) {
	min, max = *records[0].Timestamp, *records[0].Timestamp
	for _, r := range records[1:] {
		if r.Timestamp.Before(min) {
			min = *r.Timestamp
		}
		if r.Timestamp.After(max) {
			max = *r.Timestamp
		}
	}
	return min, max
}

func countLevels(records []model.LogRecord) map[string]int {
	levels := make(map[string]int)
	for _, r := range records {
		levels[r.Level]++
	}
	return levels
}
