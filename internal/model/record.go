package model

import "time"

// Canonical severity levels. Everything a parser infers collapses into one of these.
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// LogRecord is one parsed log line. Every input line produces exactly one
// record; lines matching no structural format degrade to a fallback record
// rather than being dropped.
type LogRecord struct {
	// TimestampRaw is the timestamp substring as it appeared in the line
	// (empty when no format matched). Timestamp is the normalized instant,
	// nil when the raw form could not be parsed.
	TimestampRaw string     `json:"timestamp"`
	Timestamp    *time.Time `json:"-"`

	Level   string `json:"level"`
	Process string `json:"process"`
	PID     string `json:"pid,omitempty"`

	// Host comes from the log line content when the format carries one,
	// otherwise from file attribution. Service is always the file stem;
	// the two can legitimately differ.
	Host    string `json:"host,omitempty"`
	Service string `json:"service"`

	Message string `json:"message"`
	Raw     string `json:"raw"`

	SourceFile string `json:"file"`
	LineNumber int    `json:"line_number"`
}

// HostStats are flat severity counters over a host's full record set.
type HostStats struct {
	Total int `json:"total"`
	Info  int `json:"info"`
	Warn  int `json:"warn"`
	Error int `json:"error"`
	Debug int `json:"debug"`
}

// TimeSeriesPoint is one chart bucket. The three columns are a fixed contract
// with the chart consumer; DEBUG is tracked in whole-set level counts only.
type TimeSeriesPoint struct {
	Time  string `json:"time"`
	Info  int    `json:"INFO"`
	Warn  int    `json:"WARN"`
	Error int    `json:"ERROR"`
}

// Aggregation is the stats response for one host and time range. Levels and
// Total cover every record regardless of time filtering; the Filtered fields
// cover only records that fell inside the window with a parseable timestamp.
type Aggregation struct {
	Total          int               `json:"total"`
	Levels         map[string]int    `json:"levels"`
	TimeSeries     []TimeSeriesPoint `json:"time_series"`
	FilteredTotal  int               `json:"filtered_total"`
	FilteredLevels map[string]int    `json:"filtered_levels"`
}
