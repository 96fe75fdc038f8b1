package report

// ScanReport aggregates counters for one discovery-and-parse pass. A pass is
// request-scoped; the report is logged and discarded with it.
type ScanReport struct {
	DirsMissing  int            `json:"dirs_missing"`
	FilesMatched int            `json:"files_matched"`
	FilesSkipped int            `json:"files_skipped"`
	TotalLines   int            `json:"total_lines"`
	ByFormat     map[string]int `json:"by_format"`
	ByLevel      map[string]int `json:"by_level"`
}

// New initializes a ScanReport with maps ready to use.
func New() *ScanReport {
	return &ScanReport{
		ByFormat: make(map[string]int),
		ByLevel:  make(map[string]int),
	}
}

// AddFormat increments the count for a matched line format.
func (r *ScanReport) AddFormat(name string) {
	if name == "" {
		return
	}
	r.ByFormat[name]++
}

// AddLevel increments the count for a log level.
func (r *ScanReport) AddLevel(level string) {
	if level == "" {
		return
	}
	r.ByLevel[level]++
}

// Attrs returns the report as structured-log key/value pairs.
func (r *ScanReport) Attrs() []any {
	return []any{
		"dirs_missing", r.DirsMissing,
		"files_matched", r.FilesMatched,
		"files_skipped", r.FilesSkipped,
		"total_lines", r.TotalLines,
		"by_format", r.ByFormat,
		"by_level", r.ByLevel,
	}
}
