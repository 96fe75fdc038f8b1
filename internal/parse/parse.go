// Package parse converts raw log lines into structured records. A fixed,
// ordered chain of structural formats is attempted per line; the first format
// matching the whole line wins and later formats are never tried. Lines no
// format matches degrade to a fallback record, so parsing never drops input.
package parse

import (
	"bufio"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"logsieve/internal/model"
	"logsieve/internal/report"
)

// Parser parses log files. year supplies the missing year for legacy syslog
// timestamps; zone is the reference display zone offsets are rebased to.
type Parser struct {
	year int
	zone *time.Location
}

// New returns a Parser for the given processing year and reference zone.
func New(year int, zone *time.Location) *Parser {
	if zone == nil {
		zone = time.UTC
	}
	return &Parser{year: year, zone: zone}
}

// lineFormat is one variant in the ordered chain. build receives the full
// submatch slice and fills the format-specific fields of the record.
type lineFormat struct {
	name  string
	re    *regexp.Regexp
	build func(p *Parser, m []string, rec *model.LogRecord)
}

var formats = []lineFormat{
	{
		// 2025-12-17T16:13:08+00:00 RHEL-FRONT tailscaled[926]: message
		name: "iso8601_syslog",
		re: regexp.MustCompile(
			`^(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}[+-]\d{2}:\d{2})\s+(\S+)\s+(\S+?)(?:\[(\d+)\])?:\s+(.+)$`),
		build: func(p *Parser, m []string, rec *model.LogRecord) {
			rec.TimestampRaw = m[1]
			rec.Host = m[2]
			rec.Process = m[3]
			rec.PID = m[4]
			rec.Message = m[5]
			rec.Level = messageLevel(m[5])
		},
	},
	{
		// 2025-12-17T23:00:19.900707+09:00 host=LOGS app=rsyslogd pid=- msg= message
		name: "keyvalue",
		re: regexp.MustCompile(
			`^(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?[+-]\d{2}:\d{2})\s+host=(\S+)\s+app=(\S+)\s+pid=(\S+)\s+msg=\s*(.*)$`),
		build: func(p *Parser, m []string, rec *model.LogRecord) {
			rec.TimestampRaw = m[1]
			rec.Host = m[2]
			rec.Process = m[3]
			if m[4] != "-" {
				rec.PID = m[4]
			}
			rec.Message = m[5]
			rec.Level = messageLevel(m[5])
		},
	},
	{
		// Nov 26 12:00:01 host1 process[pid]: message — no year in the source,
		// so the current processing year is synthesized into the raw timestamp.
		// No rollover correction for messages spanning New Year's Eve.
		name: "syslog",
		re: regexp.MustCompile(
			`^([A-Z][a-z]{2}\s+\d+\s\d{2}:\d{2}:\d{2})\s+(\S+)\s+([^:]+):\s+(.+)$`),
		build: func(p *Parser, m []string, rec *model.LogRecord) {
			rec.TimestampRaw = fmt.Sprintf("%d %s", p.year, m[1])
			rec.Host = m[2]
			rec.Message = m[4]
			rec.Process, rec.PID, rec.Level = parseProcessAndLevel(m[3], m[4])
		},
	},
	{
		// 2024-01-01 12:00:00 INFO process: message
		name: "simple",
		re: regexp.MustCompile(
			`^(\d{4}-\d{2}-\d{2}\s+\d{2}:\d{2}:\d{2})\s+(INFO|WARN|ERROR|DEBUG)\s+(\S+):\s+(.+)$`),
		build: func(p *Parser, m []string, rec *model.LogRecord) {
			rec.TimestampRaw = m[1]
			rec.Level = m[2]
			rec.Process = m[3]
			rec.Message = m[4]
		},
	},
}

// ParseLine parses one line. stem is the source file's name without extension
// and always becomes the record's service, regardless of which format matched.
func (p *Parser) ParseLine(line, stem string, lineNum int, source string) model.LogRecord {
	rec, _ := p.parseLine(line, stem, lineNum, source)
	return rec
}

func (p *Parser) parseLine(line, stem string, lineNum int, source string) (model.LogRecord, string) {
	rec := model.LogRecord{
		Service:    stem,
		Raw:        line,
		SourceFile: source,
		LineNumber: lineNum,
	}

	for _, f := range formats {
		m := f.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		f.build(p, m, &rec)
		if ts, ok := p.NormalizeTimestamp(rec.TimestampRaw); ok {
			rec.Timestamp = &ts
		}
		return rec, f.name
	}

	// Fallback: the whole line is the message.
	rec.Level = model.LevelInfo
	rec.Process = "unknown"
	rec.Message = line
	return rec, "fallback"
}

// ParseFile parses every non-blank line of a file. Read errors abort the file
// but records parsed up to that point are kept; rep may be nil.
func (p *Parser) ParseFile(path string, rep *report.ScanReport) ([]model.LogRecord, error) {
	if rep == nil {
		rep = report.New()
	}
	stem := fileStem(path)

	r, err := openReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var records []model.LogRecord
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		rep.TotalLines++

		rec, format := p.parseLine(line, stem, lineNum, path)
		rep.AddFormat(format)
		rep.AddLevel(rec.Level)
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return records, fmt.Errorf("read %s: %w", path, err)
	}
	return records, nil
}

// parseProcessAndLevel splits a process token of the form name[content].
// Digit-only bracket content is a pid; a level token is an explicit level.
// Without an explicit level the message content decides.
func parseProcessAndLevel(processStr, message string) (process, pid, level string) {
	process = processStr
	level = ""

	if m := bracketRe.FindStringSubmatch(processStr); m != nil {
		content := m[2]
		switch {
		case isDigits(content):
			process = m[1]
			pid = content
		case content == model.LevelInfo, content == model.LevelWarn,
			content == model.LevelError, content == model.LevelDebug:
			process = m[1]
			level = content
		default:
			process = m[1]
		}
	}

	if level == "" {
		level = messageLevel(message)
	}
	return process, pid, level
}

var bracketRe = regexp.MustCompile(`^(.*?)\[(.*?)\]$`)

// messageLevel infers a severity from message content. Approximate on
// purpose: "failover succeeded" is flagged ERROR.
func messageLevel(message string) string {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "error") || strings.Contains(lower, "fail"):
		return model.LevelError
	case strings.Contains(lower, "warn"):
		return model.LevelWarn
	case strings.Contains(lower, "debug"):
		return model.LevelDebug
	default:
		return model.LevelInfo
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func fileStem(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
