package parse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Month abbreviation lookup for the legacy syslog forms.
var months = map[string]time.Month{
	"Jan": time.January, "Feb": time.February, "Mar": time.March,
	"Apr": time.April, "May": time.May, "Jun": time.June,
	"Jul": time.July, "Aug": time.August, "Sep": time.September,
	"Oct": time.October, "Nov": time.November, "Dec": time.December,
}

var isoRe = regexp.MustCompile(
	`^(\d{4}-\d{2}-\d{2})T(\d{2}:\d{2}:\d{2})(?:\.\d+)?(?:([+-])(\d{2}):(\d{2}))?`)

// NormalizeTimestamp parses the supported timestamp spellings into a single
// instant expressed as wall-clock time in the reference zone. Fractional
// seconds are discarded; bucketing never resolves below one minute. The
// second return is false when no spelling matched.
//
// Offset-qualified forms are rebased: UTC = local − offset, then
// display = UTC + reference offset. Offset-free forms are taken as-is.
func (p *Parser) NormalizeTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	if strings.Contains(raw, "T") {
		return p.normalizeISO(raw)
	}

	if strings.Contains(raw, "-") && strings.Contains(raw, ":") {
		t, err := time.Parse("2006-01-02 15:04:05", raw)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}

	parts := strings.Fields(raw)

	// Year-prefixed legacy form: 2025 Nov 26 14:23:30
	if len(parts) >= 4 && len(parts[0]) == 4 && isDigits(parts[0]) {
		year, _ := strconv.Atoi(parts[0])
		return buildLegacy(year, parts[1], parts[2], parts[3])
	}

	// Bare legacy form: Nov 26 12:00:01 — the year defaults to the
	// processing year.
	if len(parts) >= 3 {
		return buildLegacy(p.year, parts[0], parts[1], parts[2])
	}

	return time.Time{}, false
}

func (p *Parser) normalizeISO(raw string) (time.Time, bool) {
	m := isoRe.FindStringSubmatch(raw)
	if m == nil {
		return time.Time{}, false
	}

	t, err := time.Parse("2006-01-02 15:04:05", m[1]+" "+m[2])
	if err != nil {
		return time.Time{}, false
	}

	// Offset-free T-forms are taken as-is, like the simple form.
	if m[3] == "" {
		return t, true
	}

	offHours, _ := strconv.Atoi(m[4])
	offMinutes, _ := strconv.Atoi(m[5])
	offset := time.Duration(offHours)*time.Hour + time.Duration(offMinutes)*time.Minute
	if m[3] == "-" {
		offset = -offset
	}

	_, refSeconds := t.In(p.zone).Zone()
	utc := t.Add(-offset)
	return utc.Add(time.Duration(refSeconds) * time.Second), true
}

func buildLegacy(year int, monthAbbr, dayStr, clock string) (time.Time, bool) {
	month, ok := months[monthAbbr]
	if !ok {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil {
		return time.Time{}, false
	}

	hms := strings.Split(clock, ":")
	if len(hms) != 3 {
		return time.Time{}, false
	}
	hour, err1 := strconv.Atoi(hms[0])
	minute, err2 := strconv.Atoi(hms[1])
	second, err3 := strconv.Atoi(hms[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	if hour > 23 || minute > 59 || second > 59 {
		return time.Time{}, false
	}

	// time.Date normalizes out-of-range components (Nov 31 becomes Dec 1);
	// such dates never occurred, so they are absent, not shifted.
	t := time.Date(year, month, day, hour, minute, second, 0, time.UTC)
	if t.Day() != day || t.Month() != month {
		return time.Time{}, false
	}
	return t, true
}
