package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"logsieve/internal/config"
	"logsieve/internal/model"
)

const legacyFixture = `Nov 26 12:00:01 host1 systemd[1]: Started Session 1 of user root.
Nov 26 12:00:02 host1 sshd[1234]: Accepted publickey for user from 192.168.1.1
Nov 26 12:00:03 host1 kernel: [12345.678901] Error: disk full
Nov 26 12:00:04 host1 cron[5678]: Warning: job delayed`

func newTestEngine(t *testing.T, logDir string) *Engine {
	t.Helper()

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	content := fmt.Sprintf(`logs:
  directories:
    - %s
  include_patterns:
    - "*"
  exclude_patterns: []
  max_file_size_mb: 10
  host_detection: filename
`, logDir)
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	store, err := config.NewStore(cfgPath)
	if err != nil {
		t.Fatal(err)
	}

	eng := New(store)
	eng.SetNow(func() time.Time {
		return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	})
	return eng
}

func TestEngine_LegacySyslogScenario(t *testing.T) {
	logDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(logDir, "syslog"), []byte(legacyFixture), 0644); err != nil {
		t.Fatal(err)
	}
	eng := newTestEngine(t, logDir)

	records, err := eng.LogsForHost("syslog", 10)
	if err != nil {
		t.Fatalf("LogsForHost: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("expected 4 records, got %d", len(records))
	}

	// Sorted by timestamp descending.
	if records[0].TimestampRaw != "2026 Nov 26 12:00:04" {
		t.Errorf("unexpected newest record %q", records[0].TimestampRaw)
	}
	if records[0].Message != "Warning: job delayed" || records[0].Level != model.LevelWarn {
		t.Errorf("unexpected newest record %+v", records[0])
	}
	if records[1].Level != model.LevelError {
		t.Errorf("expected the kernel ERROR second, got %+v", records[1])
	}
	for _, rec := range records {
		if rec.Host != "host1" {
			t.Errorf("host comes from line content, got %q", rec.Host)
		}
		if rec.Service != "syslog" {
			t.Errorf("service comes from the file stem, got %q", rec.Service)
		}
	}

	stats, err := eng.StatsForHost("syslog")
	if err != nil {
		t.Fatalf("StatsForHost: %v", err)
	}
	want := model.HostStats{Total: 4, Info: 2, Warn: 1, Error: 1}
	if stats != want {
		t.Errorf("StatsForHost = %+v, want %+v", stats, want)
	}
}

func TestEngine_LogsForHostLimit(t *testing.T) {
	logDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(logDir, "syslog"), []byte(legacyFixture), 0644); err != nil {
		t.Fatal(err)
	}
	eng := newTestEngine(t, logDir)

	records, err := eng.LogsForHost("syslog", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected limit of 2, got %d", len(records))
	}

	// A zero limit is an empty window, not "no limit".
	records, err = eng.LogsForHost("syslog", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records for limit 0, got %d", len(records))
	}
}

func TestEngine_UnknownHost(t *testing.T) {
	eng := newTestEngine(t, t.TempDir())

	if _, err := eng.LogsForHost("nope", 10); !errors.Is(err, ErrHostNotFound) {
		t.Errorf("expected ErrHostNotFound, got %v", err)
	}
	if _, err := eng.StatsForHost("nope"); !errors.Is(err, ErrHostNotFound) {
		t.Errorf("expected ErrHostNotFound, got %v", err)
	}
	if _, err := eng.AggregateForHost("nope", "1h"); !errors.Is(err, ErrHostNotFound) {
		t.Errorf("expected ErrHostNotFound, got %v", err)
	}
}

func TestEngine_Hosts(t *testing.T) {
	logDir := t.TempDir()
	for _, name := range []string{"web", "db", "auth"} {
		if err := os.WriteFile(filepath.Join(logDir, name+".log"), []byte("x\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	eng := newTestEngine(t, logDir)

	hosts := eng.Hosts()
	if len(hosts) != 3 || hosts[0] != "auth" || hosts[2] != "web" {
		t.Errorf("expected sorted hosts, got %v", hosts)
	}
}

func TestEngine_AggregateForHost(t *testing.T) {
	logDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(logDir, "syslog"), []byte(legacyFixture), 0644); err != nil {
		t.Fatal(err)
	}
	eng := newTestEngine(t, logDir)

	agg, err := eng.AggregateForHost("syslog", "all")
	if err != nil {
		t.Fatalf("AggregateForHost: %v", err)
	}
	if agg.Total != 4 || agg.FilteredTotal != 4 {
		t.Errorf("expected all 4 records placed, got %+v", agg)
	}
	// The fixture spans 3 seconds: one minute bucket.
	if len(agg.TimeSeries) != 1 {
		t.Fatalf("expected a single bucket, got %d", len(agg.TimeSeries))
	}
	p := agg.TimeSeries[0]
	if p.Time != "12:00" || p.Info != 2 || p.Warn != 1 || p.Error != 1 {
		t.Errorf("unexpected bucket %+v", p)
	}
	if agg.Levels[model.LevelWarn] != 1 || agg.Levels[model.LevelError] != 1 {
		t.Errorf("unexpected level counts %v", agg.Levels)
	}
}
