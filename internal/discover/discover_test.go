package discover

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"logsieve/internal/config"
	"logsieve/internal/report"
)

func TestResolveHost(t *testing.T) {
	tests := []struct {
		path, base, strategy, want string
	}{
		{"/var/log/syslog", "/var/log", "filename", "syslog"},
		{"/var/log/hostA/syslog", "/var/log", "directory", "hostA"},
		{"/var/log/remote/hostB/syslog", "/var/log/remote", "auto", "hostB"},
		{"/logs/host1.log", "/logs", "auto", "host1"},
		{"/logs/host1.log", "/logs", "bogus-strategy", "host1"},
	}

	for _, tt := range tests {
		if got := ResolveHost(tt.path, tt.base, tt.strategy); got != tt.want {
			t.Errorf("ResolveHost(%q, %q, %q) = %q, want %q",
				tt.path, tt.base, tt.strategy, got, tt.want)
		}
	}
}

func writeFile(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestFind_FiltersAndGroups(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "web.log"), []byte("a\n"))
	writeFile(t, filepath.Join(tmp, "db.log"), []byte("b\n"))
	writeFile(t, filepath.Join(tmp, "notes.md"), []byte("c\n"))         // not included
	writeFile(t, filepath.Join(tmp, "old-backup.log"), []byte("d\n"))  // excluded
	writeFile(t, filepath.Join(tmp, "huge.log"), bytes.Repeat([]byte("x"), 1024*1024+1))

	cfg := config.LogsConfig{
		Directories:     []string{tmp, filepath.Join(tmp, "does-not-exist")},
		IncludePatterns: []string{"*.log"},
		ExcludePatterns: []string{"*backup*"},
		MaxFileSizeMB:   1,
		HostDetection:   "filename",
	}

	rep := report.New()
	files := Find(cfg, rep)

	want := map[string][]string{
		"web": {filepath.Join(tmp, "web.log")},
		"db":  {filepath.Join(tmp, "db.log")},
	}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("Find = %v, want %v", files, want)
	}
	if rep.DirsMissing != 1 {
		t.Errorf("expected 1 missing dir, got %d", rep.DirsMissing)
	}
	if rep.FilesSkipped != 1 {
		t.Errorf("expected 1 skipped (oversized) file, got %d", rep.FilesSkipped)
	}
	if rep.FilesMatched != 2 {
		t.Errorf("expected 2 matched files, got %d", rep.FilesMatched)
	}
}

func TestFind_RecursiveDirectoryStrategy(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "hostA", "syslog.log"), []byte("a\n"))
	writeFile(t, filepath.Join(tmp, "hostA", "auth.log"), []byte("b\n"))
	writeFile(t, filepath.Join(tmp, "hostB", "syslog.log"), []byte("c\n"))

	cfg := config.LogsConfig{
		Directories:     []string{tmp},
		Recursive:       true,
		IncludePatterns: []string{"*.log"},
		MaxFileSizeMB:   10,
		HostDetection:   "directory",
	}

	files := Find(cfg, nil)

	if len(files["hostA"]) != 2 || len(files["hostB"]) != 1 {
		t.Fatalf("unexpected grouping: %v", files)
	}
	// File lists are sorted for deterministic output.
	if filepath.Base(files["hostA"][0]) != "auth.log" {
		t.Errorf("expected sorted file list, got %v", files["hostA"])
	}
}

func TestFind_NonRecursiveIgnoresSubdirs(t *testing.T) {
	tmp := t.TempDir()
	writeFile(t, filepath.Join(tmp, "flat.log"), []byte("a\n"))
	writeFile(t, filepath.Join(tmp, "nested", "deep.log"), []byte("b\n"))

	cfg := config.LogsConfig{
		Directories:     []string{tmp},
		Recursive:       false,
		IncludePatterns: []string{"*.log"},
		MaxFileSizeMB:   10,
		HostDetection:   "filename",
	}

	files := Find(cfg, nil)
	if len(files) != 1 || len(files["flat"]) != 1 {
		t.Fatalf("expected only the flat file, got %v", files)
	}
}

func TestHosts_Sorted(t *testing.T) {
	got := Hosts(map[string][]string{"zulu": nil, "alpha": nil, "mike": nil})
	want := []string{"alpha", "mike", "zulu"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Hosts = %v, want %v", got, want)
	}
}
