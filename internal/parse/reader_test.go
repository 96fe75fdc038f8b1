package parse

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
)

const rotatedContent = "Nov 26 12:00:01 host1 systemd[1]: Started Session 1 of user root.\n" +
	"Nov 26 12:00:03 host1 kernel: Error: disk full\n"

func TestParseFile_Gzip(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "syslog.1.gz")

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(rotatedContent)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	records, err := testParser().ParseFile(path, nil)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[1].Level != "ERROR" {
		t.Errorf("expected ERROR, got %q", records[1].Level)
	}
}

func TestParseFile_Zstd(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "syslog.1.zst")

	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := zw.Write([]byte(rotatedContent)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}

	records, err := testParser().ParseFile(path, nil)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
}
