package discover

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"logsieve/internal/config"
	"logsieve/internal/logger"
	"logsieve/internal/report"
)

// Find enumerates log files under the configured directories and groups them
// by host. File lists are sorted so identical filesystem state always yields
// the same mapping. Missing directories and unreadable files are skipped with
// a warning, never fatal. rep may be nil.
func Find(cfg config.LogsConfig, rep *report.ScanReport) map[string][]string {
	if rep == nil {
		rep = report.New()
	}
	maxBytes := cfg.MaxFileSizeBytes()
	files := make(map[string][]string)

	for _, dir := range cfg.Directories {
		if _, err := os.Stat(dir); err != nil {
			logger.Warn("directory does not exist", "dir", dir)
			rep.DirsMissing++
			continue
		}

		for _, path := range listFiles(dir, cfg.Recursive) {
			info, err := os.Stat(path)
			if err != nil {
				logger.Warn("error checking file", "file", path, "err", err)
				rep.FilesSkipped++
				continue
			}
			if info.Size() > maxBytes {
				logger.Warn("file too large, skipping", "file", path, "size", info.Size())
				rep.FilesSkipped++
				continue
			}

			name := filepath.Base(path)
			if !matchAny(cfg.IncludePatterns, name) {
				continue
			}
			if matchAny(cfg.ExcludePatterns, name) {
				continue
			}

			host := ResolveHost(path, dir, cfg.HostDetection)
			files[host] = append(files[host], path)
			rep.FilesMatched++
		}
	}

	for host := range files {
		sort.Strings(files[host])
	}
	return files
}

// Hosts returns the sorted host identifiers from a discovery pass.
func Hosts(files map[string][]string) []string {
	hosts := make([]string, 0, len(files))
	for h := range files {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)
	return hosts
}

// ResolveHost maps a file path to its logical host under the given strategy.
// filename: the file's name without extension. directory: the immediate parent
// directory name. auto: filename for files directly under baseDir, directory
// otherwise, so one strategy serves both flat and hierarchical layouts.
// Unknown strategies behave as filename.
func ResolveHost(path, baseDir, strategy string) string {
	switch strategy {
	case "directory":
		return filepath.Base(filepath.Dir(path))
	case "auto":
		if filepath.Clean(filepath.Dir(path)) == filepath.Clean(baseDir) {
			return stem(path)
		}
		return filepath.Base(filepath.Dir(path))
	default:
		return stem(path)
	}
}

func stem(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func listFiles(dir string, recursive bool) []string {
	var out []string

	if recursive {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				logger.Warn("walk error", "path", path, "err", err)
				return nil
			}
			if d.Type().IsRegular() {
				out = append(out, path)
			}
			return nil
		})
		if err != nil {
			logger.Warn("walk failed", "dir", dir, "err", err)
		}
		return out
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Warn("read dir failed", "dir", dir, "err", err)
		return out
	}
	for _, e := range entries {
		if e.Type().IsRegular() {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out
}

// matchAny reports whether name matches at least one shell glob in patterns.
// A malformed pattern counts as no match and is logged once per call site hit.
func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		ok, err := filepath.Match(p, name)
		if err != nil {
			logger.Warn("invalid file pattern", "pattern", p, "err", err)
			continue
		}
		if ok {
			return true
		}
	}
	return false
}
