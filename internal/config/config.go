package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"logsieve/internal/logger"
)

// Config holds the full runtime configuration. A Config value is treated as an
// immutable snapshot once handed out; reloads produce a fresh value (see Store).
type Config struct {
	Logs        LogsConfig        `yaml:"logs"`
	Server      ServerConfig      `yaml:"server"`
	AI          AIConfig          `yaml:"ai"`
	Translation TranslationConfig `yaml:"translation"`
	Display     DisplayConfig     `yaml:"display"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// LogsConfig controls file discovery and host attribution.
type LogsConfig struct {
	Directories     []string `yaml:"directories"`
	Recursive       bool     `yaml:"recursive"`
	IncludePatterns []string `yaml:"include_patterns"`
	ExcludePatterns []string `yaml:"exclude_patterns"`
	MaxFileSizeMB   int64    `yaml:"max_file_size_mb"`
	HostDetection   string   `yaml:"host_detection"` // filename|directory|auto
}

// MaxFileSizeBytes returns the discovery size ceiling in bytes.
func (l LogsConfig) MaxFileSizeBytes() int64 {
	return l.MaxFileSizeMB * 1024 * 1024
}

type CORSConfig struct {
	Enabled bool     `yaml:"enabled"`
	Origins []string `yaml:"origins"`
}

type ServerConfig struct {
	Host string     `yaml:"host"`
	Port int        `yaml:"port"`
	CORS CORSConfig `yaml:"cors"`
	// AdminTokenHash is an optional bcrypt hash gating the reload endpoint.
	AdminTokenHash string `yaml:"admin_token_hash"`
}

type GeminiConfig struct {
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

type AIConfig struct {
	Gemini           GeminiConfig `yaml:"gemini"`
	MaxLogsToAnalyze int          `yaml:"max_logs_to_analyze"`
}

type DeepLConfig struct {
	TargetLang string `yaml:"target_lang"`
	Formality  string `yaml:"formality"`
}

type TranslationConfig struct {
	DeepL DeepLConfig `yaml:"deepl"`
}

// DisplayConfig fixes the reference zone normalized timestamps are rebased to.
type DisplayConfig struct {
	UTCOffsetMinutes int `yaml:"utc_offset_minutes"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// DefaultUTCOffsetMinutes is the reference display zone when none is
// configured (UTC+9).
const DefaultUTCOffsetMinutes = 9 * 60

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Logs: LogsConfig{
			Directories:     []string{"./logs"},
			Recursive:       false,
			IncludePatterns: []string{"*.log", "*.txt"},
			ExcludePatterns: []string{"*.gz", "*.zip", "*backup*", "*.bak"},
			MaxFileSizeMB:   100,
			HostDetection:   "filename",
		},
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8000,
			CORS: CORSConfig{
				Enabled: true,
				Origins: []string{"http://localhost:5173", "http://localhost:3000"},
			},
		},
		AI: AIConfig{
			Gemini: GeminiConfig{
				Model:       "gemini-2.0-flash-exp",
				MaxTokens:   2048,
				Temperature: 0.7,
			},
			MaxLogsToAnalyze: 50,
		},
		Translation: TranslationConfig{
			DeepL: DeepLConfig{
				TargetLang: "JA",
				Formality:  "default",
			},
		},
		Display: DisplayConfig{
			UTCOffsetMinutes: DefaultUTCOffsetMinutes,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// ReferenceZone returns the configured display zone as a fixed location.
func (c *Config) ReferenceZone() *time.Location {
	name := fmt.Sprintf("UTC%+d", c.Display.UTCOffsetMinutes/60)
	return time.FixedZone(name, c.Display.UTCOffsetMinutes*60)
}

// Load reads a YAML config file and overlays it on the defaults. Absent keys
// keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// FromEnv applies environment overrides to the provided config.
func FromEnv(base Config) Config {
	result := base

	if v := os.Getenv("LOG_DIRECTORIES"); v != "" {
		result.Logs.Directories = parseList(v)
	}
	if v := os.Getenv("LOG_RECURSIVE"); v != "" {
		result.Logs.Recursive = strings.EqualFold(v, "true")
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			result.Server.Port = parsed
		} else {
			logger.Warn("invalid SERVER_PORT environment variable", "value", v)
		}
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		result.AI.Gemini.Model = v
	}

	return result
}

// Validate checks the configuration and corrects invalid values in place,
// logging a warning for each correction. Misconfiguration is never fatal.
func Validate(cfg *Config) {
	for _, dir := range cfg.Logs.Directories {
		if _, err := os.Stat(dir); err != nil {
			logger.Warn("log directory does not exist", "dir", dir)
		}
	}

	switch cfg.Logs.HostDetection {
	case "filename", "directory", "auto":
	default:
		logger.Warn("invalid host_detection strategy, using filename",
			"strategy", cfg.Logs.HostDetection)
		cfg.Logs.HostDetection = "filename"
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		logger.Warn("invalid port number, using 8000", "port", cfg.Server.Port)
		cfg.Server.Port = 8000
	}

	if cfg.Logs.MaxFileSizeMB <= 0 {
		logger.Warn("invalid max_file_size_mb, using 100", "value", cfg.Logs.MaxFileSizeMB)
		cfg.Logs.MaxFileSizeMB = 100
	}
}

func parseList(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
