// Package ai posts log excerpts to the Gemini API for a security-oriented
// summary. The result is opaque text; nothing here feeds back into parsing
// or aggregation.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/valyala/fastjson"

	"logsieve/internal/config"
)

// ErrNoAPIKey reports a missing GEMINI_API_KEY.
var ErrNoAPIKey = errors.New("gemini api key not configured")

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// Client calls the Gemini generateContent endpoint.
type Client struct {
	apiKey  string
	cfg     config.AIConfig
	baseURL string
	client  *http.Client
}

// NewClient builds a Client from config; the API key comes from the
// GEMINI_API_KEY environment variable.
func NewClient(cfg config.AIConfig) *Client {
	return &Client{
		apiKey:  os.Getenv("GEMINI_API_KEY"),
		cfg:     cfg,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Analyze summarizes the given log messages. At most the configured number of
// messages is sent.
func (c *Client) Analyze(ctx context.Context, logs []string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNoAPIKey
	}

	if max := c.cfg.MaxLogsToAnalyze; max > 0 && len(logs) > max {
		logs = logs[:max]
	}

	prompt := "You are a security expert analyzing system logs.\n" +
		"Please analyze the following log entries and identify any suspicious activities, " +
		"errors, or notable patterns.\n" +
		"Provide a summary of the events and point out if there are any security concerns.\n\n" +
		"Logs:\n" + strings.Join(logs, "\n")

	body, err := json.Marshal(map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
		"generationConfig": map[string]any{
			"maxOutputTokens": c.cfg.Gemini.MaxTokens,
			"temperature":     c.cfg.Gemini.Temperature,
		},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.baseURL, c.cfg.Gemini.Model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	v, err := fastjson.ParseBytes(data)
	if err != nil {
		return "", fmt.Errorf("gemini response parse: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if msg := v.GetStringBytes("error", "message"); msg != nil {
			return "", fmt.Errorf("gemini error (%d): %s", resp.StatusCode, msg)
		}
		return "", fmt.Errorf("gemini error status %d", resp.StatusCode)
	}

	text := v.GetStringBytes("candidates", "0", "content", "parts", "0", "text")
	if text == nil {
		return "", errors.New("gemini response missing text")
	}
	return string(text), nil
}
