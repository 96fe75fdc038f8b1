// Package translate wraps the DeepL translation API. Like the AI call-out it
// is opaque glue around the core.
package translate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/valyala/fastjson"

	"logsieve/internal/config"
)

// ErrNoAPIKey reports a missing DEEPL_API_KEY.
var ErrNoAPIKey = errors.New("deepl api key not configured")

const defaultBaseURL = "https://api-free.deepl.com"

// Client calls the DeepL v2 translate endpoint.
type Client struct {
	apiKey  string
	cfg     config.TranslationConfig
	baseURL string
	client  *http.Client
}

// NewClient builds a Client from config; the API key comes from the
// DEEPL_API_KEY environment variable.
func NewClient(cfg config.TranslationConfig) *Client {
	return &Client{
		apiKey:  os.Getenv("DEEPL_API_KEY"),
		cfg:     cfg,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Translate renders text into the configured target language.
func (c *Client) Translate(ctx context.Context, text string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNoAPIKey
	}

	form := url.Values{}
	form.Set("text", text)
	form.Set("target_lang", c.cfg.DeepL.TargetLang)
	if f := c.cfg.DeepL.Formality; f != "" && f != "default" {
		form.Set("formality", f)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v2/translate", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "DeepL-Auth-Key "+c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("deepl request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	v, err := fastjson.ParseBytes(data)
	if err != nil {
		return "", fmt.Errorf("deepl response parse: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if msg := v.GetStringBytes("message"); msg != nil {
			return "", fmt.Errorf("deepl error (%d): %s", resp.StatusCode, msg)
		}
		return "", fmt.Errorf("deepl error status %d", resp.StatusCode)
	}

	translated := v.GetStringBytes("translations", "0", "text")
	if translated == nil {
		return "", errors.New("deepl response missing translation")
	}
	return string(translated), nil
}
