package translate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"logsieve/internal/config"
)

func testClient(baseURL, key string) *Client {
	return &Client{
		apiKey:  key,
		cfg:     config.Default().Translation,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func TestTranslate_MissingKey(t *testing.T) {
	c := testClient("http://unused", "")
	if _, err := c.Translate(context.Background(), "hello"); !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("expected ErrNoAPIKey, got %v", err)
	}
}

func TestTranslate_Success(t *testing.T) {
	var gotText, gotLang, gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Error(err)
		}
		gotText = r.PostForm.Get("text")
		gotLang = r.PostForm.Get("target_lang")
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"translations":[{"detected_source_language":"EN","text":"ディスクが満杯です"}]}`))
	}))
	defer ts.Close()

	c := testClient(ts.URL, "test-key")
	result, err := c.Translate(context.Background(), "disk is full")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if result != "ディスクが満杯です" {
		t.Errorf("unexpected result %q", result)
	}
	if gotText != "disk is full" || gotLang != "JA" {
		t.Errorf("unexpected form values %q / %q", gotText, gotLang)
	}
	if gotAuth != "DeepL-Auth-Key test-key" {
		t.Errorf("unexpected auth header %q", gotAuth)
	}
}

func TestTranslate_UpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"Authorization failed"}`))
	}))
	defer ts.Close()

	c := testClient(ts.URL, "bad-key")
	_, err := c.Translate(context.Background(), "hello")
	if err == nil || !strings.Contains(err.Error(), "Authorization failed") {
		t.Fatalf("expected upstream error message, got %v", err)
	}
}
