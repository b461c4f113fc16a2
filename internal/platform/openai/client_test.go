package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/constella-backend/internal/platform/logger"
)

const okBody = `{"output":[{"type":"message","role":"assistant","content":[{"type":"output_text","text":"{\"topic\":\"Black Hole\"}"}]}]}`

func newTestClient(t *testing.T, url string, retries int, temp *float64) Client {
	t.Helper()
	c, err := NewClientWithConfig(logger.Nop(), Config{
		APIKey:      "test-key",
		BaseURL:     url,
		Model:       "test-model",
		Timeout:     5 * time.Second,
		MaxRetries:  retries,
		Temperature: temp,
	})
	if err != nil {
		t.Fatalf("NewClientWithConfig: %v", err)
	}
	return c
}

func TestGenerateJSONTextSendsJSONFormat(t *testing.T) {
	var gotFormat string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/responses" {
			t.Errorf("path: want=/v1/responses got=%s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("auth header: got=%q", got)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if text, ok := body["text"].(map[string]any); ok {
			if f, ok := text["format"].(map[string]any); ok {
				gotFormat, _ = f["type"].(string)
			}
		}
		_, _ = io.WriteString(w, okBody)
	}))
	defer srv.Close()

	out, err := newTestClient(t, srv.URL, 0, nil).GenerateJSONText(context.Background(), "sys", "user")
	if err != nil {
		t.Fatalf("GenerateJSONText: %v", err)
	}
	if out != `{"topic":"Black Hole"}` {
		t.Fatalf("output: got=%q", out)
	}
	if gotFormat != "json_object" {
		t.Fatalf("format: want=json_object got=%q", gotFormat)
	}
}

func TestRetriesOnServerError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, okBody)
	}))
	defer srv.Close()

	if _, err := newTestClient(t, srv.URL, 2, nil).GenerateText(context.Background(), "sys", "user"); err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("calls: want=2 got=%d", got)
	}
}

func TestDoesNotRetryBadRequest(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"bad"}`)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL, 3, nil).GenerateText(context.Background(), "sys", "user")
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("calls: want=1 got=%d", got)
	}
}

func TestDropsRejectedTemperature(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		raw, _ := io.ReadAll(r.Body)
		if strings.Contains(string(raw), `"temperature"`) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":{"message":"Unsupported parameter: 'temperature' is not supported with this model."}}`)
			return
		}
		_, _ = io.WriteString(w, okBody)
	}))
	defer srv.Close()

	temp := 0.3
	if _, err := newTestClient(t, srv.URL, 0, &temp).GenerateText(context.Background(), "sys", "user"); err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("calls: want=2 got=%d", got)
	}
}
