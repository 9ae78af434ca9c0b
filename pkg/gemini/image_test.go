package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"storyshot-ai/internal/apperr"
	"storyshot-ai/internal/types"
	"sync"
	"sync/atomic"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseUrl: srv.URL, ApiKey: "key", ImageModel: "img-model"})
}

func imageResponse(w http.ResponseWriter) {
	_ = json.NewEncoder(w).Encode(map[string]any{
		"candidates": []map[string]any{{
			"content": map[string]any{"parts": []map[string]any{
				{"text": "here you go"},
				{"inlineData": map[string]any{"mimeType": "image/png", "data": base64.StdEncoding.EncodeToString([]byte("png"))}},
			}},
		}},
	})
}

func TestGenerateImage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/img-model:generateContent" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "key" {
			t.Errorf("missing api key header")
		}
		imageResponse(w)
	})

	res, err := client.GenerateImage(context.Background(), types.ImageRequest{Prompt: "cat", AspectRatio: "16:9"})
	if err != nil {
		t.Fatalf("GenerateImage() err = %v", err)
	}
	if string(res.Data) != "png" || res.MimeType != "image/png" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestGenerateImageEmptyResponse(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"sorry"}]}}]}`))
	})
	_, err := client.GenerateImage(context.Background(), types.ImageRequest{Prompt: "cat"})
	if !apperr.IsKind(err, apperr.KindEmptyResponse) {
		t.Fatalf("want empty response error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}

func TestCloseWhileCreatingClient(t *testing.T) {
	client := NewClient(Config{BaseUrl: "http://127.0.0.1:1", ApiKey: "key"})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = client.genaiClient()
		}()
		go func() {
			defer wg.Done()
			_ = client.Close()
		}()
	}
	wg.Wait()
	if err := client.Close(); err != nil {
		t.Fatalf("Close() err = %v", err)
	}
}

func TestGenerateImageDoesNotRetryVendorError(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad prompt"}}`))
	})
	_, err := client.GenerateImage(context.Background(), types.ImageRequest{Prompt: "cat"})
	if !apperr.IsKind(err, apperr.KindVendor) {
		t.Fatalf("want vendor error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}

func TestGenerateImageMissingKey(t *testing.T) {
	client := NewClient(Config{})
	_, err := client.GenerateImage(context.Background(), types.ImageRequest{Prompt: "cat"})
	if !apperr.IsKind(err, apperr.KindConfig) {
		t.Fatalf("want config error, got %v", err)
	}
}
