package doubao

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"storyshot-ai/internal/apperr"
	"storyshot-ai/internal/types"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *VideoClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewVideoClient(Config{
		BaseUrl:      srv.URL,
		ApiKey:       "ark-key",
		VideoModel:   "seedance",
		PollInterval: 5 * time.Millisecond,
		Timeout:      2 * time.Second,
	})
}

func TestGenerateVideoPollsUntilSucceeded(t *testing.T) {
	var polls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/contents/generations/tasks":
			body, _ := io.ReadAll(r.Body)
			var req createTaskReq
			_ = json.Unmarshal(body, &req)
			if len(req.Content) != 2 || req.Content[1].ImageUrl.Url != "https://img/1.png" {
				t.Errorf("image content missing: %s", body)
			}
			_, _ = w.Write([]byte(`{"id":"cgt-1"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/contents/generations/tasks/cgt-1":
			if polls.Add(1) < 3 {
				_, _ = w.Write([]byte(`{"id":"cgt-1","status":"running"}`))
				return
			}
			_, _ = w.Write([]byte(`{"id":"cgt-1","status":"succeeded","content":{"video_url":"https://video/1.mp4"}}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	})

	got, err := client.GenerateVideo(context.Background(), types.VideoRequest{
		Prompt:   "a cat walks",
		ImageUrl: "https://img/1.png",
		Mode:     types.GenerationModeTextToImageToVideo,
	})
	if err != nil || got != "https://video/1.mp4" {
		t.Fatalf("GenerateVideo() = %q, %v", got, err)
	}
}

func TestGenerateVideoFailedTask(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_, _ = w.Write([]byte(`{"id":"cgt-2"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"cgt-2","status":"failed","error":{"code":"SensitiveContent","message":"blocked"}}`))
	})
	_, err := client.GenerateVideo(context.Background(), types.VideoRequest{Prompt: "x", Mode: types.GenerationModeTextToVideo})
	if !apperr.IsKind(err, apperr.KindVendor) {
		t.Fatalf("want vendor error, got %v", err)
	}
}

func TestGenerateVideoContextCancel(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_, _ = w.Write([]byte(`{"id":"cgt-3"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"cgt-3","status":"queued"}`))
	})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := client.GenerateVideo(ctx, types.VideoRequest{Prompt: "x"}); err == nil {
		t.Fatalf("expected error after cancel")
	}
}

func TestGenerateVideoMissingKey(t *testing.T) {
	client := NewVideoClient(Config{VideoModel: "m"})
	_, err := client.GenerateVideo(context.Background(), types.VideoRequest{Prompt: "x"})
	if !apperr.IsKind(err, apperr.KindConfig) {
		t.Fatalf("want config error, got %v", err)
	}
}
