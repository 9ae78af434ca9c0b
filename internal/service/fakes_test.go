package service

import (
	"context"
	"errors"
	"storyshot-ai/internal/storage"
	"storyshot-ai/internal/types"
	"strings"
	"sync"
	"testing"
)

type fakeText struct {
	mu    sync.Mutex
	calls []string
	fn    func(prompt, systemPrompt string) (string, error)
}

func (f *fakeText) GenerateText(_ context.Context, prompt, systemPrompt string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, prompt)
	f.mu.Unlock()
	return f.fn(prompt, systemPrompt)
}

type fakeTranslator struct {
	mu    sync.Mutex
	calls []types.TranslateRequest
	err   error
}

// Translate 在原文前加上方向前缀，便于断言
func (f *fakeTranslator) Translate(_ context.Context, req types.TranslateRequest) ([]string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]string, len(req.Texts))
	for i, text := range req.Texts {
		out[i] = string(req.Direction) + ":" + text
	}
	return out, nil
}

type fakeImage struct {
	calls int
	fn    func(req types.ImageRequest) (*types.ImageResult, error)
}

func (f *fakeImage) GenerateImage(_ context.Context, req types.ImageRequest) (*types.ImageResult, error) {
	f.calls++
	return f.fn(req)
}

type fakeVideo struct {
	calls []types.VideoRequest
}

func (f *fakeVideo) GenerateVideo(_ context.Context, req types.VideoRequest) (string, error) {
	f.calls = append(f.calls, req)
	return "https://cdn.example.com/video.mp4", nil
}

type fakeAnalyzer struct {
	last types.AnalyzeRequest
}

func (f *fakeAnalyzer) Analyze(_ context.Context, req types.AnalyzeRequest) (string, error) {
	f.last = req
	return " watercolor, soft light ", nil
}

var errFake = errors.New("fake vendor down")

// failingStore 读写项目正常，保存分镜和更新项目总是失败
type failingStore struct {
	*storage.MemoryProjectStore
}

func (failingStore) SaveSegments(context.Context, string, []types.Segment) error {
	return errors.New("db down")
}

func (failingStore) Update(context.Context, *types.Project) error {
	return errors.New("db down")
}

// newTestService 默认的文本模型按系统提示词返回固定的合法回复
func newTestService(t *testing.T) (*Service, *fakeText, *fakeTranslator) {
	t.Helper()
	text := &fakeText{fn: func(prompt, systemPrompt string) (string, error) {
		switch systemPrompt {
		case types.DescriptionSystemPrompt:
			return `{"storyboard_description": "清晨的街道"}`, nil
		case types.OptimizeImageSystemPrompt, types.OptimizeVideoSystemPrompt:
			return "a quiet street at dawn", nil
		case types.KeywordsSystemPrompt:
			return `{"keywords": ["街道", "清晨"], "keywords_en": ["street", "dawn"]}`, nil
		case types.VisualBibleSystemPrompt:
			return "```json\n{\"overall_theme\": \"孤独\", \"emotional_arc\": \"由冷到暖\"}\n```", nil
		}
		return "", errors.New("unexpected prompt: " + strings.SplitN(systemPrompt, "\n", 2)[0])
	}}
	translator := &fakeTranslator{}
	svc := New(Deps{
		TextGenerator: text,
		Translator:    translator,
		Projects:      storage.NewMemoryProjectStore(),
		Assets:        storage.NewLocalAssetStore(t.TempDir()),
	})
	return svc, text, translator
}

func createProject(t *testing.T, svc *Service, p *types.Project) {
	t.Helper()
	if err := svc.Projects.Create(context.Background(), p); err != nil {
		t.Fatalf("create project err = %v", err)
	}
}

func assertContiguous(t *testing.T, segments []types.Segment) {
	t.Helper()
	for i, seg := range segments {
		if seg.Number != i+1 {
			t.Fatalf("segment %d has number %d", i, seg.Number)
		}
	}
}
