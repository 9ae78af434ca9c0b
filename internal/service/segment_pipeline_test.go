package service

import (
	"context"
	"storyshot-ai/internal/apperr"
	"storyshot-ai/internal/dto"
	"storyshot-ai/internal/types"
	"strings"
	"testing"
)

func stripSpace(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func TestDetectLanguage(t *testing.T) {
	cases := map[string]string{
		"今天天气很好":        types.LanguageChinese,
		"Hello, 世界":     types.LanguageChinese,
		"Hello world":   types.LanguageEnglish,
		"Bonjour à tous": types.LanguageEnglish,
	}
	for text, want := range cases {
		if got := DetectLanguage(text); got != want {
			t.Errorf("DetectLanguage(%q) = %s, want %s", text, got, want)
		}
	}
}

func TestGenerateSegmentsConcatenationMatchesScript(t *testing.T) {
	svc, text, translator := newTestService(t)
	text.fn = func(prompt, systemPrompt string) (string, error) {
		return "```json\n[{\"text\": \"清晨，城市还没醒来。\"}, {\"text\": \"\"}, {\"text\": \"一只猫走过街角。\"}]\n```", nil
	}
	script := "清晨，城市还没醒来。一只猫走过街角。"

	segments, err := svc.GenerateSegments(context.Background(), script)
	if err != nil {
		t.Fatalf("GenerateSegments() err = %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("segments = %+v", segments)
	}
	var joined strings.Builder
	for _, seg := range segments {
		if seg.Text == "" || seg.Id == "" || seg.SceneDescription != "" {
			t.Fatalf("bad segment %+v", seg)
		}
		if seg.Language != types.LanguageChinese || seg.Translation != "" {
			t.Fatalf("chinese segment should not be translated: %+v", seg)
		}
		joined.WriteString(seg.Text)
	}
	if stripSpace(joined.String()) != stripSpace(script) {
		t.Fatalf("joined = %q", joined.String())
	}
	assertContiguous(t, segments)
	if len(translator.calls) != 0 {
		t.Fatalf("translator called %d times", len(translator.calls))
	}
}

func TestGenerateSegmentsFallsBackToPunctuationSplit(t *testing.T) {
	svc, text, _ := newTestService(t)
	text.fn = func(prompt, systemPrompt string) (string, error) {
		return "Sure! Here are your segments.", nil
	}
	script := "Hello world. How are you?\nFine!"

	segments, err := svc.GenerateSegments(context.Background(), script)
	if err != nil {
		t.Fatalf("GenerateSegments() err = %v", err)
	}
	want := []string{"Hello world.", "How are you?", "Fine!"}
	if len(segments) != len(want) {
		t.Fatalf("segments = %+v", segments)
	}
	for i, seg := range segments {
		if seg.Text != want[i] {
			t.Errorf("segment %d = %q, want %q", i, seg.Text, want[i])
		}
		if seg.Translation != "to_native:"+want[i] {
			t.Errorf("segment %d translation = %q", i, seg.Translation)
		}
	}
	assertContiguous(t, segments)
}

func TestGenerateSegmentsForeignTranslation(t *testing.T) {
	svc, text, translator := newTestService(t)
	text.fn = func(prompt, systemPrompt string) (string, error) {
		return `[{"text": "Hello world"}]`, nil
	}

	segments, err := svc.GenerateSegments(context.Background(), "Hello world")
	if err != nil {
		t.Fatalf("GenerateSegments() err = %v", err)
	}
	if len(segments) != 1 || segments[0].Language != types.LanguageEnglish || segments[0].Translation == "" {
		t.Fatalf("segments = %+v", segments)
	}
	if len(translator.calls) != 1 || translator.calls[0].Direction != types.TranslateToNative {
		t.Fatalf("translator calls = %+v", translator.calls)
	}

	translator.err = errFake
	segments, err = svc.GenerateSegments(context.Background(), "Hello world")
	if err != nil {
		t.Fatalf("translation failure must not fail the pipeline: %v", err)
	}
	if len(segments) != 1 || segments[0].Translation != "" {
		t.Fatalf("segments = %+v", segments)
	}
}

func TestGenerateSegmentsSplitCallFailureIsFatal(t *testing.T) {
	svc, text, _ := newTestService(t)
	text.fn = func(prompt, systemPrompt string) (string, error) {
		return "", apperr.NewVendorError("openai", 500, `{"error":"boom"}`)
	}
	if _, err := svc.GenerateSegments(context.Background(), "Hello world"); !apperr.IsKind(err, apperr.KindVendor) {
		t.Fatalf("err = %v, want vendor error", err)
	}
	if _, err := svc.GenerateSegments(context.Background(), "   "); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("empty script err = %v", err)
	}
}

func TestTranslateSegmentsMatchesById(t *testing.T) {
	svc, _, _ := newTestService(t)
	got, err := svc.TranslateSegments(context.Background(), dto.TranslateSegmentsReq{Segments: []dto.SegmentText{
		{Id: "a", Text: "Hello"},
		{Id: "b", Text: "World"},
	}})
	if err != nil {
		t.Fatalf("TranslateSegments() err = %v", err)
	}
	if len(got) != 2 || got[0].Id != "a" || got[0].Translation != "to_native:Hello" || got[1].Id != "b" {
		t.Fatalf("translations = %+v", got)
	}
}

func TestGenerateProjectSegmentsUsesStoredScript(t *testing.T) {
	svc, text, _ := newTestService(t)
	text.fn = func(prompt, systemPrompt string) (string, error) {
		return `[{"text": "第一句。"}, {"text": "第二句。"}]`, nil
	}
	createProject(t, svc, &types.Project{Id: "p1", ScriptContent: "第一句。第二句。", CurrentStep: types.StepSegments})

	if _, err := svc.GenerateProjectSegments(context.Background(), "p1", ""); err != nil {
		t.Fatalf("GenerateProjectSegments() err = %v", err)
	}
	p, _ := svc.Projects.Get(context.Background(), "p1")
	if len(p.Segments) != 2 || p.CurrentStep != types.StepSegments {
		t.Fatalf("project = %+v", p)
	}
}
