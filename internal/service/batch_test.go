package service

import (
	"context"
	"errors"
	"storyshot-ai/internal/apperr"
	"storyshot-ai/internal/storage"
	"storyshot-ai/internal/types"
	"testing"
	"time"
)

func threeSegments() []types.Segment {
	segments := []types.Segment{{Id: "1", Text: "one"}, {Id: "2", Text: "two"}, {Id: "3", Text: "three"}}
	types.Renumber(segments)
	return segments
}

func all(types.Segment) bool { return true }

func TestRunBatchContinuesAfterItemFailure(t *testing.T) {
	var processed []string
	var persisted []types.Segment
	op := func(_ context.Context, seg *types.Segment) error {
		processed = append(processed, seg.Id)
		if seg.Id == "2" {
			return errors.New("vendor down")
		}
		seg.SceneDescription = "desc " + seg.Text
		return nil
	}

	result, summary := RunBatch(context.Background(), threeSegments(), all, op, BatchOptions{
		Kind: types.BatchKindDescriptions,
		Persist: func(_ context.Context, segments []types.Segment) error {
			persisted = segments
			return nil
		},
	})

	if len(processed) != 3 || processed[2] != "3" {
		t.Fatalf("processed = %v", processed)
	}
	if summary.State != types.BatchStateCompleted || summary.Succeeded != 2 || summary.Failed != 1 || summary.Processed != 3 {
		t.Fatalf("summary = %+v", summary)
	}
	if len(summary.FailedIds) != 1 || summary.FailedIds[0] != "2" {
		t.Fatalf("failed ids = %v", summary.FailedIds)
	}
	if result[0].SceneDescription == "" || result[1].SceneDescription != "" || result[2].SceneDescription == "" {
		t.Fatalf("result = %+v", result)
	}
	if len(persisted) != 2 || persisted[0].Id != "1" || persisted[1].Id != "3" {
		t.Fatalf("persist should receive only the succeeded segments, got %+v", persisted)
	}
}

func TestRunBatchStopsAtItemBoundary(t *testing.T) {
	token := &CancelToken{}
	processed := 0
	persistCalls := 0
	op := func(_ context.Context, seg *types.Segment) error {
		processed++
		// 第一个分镜处理过程中请求停止，本分镜仍然完成
		token.Cancel()
		seg.ImageUrl = "img"
		return nil
	}

	result, summary := RunBatch(context.Background(), threeSegments(), all, op, BatchOptions{
		Kind:  types.BatchKindImages,
		Token: token,
		Persist: func(context.Context, []types.Segment) error {
			persistCalls++
			return errors.New("db down")
		},
	})

	if processed != 1 || summary.Processed != 1 || summary.Succeeded != 1 {
		t.Fatalf("processed = %d summary = %+v", processed, summary)
	}
	if summary.State != types.BatchStateStopped {
		t.Fatalf("state = %s", summary.State)
	}
	if result[0].ImageUrl != "img" || result[1].ImageUrl != "" {
		t.Fatalf("result = %+v", result)
	}
	if persistCalls != 1 {
		t.Fatalf("persist calls = %d", persistCalls)
	}
}

func TestRunBatchNothingEligible(t *testing.T) {
	called := false
	_, summary := RunBatch(context.Background(), threeSegments(), func(types.Segment) bool { return false },
		func(context.Context, *types.Segment) error { called = true; return nil },
		BatchOptions{Persist: func(context.Context, []types.Segment) error { called = true; return nil }})
	if called || summary.State != types.BatchStateEmpty || summary.Total != 0 {
		t.Fatalf("called = %v summary = %+v", called, summary)
	}
}

func TestRunBatchEmitsEventsInOrder(t *testing.T) {
	var events []string
	eligible := func(seg types.Segment) bool { return seg.Id != "2" }
	RunBatch(context.Background(), threeSegments(), eligible, func(context.Context, *types.Segment) error { return nil },
		BatchOptions{OnEvent: func(e types.BatchEvent) { events = append(events, e.Type+":"+e.SegmentId) }})
	want := []string{"started:", "item_started:1", "item_succeeded:1", "item_started:3", "item_succeeded:3", "finished:"}
	if len(events) != len(want) {
		t.Fatalf("events = %v", events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("events = %v", events)
		}
	}
}

func TestBatchManagerSingleRunPerProject(t *testing.T) {
	m := NewBatchManager()
	token, err := m.begin("p1", types.BatchKindImages, []string{"1", "2"})
	if err != nil {
		t.Fatalf("begin err = %v", err)
	}
	if _, err = m.begin("p1", types.BatchKindVideos, nil); !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("second begin err = %v", err)
	}
	if _, err = m.begin("p2", types.BatchKindVideos, nil); err != nil {
		t.Fatalf("other project begin err = %v", err)
	}

	events, unsubscribe := m.Subscribe("p1")
	defer unsubscribe()

	m.track("p1", types.BatchEvent{Type: types.BatchEventItemStarted, SegmentId: "1"})
	status := m.Status("p1")
	if !status.Active || status.CurrentId != "1" || status.Total != 2 {
		t.Fatalf("status = %+v", status)
	}
	m.track("p1", types.BatchEvent{Type: types.BatchEventItemSucceeded, SegmentId: "1", Succeeded: 1})
	if status = m.Status("p1"); status.CurrentId != "" || status.Succeeded != 1 || len(status.InFlightIds) != 1 {
		t.Fatalf("status = %+v", status)
	}

	if !m.Cancel("p1") || !token.Cancelled() || !m.Status("p1").Cancelling {
		t.Fatal("cancel should flip the token")
	}

	summary := types.BatchSummary{Kind: types.BatchKindImages, State: types.BatchStateStopped, Succeeded: 1}
	m.track("p1", types.BatchEvent{Type: types.BatchEventFinished, Summary: &summary})
	status = m.Status("p1")
	if status.Active || status.LastSummary == nil || status.LastSummary.State != types.BatchStateStopped {
		t.Fatalf("status after finish = %+v", status)
	}
	if m.Cancel("p1") {
		t.Fatal("cancel without active run should report false")
	}

	got := 0
	for len(events) > 0 {
		e := <-events
		if e.ProjectId != "p1" {
			t.Fatalf("event project = %s", e.ProjectId)
		}
		got++
	}
	if got != 3 {
		t.Fatalf("received %d events", got)
	}
}

func TestBatchManagerCancelAll(t *testing.T) {
	m := NewBatchManager()
	t1, _ := m.begin("p1", types.BatchKindImages, []string{"1"})
	t2, _ := m.begin("p2", types.BatchKindVideos, []string{"1"})
	if n := m.CancelAll(); n != 2 || !t1.Cancelled() || !t2.Cancelled() {
		t.Fatalf("CancelAll() = %d", n)
	}
}

func waitBatch(t *testing.T, svc *Service, projectId string) types.BatchStatus {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for svc.Batches.IsActive(projectId) {
		if time.Now().After(deadline) {
			t.Fatal("batch did not finish")
		}
		time.Sleep(5 * time.Millisecond)
	}
	svc.Wait()
	return svc.BatchStatus(projectId)
}

func TestStartBatchDescriptionsPersists(t *testing.T) {
	svc, _, _ := newTestService(t)
	segments := threeSegments()
	segments[1].SceneDescription = "已有描述"
	createProject(t, svc, &types.Project{Id: "p1", Segments: segments, VisualBible: &types.VisualBible{OverallTheme: "孤独"}})

	if _, err := svc.StartBatch(context.Background(), "p1", types.BatchKindDescriptions, false); err != nil {
		t.Fatalf("StartBatch() err = %v", err)
	}
	status := waitBatch(t, svc, "p1")
	if status.LastSummary == nil || status.LastSummary.Succeeded != 2 || status.LastSummary.Total != 2 {
		t.Fatalf("status = %+v", status)
	}

	p, _ := svc.Projects.Get(context.Background(), "p1")
	if p.Segments[0].SceneDescription != "清晨的街道" || p.Segments[1].SceneDescription != "已有描述" {
		t.Fatalf("stored = %+v", p.Segments)
	}
	if p.Segments[0].SceneDescriptionEn != "to_english:清晨的街道" {
		t.Fatalf("english = %q", p.Segments[0].SceneDescriptionEn)
	}
}

func TestStartBatchValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	createProject(t, svc, &types.Project{Id: "p1", Segments: threeSegments(), GenerationMode: types.GenerationModeTextToVideo})

	if _, err := svc.StartBatch(context.Background(), "p1", types.BatchKindDescriptions, false); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("missing visual bible err = %v", err)
	}
	if _, err := svc.StartBatch(context.Background(), "p1", types.BatchKindImages, false); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("images in text-to-video err = %v", err)
	}
	if _, err := svc.StartBatch(context.Background(), "p1", "unknown", false); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("unknown kind err = %v", err)
	}

	// 没有描述，视频批处理无事可做
	status, err := svc.StartBatch(context.Background(), "p1", types.BatchKindVideos, false)
	if err != nil {
		t.Fatalf("StartBatch() err = %v", err)
	}
	if status.Active || status.LastSummary == nil || status.LastSummary.State != types.BatchStateEmpty {
		t.Fatalf("status = %+v", status)
	}
	if _, err = svc.CancelBatch("p1"); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("cancel err = %v", err)
	}
}

func TestStartBatchTranslationsFillsMissing(t *testing.T) {
	svc, _, _ := newTestService(t)
	segments := []types.Segment{
		{Id: "a", Language: types.LanguageEnglish, Text: "Hello"},
		{Id: "b", Language: types.LanguageEnglish, Text: "World", Translation: "世界"},
	}
	types.Renumber(segments)
	createProject(t, svc, &types.Project{Id: "p1", Segments: segments})

	if _, err := svc.StartBatch(context.Background(), "p1", types.BatchKindTranslations, false); err != nil {
		t.Fatalf("StartBatch() err = %v", err)
	}
	waitBatch(t, svc, "p1")
	p, _ := svc.Projects.Get(context.Background(), "p1")
	if p.Segments[0].Translation != "to_native:Hello" || p.Segments[1].Translation != "世界" {
		t.Fatalf("stored = %+v", p.Segments)
	}
}

func TestStartBatchKeepsSegmentsItDidNotProcess(t *testing.T) {
	svc, _, _ := newTestService(t)
	svc.ImageGenerator = &fakeImage{fn: func(req types.ImageRequest) (*types.ImageResult, error) {
		// 批处理进行中，另一个分镜得到了新描述
		if _, err := svc.mutateSegments(context.Background(), "p1", func(p *types.Project) ([]types.Segment, error) {
			p.Segments[p.FindSegment("b")].SceneDescription = "新描述"
			return p.Segments, nil
		}); err != nil {
			t.Errorf("mutate err = %v", err)
		}
		return pngImage(req)
	}}
	segments := []types.Segment{{Id: "a", Text: "猫", SceneDescription: "猫"}, {Id: "b", Text: "狗"}}
	types.Renumber(segments)
	createProject(t, svc, &types.Project{Id: "p1", GenerationMode: types.GenerationModeTextToImageToVideo, Segments: segments})

	if _, err := svc.StartBatch(context.Background(), "p1", types.BatchKindImages, false); err != nil {
		t.Fatalf("StartBatch() err = %v", err)
	}
	waitBatch(t, svc, "p1")

	p, _ := svc.Projects.Get(context.Background(), "p1")
	if p.Segments[0].ImageUrl == "" || p.Segments[1].SceneDescription != "新描述" {
		t.Fatalf("stored = %+v", p.Segments)
	}
}

func TestStartBatchWaitsForRunningSegmentStep(t *testing.T) {
	svc, text, _ := newTestService(t)
	started := make(chan struct{})
	release := make(chan struct{})
	text.fn = func(prompt, systemPrompt string) (string, error) {
		close(started)
		<-release
		return `{"storyboard_description": "新描述"}`, nil
	}
	svc.ImageGenerator = &fakeImage{fn: pngImage}
	segments := []types.Segment{{Id: "a", Text: "猫", SceneDescription: "猫"}, {Id: "b", Text: "狗"}}
	types.Renumber(segments)
	createProject(t, svc, &types.Project{
		Id:             "p1",
		GenerationMode: types.GenerationModeTextToImageToVideo,
		VisualBible:    testBible,
		Segments:       segments,
	})

	stepErr := make(chan error, 1)
	go func() {
		_, err := svc.RunSegmentStep(context.Background(), "p1", "b", SegmentStepDescription)
		stepErr <- err
	}()
	<-started

	if _, err := svc.StartBatch(context.Background(), "p1", types.BatchKindImages, false); !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("batch during segment step err = %v", err)
	}
	close(release)
	if err := <-stepErr; err != nil {
		t.Fatalf("RunSegmentStep() err = %v", err)
	}

	if _, err := svc.StartBatch(context.Background(), "p1", types.BatchKindImages, false); err != nil {
		t.Fatalf("StartBatch() err = %v", err)
	}
	waitBatch(t, svc, "p1")
	p, _ := svc.Projects.Get(context.Background(), "p1")
	if p.Segments[1].SceneDescription != "新描述" || p.Segments[0].ImageUrl == "" || p.Segments[1].ImageUrl == "" {
		t.Fatalf("stored = %+v", p.Segments)
	}
}

func TestSaveFailuresDoNotFailTheAction(t *testing.T) {
	svc, _, _ := newTestService(t)
	store := failingStore{storage.NewMemoryProjectStore()}
	svc.Projects = store
	createProject(t, svc, &types.Project{Id: "p1", Segments: threeSegments(), VisualBible: testBible})

	seg, err := svc.RunSegmentStep(context.Background(), "p1", "1", SegmentStepDescription)
	if err != nil || seg.SceneDescription != "清晨的街道" {
		t.Fatalf("RunSegmentStep() = %+v, %v", seg, err)
	}

	segments, err := svc.CutProjectSegment(context.Background(), "p1", "2", 1)
	if err != nil || len(segments) != 4 {
		t.Fatalf("CutProjectSegment() = %+v, %v", segments, err)
	}
	assertContiguous(t, segments)

	if _, err = svc.GenerateProjectVisualBible(context.Background(), "p1"); err != nil {
		t.Fatalf("GenerateProjectVisualBible() err = %v", err)
	}

	if _, err = svc.StartBatch(context.Background(), "p1", types.BatchKindDescriptions, true); err != nil {
		t.Fatalf("StartBatch() err = %v", err)
	}
	status := waitBatch(t, svc, "p1")
	if status.LastSummary == nil || status.LastSummary.State != types.BatchStateCompleted || status.LastSummary.Succeeded != 3 {
		t.Fatalf("status = %+v", status)
	}
}
