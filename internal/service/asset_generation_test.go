package service

import (
	"context"
	"os"
	"storyshot-ai/internal/apperr"
	"storyshot-ai/internal/dto"
	"storyshot-ai/internal/storage"
	"storyshot-ai/internal/types"
	"strings"
	"testing"
)

func pngImage(types.ImageRequest) (*types.ImageResult, error) {
	return &types.ImageResult{Data: []byte("\x89PNG"), MimeType: "image/png"}, nil
}

func TestImageRequiresDescriptionForEverySegment(t *testing.T) {
	svc, _, _ := newTestService(t)
	image := &fakeImage{fn: pngImage}
	svc.ImageGenerator = image

	for _, mode := range []types.GenerationMode{types.GenerationModeTextToImageToVideo, types.GenerationModeTextToVideo} {
		op := svc.imageOp("p1", mode, types.AspectRatio16x9, "")
		for _, seg := range threeSegments() {
			err := op(context.Background(), &seg)
			if !apperr.IsKind(err, apperr.KindValidation) || !strings.Contains(err.Error(), "画面描述") {
				t.Fatalf("mode %s segment %s err = %v", mode, seg.Id, err)
			}
		}
	}
	if image.calls != 0 {
		t.Fatalf("image vendor called %d times", image.calls)
	}
}

func TestImageOnlyInImageMediatedMode(t *testing.T) {
	svc, _, _ := newTestService(t)
	svc.ImageGenerator = &fakeImage{fn: pngImage}
	seg := types.Segment{Id: "s1", SceneDescription: "清晨的街道"}

	err := svc.imageOp("p1", types.GenerationModeTextToVideo, "", "")(context.Background(), &seg)
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("err = %v", err)
	}
}

func TestVideoPrerequisiteDependsOnMode(t *testing.T) {
	cases := []struct {
		name    string
		mode    types.GenerationMode
		seg     types.Segment
		wantErr bool
	}{
		{"t2v needs description", types.GenerationModeTextToVideo, types.Segment{Id: "s"}, true},
		{"t2v with description", types.GenerationModeTextToVideo, types.Segment{Id: "s", SceneDescription: "街道"}, false},
		{"t2v ignores image", types.GenerationModeTextToVideo, types.Segment{Id: "s", ImageUrl: "https://img"}, true},
		{"i2v needs image", types.GenerationModeTextToImageToVideo, types.Segment{Id: "s", SceneDescription: "街道"}, true},
		{"i2v with image", types.GenerationModeTextToImageToVideo, types.Segment{Id: "s", ImageUrl: "https://img"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _, _ := newTestService(t)
			video := &fakeVideo{}
			svc.VideoGenerator = video
			seg := tc.seg
			err := svc.videoOp("p1", tc.mode, types.AspectRatio9x16)(context.Background(), &seg)
			if tc.wantErr {
				if !apperr.IsKind(err, apperr.KindValidation) || len(video.calls) != 0 {
					t.Fatalf("err = %v calls = %d", err, len(video.calls))
				}
				return
			}
			if err != nil {
				t.Fatalf("err = %v", err)
			}
			if seg.VideoUrl != "https://cdn.example.com/video.mp4" || video.calls[0].Mode != tc.mode || video.calls[0].AspectRatio != types.AspectRatio9x16 {
				t.Fatalf("seg = %+v calls = %+v", seg, video.calls)
			}
		})
	}
}

func TestEmptyImageResponseIsContentFiltered(t *testing.T) {
	svc, _, _ := newTestService(t)
	svc.ImageGenerator = &fakeImage{fn: func(types.ImageRequest) (*types.ImageResult, error) {
		return nil, apperr.NewEmptyResponseError("gemini", "没有返回图片")
	}}
	_, err := svc.GenerateImageForPrompt(context.Background(), dto.GenerateImageReq{Description: "街道"})
	if !apperr.IsKind(err, apperr.KindContentFiltered) {
		t.Fatalf("err = %v", err)
	}

	svc.ImageGenerator = &fakeImage{fn: func(types.ImageRequest) (*types.ImageResult, error) {
		return nil, apperr.NewVendorError("gemini", 500, "boom")
	}}
	if _, err = svc.GenerateImageForPrompt(context.Background(), dto.GenerateImageReq{Prompt: "street"}); !apperr.IsKind(err, apperr.KindVendor) {
		t.Fatalf("hard failure err = %v", err)
	}
	if _, err = svc.GenerateImageForPrompt(context.Background(), dto.GenerateImageReq{}); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("empty prompt err = %v", err)
	}
}

func TestRunSegmentStepImageStoresAsset(t *testing.T) {
	svc, _, _ := newTestService(t)
	var gotPrompt string
	svc.ImageGenerator = &fakeImage{fn: func(req types.ImageRequest) (*types.ImageResult, error) {
		gotPrompt = req.Prompt
		return pngImage(req)
	}}
	createProject(t, svc, &types.Project{
		Id:             "p1",
		GenerationMode: types.GenerationModeTextToImageToVideo,
		AspectRatio:    types.AspectRatio1x1,
		StyleSettings:  types.StyleSettings{StyleDescription: "watercolor"},
		Segments:       []types.Segment{{Id: "s1", Number: 1, Text: "一只猫", SceneDescription: "猫", OptimizedDescription: "a cat"}},
	})

	seg, err := svc.RunSegmentStep(context.Background(), "p1", "s1", SegmentStepImage)
	if err != nil {
		t.Fatalf("RunSegmentStep() err = %v", err)
	}
	if gotPrompt != "a cat, watercolor" {
		t.Fatalf("prompt = %q", gotPrompt)
	}
	if !strings.HasPrefix(seg.ImageUrl, "/api/file/projects/p1/images/s1-") || !strings.HasSuffix(seg.ImageUrl, ".png") {
		t.Fatalf("image url = %q", seg.ImageUrl)
	}
	local := svc.Assets.(*storage.LocalAssetStore)
	if _, err = os.Stat(local.Resolve(strings.TrimPrefix(seg.ImageUrl, "/api/file/"))); err != nil {
		t.Fatalf("asset not written: %v", err)
	}
	p, _ := svc.Projects.Get(context.Background(), "p1")
	if p.Segments[0].ImageUrl != seg.ImageUrl {
		t.Fatalf("stored = %+v", p.Segments[0])
	}
}

func TestRunSegmentStepVideoSendsLocalImageAsDataUri(t *testing.T) {
	svc, _, _ := newTestService(t)
	video := &fakeVideo{}
	svc.VideoGenerator = video
	url, err := svc.Assets.Save(context.Background(), "projects/p1/images/s1.png", []byte("png"), "image/png")
	if err != nil {
		t.Fatalf("save err = %v", err)
	}
	createProject(t, svc, &types.Project{
		Id:             "p1",
		GenerationMode: types.GenerationModeTextToImageToVideo,
		Segments:       []types.Segment{{Id: "s1", Number: 1, SceneDescription: "猫", ImageUrl: url}},
	})

	if _, err = svc.RunSegmentStep(context.Background(), "p1", "s1", SegmentStepVideo); err != nil {
		t.Fatalf("RunSegmentStep() err = %v", err)
	}
	if !strings.HasPrefix(video.calls[0].ImageUrl, "data:image/png;base64,") {
		t.Fatalf("image ref = %q", video.calls[0].ImageUrl)
	}
}

func TestRunSegmentStepErrors(t *testing.T) {
	svc, _, _ := newTestService(t)
	createProject(t, svc, &types.Project{Id: "p1", Segments: threeSegments()})

	if _, err := svc.RunSegmentStep(context.Background(), "p1", "missing", SegmentStepDescription); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("missing segment err = %v", err)
	}
	if _, err := svc.RunSegmentStep(context.Background(), "p1", "1", "dance"); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("unknown step err = %v", err)
	}
	if _, err := svc.RunSegmentStep(context.Background(), "p1", "1", SegmentStepDescription); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("description without visual bible err = %v", err)
	}
	if _, err := svc.Batches.begin("p1", types.BatchKindImages, []string{"1"}); err != nil {
		t.Fatalf("begin err = %v", err)
	}
	if _, err := svc.RunSegmentStep(context.Background(), "p1", "1", SegmentStepImage); !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("during batch err = %v", err)
	}
}

func TestPlaceholderVideoReturnsImage(t *testing.T) {
	p := &placeholderVideoGenerator{}
	url, err := p.GenerateVideo(context.Background(), types.VideoRequest{ImageUrl: "/api/file/a.png"})
	if err != nil || url != "/api/file/a.png" {
		t.Fatalf("url = %q err = %v", url, err)
	}
	if _, err = p.GenerateVideo(context.Background(), types.VideoRequest{Prompt: "cat"}); !apperr.IsKind(err, apperr.KindEmptyResponse) {
		t.Fatalf("err = %v", err)
	}
}
