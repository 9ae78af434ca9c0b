package service

import (
	"context"
	"storyshot-ai/internal/apperr"
	"storyshot-ai/internal/types"
	"storyshot-ai/log"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// translateOp 为外语分镜补翻译
func (s *Service) translateOp() SegmentOperation {
	return func(ctx context.Context, seg *types.Segment) error {
		if !seg.IsForeign() {
			return apperr.NewValidationError("中文分镜不需要翻译")
		}
		translations, err := s.translateToNative(ctx, []string{seg.Text})
		if err != nil {
			return err
		}
		seg.Translation = translations[0]
		return nil
	}
}

// batchPlan 根据批处理类型决定哪些分镜需要处理，以及如何处理
// overwrite为false时跳过已有结果的分镜
func (s *Service) batchPlan(p *types.Project, kind types.BatchKind, overwrite bool) (func(types.Segment) bool, SegmentOperation, error) {
	switch kind {
	case types.BatchKindDescriptions:
		if p.VisualBible == nil {
			return nil, nil, apperr.NewValidationError("请先生成视觉圣经")
		}
		// 视觉圣经在开始时取一次快照，批处理期间重新生成不影响本次结果
		vb := *p.VisualBible
		return func(seg types.Segment) bool {
			return seg.Text != "" && (overwrite || !seg.HasDescription())
		}, s.describeOp(&vb), nil
	case types.BatchKindOptimize:
		return func(seg types.Segment) bool {
			return seg.HasDescription() && (overwrite || seg.OptimizedDescription == "")
		}, s.optimizeOp(p.GenerationMode, p.AspectRatio), nil
	case types.BatchKindKeywords:
		var vb *types.VisualBible
		if p.VisualBible != nil {
			snapshot := *p.VisualBible
			vb = &snapshot
		}
		return func(seg types.Segment) bool {
			return seg.HasDescription() && (overwrite || seg.KeywordsEn == "")
		}, s.keywordsOp(vb, p.StyleSettings.StyleDescription), nil
	case types.BatchKindImages:
		if p.GenerationMode != types.GenerationModeTextToImageToVideo {
			return nil, nil, apperr.NewValidationError("当前生成模式不需要生成图片")
		}
		return func(seg types.Segment) bool {
			return (seg.HasDescription() || seg.OptimizedDescription != "") && (overwrite || seg.ImageUrl == "")
		}, s.imageOp(p.Id, p.GenerationMode, p.AspectRatio, p.StyleSettings.StyleDescription), nil
	case types.BatchKindVideos:
		mode := p.GenerationMode
		return func(seg types.Segment) bool {
			return checkVideoInput(mode, seg.SceneDescription, seg.ImageUrl) == nil && (overwrite || seg.VideoUrl == "")
		}, s.videoOp(p.Id, p.GenerationMode, p.AspectRatio), nil
	case types.BatchKindTranslations:
		return func(seg types.Segment) bool {
			return seg.IsForeign() && (overwrite || seg.Translation == "")
		}, s.translateOp(), nil
	default:
		return nil, nil, apperr.NewValidationError("不支持的批处理类型: " + string(kind))
	}
}

// StartBatch 启动项目的批处理，立即返回；没有需要处理的分镜时直接返回结果
func (s *Service) StartBatch(ctx context.Context, projectId string, kind types.BatchKind, overwrite bool) (types.BatchStatus, error) {
	if !kind.Valid() {
		return types.BatchStatus{}, apperr.NewValidationError("不支持的批处理类型: " + string(kind))
	}
	if err := s.ensureIdle(projectId); err != nil {
		return types.BatchStatus{}, err
	}
	p, err := s.Projects.Get(ctx, projectId)
	if err != nil {
		return types.BatchStatus{}, err
	}
	eligible, op, err := s.batchPlan(p, kind, overwrite)
	if err != nil {
		return types.BatchStatus{}, err
	}

	track := func(event types.BatchEvent) { s.Batches.track(projectId, event) }
	ids := lo.FilterMap(p.Segments, func(seg types.Segment, _ int) (string, bool) {
		return seg.Id, eligible(seg)
	})
	if len(ids) == 0 {
		RunBatch(ctx, p.Segments, eligible, op, BatchOptions{Kind: kind, OnEvent: track})
		return s.Batches.Status(projectId), nil
	}

	token, err := s.Batches.begin(projectId, kind, ids)
	if err != nil {
		return types.BatchStatus{}, err
	}
	log.GetLogger().Info("batch started", zap.String("projectId", projectId), zap.String("kind", string(kind)), zap.Int("total", len(ids)))

	segments := p.Segments
	s.goBackground(func(ctx context.Context) {
		RunBatch(ctx, segments, eligible, op, BatchOptions{
			Kind:  kind,
			Token: token,
			Persist: func(ctx context.Context, processed []types.Segment) error {
				return s.commitSegments(ctx, projectId, processed, kind == types.BatchKindTranslations)
			},
			OnEvent: track,
		})
	})
	return s.Batches.Status(projectId), nil
}

// CancelBatch 当前分镜处理完后停止，已处理的结果会保存
func (s *Service) CancelBatch(projectId string) (types.BatchStatus, error) {
	if !s.Batches.Cancel(projectId) {
		return types.BatchStatus{}, apperr.NewNotFoundError("当前没有进行中的批处理")
	}
	log.GetLogger().Info("batch cancel requested", zap.String("projectId", projectId))
	return s.Batches.Status(projectId), nil
}

func (s *Service) BatchStatus(projectId string) types.BatchStatus {
	return s.Batches.Status(projectId)
}
