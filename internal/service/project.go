package service

import (
	"context"
	"storyshot-ai/internal/apperr"
	"storyshot-ai/internal/dto"
	"storyshot-ai/internal/types"
	"storyshot-ai/log"
	"storyshot-ai/pkg/util"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

func checkGenerationMode(mode types.GenerationMode) error {
	if !mode.Valid() {
		return apperr.NewValidationError("不支持的生成模式: " + string(mode))
	}
	return nil
}

func checkAspectRatio(ratio string) error {
	if !lo.Contains(types.SupportedAspectRatios, ratio) {
		return apperr.NewValidationError("不支持的画面比例: " + ratio)
	}
	return nil
}

func (s *Service) CreateProject(ctx context.Context, req dto.CreateProjectReq) (*types.Project, error) {
	p := &types.Project{
		Id:             util.GenerateID(),
		Name:           req.Name,
		CreationMode:   req.CreationMode,
		CurrentStep:    types.StepScript,
		StyleSettings:  req.StyleSettings,
		ScriptContent:  req.ScriptContent,
		Segments:       []types.Segment{},
		GenerationMode: lo.Ternary(req.GenerationMode == "", types.GenerationModeTextToImageToVideo, req.GenerationMode),
		AspectRatio:    lo.Ternary(req.AspectRatio == "", types.AspectRatio16x9, req.AspectRatio),
	}
	if err := checkGenerationMode(p.GenerationMode); err != nil {
		return nil, err
	}
	if err := checkAspectRatio(p.AspectRatio); err != nil {
		return nil, err
	}
	if err := s.Projects.Create(ctx, p); err != nil {
		return nil, err
	}
	log.GetLogger().Info("project created", zap.String("projectId", p.Id), zap.String("name", p.Name))
	return p, nil
}

func (s *Service) GetProject(ctx context.Context, id string) (*types.Project, error) {
	return s.Projects.Get(ctx, id)
}

func (s *Service) ListProjects(ctx context.Context) ([]*types.Project, error) {
	return s.Projects.List(ctx)
}

// UpdateProject 只修改请求中给出的字段，不会修改步骤和分镜
func (s *Service) UpdateProject(ctx context.Context, id string, req dto.UpdateProjectReq) (*types.Project, error) {
	if req.GenerationMode != nil {
		if err := checkGenerationMode(*req.GenerationMode); err != nil {
			return nil, err
		}
	}
	if req.AspectRatio != nil {
		if err := checkAspectRatio(*req.AspectRatio); err != nil {
			return nil, err
		}
	}

	unlock := s.lockProject(id)
	defer unlock()
	p, err := s.Projects.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.CreationMode != nil {
		p.CreationMode = *req.CreationMode
	}
	if req.ScriptContent != nil {
		p.ScriptContent = *req.ScriptContent
	}
	if req.StyleSettings != nil {
		p.StyleSettings = *req.StyleSettings
	}
	if req.GenerationMode != nil {
		p.GenerationMode = *req.GenerationMode
	}
	if req.AspectRatio != nil {
		p.AspectRatio = *req.AspectRatio
	}
	if err = s.Projects.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// SetProjectStep 步骤只会由用户的显式操作改变
func (s *Service) SetProjectStep(ctx context.Context, id string, step int) (*types.Project, error) {
	if step < types.StepScript || step > types.StepVideo {
		return nil, apperr.NewValidationError("步骤超出范围")
	}
	unlock := s.lockProject(id)
	defer unlock()
	p, err := s.Projects.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p.CurrentStep = step
	if err = s.Projects.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) DeleteProject(ctx context.Context, id string) error {
	if err := s.ensureIdle(id); err != nil {
		return err
	}
	unlock := s.lockProject(id)
	defer unlock()
	if err := s.Projects.Delete(ctx, id); err != nil {
		return err
	}
	s.locks.Delete(id)
	return nil
}

// ensureIdle 批处理期间拒绝单个分镜的操作
func (s *Service) ensureIdle(projectId string) error {
	if s.Batches.IsActive(projectId) {
		return apperr.NewConflictError("批处理进行中，请等待完成或先停止")
	}
	return nil
}

// mutateSegments 在项目锁内读取最新的分镜列表，由fn修改后保存
// fn返回错误时不保存；保存失败只记录日志，返回修改后的列表
func (s *Service) mutateSegments(ctx context.Context, projectId string, fn func(p *types.Project) ([]types.Segment, error)) ([]types.Segment, error) {
	unlock := s.lockProject(projectId)
	defer unlock()
	p, err := s.Projects.Get(ctx, projectId)
	if err != nil {
		return nil, err
	}
	segments, err := fn(p)
	if err != nil {
		return nil, err
	}
	if err = s.Projects.SaveSegments(context.WithoutCancel(ctx), projectId, segments); err != nil {
		log.GetLogger().Warn("save segments failed", zap.String("projectId", projectId), zap.Error(err))
	}
	return segments, nil
}

// applyGenerated 只写回生成类字段，文本与翻译以项目中最新的为准
func applyGenerated(dst *types.Segment, src types.Segment) {
	dst.SceneDescription = src.SceneDescription
	dst.SceneDescriptionEn = src.SceneDescriptionEn
	dst.OptimizedDescription = src.OptimizedDescription
	dst.Keywords = src.Keywords
	dst.KeywordsEn = src.KeywordsEn
	dst.ImageUrl = src.ImageUrl
	dst.VideoUrl = src.VideoUrl
}

// commitSegments 按id把处理后的分镜写回项目，已不存在的分镜跳过
func (s *Service) commitSegments(ctx context.Context, projectId string, updated []types.Segment, withTranslation bool) error {
	_, err := s.mutateSegments(ctx, projectId, func(p *types.Project) ([]types.Segment, error) {
		for _, seg := range updated {
			idx := p.FindSegment(seg.Id)
			if idx < 0 {
				log.GetLogger().Warn("segment gone before commit", zap.String("projectId", projectId), zap.String("segmentId", seg.Id))
				continue
			}
			applyGenerated(&p.Segments[idx], seg)
			if withTranslation && p.Segments[idx].Text == seg.Text {
				p.Segments[idx].Translation = seg.Translation
			}
		}
		return p.Segments, nil
	})
	return err
}

func (s *Service) commitSegment(ctx context.Context, projectId string, seg types.Segment) {
	if err := s.commitSegments(ctx, projectId, []types.Segment{seg}, false); err != nil {
		log.GetLogger().Warn("commit segment failed", zap.String("projectId", projectId), zap.String("segmentId", seg.Id), zap.Error(err))
	}
}
