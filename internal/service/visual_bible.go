package service

import (
	"context"
	"fmt"
	"storyshot-ai/internal/apperr"
	"storyshot-ai/internal/types"
	"storyshot-ai/log"
	"storyshot-ai/pkg/util"
	"strings"

	"go.uber.org/zap"
)

type visualBibleReply struct {
	OverallTheme       string `json:"overall_theme"`
	EmotionalArc       string `json:"emotional_arc"`
	VisualMetaphor     string `json:"visual_metaphor"`
	LightingColorPlan  string `json:"lighting_color_plan"`
	CoreElementAnchors string `json:"core_element_anchors"`
}

// GenerateVisualBible 导演视角通读全文，生成整体视觉基调
// 回复不是合法JSON时，整段回复作为整体主题
func (s *Service) GenerateVisualBible(ctx context.Context, fullText string) (*types.VisualBible, error) {
	fullText = strings.TrimSpace(fullText)
	if fullText == "" {
		return nil, apperr.NewValidationError("请先输入脚本内容")
	}
	reply, err := s.TextGenerator.GenerateText(ctx, fmt.Sprintf(types.VisualBiblePrompt, fullText), types.VisualBibleSystemPrompt)
	if err != nil {
		return nil, fmt.Errorf("generate visual bible err: %w", err)
	}

	var parsed visualBibleReply
	if err = util.ParseJSONObject(reply, &parsed); err != nil || parsed.OverallTheme == "" {
		log.GetLogger().Warn("visual bible reply is not json, use raw text", zap.Error(err))
		return &types.VisualBible{OverallTheme: strings.TrimSpace(util.StripCodeFence(reply))}, nil
	}
	return &types.VisualBible{
		OverallTheme:       parsed.OverallTheme,
		EmotionalArc:       parsed.EmotionalArc,
		VisualMetaphor:     parsed.VisualMetaphor,
		LightingColorPlan:  parsed.LightingColorPlan,
		CoreElementAnchors: parsed.CoreElementAnchors,
	}, nil
}

// GenerateProjectVisualBible 重新生成不会影响已经生成的分镜描述
func (s *Service) GenerateProjectVisualBible(ctx context.Context, projectId string) (*types.VisualBible, error) {
	p, err := s.Projects.Get(ctx, projectId)
	if err != nil {
		return nil, err
	}
	fullText := p.ScriptContent
	if strings.TrimSpace(fullText) == "" {
		texts := make([]string, 0, len(p.Segments))
		for _, seg := range p.Segments {
			texts = append(texts, seg.Text)
		}
		fullText = strings.Join(texts, "\n")
	}

	vb, err := s.GenerateVisualBible(ctx, fullText)
	if err != nil {
		return nil, err
	}

	unlock := s.lockProject(projectId)
	defer unlock()
	p, err = s.Projects.Get(ctx, projectId)
	if err != nil {
		return nil, err
	}
	p.VisualBible = vb
	if err = s.Projects.Update(context.WithoutCancel(ctx), p); err != nil {
		log.GetLogger().Warn("save visual bible failed", zap.String("projectId", projectId), zap.Error(err))
	}
	return vb, nil
}
