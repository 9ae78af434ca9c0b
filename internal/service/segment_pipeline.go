package service

import (
	"context"
	"fmt"
	"storyshot-ai/internal/apperr"
	"storyshot-ai/internal/dto"
	"storyshot-ai/internal/types"
	"storyshot-ai/log"
	"storyshot-ai/pkg/util"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// DetectLanguage 只区分中文与外语：含有汉字即为中文
func DetectLanguage(text string) string {
	if util.ContainsCJK(text) {
		return types.LanguageChinese
	}
	return types.LanguageEnglish
}

type splitItem struct {
	Text string `json:"text"`
}

// splitScript 让模型按语义拆分脚本，回复无法解析时按句末标点兜底切分
// 只有模型调用本身失败才返回错误
func (s *Service) splitScript(ctx context.Context, script, language string) ([]string, error) {
	reply, err := s.TextGenerator.GenerateText(ctx, fmt.Sprintf(types.SplitScriptPrompt, script), types.SplitScriptSystemPrompt)
	if err != nil {
		return nil, fmt.Errorf("split script err: %w", err)
	}

	var items []splitItem
	if err = util.ParseJSONArray(reply, &items); err == nil {
		texts := lo.FilterMap(items, func(item splitItem, _ int) (string, bool) {
			text := strings.TrimSpace(item.Text)
			return text, text != ""
		})
		if len(texts) > 0 {
			return texts, nil
		}
	}

	log.GetLogger().Warn("split reply unusable, fallback to punctuation split", zap.Error(err), zap.String("reply", reply))
	return util.SplitSentences(script, language == types.LanguageChinese), nil
}

// translateToNative 批量把外语分镜翻译成母语，结果按位置对应
func (s *Service) translateToNative(ctx context.Context, texts []string) ([]string, error) {
	results, err := s.Translator.Translate(ctx, types.TranslateRequest{
		Texts:     texts,
		Kind:      types.TranslateKindSegment,
		Direction: types.TranslateToNative,
	})
	if err != nil {
		return nil, err
	}
	if len(results) != len(texts) {
		return nil, apperr.NewEmptyResponseError("translate", "翻译结果条数与输入不一致")
	}
	return results, nil
}

// GenerateSegments 脚本 -> 分镜列表
// 外语脚本会附带母语翻译，翻译失败不影响返回结果，分镜保持没有翻译
func (s *Service) GenerateSegments(ctx context.Context, script string) ([]types.Segment, error) {
	script = strings.TrimSpace(script)
	if script == "" {
		return nil, apperr.NewValidationError("请先输入脚本内容")
	}
	language := DetectLanguage(script)

	texts, err := s.splitScript(ctx, script, language)
	if err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return nil, apperr.NewValidationError("脚本中没有可拆分的内容")
	}

	segments := lo.Map(texts, func(text string, _ int) types.Segment {
		return types.Segment{Id: util.GenerateID(), Language: language, Text: text}
	})
	types.Renumber(segments)

	if language != types.LanguageChinese {
		translations, err := s.translateToNative(ctx, texts)
		if err != nil {
			log.GetLogger().Warn("translate segments failed, keep them untranslated", zap.Int("count", len(texts)), zap.Error(err))
		} else {
			for i := range segments {
				segments[i].Translation = translations[i]
			}
		}
	}

	log.GetLogger().Info("script segmented", zap.String("language", language), zap.Int("segments", len(segments)))
	return segments, nil
}

// TranslateSegments 翻译指定的分镜文本，失败时返回错误，由调用方决定是否重试
func (s *Service) TranslateSegments(ctx context.Context, req dto.TranslateSegmentsReq) ([]dto.SegmentTranslation, error) {
	if len(req.Segments) == 0 {
		return nil, apperr.NewValidationError("没有需要翻译的分镜")
	}
	texts := lo.Map(req.Segments, func(item dto.SegmentText, _ int) string { return item.Text })
	translations, err := s.translateToNative(ctx, texts)
	if err != nil {
		return nil, err
	}
	return lo.Map(req.Segments, func(item dto.SegmentText, i int) dto.SegmentTranslation {
		return dto.SegmentTranslation{Id: item.Id, Translation: translations[i]}
	}), nil
}

// GenerateProjectSegments 为项目重新生成分镜，覆盖原有分镜
func (s *Service) GenerateProjectSegments(ctx context.Context, projectId, script string) ([]types.Segment, error) {
	if err := s.ensureIdle(projectId); err != nil {
		return nil, err
	}
	p, err := s.Projects.Get(ctx, projectId)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(script) == "" {
		script = p.ScriptContent
	}

	segments, err := s.GenerateSegments(ctx, script)
	if err != nil {
		return nil, err
	}

	unlock := s.lockProject(projectId)
	defer unlock()
	p, err = s.Projects.Get(ctx, projectId)
	if err != nil {
		return nil, err
	}
	p.ScriptContent = script
	p.Segments = segments
	if err = s.Projects.Update(context.WithoutCancel(ctx), p); err != nil {
		log.GetLogger().Warn("save generated segments failed", zap.String("projectId", projectId), zap.Error(err))
	}
	return segments, nil
}

// retranslateInBackground 剪切/合并后为受影响的外语分镜补翻译
// 翻译返回时分镜可能已被再次编辑，只更新id和原文都没变的分镜
func (s *Service) retranslateInBackground(projectId string, targets []types.Segment) {
	targets = lo.Filter(targets, func(seg types.Segment, _ int) bool { return seg.IsForeign() })
	if len(targets) == 0 {
		return
	}
	s.goBackground(func(ctx context.Context) {
		texts := lo.Map(targets, func(seg types.Segment, _ int) string { return seg.Text })
		translations, err := s.translateToNative(ctx, texts)
		if err != nil {
			log.GetLogger().Warn("retranslate segments failed", zap.String("projectId", projectId), zap.Error(err))
			return
		}
		s.applyTranslations(ctx, projectId, targets, translations)
	})
}

func (s *Service) applyTranslations(ctx context.Context, projectId string, targets []types.Segment, translations []string) int {
	applied := 0
	_, err := s.mutateSegments(ctx, projectId, func(p *types.Project) ([]types.Segment, error) {
		for i, target := range targets {
			idx := p.FindSegment(target.Id)
			if idx < 0 || p.Segments[idx].Text != target.Text {
				continue
			}
			p.Segments[idx].Translation = translations[i]
			applied++
		}
		return p.Segments, nil
	})
	if err != nil {
		log.GetLogger().Warn("apply translations failed", zap.String("projectId", projectId), zap.Error(err))
	}
	return applied
}
