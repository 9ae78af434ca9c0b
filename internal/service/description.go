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

// segmentPromptText 外语分镜把母语译文一并给模型
func segmentPromptText(text, translation string) string {
	if translation == "" {
		return text
	}
	return fmt.Sprintf("%s\n（译文：%s）", text, translation)
}

// visualBibleSummary 压缩成一段文字，给关键词提取参考
func visualBibleSummary(vb *types.VisualBible) string {
	if vb == nil {
		return "无"
	}
	parts := lo.Filter([]string{vb.OverallTheme, vb.LightingColorPlan, vb.CoreElementAnchors}, func(s string, _ int) bool {
		return s != ""
	})
	if len(parts) == 0 {
		return "无"
	}
	return strings.Join(parts, "；")
}

type descriptionReply struct {
	StoryboardDescription string `json:"storyboard_description"`
}

// parseDescription JSON解析 -> 正则提取字段 -> 原始回复
func parseDescription(reply string) string {
	var parsed descriptionReply
	if err := util.ParseJSONObject(reply, &parsed); err == nil && parsed.StoryboardDescription != "" {
		return strings.TrimSpace(parsed.StoryboardDescription)
	}
	if value, ok := util.ExtractJSONStringField(reply, "storyboard_description"); ok && value != "" {
		return strings.TrimSpace(value)
	}
	return strings.TrimSpace(util.StripCodeFence(reply))
}

// generateDescription 生成画面描述以及英文版本
// 英文翻译失败时英文字段沿用中文描述
func (s *Service) generateDescription(ctx context.Context, text, translation string, vb *types.VisualBible) (string, string, error) {
	if strings.TrimSpace(text) == "" {
		return "", "", apperr.NewValidationError("分镜文案不能为空")
	}
	if vb == nil {
		return "", "", apperr.NewValidationError("请先生成视觉圣经")
	}
	prompt := fmt.Sprintf(types.DescriptionPrompt, vb.OverallTheme, vb.EmotionalArc, vb.VisualMetaphor,
		vb.LightingColorPlan, vb.CoreElementAnchors, segmentPromptText(text, translation))
	reply, err := s.TextGenerator.GenerateText(ctx, prompt, types.DescriptionSystemPrompt)
	if err != nil {
		return "", "", err
	}
	description := parseDescription(reply)
	if description == "" {
		return "", "", apperr.NewEmptyResponseError("description", "模型没有返回画面描述")
	}

	descriptionEn := description
	translated, err := s.Translator.Translate(ctx, types.TranslateRequest{
		Texts:     []string{description},
		Kind:      types.TranslateKindDescription,
		Direction: types.TranslateToEnglish,
	})
	if err != nil || len(translated) != 1 || translated[0] == "" {
		log.GetLogger().Warn("translate description failed, reuse native text", zap.Error(err))
	} else {
		descriptionEn = translated[0]
	}
	return description, descriptionEn, nil
}

func (s *Service) GenerateDescription(ctx context.Context, req dto.GenerateDescriptionReq) (*dto.DescriptionResData, error) {
	description, descriptionEn, err := s.generateDescription(ctx, req.Text, req.Translation, req.VisualBible)
	if err != nil {
		return nil, err
	}
	return &dto.DescriptionResData{Description: description, DescriptionEn: descriptionEn}, nil
}

// describeOp 批处理与单个分镜共用，使用同一份视觉圣经
func (s *Service) describeOp(vb *types.VisualBible) SegmentOperation {
	return func(ctx context.Context, seg *types.Segment) error {
		description, descriptionEn, err := s.generateDescription(ctx, seg.Text, seg.Translation, vb)
		if err != nil {
			return err
		}
		seg.SceneDescription = description
		seg.SceneDescriptionEn = descriptionEn
		// 描述变了，旧的优化提示词不再适用
		seg.OptimizedDescription = ""
		return nil
	}
}

func optimizeSystemPrompt(mode types.GenerationMode) string {
	if mode == types.GenerationModeTextToVideo {
		return types.OptimizeVideoSystemPrompt
	}
	return types.OptimizeImageSystemPrompt
}

// OptimizeDescription 按生成模式优化提示词：文生视频侧重镜头运动，图生视频模式优化的是生图提示词
func (s *Service) OptimizeDescription(ctx context.Context, description string, mode types.GenerationMode, aspectRatio string) (string, error) {
	if strings.TrimSpace(description) == "" {
		return "", apperr.NewValidationError("请先生成画面描述")
	}
	mode = lo.Ternary(mode == "", types.GenerationModeTextToImageToVideo, mode)
	if err := checkGenerationMode(mode); err != nil {
		return "", err
	}
	aspectRatio = lo.Ternary(aspectRatio == "", types.AspectRatio16x9, aspectRatio)

	reply, err := s.TextGenerator.GenerateText(ctx, fmt.Sprintf(types.OptimizePrompt, aspectRatio, description), optimizeSystemPrompt(mode))
	if err != nil {
		return "", err
	}
	optimized := strings.TrimSpace(util.StripCodeFence(reply))
	if optimized == "" {
		return "", apperr.NewEmptyResponseError("optimize", "模型没有返回优化后的描述")
	}
	return optimized, nil
}

func (s *Service) optimizeOp(mode types.GenerationMode, aspectRatio string) SegmentOperation {
	return func(ctx context.Context, seg *types.Segment) error {
		optimized, err := s.OptimizeDescription(ctx, seg.SceneDescription, mode, aspectRatio)
		if err != nil {
			return err
		}
		seg.OptimizedDescription = optimized
		return nil
	}
}

type keywordsReply struct {
	Keywords   []string `json:"keywords"`
	KeywordsEn []string `json:"keywords_en"`
}

// ExtractKeywords 提取中英文关键词，回复无法解析时整段回复作为英文关键词
func (s *Service) ExtractKeywords(ctx context.Context, description string, vb *types.VisualBible, styleDescription string) (string, string, error) {
	if strings.TrimSpace(description) == "" {
		return "", "", apperr.NewValidationError("请先生成画面描述")
	}
	style := lo.Ternary(styleDescription == "", "无", styleDescription)
	reply, err := s.TextGenerator.GenerateText(ctx, fmt.Sprintf(types.KeywordsPrompt, style, visualBibleSummary(vb), description), types.KeywordsSystemPrompt)
	if err != nil {
		return "", "", err
	}

	var parsed keywordsReply
	if err = util.ParseJSONObject(reply, &parsed); err != nil || len(parsed.KeywordsEn) == 0 {
		raw := strings.TrimSpace(util.StripCodeFence(reply))
		if raw == "" {
			return "", "", apperr.NewEmptyResponseError("keywords", "模型没有返回关键词")
		}
		log.GetLogger().Warn("keywords reply is not json, use raw text", zap.Error(err))
		return "", raw, nil
	}
	clean := func(items []string) []string {
		return lo.Uniq(lo.FilterMap(items, func(item string, _ int) (string, bool) {
			item = strings.TrimSpace(item)
			return item, item != ""
		}))
	}
	return strings.Join(clean(parsed.Keywords), "，"), strings.Join(clean(parsed.KeywordsEn), ", "), nil
}

func (s *Service) keywordsOp(vb *types.VisualBible, styleDescription string) SegmentOperation {
	return func(ctx context.Context, seg *types.Segment) error {
		keywords, keywordsEn, err := s.ExtractKeywords(ctx, seg.SceneDescription, vb, styleDescription)
		if err != nil {
			return err
		}
		seg.Keywords = keywords
		seg.KeywordsEn = keywordsEn
		return nil
	}
}

// runItemBatch 无状态的批量接口：逐个处理，单个失败写入该项的Error
// 列表位置记在Number里，结果与请求一一对应
func runItemBatch(ctx context.Context, kind types.BatchKind, items []types.Segment, op func(ctx context.Context, seg *types.Segment) (dto.BatchItemResult, error)) *dto.BatchResData {
	types.Renumber(items)
	results := lo.Map(items, func(seg types.Segment, _ int) dto.BatchItemResult {
		return dto.BatchItemResult{Id: seg.Id}
	})
	_, summary := RunBatch(ctx, items, func(types.Segment) bool { return true }, func(ctx context.Context, seg *types.Segment) error {
		result, err := op(ctx, seg)
		if err != nil {
			results[seg.Number-1].Error = err.Error()
			return err
		}
		result.Id = seg.Id
		results[seg.Number-1] = result
		return nil
	}, BatchOptions{Kind: kind})
	return &dto.BatchResData{Results: results, Summary: summary}
}

func (s *Service) BatchGenerateDescriptions(ctx context.Context, req dto.BatchGenerateDescriptionsReq) (*dto.BatchResData, error) {
	if req.VisualBible == nil {
		return nil, apperr.NewValidationError("请先生成视觉圣经")
	}
	items := lo.Map(req.Segments, func(item dto.DescriptionItem, _ int) types.Segment {
		return types.Segment{Id: item.Id, Text: item.Text, Translation: item.Translation, Language: item.Language}
	})
	describe := s.describeOp(req.VisualBible)
	return runItemBatch(ctx, types.BatchKindDescriptions, items, func(ctx context.Context, seg *types.Segment) (dto.BatchItemResult, error) {
		if err := describe(ctx, seg); err != nil {
			return dto.BatchItemResult{}, err
		}
		return dto.BatchItemResult{Description: seg.SceneDescription, DescriptionEn: seg.SceneDescriptionEn}, nil
	}), nil
}

func (s *Service) BatchOptimizeDescriptions(ctx context.Context, req dto.BatchOptimizeDescriptionsReq) (*dto.BatchResData, error) {
	items := lo.Map(req.Items, func(item dto.OptimizeItem, _ int) types.Segment {
		return types.Segment{Id: item.Id, SceneDescription: item.Description}
	})
	optimize := s.optimizeOp(req.GenerationMode, req.AspectRatio)
	return runItemBatch(ctx, types.BatchKindOptimize, items, func(ctx context.Context, seg *types.Segment) (dto.BatchItemResult, error) {
		if err := optimize(ctx, seg); err != nil {
			return dto.BatchItemResult{}, err
		}
		return dto.BatchItemResult{OptimizedDescription: seg.OptimizedDescription}, nil
	}), nil
}

func (s *Service) BatchExtractKeywords(ctx context.Context, req dto.BatchExtractKeywordsReq) (*dto.BatchResData, error) {
	items := lo.Map(req.Items, func(item dto.KeywordsItem, _ int) types.Segment {
		return types.Segment{Id: item.Id, SceneDescription: item.Description}
	})
	extract := s.keywordsOp(req.VisualBible, req.StyleDescription)
	return runItemBatch(ctx, types.BatchKindKeywords, items, func(ctx context.Context, seg *types.Segment) (dto.BatchItemResult, error) {
		if err := extract(ctx, seg); err != nil {
			return dto.BatchItemResult{}, err
		}
		return dto.BatchItemResult{Keywords: seg.Keywords, KeywordsEn: seg.KeywordsEn}, nil
	}), nil
}
