package service

import (
	"context"
	"fmt"
	"storyshot-ai/internal/apperr"
	"storyshot-ai/internal/dto"
	"storyshot-ai/internal/types"
	"strings"
)

// splitDataUri 兼容前端直接传 data:image/png;base64,xxx
func splitDataUri(data, mimeType string) (string, string) {
	if !strings.HasPrefix(data, "data:") {
		return data, mimeType
	}
	header, payload, ok := strings.Cut(data, ",")
	if !ok {
		return data, mimeType
	}
	if mimeType == "" {
		mimeType = strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
	}
	return payload, mimeType
}

// AnalyzeStyle 分析参考图或预设风格，返回可追加到生图提示词中的风格描述
func (s *Service) AnalyzeStyle(ctx context.Context, req dto.AnalyzeStyleReq) (string, error) {
	analyzeReq := types.AnalyzeRequest{Type: req.AnalysisType}
	switch req.AnalysisType {
	case types.AnalysisTypeImage:
		if req.ImageBase64 == "" {
			return "", apperr.NewValidationError("请上传参考图")
		}
		analyzeReq.ImageBase64, analyzeReq.MimeType = splitDataUri(req.ImageBase64, req.MimeType)
		analyzeReq.Prompt = types.StyleImageAnalysisPrompt
	case types.AnalysisTypePreset:
		if strings.TrimSpace(req.PresetInfo) == "" {
			return "", apperr.NewValidationError("预设风格信息不能为空")
		}
		analyzeReq.PresetInfo = req.PresetInfo
		analyzeReq.Prompt = fmt.Sprintf(types.StylePresetAnalysisPrompt, req.PresetInfo)
	default:
		return "", apperr.NewValidationError("不支持的分析类型: " + req.AnalysisType)
	}

	analysis, err := s.Analyzer.Analyze(ctx, analyzeReq)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(analysis), nil
}
