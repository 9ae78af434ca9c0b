package service

import (
	"context"
	"encoding/json"
	"fmt"
	"storyshot-ai/internal/apperr"
	"storyshot-ai/internal/types"
	"storyshot-ai/pkg/util"
)

// LLMTranslator 没有配置机器翻译时，用文本生成模型完成翻译
type LLMTranslator struct {
	text           types.TextGenerator
	nativeLanguage string
}

func NewLLMTranslator(text types.TextGenerator, nativeLanguage string) *LLMTranslator {
	if nativeLanguage == "" {
		nativeLanguage = types.LanguageChinese
	}
	return &LLMTranslator{text: text, nativeLanguage: nativeLanguage}
}

// Translate 一次请求翻译全部文本，模型需返回同样条数的JSON字符串数组
func (t *LLMTranslator) Translate(ctx context.Context, req types.TranslateRequest) ([]string, error) {
	if len(req.Texts) == 0 {
		return nil, nil
	}

	target := t.nativeLanguage
	if req.Direction == types.TranslateToEnglish {
		target = types.LanguageEnglish
	}
	systemPrompt := types.TranslateSegmentSystemPrompt
	if req.Kind == types.TranslateKindDescription {
		systemPrompt = types.TranslateDescriptionSystemPrompt
	}

	input, err := json.Marshal(req.Texts)
	if err != nil {
		return nil, fmt.Errorf("marshal translate input err: %w", err)
	}
	reply, err := t.text.GenerateText(ctx, fmt.Sprintf(types.TranslatePrompt, target, string(input)), systemPrompt)
	if err != nil {
		return nil, err
	}

	var results []string
	if err = util.ParseJSONArray(reply, &results); err != nil {
		return nil, apperr.NewEmptyResponseError("llm-translate", "翻译结果不是JSON数组")
	}
	if len(results) != len(req.Texts) {
		return nil, apperr.NewEmptyResponseError("llm-translate", "翻译结果条数与输入不一致")
	}
	return results, nil
}
