package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"storyshot-ai/internal/apperr"
	"storyshot-ai/internal/types"
	"storyshot-ai/pkg/vendor"
)

type generateContentReq struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseModalities []string `json:"responseModalities"`
}

type generateContentResp struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

// GenerateImage 文生图
// 响应里没有图片时返回空响应错误，重试由 vendor.RetryEmptyImage 统一处理
func (c *Client) GenerateImage(ctx context.Context, req types.ImageRequest) (*types.ImageResult, error) {
	if err := c.checkConfig(); err != nil {
		return nil, err
	}

	prompt := req.Prompt
	if req.AspectRatio != "" {
		prompt = fmt.Sprintf("%s\nAspect ratio: %s", prompt, req.AspectRatio)
	}
	payload := generateContentReq{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{ResponseModalities: []string{"TEXT", "IMAGE"}},
	}

	result, err := c.generateImageOnce(ctx, payload)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, apperr.NewEmptyResponseError(vendorName, "响应中没有图片")
	}
	return result, nil
}

// generateImageOnce 没有图片时返回 nil, nil
func (c *Client) generateImageOnce(ctx context.Context, payload generateContentReq) (*types.ImageResult, error) {
	req := c.rest.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-goog-api-key", c.cfg.ApiKey).
		SetBody(payload)
	resp, err := vendor.Execute(vendorName, req, http.MethodPost, fmt.Sprintf("/v1beta/models/%s:generateContent", c.cfg.ImageModel))
	if err != nil {
		return nil, err
	}

	var parsed generateContentResp
	if err = json.Unmarshal(resp.Body(), &parsed); err != nil {
		return nil, apperr.NewVendorError(vendorName, resp.StatusCode(), resp.String())
	}
	for _, cand := range parsed.Candidates {
		for _, p := range cand.Content.Parts {
			if p.InlineData == nil || p.InlineData.Data == "" {
				continue
			}
			data, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
			if err != nil {
				return nil, fmt.Errorf("decode gemini image err: %w", err)
			}
			return &types.ImageResult{Data: data, MimeType: p.InlineData.MimeType}, nil
		}
	}
	return nil, nil
}
