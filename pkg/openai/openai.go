package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"storyshot-ai/internal/apperr"
	"storyshot-ai/internal/types"
	"storyshot-ai/log"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// GenerateText 使用聊天模型生成回复
// 用于脚本拆分、画面描述、提示词优化等文本生成场景
// @param prompt 用户消息，需要处理的文本
// @param systemPrompt 系统提示，定义模型的行为，为空时不发送
// @return string 模型生成的回复内容
// @return error 配置错误、厂商错误或空响应错误
func (c *Client) GenerateText(ctx context.Context, prompt, systemPrompt string) (string, error) {
	if err := c.checkConfig(); err != nil {
		return "", err
	}
	// 构建聊天补全请求的消息列表
	var messages []openai.ChatCompletionMessage
	if systemPrompt != "" {
		// 系统提示，定义AI助手的行为
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: systemPrompt})
	}
	// 用户消息
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.cfg.Model,
		Messages:  messages,
		MaxTokens: 8192, // 最大输出标记数
	})
	if err != nil {
		log.GetLogger().Error("openai create chat completion failed", zap.String("vendor", c.cfg.Name), zap.Error(err))
		return "", c.mapError(err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		// 请求成功但没有内容，按空响应处理
		return "", apperr.NewEmptyResponseError(c.cfg.Name, "模型没有返回内容")
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateImage 文生图，要求返回base64数据
// @param req 提示词和画面比例
// @return *types.ImageResult 图片数据，厂商只返回URL时填Url
// @return error 响应里没有图片时返回空响应错误
func (c *Client) GenerateImage(ctx context.Context, req types.ImageRequest) (*types.ImageResult, error) {
	if err := c.checkConfig(); err != nil {
		return nil, err
	}
	resp, err := c.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         req.Prompt,
		Model:          c.cfg.ImageModel,
		N:              1,                                       // 每次只生成一张
		Size:           imageSize(req.AspectRatio),              // 按画面比例选尺寸
		ResponseFormat: openai.CreateImageResponseFormatB64JSON, // 直接返回图片数据，不依赖临时URL
	})
	if err != nil {
		log.GetLogger().Error("openai create image failed", zap.String("vendor", c.cfg.Name), zap.Error(err))
		return nil, c.mapError(err)
	}
	if len(resp.Data) == 0 {
		return nil, apperr.NewEmptyResponseError(c.cfg.Name, "响应中没有图片")
	}
	item := resp.Data[0]
	// 优先使用base64数据
	if item.B64JSON != "" {
		data, err := base64.StdEncoding.DecodeString(item.B64JSON)
		if err != nil {
			return nil, fmt.Errorf("decode openai image err: %w", err)
		}
		return &types.ImageResult{Data: data, MimeType: "image/png"}, nil
	}
	// 部分兼容接口忽略ResponseFormat，只返回URL
	if item.URL != "" {
		return &types.ImageResult{Url: item.URL}, nil
	}
	return nil, apperr.NewEmptyResponseError(c.cfg.Name, "响应中没有图片")
}

// Analyze 看图分析或纯文本分析
// @param req 提示词，带图时附上base64图片和MIME类型
// @return string 分析结果
// @return error 配置错误、厂商错误或空响应错误
func (c *Client) Analyze(ctx context.Context, req types.AnalyzeRequest) (string, error) {
	if err := c.checkConfig(); err != nil {
		return "", err
	}
	// 文本在前
	parts := []openai.ChatMessagePart{{Type: openai.ChatMessagePartTypeText, Text: req.Prompt}}
	if req.ImageBase64 != "" {
		// 图片以data URI的形式附在消息里
		mimeType := req.MimeType
		if mimeType == "" {
			mimeType = "image/png"
		}
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    fmt.Sprintf("data:%s;base64,%s", mimeType, req.ImageBase64),
				Detail: openai.ImageURLDetailAuto,
			},
		})
	}

	// 没有单独配置视觉模型时使用聊天模型
	model := c.cfg.VisionModel
	if model == "" {
		model = c.cfg.Model
	}
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, MultiContent: parts},
		},
	})
	if err != nil {
		log.GetLogger().Error("openai analyze failed", zap.String("vendor", c.cfg.Name), zap.Error(err))
		return "", c.mapError(err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", apperr.NewEmptyResponseError(c.cfg.Name, "模型没有返回分析结果")
	}
	return resp.Choices[0].Message.Content, nil
}

// mapError 把go-openai的错误转换成厂商错误
// APIError 和 RequestError 都带HTTP状态码，其余按网络错误处理
func (c *Client) mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		// 接口返回了结构化的错误信息
		return apperr.NewVendorError(c.cfg.Name, apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		// 非2xx但响应体不是标准错误格式
		return apperr.NewVendorError(c.cfg.Name, reqErr.HTTPStatusCode, reqErr.Err.Error())
	}
	return apperr.NewTransportError(c.cfg.Name, err)
}

// imageSize 把画面比例映射到接口支持的尺寸，横屏为默认
func imageSize(aspectRatio string) string {
	switch aspectRatio {
	case types.AspectRatio9x16, types.AspectRatio3x4:
		return openai.CreateImageSize1024x1792
	case types.AspectRatio1x1:
		return openai.CreateImageSize1024x1024
	default:
		return openai.CreateImageSize1792x1024
	}
}
