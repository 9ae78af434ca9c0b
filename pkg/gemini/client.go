// Package gemini 封装Google Gemini：文本与多模态分析走官方SDK，图片生成走REST接口
package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"storyshot-ai/internal/apperr"
	"storyshot-ai/internal/types"
	"storyshot-ai/log"
	"storyshot-ai/pkg/vendor"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	vendorName     = "gemini"
	defaultBaseUrl = "https://generativelanguage.googleapis.com"
)

type Config struct {
	BaseUrl    string
	ApiKey     string
	TextModel  string
	ImageModel string
	Proxy      *url.URL
}

type Client struct {
	cfg  Config
	rest *resty.Client

	// mu 保护sdk的延迟创建与关闭
	mu  sync.Mutex
	sdk *genai.Client
}

func NewClient(cfg Config) *Client {
	if cfg.BaseUrl == "" {
		cfg.BaseUrl = defaultBaseUrl
	}
	return &Client{
		cfg:  cfg,
		rest: vendor.NewRestyClient(cfg.BaseUrl, 120*time.Second, cfg.Proxy),
	}
}

func (c *Client) checkConfig() error {
	return vendor.RequireCredentials(vendorName, vendor.Credential{Name: "api_key", Value: c.cfg.ApiKey})
}

// genaiClient 第一次使用时创建SDK客户端，创建失败时下次调用会重新创建
func (c *Client) genaiClient() (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sdk != nil {
		return c.sdk, nil
	}
	opts := []option.ClientOption{option.WithAPIKey(c.cfg.ApiKey)}
	if c.cfg.BaseUrl != defaultBaseUrl {
		opts = append(opts, option.WithEndpoint(c.cfg.BaseUrl))
	}
	sdk, err := genai.NewClient(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	c.sdk = sdk
	return sdk, nil
}

// Close 释放SDK客户端，可以和genaiClient并发调用
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sdk == nil {
		return nil
	}
	err := c.sdk.Close()
	c.sdk = nil
	return err
}

// GenerateText 文本生成
func (c *Client) GenerateText(ctx context.Context, prompt, systemPrompt string) (string, error) {
	if err := c.checkConfig(); err != nil {
		return "", err
	}
	client, err := c.genaiClient()
	if err != nil {
		return "", err
	}
	model := client.GenerativeModel(c.cfg.TextModel)
	if systemPrompt != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		log.GetLogger().Error("gemini generate content failed", zap.Error(err))
		return "", mapError(err)
	}
	text := responseText(resp)
	if text == "" {
		return "", apperr.NewEmptyResponseError(vendorName, "模型没有返回内容")
	}
	return text, nil
}

// Analyze 多模态分析，带图时图片在前、提示词在后
func (c *Client) Analyze(ctx context.Context, req types.AnalyzeRequest) (string, error) {
	if err := c.checkConfig(); err != nil {
		return "", err
	}
	client, err := c.genaiClient()
	if err != nil {
		return "", err
	}

	var parts []genai.Part
	if req.ImageBase64 != "" {
		data, err := base64.StdEncoding.DecodeString(req.ImageBase64)
		if err != nil {
			return "", apperr.NewValidationError("参考图不是有效的base64数据")
		}
		format := strings.TrimPrefix(req.MimeType, "image/")
		if format == "" {
			format = "png"
		}
		parts = append(parts, genai.ImageData(format, data))
	}
	parts = append(parts, genai.Text(req.Prompt))

	resp, err := client.GenerativeModel(c.cfg.TextModel).GenerateContent(ctx, parts...)
	if err != nil {
		log.GetLogger().Error("gemini analyze failed", zap.Error(err))
		return "", mapError(err)
	}
	text := responseText(resp)
	if text == "" {
		return "", apperr.NewEmptyResponseError(vendorName, "模型没有返回分析结果")
	}
	return text, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return strings.TrimSpace(b.String())
}

func mapError(err error) error {
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return apperr.NewEmptyResponseError(vendorName, blocked.Error())
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		body := gErr.Body
		if body == "" {
			body = gErr.Message
		}
		return apperr.NewVendorError(vendorName, gErr.Code, body)
	}
	return apperr.NewTransportError(vendorName, err)
}
