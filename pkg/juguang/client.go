// Package juguang 聚光代理客户端，接口风格与OpenAI一致，鉴权使用Bearer Token
package juguang

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"storyshot-ai/internal/apperr"
	"storyshot-ai/internal/types"
	"storyshot-ai/pkg/vendor"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const vendorName = "juguang"

type Config struct {
	BaseUrl    string
	ApiKey     string
	Model      string
	ImageModel string
	Proxy      *url.URL
}

type Client struct {
	cfg    Config
	client *resty.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		cfg:    cfg,
		client: vendor.NewRestyClient(cfg.BaseUrl, 120*time.Second, cfg.Proxy),
	}
}

func (c *Client) checkConfig() error {
	return vendor.RequireCredentials(vendorName,
		vendor.Credential{Name: "base_url", Value: c.cfg.BaseUrl},
		vendor.Credential{Name: "api_key", Value: c.cfg.ApiKey},
	)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatReq struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResp struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type imageReq struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size,omitempty"`
	ResponseFormat string `json:"response_format"`
}

type imageResp struct {
	Data []struct {
		Url     string `json:"url"`
		B64Json string `json:"b64_json"`
	} `json:"data"`
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	req := c.client.R().
		SetContext(ctx).
		SetAuthToken(c.cfg.ApiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(payload)
	resp, err := vendor.Execute(vendorName, req, http.MethodPost, path)
	if err != nil {
		return err
	}
	if err = json.Unmarshal(resp.Body(), out); err != nil {
		return apperr.NewVendorError(vendorName, resp.StatusCode(), resp.String())
	}
	return nil
}

// GenerateText 聊天补全
func (c *Client) GenerateText(ctx context.Context, prompt, systemPrompt string) (string, error) {
	if err := c.checkConfig(); err != nil {
		return "", err
	}
	var messages []chatMessage
	if systemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	var resp chatResp
	if err := c.post(ctx, "/v1/chat/completions", chatReq{Model: c.cfg.Model, Messages: messages}, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", apperr.NewEmptyResponseError(vendorName, "模型没有返回内容")
	}
	return resp.Choices[0].Message.Content, nil
}

// GenerateImage 文生图，代理可能返回base64或URL
func (c *Client) GenerateImage(ctx context.Context, req types.ImageRequest) (*types.ImageResult, error) {
	if err := c.checkConfig(); err != nil {
		return nil, err
	}
	var resp imageResp
	err := c.post(ctx, "/v1/images/generations", imageReq{
		Model:          c.cfg.ImageModel,
		Prompt:         req.Prompt,
		N:              1,
		Size:           imageSize(req.AspectRatio),
		ResponseFormat: "b64_json",
	}, &resp)
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, apperr.NewEmptyResponseError(vendorName, "响应中没有图片")
	}
	if resp.Data[0].B64Json != "" {
		data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64Json)
		if err != nil {
			return nil, fmt.Errorf("decode juguang image err: %w", err)
		}
		return &types.ImageResult{Data: data, MimeType: "image/png"}, nil
	}
	if resp.Data[0].Url != "" {
		return &types.ImageResult{Url: resp.Data[0].Url}, nil
	}
	return nil, apperr.NewEmptyResponseError(vendorName, "响应中没有图片")
}

func imageSize(aspectRatio string) string {
	switch aspectRatio {
	case types.AspectRatio9x16:
		return "720x1280"
	case types.AspectRatio1x1:
		return "1024x1024"
	case types.AspectRatio4x3:
		return "1152x864"
	case types.AspectRatio3x4:
		return "864x1152"
	default:
		return "1280x720"
	}
}
