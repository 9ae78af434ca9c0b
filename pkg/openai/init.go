// Package openai 提供了 OpenAI API 的客户端封装
// 用于访问 OpenAI 的大语言模型服务，支持聊天补全、文生图和看图分析
// 同一个客户端也用于方舟等OpenAI兼容接口，支持自定义基础 URL、API 密钥和代理设置
package openai

import (
	"net/http"
	"net/url"
	"storyshot-ai/pkg/vendor"

	"github.com/sashabaranov/go-openai"
)

// Config OpenAI兼容接口的配置
type Config struct {
	Name        string   // 厂商名，用于日志和错误信息，默认openai
	BaseUrl     string   // API的基础URL，为空时使用官方地址
	ApiKey      string   // API访问密钥
	Model       string   // 聊天补全使用的模型
	ImageModel  string   // 文生图使用的模型
	VisionModel string   // 看图分析使用的模型，为空时使用Model
	Proxy       *url.URL // 代理地址，为空时直连
}

// Client 是 OpenAI API 的客户端封装
// 使用 go-openai 库实现，提供对 OpenAI 兼容接口的访问
type Client struct {
	cfg    Config         // 客户端配置
	client *openai.Client // go-openai 库的客户端实例
}

// NewClient 创建并初始化 OpenAI 客户端
// @param cfg 客户端配置，BaseUrl 为空时使用官方地址，Proxy 为空时不使用代理
// @return *Client 初始化后的 OpenAI 客户端
func NewClient(cfg Config) *Client {
	if cfg.Name == "" {
		cfg.Name = "openai"
	}
	// 创建默认配置，设置 API 密钥
	clientCfg := openai.DefaultConfig(cfg.ApiKey)
	if cfg.BaseUrl != "" {
		// 如果提供了自定义 URL，则使用自定义 URL
		clientCfg.BaseURL = cfg.BaseUrl
	}

	if cfg.Proxy != nil && cfg.Proxy.Host != "" {
		// 如果提供了代理地址，则设置代理
		clientCfg.HTTPClient = &http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyURL(cfg.Proxy),
			},
		}
	}

	// 使用配置创建 OpenAI 客户端
	return &Client{cfg: cfg, client: openai.NewClientWithConfig(clientCfg)}
}

// checkConfig 未配置密钥时直接返回配置错误，不发请求
func (c *Client) checkConfig() error {
	return vendor.RequireCredentials(c.cfg.Name, vendor.Credential{Name: "api_key", Value: c.cfg.ApiKey})
}
