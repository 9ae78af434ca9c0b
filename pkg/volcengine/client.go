// Package volcengine 封装火山引擎签名类OpenAPI：机器翻译与视觉生图
package volcengine

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"storyshot-ai/internal/apperr"
	"storyshot-ai/pkg/vendor"
	"time"

	"github.com/go-resty/resty/v2"
)

const vendorName = "volcengine"

// Config 访问火山引擎所需的配置
type Config struct {
	AccessKeyId     string
	SecretAccessKey string
	Region          string
	TranslateHost   string
	VisualHost      string
	ImageReqKey     string
	Scheme          string // 默认https
	Proxy           *url.URL
}

type Client struct {
	cfg    Config
	client *resty.Client
}

func NewClient(cfg Config) *Client {
	if cfg.Scheme == "" {
		cfg.Scheme = "https"
	}
	if cfg.Region == "" {
		cfg.Region = "cn-north-1"
	}
	return &Client{
		cfg:    cfg,
		client: vendor.NewRestyClient("", 60*time.Second, cfg.Proxy),
	}
}

func (c *Client) checkConfig() error {
	return vendor.RequireCredentials(vendorName,
		vendor.Credential{Name: "access_key_id", Value: c.cfg.AccessKeyId},
		vendor.Credential{Name: "secret_access_key", Value: c.cfg.SecretAccessKey},
	)
}

// responseMetadata 火山OpenAPI的公共响应字段，业务错误时HTTP状态码也可能是200
type responseMetadata struct {
	RequestId string `json:"RequestId"`
	Action    string `json:"Action"`
	Error     *struct {
		Code    string `json:"Code"`
		Message string `json:"Message"`
	} `json:"Error,omitempty"`
}

// call 发送签名后的POST请求，响应体解析到out
func (c *Client) call(ctx context.Context, host, service, action, version string, payload any, out any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload err: %w", action, err)
	}

	query := url.Values{}
	query.Set("Action", action)
	query.Set("Version", version)

	signer := &Signer{
		AccessKeyId:     c.cfg.AccessKeyId,
		SecretAccessKey: c.cfg.SecretAccessKey,
		Region:          c.cfg.Region,
		Service:         service,
	}
	headers := signer.Sign(SignRequest{
		Method:      http.MethodPost,
		Host:        host,
		Path:        "/",
		Query:       query,
		ContentType: "application/json",
		Body:        body,
	})

	req := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeaders(headers).
		SetQueryParamsFromValues(query).
		SetBody(body)
	resp, err := vendor.Execute(vendorName, req, http.MethodPost, fmt.Sprintf("%s://%s/", c.cfg.Scheme, host))
	if err != nil {
		return nil, err
	}

	if err = json.Unmarshal(resp.Body(), out); err != nil {
		return resp.Body(), apperr.NewVendorError(vendorName, resp.StatusCode(), resp.String())
	}
	return resp.Body(), nil
}
