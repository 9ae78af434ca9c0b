// Package doubao 方舟Seedance视频生成：提交异步任务后轮询任务状态
package doubao

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"storyshot-ai/internal/apperr"
	"storyshot-ai/internal/types"
	"storyshot-ai/log"
	"storyshot-ai/pkg/vendor"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const vendorName = "doubao"

// 任务状态
const (
	taskStatusQueued    = "queued"
	taskStatusRunning   = "running"
	taskStatusSucceeded = "succeeded"
	taskStatusFailed    = "failed"
	taskStatusCancelled = "cancelled"
)

type Config struct {
	BaseUrl      string
	ApiKey       string
	VideoModel   string
	PollInterval time.Duration
	Timeout      time.Duration
	Proxy        *url.URL
}

type VideoClient struct {
	cfg    Config
	client *resty.Client
}

func NewVideoClient(cfg Config) *VideoClient {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Minute
	}
	return &VideoClient{
		cfg:    cfg,
		client: vendor.NewRestyClient(cfg.BaseUrl, 60*time.Second, cfg.Proxy),
	}
}

type contentItem struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageUrl *imageUrl `json:"image_url,omitempty"`
}

type imageUrl struct {
	Url string `json:"url"`
}

type createTaskReq struct {
	Model   string        `json:"model"`
	Content []contentItem `json:"content"`
}

type createTaskResp struct {
	Id string `json:"id"`
}

type taskResp struct {
	Id      string `json:"id"`
	Status  string `json:"status"`
	Content struct {
		VideoUrl string `json:"video_url"`
	} `json:"content"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// GenerateVideo 提交任务并等待完成，返回视频地址
// 图生视频模式下带上首帧图片
func (c *VideoClient) GenerateVideo(ctx context.Context, req types.VideoRequest) (string, error) {
	if err := vendor.RequireCredentials(vendorName,
		vendor.Credential{Name: "api_key", Value: c.cfg.ApiKey},
		vendor.Credential{Name: "video_model", Value: c.cfg.VideoModel},
	); err != nil {
		return "", err
	}

	taskId, err := c.createTask(ctx, req)
	if err != nil {
		return "", err
	}
	log.GetLogger().Info("doubao video task submitted", zap.String("taskId", taskId))
	return c.pollTask(ctx, taskId)
}

func (c *VideoClient) createTask(ctx context.Context, req types.VideoRequest) (string, error) {
	prompt := req.Prompt
	if req.AspectRatio != "" {
		prompt = fmt.Sprintf("%s --ratio %s", prompt, req.AspectRatio)
	}
	content := []contentItem{{Type: "text", Text: prompt}}
	if req.Mode == types.GenerationModeTextToImageToVideo && req.ImageUrl != "" {
		content = append(content, contentItem{Type: "image_url", ImageUrl: &imageUrl{Url: req.ImageUrl}})
	}

	r := c.client.R().
		SetContext(ctx).
		SetAuthToken(c.cfg.ApiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(createTaskReq{Model: c.cfg.VideoModel, Content: content})
	resp, err := vendor.Execute(vendorName, r, http.MethodPost, "/contents/generations/tasks")
	if err != nil {
		return "", err
	}
	var created createTaskResp
	if err = json.Unmarshal(resp.Body(), &created); err != nil || created.Id == "" {
		return "", apperr.NewEmptyResponseError(vendorName, "创建视频任务没有返回任务id")
	}
	return created.Id, nil
}

// pollTask 按固定间隔查询任务状态，网络抖动时继续轮询
func (c *VideoClient) pollTask(ctx context.Context, taskId string) (string, error) {
	timeout := time.After(c.cfg.Timeout)
	ticker := time.NewTicker(c.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-timeout:
			return "", apperr.NewEmptyResponseError(vendorName, fmt.Sprintf("视频任务%s超时", taskId))
		case <-ctx.Done():
			return "", fmt.Errorf("polling canceled: %w", ctx.Err())
		case <-ticker.C:
			r := c.client.R().SetContext(ctx).SetAuthToken(c.cfg.ApiKey)
			resp, err := vendor.Execute(vendorName, r, http.MethodGet, "/contents/generations/tasks/"+taskId)
			if err != nil {
				if apperr.IsKind(err, apperr.KindVendor) && resp != nil {
					return "", err
				}
				log.GetLogger().Warn("轮询视频任务网络错误(重试中)", zap.String("taskId", taskId), zap.Error(err))
				continue
			}

			var task taskResp
			if err = json.Unmarshal(resp.Body(), &task); err != nil {
				log.GetLogger().Warn("解析视频任务状态失败", zap.String("taskId", taskId), zap.String("body", resp.String()))
				continue
			}
			switch task.Status {
			case taskStatusSucceeded:
				if task.Content.VideoUrl == "" {
					return "", apperr.NewEmptyResponseError(vendorName, "任务成功但没有返回视频地址")
				}
				return task.Content.VideoUrl, nil
			case taskStatusFailed, taskStatusCancelled:
				return "", apperr.NewVendorError(vendorName, resp.StatusCode(), resp.String())
			case taskStatusQueued, taskStatusRunning:
			default:
				log.GetLogger().Warn("未知的视频任务状态", zap.String("taskId", taskId), zap.String("status", task.Status))
			}
		}
	}
}
