package util

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"storyshot-ai/log"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// DownloadBytes 下载远程文件到内存，用于把厂商返回的临时地址转存到自己的存储
// proxy为nil或为空时直连
// @return 文件内容、响应的Content-Type
func DownloadBytes(ctx context.Context, urlStr string, proxy *url.URL) ([]byte, string, error) {
	log.GetLogger().Info("开始下载文件", zap.String("url", urlStr))

	client := resty.New().SetTimeout(5 * time.Minute)
	if proxy != nil && proxy.Host != "" {
		client.SetProxy(proxy.String())
	}

	resp, err := client.R().SetContext(ctx).Get(urlStr)
	if err != nil {
		return nil, "", fmt.Errorf("download %s err: %w", urlStr, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, "", fmt.Errorf("download %s status: %d", urlStr, resp.StatusCode())
	}

	log.GetLogger().Info("文件下载完成", zap.String("url", urlStr), zap.Int("size", len(resp.Body())))
	return resp.Body(), resp.Header().Get("Content-Type"), nil
}
