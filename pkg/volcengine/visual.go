package volcengine

import (
	"context"
	"encoding/base64"
	"fmt"
	"storyshot-ai/internal/apperr"
	"storyshot-ai/internal/types"
)

const (
	visualService = "cv"
	visualVersion = "2022-08-31"
	visualSuccess = 10000
)

type cvProcessReq struct {
	ReqKey    string `json:"req_key"`
	Prompt    string `json:"prompt"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	ReturnUrl bool   `json:"return_url"`
}

type cvProcessResp struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		BinaryDataBase64 []string `json:"binary_data_base64"`
		ImageUrls        []string `json:"image_urls"`
	} `json:"data"`
	ResponseMetadata responseMetadata `json:"ResponseMetadata"`
}

// imageSize 画面比例对应的出图尺寸
func imageSize(aspectRatio string) (int, int) {
	switch aspectRatio {
	case types.AspectRatio9x16:
		return 720, 1280
	case types.AspectRatio1x1:
		return 1024, 1024
	case types.AspectRatio4x3:
		return 1152, 864
	case types.AspectRatio3x4:
		return 864, 1152
	default:
		return 1280, 720
	}
}

// GenerateImage 通用文生图，优先返回二进制数据
func (c *Client) GenerateImage(ctx context.Context, req types.ImageRequest) (*types.ImageResult, error) {
	if err := c.checkConfig(); err != nil {
		return nil, err
	}
	width, height := imageSize(req.AspectRatio)

	var resp cvProcessResp
	body, err := c.call(ctx, c.cfg.VisualHost, visualService, "CVProcess", visualVersion, cvProcessReq{
		ReqKey:    c.cfg.ImageReqKey,
		Prompt:    req.Prompt,
		Width:     width,
		Height:    height,
		ReturnUrl: true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Code != visualSuccess {
		return nil, apperr.NewVendorError(vendorName, 200, string(body))
	}

	if len(resp.Data.BinaryDataBase64) > 0 && resp.Data.BinaryDataBase64[0] != "" {
		data, err := base64.StdEncoding.DecodeString(resp.Data.BinaryDataBase64[0])
		if err != nil {
			return nil, fmt.Errorf("decode volcengine image err: %w", err)
		}
		return &types.ImageResult{Data: data, MimeType: "image/png"}, nil
	}
	if len(resp.Data.ImageUrls) > 0 && resp.Data.ImageUrls[0] != "" {
		return &types.ImageResult{Url: resp.Data.ImageUrls[0]}, nil
	}
	return nil, apperr.NewEmptyResponseError(vendorName, "响应中没有图片")
}
