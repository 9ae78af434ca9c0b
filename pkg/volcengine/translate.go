package volcengine

import (
	"context"
	"storyshot-ai/internal/apperr"
	"storyshot-ai/internal/types"
	"storyshot-ai/log"

	"go.uber.org/zap"
)

const (
	translateService = "translate"
	translateVersion = "2020-06-01"
	translateMaxList = 16 // 单次请求的文本条数上限
)

type translateTextReq struct {
	SourceLanguage string   `json:"SourceLanguage,omitempty"`
	TargetLanguage string   `json:"TargetLanguage"`
	TextList       []string `json:"TextList"`
}

type translateTextResp struct {
	TranslationList []struct {
		Translation            string `json:"Translation"`
		DetectedSourceLanguage string `json:"DetectedSourceLanguage"`
	} `json:"TranslationList"`
	ResponseMetadata responseMetadata `json:"ResponseMetadata"`
}

// Translate 机器翻译，结果与输入按位置对应，超过单次上限时分批请求
// 机器翻译不区分内容类型，req.Kind 不影响结果
func (c *Client) Translate(ctx context.Context, req types.TranslateRequest) ([]string, error) {
	if err := c.checkConfig(); err != nil {
		return nil, err
	}
	if len(req.Texts) == 0 {
		return nil, nil
	}

	target := "zh"
	if req.Direction == types.TranslateToEnglish {
		target = "en"
	}

	results := make([]string, 0, len(req.Texts))
	for start := 0; start < len(req.Texts); start += translateMaxList {
		end := min(start+translateMaxList, len(req.Texts))
		var resp translateTextResp
		body, err := c.call(ctx, c.cfg.TranslateHost, translateService, "TranslateText", translateVersion,
			translateTextReq{TargetLanguage: target, TextList: req.Texts[start:end]}, &resp)
		if err != nil {
			return nil, err
		}
		if resp.ResponseMetadata.Error != nil {
			log.GetLogger().Error("volcengine translate returned error", zap.String("code", resp.ResponseMetadata.Error.Code),
				zap.String("message", resp.ResponseMetadata.Error.Message))
			return nil, apperr.NewVendorError(vendorName, 200, string(body))
		}
		if len(resp.TranslationList) != end-start {
			return nil, apperr.NewEmptyResponseError(vendorName, "翻译结果条数与输入不一致")
		}
		for _, item := range resp.TranslationList {
			results = append(results, item.Translation)
		}
	}
	return results, nil
}
