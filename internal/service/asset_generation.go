package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"storyshot-ai/internal/apperr"
	"storyshot-ai/internal/dto"
	"storyshot-ai/internal/storage"
	"storyshot-ai/internal/types"
	"storyshot-ai/log"
	"storyshot-ai/pkg/util"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// 单个分镜的生成步骤
const (
	SegmentStepDescription = "description"
	SegmentStepOptimize    = "optimize"
	SegmentStepKeywords    = "keywords"
	SegmentStepImage       = "image"
	SegmentStepVideo       = "video"
)

const contentFilteredMessage = "图片生成被内容过滤，请修改描述后重试"

func isRemoteUrl(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}

func withStyle(prompt, styleDescription string) string {
	if styleDescription == "" {
		return prompt
	}
	return prompt + ", " + styleDescription
}

// saveAsset 二进制数据存到素材存储；远程地址按配置转存，转存失败时保留原地址
func (s *Service) saveAsset(ctx context.Context, keyPrefix string, data []byte, mimeType, remoteUrl string) (string, error) {
	if len(data) == 0 {
		if !s.RehostRemote || s.Assets == nil || !isRemoteUrl(remoteUrl) {
			return remoteUrl, nil
		}
		downloaded, contentType, err := util.DownloadBytes(ctx, remoteUrl, s.Proxy)
		if err != nil {
			log.GetLogger().Warn("rehost remote asset failed, keep vendor url", zap.String("url", remoteUrl), zap.Error(err))
			return remoteUrl, nil
		}
		data = downloaded
		mimeType = lo.Ternary(mimeType == "", contentType, mimeType)
	}
	if s.Assets == nil {
		return "", apperr.NewConfigError("storage", "未配置素材存储")
	}

	ext := util.ExtByMimeType(mimeType)
	if ext == "" {
		ext = lo.Ternary(strings.HasPrefix(mimeType, "video/"), ".mp4", ".png")
	}
	key := fmt.Sprintf("%s-%s%s", keyPrefix, util.GenerateID()[:8], ext)
	url, err := s.Assets.Save(ctx, key, data, lo.Ternary(mimeType == "", util.ContentTypeByExt(key), mimeType))
	if err != nil {
		return "", fmt.Errorf("save asset err: %w", err)
	}
	return url, nil
}

// generateImage 生图并保存，空结果视为被内容过滤
func (s *Service) generateImage(ctx context.Context, prompt, aspectRatio, keyPrefix string) (string, error) {
	result, err := s.ImageGenerator.GenerateImage(ctx, types.ImageRequest{
		Prompt:      prompt,
		AspectRatio: lo.Ternary(aspectRatio == "", types.AspectRatio16x9, aspectRatio),
	})
	if err != nil {
		if apperr.IsKind(err, apperr.KindEmptyResponse) {
			return "", apperr.NewContentFilteredError(contentFilteredMessage, err)
		}
		return "", err
	}
	if result == nil || (len(result.Data) == 0 && result.Url == "") {
		return "", apperr.NewContentFilteredError(contentFilteredMessage, nil)
	}
	return s.saveAsset(ctx, keyPrefix, result.Data, result.MimeType, result.Url)
}

// vendorImageRef 本地存储的图片厂商访问不到，转成data URI
func (s *Service) vendorImageRef(imageUrl string) string {
	local, ok := s.Assets.(*storage.LocalAssetStore)
	if !ok || !strings.HasPrefix(imageUrl, "/api/file/") {
		return imageUrl
	}
	path := local.Resolve(strings.TrimPrefix(imageUrl, "/api/file/"))
	data, err := os.ReadFile(path)
	if err != nil {
		log.GetLogger().Warn("read local image failed", zap.String("path", path), zap.Error(err))
		return imageUrl
	}
	return fmt.Sprintf("data:%s;base64,%s", util.ContentTypeByExt(path), base64.StdEncoding.EncodeToString(data))
}

// checkVideoInput 文生视频需要描述，图生视频需要图片
func checkVideoInput(mode types.GenerationMode, description, imageUrl string) error {
	if err := checkGenerationMode(mode); err != nil {
		return err
	}
	if mode == types.GenerationModeTextToVideo && strings.TrimSpace(description) == "" {
		return apperr.NewValidationError("请先生成画面描述")
	}
	if mode == types.GenerationModeTextToImageToVideo && imageUrl == "" {
		return apperr.NewValidationError("请先生成图片")
	}
	return nil
}

func (s *Service) generateVideo(ctx context.Context, mode types.GenerationMode, prompt, imageUrl, aspectRatio, keyPrefix string) (string, error) {
	req := types.VideoRequest{
		Prompt:      prompt,
		Mode:        mode,
		AspectRatio: lo.Ternary(aspectRatio == "", types.AspectRatio16x9, aspectRatio),
	}
	if mode == types.GenerationModeTextToImageToVideo {
		req.ImageUrl = imageUrl
		// 占位生成器直接返回图片地址，不需要转换
		if !s.isPlaceholderVideo() {
			req.ImageUrl = s.vendorImageRef(imageUrl)
		}
	}
	videoUrl, err := s.VideoGenerator.GenerateVideo(ctx, req)
	if err != nil {
		return "", err
	}
	if videoUrl == "" {
		return "", apperr.NewEmptyResponseError("video", "没有返回视频地址")
	}
	return s.saveAsset(ctx, keyPrefix, nil, "video/mp4", videoUrl)
}

func (s *Service) isPlaceholderVideo() bool {
	_, ok := s.VideoGenerator.(*placeholderVideoGenerator)
	return ok
}

// imageOp 需要画面描述，且只在图生视频模式下可用
func (s *Service) imageOp(projectId string, mode types.GenerationMode, aspectRatio, styleDescription string) SegmentOperation {
	return func(ctx context.Context, seg *types.Segment) error {
		if !seg.HasDescription() && seg.OptimizedDescription == "" {
			return apperr.NewValidationError("请先生成画面描述")
		}
		if mode != types.GenerationModeTextToImageToVideo {
			return apperr.NewValidationError("当前生成模式不需要生成图片")
		}
		url, err := s.generateImage(ctx, withStyle(seg.ImagePrompt(), styleDescription), aspectRatio,
			fmt.Sprintf("projects/%s/images/%s", projectId, seg.Id))
		if err != nil {
			return err
		}
		seg.ImageUrl = url
		return nil
	}
}

func (s *Service) videoOp(projectId string, mode types.GenerationMode, aspectRatio string) SegmentOperation {
	return func(ctx context.Context, seg *types.Segment) error {
		if err := checkVideoInput(mode, seg.SceneDescription, seg.ImageUrl); err != nil {
			return err
		}
		url, err := s.generateVideo(ctx, mode, seg.ImagePrompt(), seg.ImageUrl, aspectRatio,
			fmt.Sprintf("projects/%s/videos/%s", projectId, seg.Id))
		if err != nil {
			return err
		}
		seg.VideoUrl = url
		return nil
	}
}

// segmentOp 按步骤返回对单个分镜的操作，参数取自项目当前设置
func (s *Service) segmentOp(p *types.Project, step string) (SegmentOperation, error) {
	switch step {
	case SegmentStepDescription:
		return s.describeOp(p.VisualBible), nil
	case SegmentStepOptimize:
		return s.optimizeOp(p.GenerationMode, p.AspectRatio), nil
	case SegmentStepKeywords:
		return s.keywordsOp(p.VisualBible, p.StyleSettings.StyleDescription), nil
	case SegmentStepImage:
		return s.imageOp(p.Id, p.GenerationMode, p.AspectRatio, p.StyleSettings.StyleDescription), nil
	case SegmentStepVideo:
		return s.videoOp(p.Id, p.GenerationMode, p.AspectRatio), nil
	default:
		return nil, apperr.NewValidationError("不支持的生成步骤: " + step)
	}
}

// RunSegmentStep 对项目中的单个分镜执行一步生成，成功后立即保存
// 保存失败只记录日志，不影响返回结果
func (s *Service) RunSegmentStep(ctx context.Context, projectId, segmentId, step string) (*types.Segment, error) {
	leave, err := s.Batches.enterStep(projectId)
	if err != nil {
		return nil, err
	}
	defer leave()

	p, err := s.Projects.Get(ctx, projectId)
	if err != nil {
		return nil, err
	}
	idx := p.FindSegment(segmentId)
	if idx < 0 {
		return nil, apperr.NewNotFoundError("分镜不存在")
	}
	op, err := s.segmentOp(p, step)
	if err != nil {
		return nil, err
	}

	seg := p.Segments[idx]
	if err = op(ctx, &seg); err != nil {
		log.GetLogger().Error("segment step failed", zap.String("projectId", projectId), zap.String("segmentId", segmentId),
			zap.String("step", step), zap.Error(err))
		return nil, err
	}
	s.commitSegment(ctx, projectId, seg)
	log.GetLogger().Info("segment step done", zap.String("projectId", projectId), zap.String("segmentId", segmentId), zap.String("step", step))
	return &seg, nil
}

// GenerateImageForPrompt 不关联项目的生图接口
func (s *Service) GenerateImageForPrompt(ctx context.Context, req dto.GenerateImageReq) (string, error) {
	prompt := lo.Ternary(strings.TrimSpace(req.Prompt) != "", req.Prompt, req.Description)
	if strings.TrimSpace(prompt) == "" {
		return "", apperr.NewValidationError("请先生成画面描述")
	}
	return s.generateImage(ctx, prompt, req.AspectRatio, "images/"+util.GenerateID())
}

// GenerateVideoForRequest 不关联项目的视频接口
func (s *Service) GenerateVideoForRequest(ctx context.Context, req dto.GenerateVideoReq) (string, error) {
	if err := checkVideoInput(req.GenerationMode, req.Description, req.ImageUrl); err != nil {
		return "", err
	}
	return s.generateVideo(ctx, req.GenerationMode, req.Description, req.ImageUrl, req.AspectRatio, "videos/"+util.GenerateID())
}
