package handler

import (
	"storyshot-ai/internal/dto"
	"storyshot-ai/internal/response"

	"github.com/gin-gonic/gin"
)

// GenerateImage 内容被过滤时返回422和修改描述的提示
func (h Handler) GenerateImage(c *gin.Context) {
	var req dto.GenerateImageReq
	if !bindJSON(c, &req) {
		return
	}
	url, err := h.Service.GenerateImageForPrompt(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	ok(c, dto.ImageResData{ImageUrl: url})
}

func (h Handler) GenerateVideo(c *gin.Context) {
	var req dto.GenerateVideoReq
	if !bindJSON(c, &req) {
		return
	}
	url, err := h.Service.GenerateVideoForRequest(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	ok(c, dto.VideoResData{VideoUrl: url})
}

// SegmentStep 对项目中的单个分镜执行一步生成
func (h Handler) SegmentStep(step string) gin.HandlerFunc {
	return func(c *gin.Context) {
		seg, err := h.Service.RunSegmentStep(c.Request.Context(), c.Param("id"), c.Param("segmentId"), step)
		if err != nil {
			response.Fail(c, err)
			return
		}
		ok(c, dto.SegmentResData{Segment: seg})
	}
}

func (h Handler) AnalyzeStyle(c *gin.Context) {
	var req dto.AnalyzeStyleReq
	if !bindJSON(c, &req) {
		return
	}
	analysis, err := h.Service.AnalyzeStyle(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	ok(c, dto.AnalyzeStyleResData{Analysis: analysis})
}
