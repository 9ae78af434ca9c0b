package handler

import (
	"storyshot-ai/internal/dto"
	"storyshot-ai/internal/response"

	"github.com/gin-gonic/gin"
)

// GenerateSegments 脚本拆分为分镜，不关联项目
func (h Handler) GenerateSegments(c *gin.Context) {
	var req dto.GenerateSegmentsReq
	if !bindJSON(c, &req) {
		return
	}
	segments, err := h.Service.GenerateSegments(c.Request.Context(), req.ScriptContent)
	if err != nil {
		response.Fail(c, err)
		return
	}
	ok(c, dto.GenerateSegmentsResData{Segments: segments})
}

// TranslateSegments 翻译分镜，翻译失败时返回错误，前端可重试
func (h Handler) TranslateSegments(c *gin.Context) {
	var req dto.TranslateSegmentsReq
	if !bindJSON(c, &req) {
		return
	}
	translations, err := h.Service.TranslateSegments(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	ok(c, dto.TranslateSegmentsResData{Translations: translations})
}

func (h Handler) GenerateProjectSegments(c *gin.Context) {
	var req dto.GenerateProjectSegmentsReq
	// 请求体可以为空
	_ = c.ShouldBindJSON(&req)
	segments, err := h.Service.GenerateProjectSegments(c.Request.Context(), c.Param("id"), req.ScriptContent)
	if err != nil {
		response.Fail(c, err)
		return
	}
	ok(c, dto.ProjectSegmentsResData{Segments: segments})
}

// CutSegment 剪切后立即返回新的分镜列表，翻译在后台补上
func (h Handler) CutSegment(c *gin.Context) {
	var req dto.CutSegmentReq
	if !bindJSON(c, &req) {
		return
	}
	segments, err := h.Service.CutProjectSegment(c.Request.Context(), c.Param("id"), c.Param("segmentId"), req.Offset)
	if err != nil {
		response.Fail(c, err)
		return
	}
	ok(c, dto.ProjectSegmentsResData{Segments: segments})
}

func (h Handler) MergeSegment(c *gin.Context) {
	var req dto.MergeSegmentReq
	if !bindJSON(c, &req) {
		return
	}
	segments, err := h.Service.MergeProjectSegment(c.Request.Context(), c.Param("id"), req.Index, req.Direction)
	if err != nil {
		response.Fail(c, err)
		return
	}
	ok(c, dto.ProjectSegmentsResData{Segments: segments})
}
