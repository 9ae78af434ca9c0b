package handler

import (
	"storyshot-ai/internal/dto"
	"storyshot-ai/internal/response"

	"github.com/gin-gonic/gin"
)

func (h Handler) GenerateVisualBible(c *gin.Context) {
	var req dto.GenerateVisualBibleReq
	if !bindJSON(c, &req) {
		return
	}
	vb, err := h.Service.GenerateVisualBible(c.Request.Context(), req.FullText)
	if err != nil {
		response.Fail(c, err)
		return
	}
	ok(c, dto.VisualBibleResData{VisualBible: vb})
}

// GenerateProjectVisualBible 用项目脚本生成并保存视觉圣经
func (h Handler) GenerateProjectVisualBible(c *gin.Context) {
	vb, err := h.Service.GenerateProjectVisualBible(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	ok(c, dto.VisualBibleResData{VisualBible: vb})
}

func (h Handler) GenerateDescription(c *gin.Context) {
	var req dto.GenerateDescriptionReq
	if !bindJSON(c, &req) {
		return
	}
	data, err := h.Service.GenerateDescription(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	ok(c, data)
}

// BatchGenerateDescriptions 单个分镜失败不影响其他分镜，错误写在对应结果里
func (h Handler) BatchGenerateDescriptions(c *gin.Context) {
	var req dto.BatchGenerateDescriptionsReq
	if !bindJSON(c, &req) {
		return
	}
	data, err := h.Service.BatchGenerateDescriptions(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	ok(c, data)
}

func (h Handler) OptimizeDescription(c *gin.Context) {
	var req dto.OptimizeDescriptionReq
	if !bindJSON(c, &req) {
		return
	}
	optimized, err := h.Service.OptimizeDescription(c.Request.Context(), req.Description, req.GenerationMode, req.AspectRatio)
	if err != nil {
		response.Fail(c, err)
		return
	}
	ok(c, dto.OptimizeDescriptionResData{OptimizedDescription: optimized})
}

func (h Handler) BatchOptimizeDescriptions(c *gin.Context) {
	var req dto.BatchOptimizeDescriptionsReq
	if !bindJSON(c, &req) {
		return
	}
	data, err := h.Service.BatchOptimizeDescriptions(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	ok(c, data)
}

func (h Handler) ExtractKeywords(c *gin.Context) {
	var req dto.ExtractKeywordsReq
	if !bindJSON(c, &req) {
		return
	}
	keywords, keywordsEn, err := h.Service.ExtractKeywords(c.Request.Context(), req.Description, req.VisualBible, req.StyleDescription)
	if err != nil {
		response.Fail(c, err)
		return
	}
	ok(c, dto.KeywordsResData{Keywords: keywords, KeywordsEn: keywordsEn})
}

func (h Handler) BatchExtractKeywords(c *gin.Context) {
	var req dto.BatchExtractKeywordsReq
	if !bindJSON(c, &req) {
		return
	}
	data, err := h.Service.BatchExtractKeywords(c.Request.Context(), req)
	if err != nil {
		response.Fail(c, err)
		return
	}
	ok(c, data)
}
