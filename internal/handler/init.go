package handler

import (
	"storyshot-ai/internal/apperr"
	"storyshot-ai/internal/response"
	"storyshot-ai/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler HTTP处理器，业务逻辑都在Service中
type Handler struct {
	Service *service.Service
}

func NewHandler(svc *service.Service) Handler {
	return Handler{Service: svc}
}

// ok 成功响应
func ok(c *gin.Context, data any) {
	response.R(c, response.Response{
		Error: 0,
		Msg:   "成功",
		Data:  data,
	})
}

// bindJSON 解析请求体，失败时直接返回参数错误
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Fail(c, apperr.NewValidationError("参数错误: "+err.Error()))
		return false
	}
	return true
}
