package response

import (
	"errors"
	"net/http"
	"storyshot-ai/internal/apperr"

	"github.com/gin-gonic/gin"
)

// Response 统一的响应结构，Error为0表示成功
type Response struct {
	Error int    `json:"error"`
	Msg   string `json:"msg"`
	Data  any    `json:"data"`
}

func R(c *gin.Context, data Response) {
	c.JSON(http.StatusOK, data)
}

// Fail 根据错误类型返回对应的HTTP状态码和提示
// 厂商错误原样返回响应体，其余只返回简短的提示
func Fail(c *gin.Context, err error) {
	status, msg := http.StatusInternalServerError, "服务内部错误，请稍后重试"

	var e *apperr.Error
	if errors.As(err, &e) {
		switch e.Kind {
		case apperr.KindConfig:
			status, msg = http.StatusInternalServerError, "服务配置不完整，"+e.Error()
		case apperr.KindVendor:
			status, msg = http.StatusBadGateway, e.Error()
		case apperr.KindEmptyResponse, apperr.KindContentFiltered:
			status, msg = http.StatusUnprocessableEntity, e.Message
		case apperr.KindValidation:
			status, msg = http.StatusBadRequest, e.Message
		case apperr.KindNotFound:
			status, msg = http.StatusNotFound, e.Message
		case apperr.KindConflict:
			status, msg = http.StatusConflict, e.Message
		}
	}

	c.JSON(status, Response{
		Error: -1,
		Msg:   msg,
		Data:  nil,
	})
}
