package handler

import (
	"os"
	"path/filepath"
	"storyshot-ai/internal/apperr"
	"storyshot-ai/internal/response"
	"storyshot-ai/internal/storage"

	"github.com/gin-gonic/gin"
)

// DownloadFile 提供本地存储的图片和视频
// 只有本地存储时可用，路径限制在存储目录内
func (h Handler) DownloadFile(c *gin.Context) {
	local, isLocal := h.Service.Assets.(*storage.LocalAssetStore)
	if !isLocal {
		response.Fail(c, apperr.NewNotFoundError("当前存储不提供本地文件访问"))
		return
	}
	requestedFile := c.Param("filepath")
	if requestedFile == "" || requestedFile == "/" {
		response.Fail(c, apperr.NewValidationError("文件路径为空"))
		return
	}

	localFilePath := local.Resolve(requestedFile)
	if info, err := os.Stat(localFilePath); err != nil || info.IsDir() {
		response.Fail(c, apperr.NewNotFoundError("文件不存在"))
		return
	}
	c.Header("Content-Disposition", "inline; filename="+filepath.Base(localFilePath))
	c.File(localFilePath)
}
