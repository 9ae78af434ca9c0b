package router

import (
	"storyshot-ai/internal/handler"
	"storyshot-ai/internal/service"

	"github.com/gin-gonic/gin"
)

// SetupRouter 配置所有HTTP路由，所有接口都以/api为前缀
func SetupRouter(r *gin.Engine, svc *service.Service) {
	api := r.Group("/api")

	hdl := handler.NewHandler(svc)
	{
		// 不关联项目的能力接口
		api.POST("/segments/generate", hdl.GenerateSegments)
		api.POST("/segments/translate", hdl.TranslateSegments)
		api.POST("/visual-bible/generate", hdl.GenerateVisualBible)
		api.POST("/descriptions/generate", hdl.GenerateDescription)
		api.POST("/descriptions/batch-generate", hdl.BatchGenerateDescriptions)
		api.POST("/descriptions/optimize", hdl.OptimizeDescription)
		api.POST("/descriptions/batch-optimize", hdl.BatchOptimizeDescriptions)
		api.POST("/keywords/extract", hdl.ExtractKeywords)
		api.POST("/keywords/batch-extract", hdl.BatchExtractKeywords)
		api.POST("/images/generate", hdl.GenerateImage)
		api.POST("/videos/generate", hdl.GenerateVideo)
		api.POST("/style/analyze", hdl.AnalyzeStyle)

		// 项目
		api.POST("/projects", hdl.CreateProject)
		api.GET("/projects", hdl.ListProjects)
		api.GET("/projects/:id", hdl.GetProject)
		api.PUT("/projects/:id", hdl.UpdateProject)
		api.DELETE("/projects/:id", hdl.DeleteProject)
		api.PUT("/projects/:id/step", hdl.SetProjectStep)

		// 项目分镜
		api.POST("/projects/:id/segments/generate", hdl.GenerateProjectSegments)
		api.POST("/projects/:id/segments/merge", hdl.MergeSegment)
		api.POST("/projects/:id/segments/:segmentId/cut", hdl.CutSegment)
		api.POST("/projects/:id/visual-bible", hdl.GenerateProjectVisualBible)
		api.POST("/projects/:id/segments/:segmentId/description", hdl.SegmentStep(service.SegmentStepDescription))
		api.POST("/projects/:id/segments/:segmentId/optimize", hdl.SegmentStep(service.SegmentStepOptimize))
		api.POST("/projects/:id/segments/:segmentId/keywords", hdl.SegmentStep(service.SegmentStepKeywords))
		api.POST("/projects/:id/segments/:segmentId/image", hdl.SegmentStep(service.SegmentStepImage))
		api.POST("/projects/:id/segments/:segmentId/video", hdl.SegmentStep(service.SegmentStepVideo))

		// 批处理
		api.POST("/projects/:id/batch", hdl.StartBatch)
		api.GET("/projects/:id/batch", hdl.GetBatch)
		api.DELETE("/projects/:id/batch", hdl.CancelBatch)
		api.GET("/projects/:id/batch/ws", hdl.BatchWebSocket)

		// GET /api/file/*filepath - 本地存储的素材
		api.GET("/file/*filepath", hdl.DownloadFile)
	}
}
