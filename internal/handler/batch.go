package handler

import (
	"net/http"
	"storyshot-ai/internal/dto"
	"storyshot-ai/internal/response"
	"storyshot-ai/log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const wsPingInterval = 30 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StartBatch 启动批处理后立即返回当前状态，进度通过状态接口或websocket获取
func (h Handler) StartBatch(c *gin.Context) {
	var req dto.StartBatchReq
	if !bindJSON(c, &req) {
		return
	}
	status, err := h.Service.StartBatch(c.Request.Context(), c.Param("id"), req.Kind, req.Overwrite)
	if err != nil {
		response.Fail(c, err)
		return
	}
	ok(c, dto.BatchStatusResData{Status: status})
}

func (h Handler) GetBatch(c *gin.Context) {
	ok(c, dto.BatchStatusResData{Status: h.Service.BatchStatus(c.Param("id"))})
}

// CancelBatch 当前分镜处理完后停止
func (h Handler) CancelBatch(c *gin.Context) {
	status, err := h.Service.CancelBatch(c.Param("id"))
	if err != nil {
		response.Fail(c, err)
		return
	}
	ok(c, dto.BatchStatusResData{Status: status})
}

// BatchWebSocket 先推送当前状态，之后推送该项目所有批处理的进度事件，直到客户端断开
func (h Handler) BatchWebSocket(c *gin.Context) {
	projectId := c.Param("id")
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.GetLogger().Warn("websocket upgrade failed", zap.String("projectId", projectId), zap.Error(err))
		return
	}
	defer conn.Close()

	events, unsubscribe := h.Service.Batches.Subscribe(projectId)
	defer unsubscribe()

	if err = conn.WriteJSON(dto.BatchStatusResData{Status: h.Service.BatchStatus(projectId)}); err != nil {
		return
	}

	// 读循环只用于感知客户端断开
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-closed:
			return
		case event := <-events:
			if err = conn.WriteJSON(event); err != nil {
				log.GetLogger().Info("websocket write failed", zap.String("projectId", projectId), zap.Error(err))
				return
			}
		case <-ticker.C:
			if err = conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}
