package dto

import "storyshot-ai/internal/types"

// StartBatchReq overwrite为true时已生成过的分镜也会重新生成
type StartBatchReq struct {
	Kind      types.BatchKind `json:"kind" binding:"required"`
	Overwrite bool            `json:"overwrite"`
}

type BatchStatusResData struct {
	Status types.BatchStatus `json:"status"`
}
