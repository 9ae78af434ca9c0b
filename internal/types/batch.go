package types

import "time"

// BatchKind 批处理的操作类型
type BatchKind string

const (
	BatchKindDescriptions BatchKind = "descriptions"
	BatchKindOptimize     BatchKind = "optimize"
	BatchKindKeywords     BatchKind = "keywords"
	BatchKindImages       BatchKind = "images"
	BatchKindVideos       BatchKind = "videos"
	BatchKindTranslations BatchKind = "translations" // 为翻译失败的外语分镜补翻译
)

func (k BatchKind) Valid() bool {
	switch k {
	case BatchKindDescriptions, BatchKindOptimize, BatchKindKeywords, BatchKindImages, BatchKindVideos, BatchKindTranslations:
		return true
	}
	return false
}

// BatchState 批处理结束状态
type BatchState string

const (
	BatchStateEmpty     BatchState = "empty"     // 没有符合条件的分镜
	BatchStateCompleted BatchState = "completed" // 全部处理完
	BatchStateStopped   BatchState = "stopped"   // 被用户停止
)

// BatchSummary 一次批处理的结果
type BatchSummary struct {
	Kind      BatchKind  `json:"kind"`
	State     BatchState `json:"state"`
	Total     int        `json:"total"`     // 符合条件的分镜数
	Processed int        `json:"processed"` // 实际调用过的分镜数
	Succeeded int        `json:"succeeded"`
	Failed    int        `json:"failed"`
	FailedIds []string   `json:"failedIds,omitempty"`
	Message   string     `json:"message"`
}

// 批处理事件类型
const (
	BatchEventStarted       = "started"
	BatchEventItemStarted   = "item_started"
	BatchEventItemSucceeded = "item_succeeded"
	BatchEventItemFailed    = "item_failed"
	BatchEventFinished      = "finished"
)

// BatchEvent 推送给前端的进度事件
type BatchEvent struct {
	Type      string        `json:"type"`
	ProjectId string        `json:"projectId,omitempty"`
	Kind      BatchKind     `json:"kind,omitempty"`
	SegmentId string        `json:"segmentId,omitempty"`
	Position  int           `json:"position,omitempty"` // 当前是第几个，从1开始
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Error     string        `json:"error,omitempty"`
	Summary   *BatchSummary `json:"summary,omitempty"`
}

// BatchStatus 项目当前（或最近一次）批处理的状态
type BatchStatus struct {
	Active      bool          `json:"active"`
	Kind        BatchKind     `json:"kind,omitempty"`
	CurrentId   string        `json:"currentId,omitempty"`
	InFlightIds []string      `json:"inFlightIds,omitempty"` // 还没处理到的分镜，包括当前的
	Succeeded   int           `json:"succeeded"`
	Total       int           `json:"total"`
	Cancelling  bool          `json:"cancelling"`
	StartedAt   time.Time     `json:"startedAt,omitempty"`
	LastSummary *BatchSummary `json:"lastSummary,omitempty"`
}
