package dto

import "storyshot-ai/internal/types"

type GenerateSegmentsReq struct {
	ScriptContent string `json:"scriptContent" binding:"required"`
}

type GenerateSegmentsResData struct {
	Segments []types.Segment `json:"segments"`
}

type SegmentText struct {
	Id   string `json:"id" binding:"required"`
	Text string `json:"text"`
}

type TranslateSegmentsReq struct {
	Segments []SegmentText `json:"segments" binding:"required,dive"`
}

type SegmentTranslation struct {
	Id          string `json:"id"`
	Translation string `json:"translation"`
}

type TranslateSegmentsResData struct {
	Translations []SegmentTranslation `json:"translations"`
}

// GenerateProjectSegmentsReq 脚本为空时使用项目中保存的脚本
type GenerateProjectSegmentsReq struct {
	ScriptContent string `json:"scriptContent"`
}

type CutSegmentReq struct {
	Offset int `json:"offset"`
}

type MergeSegmentReq struct {
	Index     int    `json:"index"`
	Direction string `json:"direction" binding:"required,oneof=up down"`
}

type ProjectSegmentsResData struct {
	Segments []types.Segment `json:"segments"`
}
