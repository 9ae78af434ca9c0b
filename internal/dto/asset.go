package dto

import "storyshot-ai/internal/types"

// GenerateImageReq prompt 与 description 二选一，prompt优先
type GenerateImageReq struct {
	Prompt      string `json:"prompt"`
	Description string `json:"description"`
	AspectRatio string `json:"aspectRatio"`
}

type ImageResData struct {
	ImageUrl string `json:"imageUrl"`
}

type GenerateVideoReq struct {
	Description    string               `json:"description"`
	ImageUrl       string               `json:"imageUrl"`
	GenerationMode types.GenerationMode `json:"generationMode" binding:"required"`
	AspectRatio    string               `json:"aspectRatio"`
}

type VideoResData struct {
	VideoUrl string `json:"videoUrl"`
}

// AnalyzeStyleReq image类型传imageBase64，preset类型传presetInfo
type AnalyzeStyleReq struct {
	AnalysisType string `json:"analysisType" binding:"required,oneof=image preset"`
	ImageBase64  string `json:"imageBase64"`
	MimeType     string `json:"mimeType"`
	PresetInfo   string `json:"presetInfo"`
}

type AnalyzeStyleResData struct {
	Analysis string `json:"analysis"`
}

type SegmentResData struct {
	Segment *types.Segment `json:"segment"`
}
