package dto

import "storyshot-ai/internal/types"

type GenerateVisualBibleReq struct {
	FullText string `json:"fullText" binding:"required"`
}

type VisualBibleResData struct {
	VisualBible *types.VisualBible `json:"visualBible"`
}

type GenerateDescriptionReq struct {
	Text        string             `json:"text" binding:"required"`
	Translation string             `json:"translation"`
	Language    string             `json:"language"`
	VisualBible *types.VisualBible `json:"visualBible"`
}

type DescriptionResData struct {
	Description   string `json:"description"`
	DescriptionEn string `json:"descriptionEn"`
}

type DescriptionItem struct {
	Id          string `json:"id" binding:"required"`
	Text        string `json:"text"`
	Translation string `json:"translation"`
	Language    string `json:"language"`
}

type BatchGenerateDescriptionsReq struct {
	Segments    []DescriptionItem  `json:"segments" binding:"required,dive"`
	VisualBible *types.VisualBible `json:"visualBible"`
}

// BatchItemResult 批量接口中单个分镜的结果，失败时只有Error
type BatchItemResult struct {
	Id                   string `json:"id"`
	Description          string `json:"description,omitempty"`
	DescriptionEn        string `json:"descriptionEn,omitempty"`
	OptimizedDescription string `json:"optimizedDescription,omitempty"`
	Keywords             string `json:"keywords,omitempty"`
	KeywordsEn           string `json:"keywordsEn,omitempty"`
	Error                string `json:"error,omitempty"`
}

type BatchResData struct {
	Results []BatchItemResult  `json:"results"`
	Summary types.BatchSummary `json:"summary"`
}

type OptimizeDescriptionReq struct {
	Description    string               `json:"description" binding:"required"`
	GenerationMode types.GenerationMode `json:"generationMode"`
	AspectRatio    string               `json:"aspectRatio"`
}

type OptimizeDescriptionResData struct {
	OptimizedDescription string `json:"optimizedDescription"`
}

type OptimizeItem struct {
	Id          string `json:"id" binding:"required"`
	Description string `json:"description"`
}

type BatchOptimizeDescriptionsReq struct {
	Items          []OptimizeItem       `json:"items" binding:"required,dive"`
	GenerationMode types.GenerationMode `json:"generationMode"`
	AspectRatio    string               `json:"aspectRatio"`
}

type ExtractKeywordsReq struct {
	Description      string             `json:"description" binding:"required"`
	VisualBible      *types.VisualBible `json:"visualBible"`
	StyleDescription string             `json:"styleDescription"`
}

type KeywordsResData struct {
	Keywords   string `json:"keywords"`
	KeywordsEn string `json:"keywordsEn"`
}

type KeywordsItem struct {
	Id          string `json:"id" binding:"required"`
	Description string `json:"description"`
}

type BatchExtractKeywordsReq struct {
	Items            []KeywordsItem     `json:"items" binding:"required,dive"`
	VisualBible      *types.VisualBible `json:"visualBible"`
	StyleDescription string             `json:"styleDescription"`
}
