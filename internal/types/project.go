package types

import "time"

// GenerationMode 决定视频生成的输入
type GenerationMode string

const (
	GenerationModeTextToVideo        GenerationMode = "text-to-video"          // 直接用描述生成视频
	GenerationModeTextToImageToVideo GenerationMode = "text-to-image-to-video" // 先出图，再用图生成视频
)

func (m GenerationMode) Valid() bool {
	return m == GenerationModeTextToVideo || m == GenerationModeTextToImageToVideo
}

// 支持的画面比例
const (
	AspectRatio16x9 = "16:9"
	AspectRatio9x16 = "9:16"
	AspectRatio1x1  = "1:1"
	AspectRatio4x3  = "4:3"
	AspectRatio3x4  = "3:4"
)

var SupportedAspectRatios = []string{AspectRatio16x9, AspectRatio9x16, AspectRatio1x1, AspectRatio4x3, AspectRatio3x4}

// 向导步骤
const (
	StepScript      = 1 // 输入脚本
	StepSegments    = 2 // 分镜拆分与编辑
	StepStyle       = 3 // 选择风格
	StepDescription = 4 // 生成画面描述
	StepImage       = 5 // 生成图片
	StepVideo       = 6 // 生成视频
)

// StyleSettings 项目的视觉风格设置
type StyleSettings struct {
	StyleId          string `json:"styleId,omitempty"`
	StyleName        string `json:"styleName,omitempty"`
	StyleDescription string `json:"styleDescription,omitempty"` // 追加到生图提示词中的风格描述
	ReferenceImage   string `json:"referenceImage,omitempty"`
	Analysis         string `json:"analysis,omitempty"` // 风格分析结果
}

// VisualBible 整个作品的视觉基调，生成每个分镜描述时都会带上
type VisualBible struct {
	OverallTheme       string `json:"overallTheme"`
	EmotionalArc       string `json:"emotionalArc"`
	VisualMetaphor     string `json:"visualMetaphor"`
	LightingColorPlan  string `json:"lightingColorPlan"`
	CoreElementAnchors string `json:"coreElementAnchors"`
}

// Project 一个短视频项目
type Project struct {
	Id             string         `json:"id"`
	Name           string         `json:"name"`
	CreationMode   string         `json:"creationMode"`
	CurrentStep    int            `json:"currentStep"`
	StyleSettings  StyleSettings  `json:"styleSettings"`
	ScriptContent  string         `json:"scriptContent"`
	Segments       []Segment      `json:"segments"`
	GenerationMode GenerationMode `json:"generationMode"`
	AspectRatio    string         `json:"aspectRatio"`
	VisualBible    *VisualBible   `json:"visualBible,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// FindSegment 按id查找分镜，返回下标，找不到返回-1
func (p *Project) FindSegment(id string) int {
	for i := range p.Segments {
		if p.Segments[i].Id == id {
			return i
		}
	}
	return -1
}
