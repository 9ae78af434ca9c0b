package types

import "context"

// TranslateDirection 翻译方向
type TranslateDirection string

const (
	TranslateToNative  TranslateDirection = "to_native"  // 外语 -> 中文
	TranslateToEnglish TranslateDirection = "to_english" // 中文 -> 英文
)

// TranslateKind 翻译的内容类型，影响提示词
type TranslateKind string

const (
	TranslateKindSegment     TranslateKind = "segment"
	TranslateKindDescription TranslateKind = "description"
)

type TranslateRequest struct {
	Texts     []string
	Kind      TranslateKind
	Direction TranslateDirection
}

type ImageRequest struct {
	Prompt      string
	AspectRatio string
}

// ImageResult 厂商可能返回二进制数据，也可能只返回URL
type ImageResult struct {
	Url      string
	Data     []byte
	MimeType string
}

type VideoRequest struct {
	Prompt      string
	ImageUrl    string
	Mode        GenerationMode
	AspectRatio string
}

// 风格分析类型
const (
	AnalysisTypeImage  = "image"  // 分析参考图
	AnalysisTypePreset = "preset" // 根据预设风格信息生成描述
)

type AnalyzeRequest struct {
	Type        string
	ImageBase64 string
	MimeType    string
	PresetInfo  string
	Prompt      string
}

// TextGenerator 文本生成
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt, systemPrompt string) (string, error)
}

// ImageGenerator 文生图
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req ImageRequest) (*ImageResult, error)
}

// Translator 批量翻译，返回结果与输入按位置一一对应
type Translator interface {
	Translate(ctx context.Context, req TranslateRequest) ([]string, error)
}

// Analyzer 多模态分析
type Analyzer interface {
	Analyze(ctx context.Context, req AnalyzeRequest) (string, error)
}

// VideoGenerator 视频生成，返回视频地址
type VideoGenerator interface {
	GenerateVideo(ctx context.Context, req VideoRequest) (string, error)
}
