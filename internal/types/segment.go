package types

// 分镜语言，中文为母语，其余按英语等外语处理
const (
	LanguageChinese = "Chinese"
	LanguageEnglish = "English"
)

// Segment 分镜，视频中的一个镜头
type Segment struct {
	Id                   string `json:"id"`
	Number               int    `json:"number"` // 从1开始，和列表位置一致
	Language             string `json:"language"`
	Text                 string `json:"text"`
	Translation          string `json:"translation,omitempty"` // 仅外语分镜有，翻译失败时为空
	SceneDescription     string `json:"sceneDescription"`
	SceneDescriptionEn   string `json:"sceneDescriptionEn,omitempty"`
	OptimizedDescription string `json:"optimizedDescription,omitempty"`
	Keywords             string `json:"keywords,omitempty"`
	KeywordsEn           string `json:"keywordsEn,omitempty"`
	ImageUrl             string `json:"imageUrl,omitempty"`
	VideoUrl             string `json:"videoUrl,omitempty"`
}

// IsForeign 非中文分镜需要翻译
func (s Segment) IsForeign() bool {
	return s.Language != LanguageChinese
}

// HasDescription 是否已有画面描述
func (s Segment) HasDescription() bool {
	return s.SceneDescription != ""
}

// ImagePrompt 生图时优先使用优化后的描述，其次英文描述，最后是原描述
func (s Segment) ImagePrompt() string {
	switch {
	case s.OptimizedDescription != "":
		return s.OptimizedDescription
	case s.SceneDescriptionEn != "":
		return s.SceneDescriptionEn
	default:
		return s.SceneDescription
	}
}

// Renumber 按位置重新编号
func Renumber(segments []Segment) {
	for i := range segments {
		segments[i].Number = i + 1
	}
}
