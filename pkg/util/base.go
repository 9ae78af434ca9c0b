package util

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

func GenerateID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// ContainsCJK 是否包含中日韩统一表意文字
func ContainsCJK(text string) bool {
	for _, r := range text {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

var (
	cjkSentenceEnds   = []rune("。！？")
	latinSentenceEnds = []rune(".!?")
)

// SplitSentences 按句末标点和换行切分文本，标点保留在句子末尾，空片段会被丢弃
// cjk为true时按中文标点切分，否则按英文标点切分
func SplitSentences(text string, cjk bool) []string {
	ends := latinSentenceEnds
	if cjk {
		ends = cjkSentenceEnds
	}

	var (
		sentences []string
		current   strings.Builder
	)
	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}
	for _, r := range text {
		if r == '\n' || r == '\r' {
			flush()
			continue
		}
		current.WriteRune(r)
		for _, end := range ends {
			if r == end {
				flush()
				break
			}
		}
	}
	flush()
	return sentences
}

// ExtByMimeType 根据MIME类型推断文件后缀
func ExtByMimeType(mimeType string) string {
	switch strings.ToLower(mimeType) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "video/mp4":
		return ".mp4"
	case "image/png":
		return ".png"
	default:
		return ""
	}
}

// ContentTypeByExt 根据文件后缀推断Content-Type
func ContentTypeByExt(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".mp4":
		return "video/mp4"
	default:
		return "application/octet-stream"
	}
}
