package util

import (
	"encoding/json"
	"regexp"
	"strings"
)

var codeFenceRegex = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")

// StripCodeFence 去掉模型回复外层的Markdown代码块
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if m := codeFenceRegex.FindStringSubmatch(text); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return text
}

// parseJSON 先严格解析，失败后截取第一个 open 到最后一个 close 之间的内容再解析
func parseJSON(text string, open, close byte, v any) error {
	cleaned := StripCodeFence(text)
	err := json.Unmarshal([]byte(cleaned), v)
	if err == nil {
		return nil
	}
	start := strings.IndexByte(cleaned, open)
	end := strings.LastIndexByte(cleaned, close)
	if start < 0 || end <= start {
		return err
	}
	return json.Unmarshal([]byte(cleaned[start:end+1]), v)
}

// ParseJSONArray 从模型回复中解析JSON数组
func ParseJSONArray(text string, v any) error {
	return parseJSON(text, '[', ']', v)
}

// ParseJSONObject 从模型回复中解析JSON对象
func ParseJSONObject(text string, v any) error {
	return parseJSON(text, '{', '}', v)
}

// ExtractJSONStringField 用正则兜底提取 "field": "value"，用于JSON被截断或格式不规范的回复
func ExtractJSONStringField(text, field string) (string, bool) {
	re := regexp.MustCompile(`"` + regexp.QuoteMeta(field) + `"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return "", false
	}
	var value string
	if err := json.Unmarshal([]byte(`"`+m[1]+`"`), &value); err != nil {
		return m[1], true
	}
	return value, true
}
