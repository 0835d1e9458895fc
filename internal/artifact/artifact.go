package artifact

import (
	"encoding/json"
	"strings"

	"studio-go/internal/models"
)

// Kind 制品内容类型
type Kind string

const (
	KindJSON Kind = "json"
	KindText Kind = "text"
)

// Artifact 解析后的生成结果
type Artifact struct {
	ID     string      `json:"id"`
	Tool   string      `json:"tool"`
	Kind   Kind        `json:"kind"`
	Source string      `json:"source"`
	Title  string      `json:"title"`
	Text   string      `json:"text"`
	Data   interface{} `json:"data,omitempty"`
	// Malformed JSON类制品无法解析时为true，此时 Text 保留原文
	Malformed bool `json:"malformed,omitempty"`
}

// Decode 解析后端原始内容
func Decode(kind Kind, raw string) *Artifact {
	a := &Artifact{Kind: kind, Source: models.SourceGenerated, Text: raw}
	if kind != KindJSON {
		a.Text = strings.TrimSpace(unwrapString(raw))
		return a
	}

	candidate, ok := ExtractJSON(unwrapString(raw))
	if !ok {
		a.Malformed = true
		return a
	}

	var data interface{}
	if err := json.Unmarshal([]byte(candidate), &data); err != nil {
		a.Malformed = true
		return a
	}
	a.Text = candidate
	a.Data = data
	a.Title = titleOf(data)
	return a
}

// FromModel 从持久化记录构建制品
func FromModel(m *models.Artifact) *Artifact {
	a := Decode(Kind(m.Kind), m.Content)
	a.ID = m.ID
	a.Tool = m.Tool
	a.Source = m.Source
	if m.Title != "" {
		a.Title = m.Title
	}
	return a
}

// Object 以对象形式返回数据，非对象时返回nil
func (a *Artifact) Object() map[string]interface{} {
	obj, _ := a.Data.(map[string]interface{})
	return obj
}

// Unmarshal 将数据解码到指定结构
func (a *Artifact) Unmarshal(v interface{}) error {
	return json.Unmarshal([]byte(a.Text), v)
}

func titleOf(data interface{}) string {
	obj, ok := data.(map[string]interface{})
	if !ok {
		return ""
	}
	for _, key := range []string{"titulo", "title", "nombreUnidad", "tema"} {
		if s, ok := obj[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
