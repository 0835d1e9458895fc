package dto

import "time"

// ArtifactResponse 制品信息
type ArtifactResponse struct {
	ID        string      `json:"id"`
	Tool      string      `json:"tool"`
	Kind      string      `json:"kind"`
	Source    string      `json:"source"`
	Title     string      `json:"title"`
	Content   string      `json:"content"`
	Data      interface{} `json:"data,omitempty"`
	Malformed bool        `json:"malformed,omitempty"`
	Revision  int         `json:"revision"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// SectionView 渲染段落
type SectionView struct {
	Heading string   `json:"heading"`
	Lines   []string `json:"lines"`
}

// RenderResponse 渲染结果
type RenderResponse struct {
	ID       string        `json:"id"`
	View     string        `json:"view"`
	Title    string        `json:"title"`
	Text     string        `json:"text"`
	Sections []SectionView `json:"sections"`
	Grid     interface{}   `json:"grid,omitempty"`
}

// ExportQuery 导出参数
type ExportQuery struct {
	Format string `form:"format" binding:"required,export_format"`
	Name   string `form:"name"`
}

// ChatRequest 对话改进请求
type ChatRequest struct {
	Instruction string `json:"instruction" binding:"required,max=4000"`
}

// ChatMessageResponse 对话消息
type ChatMessageResponse struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Applied   bool      `json:"applied"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatResponse 对话改进结果
type ChatResponse struct {
	Applied  bool                  `json:"applied"`
	Reply    string                `json:"reply"`
	Artifact ArtifactResponse      `json:"artifact"`
	History  []ChatMessageResponse `json:"history"`
}
