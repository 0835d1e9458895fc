package workshop

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"text/template"
)

// ErrMissingField 缺少必填字段
var ErrMissingField = errors.New("缺少必填字段")

// Fields 表单字段，各工具结构不同
type Fields map[string]interface{}

// String 读取字符串字段
func (f Fields) String(key string) string {
	switch v := f[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// Require 检查必填字段
func (f Fields) Require(keys ...string) error {
	var missing []string
	for _, k := range keys {
		if f.String(k) == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingField, strings.Join(missing, ", "))
	}
	return nil
}

// RequestBuilder 把表单字段转换为后端请求体
type RequestBuilder interface {
	Build(fields Fields) (interface{}, error)
}

// StructuredBuilder 以JSON对象原样传递字段
type StructuredBuilder struct {
	Required []string
	// Optional 为空时传递全部字段
	Optional []string
	Defaults Fields
}

// Build 实现RequestBuilder接口
func (b *StructuredBuilder) Build(fields Fields) (interface{}, error) {
	merged := Fields{}
	for k, v := range b.Defaults {
		merged[k] = v
	}
	for k, v := range fields {
		if v != nil && v != "" {
			merged[k] = v
		}
	}
	if err := merged.Require(b.Required...); err != nil {
		return nil, err
	}

	if len(b.Optional) == 0 {
		return map[string]interface{}(merged), nil
	}
	body := make(map[string]interface{}, len(b.Required)+len(b.Optional)+1)
	for _, k := range append(append([]string{"email"}, b.Required...), b.Optional...) {
		if v, ok := merged[k]; ok {
			body[k] = v
		}
	}
	return body, nil
}

var spacesRe = regexp.MustCompile(`\s+`)

// TopicTemplateBuilder 用模板把字段拼成一句自然语言 topic
type TopicTemplateBuilder struct {
	Required []string
	tmpl     *template.Template
}

// NewTopicTemplateBuilder 创建模板构建器，模板有误时panic
func NewTopicTemplateBuilder(name, text string, required ...string) *TopicTemplateBuilder {
	return &TopicTemplateBuilder{
		Required: required,
		tmpl:     template.Must(template.New(name).Parse(text)),
	}
}

// Build 实现RequestBuilder接口
func (b *TopicTemplateBuilder) Build(fields Fields) (interface{}, error) {
	if err := fields.Require(b.Required...); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := b.tmpl.Execute(&buf, map[string]interface{}(fields)); err != nil {
		return nil, fmt.Errorf("渲染主题模板失败: %w", err)
	}
	body := map[string]interface{}{
		"topic": strings.TrimSpace(spacesRe.ReplaceAllString(buf.String(), " ")),
	}
	if email := fields.String("email"); email != "" {
		body["email"] = email
	}
	return body, nil
}
