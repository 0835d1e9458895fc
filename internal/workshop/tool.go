package workshop

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"studio-go/internal/artifact"
	"studio-go/internal/models"
)

// ErrUnknownTool 未知工具
var ErrUnknownTool = errors.New("未知的工具")

// Tool 一个内容生成工具
type Tool struct {
	Name        string        `json:"name"`
	Title       string        `json:"title"`
	Path        string        `json:"path"`
	ImprovePath string        `json:"improve_path,omitempty"`
	Kind        artifact.Kind `json:"kind"`
	// Retrying 为true时失败按线性退避重试
	Retrying bool `json:"retrying"`
	// RetryAttempts 为0时由 Attempts 决定
	RetryAttempts int            `json:"retry_attempts"`
	Timeout       time.Duration  `json:"timeout,omitempty"`
	Builder       RequestBuilder `json:"-"`
}

// BuildRequest 构建请求体
func (t *Tool) BuildRequest(fields Fields) (interface{}, error) {
	body, err := t.Builder.Build(fields)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", t.Name, err)
	}
	return body, nil
}

// Attempts 实际尝试次数，未设置时重试类工具使用 defaultAttempts，其余只请求一次
func (t *Tool) Attempts(defaultAttempts int) int {
	switch {
	case t.RetryAttempts > 0:
		return t.RetryAttempts
	case t.Retrying && defaultAttempts > 0:
		return defaultAttempts
	}
	return 1
}

// WithEndpoint 应用运营配置的覆盖项，返回副本
func (t *Tool) WithEndpoint(ep *models.ToolEndpoint) *Tool {
	c := *t
	if ep == nil || !ep.IsActive {
		return &c
	}
	if ep.Path != "" {
		c.Path = ep.Path
	}
	if ep.ImprovePath != "" {
		c.ImprovePath = ep.ImprovePath
	}
	if ep.Timeout > 0 {
		c.Timeout = time.Duration(ep.Timeout) * time.Second
	}
	if ep.RetryAttempts > 0 {
		c.RetryAttempts = ep.RetryAttempts
	}
	return &c
}

// Registry 工具注册表
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*Tool
}

// NewRegistry 创建包含内置工具的注册表
func NewRegistry() *Registry {
	r := &Registry{tools: make(map[string]*Tool)}
	for _, t := range Builtin() {
		r.Register(t)
	}
	return r
}

// Register 注册工具
func (r *Registry) Register(t *Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name] = t
}

// Get 获取工具
func (r *Registry) Get(name string) (*Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return t, nil
}

// List 按名称排序的工具列表
func (r *Registry) List() []*Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tools := make([]*Tool, 0, len(r.tools))
	for _, t := range r.tools {
		tools = append(tools, t)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })
	return tools
}
