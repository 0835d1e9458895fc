package export

import (
	"fmt"
	"regexp"
	"strings"
)

// Exporter 导出器接口
type Exporter interface {
	Format() Format
	ContentType() string
	Export(doc *Document) ([]byte, error)
}

// Options 导出选项
type Options struct {
	PageFormat string
	FontSize   float64
}

// File 导出结果，只在完整写出后返回
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Registry 导出器注册表
type Registry struct {
	exporters map[Format]Exporter
}

// NewRegistry 创建包含所有内置导出器的注册表
func NewRegistry(opts Options) *Registry {
	if opts.PageFormat == "" {
		opts.PageFormat = "A4"
	}
	if opts.FontSize <= 0 {
		opts.FontSize = 11
	}
	r := &Registry{exporters: make(map[Format]Exporter)}
	r.Register(NewPDFExporter(opts))
	r.Register(NewDOCXExporter())
	r.Register(NewXLSXExporter())
	r.Register(NewPPTXExporter())
	r.Register(NewPNGExporter())
	return r
}

// Register 注册导出器，同格式会覆盖
func (r *Registry) Register(e Exporter) {
	r.exporters[e.Format()] = e
}

// Get 获取导出器
func (r *Registry) Get(f Format) (Exporter, error) {
	e, ok := r.exporters[f]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}
	return e, nil
}

// Export 导出文档，失败时不返回任何数据
func (r *Registry) Export(doc *Document, name string, f Format) (*File, error) {
	e, err := r.Get(f)
	if err != nil {
		return nil, err
	}
	data, err := e.Export(doc)
	if err != nil {
		return nil, fmt.Errorf("导出%s失败: %w", f, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("导出%s失败: 内容为空", f)
	}
	return &File{Name: FileName(name, f), ContentType: e.ContentType(), Data: data}, nil
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	unsafeRe     = regexp.MustCompile(`[/\\:*?"<>|]`)
)

// FileName 由标题生成文件名，空白替换为下划线
func FileName(title string, f Format) string {
	name := strings.TrimSpace(title)
	name = unsafeRe.ReplaceAllString(name, "-")
	name = whitespaceRe.ReplaceAllString(name, "_")
	if name == "" {
		name = "documento"
	}
	return name + f.Extension()
}
