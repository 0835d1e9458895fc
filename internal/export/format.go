package export

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedFormat 不支持的导出格式
var ErrUnsupportedFormat = errors.New("不支持的导出格式")

// ErrUnsupportedContent 该格式不能导出此类内容
var ErrUnsupportedContent = errors.New("该格式不支持此内容")

// Format 导出格式
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatXLSX Format = "xlsx"
	FormatPPTX Format = "pptx"
	// FormatPNG 填字游戏预览图
	FormatPNG Format = "png"
)

// Formats 所有支持的格式
var Formats = []Format{FormatPDF, FormatDOCX, FormatXLSX, FormatPPTX, FormatPNG}

var formatAliases = map[string]Format{
	"pdf":        FormatPDF,
	"docx":       FormatDOCX,
	"word":       FormatDOCX,
	"xlsx":       FormatXLSX,
	"excel":      FormatXLSX,
	"pptx":       FormatPPTX,
	"powerpoint": FormatPPTX,
	"png":        FormatPNG,
}

// ParseFormat 解析格式名称
func ParseFormat(s string) (Format, error) {
	f, ok := formatAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
	return f, nil
}

// Extension 文件扩展名
func (f Format) Extension() string {
	return "." + string(f)
}

// String 实现Stringer接口
func (f Format) String() string {
	return string(f)
}
