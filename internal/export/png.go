package export

import (
	"bytes"
	"fmt"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

const (
	pngCell   = 36.0
	pngMargin = 24.0
	pngHeader = 40.0
)

// PNGExporter 填字游戏预览图导出器
type PNGExporter struct {
	// ShowAnswers 为true时在格子里画出答案
	ShowAnswers bool
}

// NewPNGExporter 创建预览图导出器
func NewPNGExporter() *PNGExporter {
	return &PNGExporter{}
}

// Format 实现Exporter接口
func (e *PNGExporter) Format() Format { return FormatPNG }

// ContentType 实现Exporter接口
func (e *PNGExporter) ContentType() string { return "image/png" }

// Export 实现Exporter接口，只支持带网格的文档
func (e *PNGExporter) Export(doc *Document) ([]byte, error) {
	g := doc.Grid
	if g == nil || g.Rows == 0 || g.Cols == 0 {
		return nil, fmt.Errorf("%w: 仅支持填字游戏", ErrUnsupportedContent)
	}

	width := int(2*pngMargin + float64(g.Cols)*pngCell)
	height := int(2*pngMargin + pngHeader + float64(g.Rows)*pngCell)
	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored(doc.Title, float64(width)/2, pngMargin+pngHeader/2, 0.5, 0.5)

	top := pngMargin + pngHeader
	dc.SetLineWidth(1.5)
	for r, row := range g.Cells {
		for c, cell := range row {
			x := pngMargin + float64(c)*pngCell
			y := top + float64(r)*pngCell
			dc.DrawRectangle(x, y, pngCell, pngCell)
			if cell.Letter == 0 {
				dc.SetRGB(0.15, 0.15, 0.15)
				dc.Fill()
				continue
			}
			dc.SetRGB(0, 0, 0)
			dc.Stroke()
			if cell.Number > 0 {
				dc.DrawString(itoa(cell.Number), x+3, y+12)
			}
			if e.ShowAnswers {
				dc.DrawStringAnchored(string(cell.Letter), x+pngCell/2, y+pngCell/2+4, 0.5, 0.5)
			}
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
