package export

import (
	"bytes"

	"github.com/go-pdf/fpdf"
)

const (
	pdfMargin      = 20.0
	pdfLineHeight  = 6.0
	pdfTitleSize   = 16.0
	pdfHeadingSize = 13.0
	pdfCellPadding = 1.5
	pdfGridCell    = 8.0
)

// pdfColumnWidths 按列数固定的表格列宽（毫米）
var pdfColumnWidths = map[int][]float64{
	2: {60, 110},
	3: {50, 95, 25},
	4: {40, 70, 35, 25},
	7: {30, 35, 22, 22, 22, 22, 17},
}

// PDFExporter 基于 fpdf 的导出器，手动维护纵向游标排版
type PDFExporter struct {
	pageFormat string
	fontSize   float64
}

// NewPDFExporter 创建PDF导出器
func NewPDFExporter(opts Options) *PDFExporter {
	return &PDFExporter{pageFormat: opts.PageFormat, fontSize: opts.FontSize}
}

// Format 实现Exporter接口
func (e *PDFExporter) Format() Format { return FormatPDF }

// ContentType 实现Exporter接口
func (e *PDFExporter) ContentType() string { return "application/pdf" }

// pdfWriter 排版状态
type pdfWriter struct {
	pdf      *fpdf.Fpdf
	tr       func(string) string
	yPos     float64
	pageW    float64
	pageH    float64
	fontSize float64
}

// Export 实现Exporter接口
func (e *PDFExporter) Export(doc *Document) ([]byte, error) {
	pdf := fpdf.New("P", "mm", e.pageFormat, "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	w := &pdfWriter{
		pdf:      pdf,
		tr:       pdf.UnicodeTranslatorFromDescriptor(""),
		yPos:     pdfMargin,
		fontSize: e.fontSize,
	}
	w.pageW, w.pageH = pdf.GetPageSize()

	w.paragraph(doc.Title, "B", pdfTitleSize)
	if doc.Subtitle != "" {
		w.paragraph(doc.Subtitle, "I", e.fontSize)
	}
	w.yPos += pdfLineHeight / 2

	if doc.Grid != nil && doc.Grid.Rows > 0 {
		w.grid(doc)
	}
	for _, s := range doc.Sections {
		if s.Heading != "" {
			w.paragraph(s.Heading, "B", pdfHeadingSize)
		}
		for _, line := range s.Lines {
			w.paragraph(line, "", e.fontSize)
		}
		w.yPos += pdfLineHeight / 2
	}
	if doc.Table != nil {
		w.table(doc.Table)
	}

	if err := pdf.Error(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ensure 剩余空间不足时换页
func (w *pdfWriter) ensure(height float64) {
	if w.yPos+height > w.pageH-pdfMargin {
		w.pdf.AddPage()
		w.yPos = pdfMargin
	}
}

func (w *pdfWriter) paragraph(text, style string, size float64) {
	w.pdf.SetFont("Helvetica", style, size)
	width := w.pageW - 2*pdfMargin
	for _, line := range w.pdf.SplitLines([]byte(w.tr(text)), width) {
		w.ensure(pdfLineHeight)
		w.pdf.SetXY(pdfMargin, w.yPos)
		w.pdf.Cell(width, pdfLineHeight, string(line))
		w.yPos += pdfLineHeight
	}
}

func (w *pdfWriter) table(t *Table) {
	widths := w.columnWidths(len(t.Headers))

	w.row(t.Headers, widths, "B", true)
	for _, r := range t.Rows {
		w.row(r, widths, "", false)
	}
	if t.Totals != nil {
		w.row(t.Totals, widths, "B", true)
	}
}

func (w *pdfWriter) columnWidths(n int) []float64 {
	if widths, ok := pdfColumnWidths[n]; ok {
		return widths
	}
	each := (w.pageW - 2*pdfMargin) / float64(n)
	widths := make([]float64, n)
	for i := range widths {
		widths[i] = each
	}
	return widths
}

// row 画一行表格，行高取最高的单元格
func (w *pdfWriter) row(cells []string, widths []float64, style string, fill bool) {
	w.pdf.SetFont("Helvetica", style, w.fontSize-1)

	wrapped := make([][][]byte, len(widths))
	maxLines := 1
	for i := range widths {
		var text string
		if i < len(cells) {
			text = cells[i]
		}
		wrapped[i] = w.pdf.SplitLines([]byte(w.tr(text)), widths[i]-2*pdfCellPadding)
		if len(wrapped[i]) > maxLines {
			maxLines = len(wrapped[i])
		}
	}
	height := float64(maxLines)*pdfLineHeight + pdfCellPadding

	w.ensure(height)
	x := pdfMargin
	for i, width := range widths {
		if fill {
			w.pdf.SetFillColor(230, 236, 245)
			w.pdf.Rect(x, w.yPos, width, height, "FD")
		} else {
			w.pdf.Rect(x, w.yPos, width, height, "D")
		}
		for j, line := range wrapped[i] {
			w.pdf.SetXY(x+pdfCellPadding, w.yPos+float64(j)*pdfLineHeight)
			w.pdf.Cell(width-2*pdfCellPadding, pdfLineHeight, string(line))
		}
		x += width
	}
	w.yPos += height
}

// grid 画空白填字网格，只标注题号
func (w *pdfWriter) grid(doc *Document) {
	g := doc.Grid
	cell := pdfGridCell
	if maxW := w.pageW - 2*pdfMargin; float64(g.Cols)*cell > maxW {
		cell = maxW / float64(g.Cols)
	}
	w.ensure(float64(g.Rows) * cell)

	w.pdf.SetFont("Helvetica", "", 6)
	for r, row := range g.Cells {
		for c, cl := range row {
			x := pdfMargin + float64(c)*cell
			y := w.yPos + float64(r)*cell
			if cl.Letter == 0 {
				w.pdf.SetFillColor(40, 40, 40)
				w.pdf.Rect(x, y, cell, cell, "F")
				continue
			}
			w.pdf.Rect(x, y, cell, cell, "D")
			if cl.Number > 0 {
				w.pdf.Text(x+0.6, y+2.4, itoa(cl.Number))
			}
		}
	}
	w.yPos += float64(g.Rows)*cell + pdfLineHeight
}
