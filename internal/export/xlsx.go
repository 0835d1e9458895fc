package export

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

const (
	xlsxSheet     = "Documento"
	xlsxTitleRow  = 1
	xlsxDescRow   = 2
	xlsxHeaderRow = 3
)

// xlsxColumnWidths 按列数固定的列宽
var xlsxColumnWidths = map[int][]float64{
	2: {40, 80},
	3: {30, 60, 12},
	7: {28, 40, 25, 25, 25, 25, 12},
}

// XLSXExporter Excel导出器
type XLSXExporter struct{}

// NewXLSXExporter 创建Excel导出器
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// Format 实现Exporter接口
func (e *XLSXExporter) Format() Format { return FormatXLSX }

// ContentType 实现Exporter接口
func (e *XLSXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// xlsxStyles 各类单元格样式ID
type xlsxStyles struct {
	title  int
	desc   int
	header int
	body   int
	total  int
}

// Export 实现Exporter接口
func (e *XLSXExporter) Export(doc *Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return nil, err
	}
	styles, err := newXLSXStyles(f)
	if err != nil {
		return nil, err
	}

	table := doc.Table
	if table == nil {
		table = sectionsTable(doc)
	}
	cols := len(table.Headers)
	lastCol, err := excelize.ColumnNumberToName(cols)
	if err != nil {
		return nil, err
	}

	// 标题和说明跨全部列合并
	if err := writeMerged(f, xlsxTitleRow, lastCol, doc.Title, styles.title); err != nil {
		return nil, err
	}
	if err := f.SetRowHeight(xlsxSheet, xlsxTitleRow, 28); err != nil {
		return nil, err
	}
	if err := writeMerged(f, xlsxDescRow, lastCol, doc.Subtitle, styles.desc); err != nil {
		return nil, err
	}

	if err := setColumnWidths(f, cols); err != nil {
		return nil, err
	}

	row := xlsxHeaderRow
	if err := writeRow(f, row, table.Headers, styles.header); err != nil {
		return nil, err
	}
	for _, r := range table.Rows {
		row++
		if err := writeRow(f, row, r, styles.body); err != nil {
			return nil, err
		}
	}
	if table.Totals != nil {
		row++
		if err := writeRow(f, row, table.Totals, styles.total); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func newXLSXStyles(f *excelize.File) (*xlsxStyles, error) {
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	wrap := &excelize.Alignment{Vertical: "top", WrapText: true}

	var s xlsxStyles
	var err error
	if s.title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"2F5597"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	}); err != nil {
		return nil, err
	}
	if s.desc, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Italic: true, Size: 11},
		Alignment: wrap,
	}); err != nil {
		return nil, err
	}
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D9E2F3"}},
		Border:    border,
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	}); err != nil {
		return nil, err
	}
	if s.body, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 10},
		Border:    border,
		Alignment: wrap,
	}); err != nil {
		return nil, err
	}
	if s.total, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Size: 11},
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFF2CC"}},
		Border: border,
	}); err != nil {
		return nil, err
	}
	return &s, nil
}

func writeMerged(f *excelize.File, row int, lastCol, value string, style int) error {
	first := fmt.Sprintf("A%d", row)
	last := fmt.Sprintf("%s%d", lastCol, row)
	if first != last {
		if err := f.MergeCell(xlsxSheet, first, last); err != nil {
			return err
		}
	}
	if err := f.SetCellValue(xlsxSheet, first, value); err != nil {
		return err
	}
	return f.SetCellStyle(xlsxSheet, first, last, style)
}

// writeRow 逐个单元格写值和样式，纯数字写成数值
func writeRow(f *excelize.File, row int, values []string, style int) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		var value interface{} = v
		if n, err := strconv.Atoi(v); err == nil {
			value = n
		}
		if err := f.SetCellValue(xlsxSheet, cell, value); err != nil {
			return err
		}
		if err := f.SetCellStyle(xlsxSheet, cell, cell, style); err != nil {
			return err
		}
	}
	return nil
}

func setColumnWidths(f *excelize.File, cols int) error {
	widths, ok := xlsxColumnWidths[cols]
	for i := 0; i < cols; i++ {
		width := 30.0
		if ok {
			width = widths[i]
		}
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(xlsxSheet, name, name, width); err != nil {
			return err
		}
	}
	return nil
}

// sectionsTable 没有表格的文档按段落写成两列
func sectionsTable(doc *Document) *Table {
	t := &Table{Headers: []string{"Sección", "Contenido"}}
	for _, s := range doc.Sections {
		if len(s.Lines) == 0 {
			t.Rows = append(t.Rows, []string{s.Heading, ""})
			continue
		}
		for i, line := range s.Lines {
			heading := ""
			if i == 0 {
				heading = s.Heading
			}
			t.Rows = append(t.Rows, []string{heading, line})
		}
	}
	return t
}
