package export

import (
	"strings"
)

const docxContentTypes = xmlHeader + `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`</Types>`

const docxRels = xmlHeader + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
	`</Relationships>`

// DOCXExporter Word导出器，直接生成段落和文字块
type DOCXExporter struct{}

// NewDOCXExporter 创建Word导出器
func NewDOCXExporter() *DOCXExporter {
	return &DOCXExporter{}
}

// Format 实现Exporter接口
func (e *DOCXExporter) Format() Format { return FormatDOCX }

// ContentType 实现Exporter接口
func (e *DOCXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

// runStyle 文字块样式
type runStyle struct {
	bold   bool
	italic bool
	size   int // 半磅
}

// Export 实现Exporter接口
func (e *DOCXExporter) Export(doc *Document) ([]byte, error) {
	var body strings.Builder
	body.WriteString(paragraph(doc.Title, runStyle{bold: true, size: 32}, "center"))
	if doc.Subtitle != "" {
		body.WriteString(paragraph(doc.Subtitle, runStyle{italic: true, size: 22}, "center"))
	}

	if doc.Grid != nil && doc.Grid.Rows > 0 {
		body.WriteString(gridTable(doc))
		body.WriteString(paragraph("", runStyle{}, ""))
	}
	for _, s := range doc.Sections {
		if s.Heading != "" {
			body.WriteString(paragraph(s.Heading, runStyle{bold: true, size: 26}, ""))
		}
		for _, line := range s.Lines {
			body.WriteString(paragraph(line, runStyle{size: 22}, ""))
		}
	}
	if doc.Table != nil {
		body.WriteString(wordTable(doc.Table))
	}

	document := xmlHeader +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body.String() +
		`<w:sectPr><w:pgSz w:w="11906" w:h="16838"/><w:pgMar w:top="1134" w:right="1134" w:bottom="1134" w:left="1134" w:header="708" w:footer="708" w:gutter="0"/></w:sectPr>` +
		`</w:body></w:document>`

	return writePackage([]part{
		{name: "[Content_Types].xml", body: docxContentTypes},
		{name: "_rels/.rels", body: docxRels},
		{name: "word/document.xml", body: document},
	})
}

func paragraph(text string, style runStyle, align string) string {
	var b strings.Builder
	b.WriteString("<w:p>")
	if align != "" {
		b.WriteString(`<w:pPr><w:jc w:val="` + align + `"/></w:pPr>`)
	}
	if text != "" {
		b.WriteString(run(text, style))
	}
	b.WriteString("</w:p>")
	return b.String()
}

func run(text string, style runStyle) string {
	var b strings.Builder
	b.WriteString("<w:r>")
	if style.bold || style.italic || style.size > 0 {
		b.WriteString("<w:rPr>")
		if style.bold {
			b.WriteString("<w:b/>")
		}
		if style.italic {
			b.WriteString("<w:i/>")
		}
		if style.size > 0 {
			b.WriteString(`<w:sz w:val="` + itoa(style.size) + `"/>`)
		}
		b.WriteString("</w:rPr>")
	}
	b.WriteString(`<w:t xml:space="preserve">` + escape(text) + "</w:t></w:r>")
	return b.String()
}

const wordTableBorders = `<w:tblBorders>` +
	`<w:top w:val="single" w:sz="4" w:space="0" w:color="000000"/>` +
	`<w:left w:val="single" w:sz="4" w:space="0" w:color="000000"/>` +
	`<w:bottom w:val="single" w:sz="4" w:space="0" w:color="000000"/>` +
	`<w:right w:val="single" w:sz="4" w:space="0" w:color="000000"/>` +
	`<w:insideH w:val="single" w:sz="4" w:space="0" w:color="000000"/>` +
	`<w:insideV w:val="single" w:sz="4" w:space="0" w:color="000000"/>` +
	`</w:tblBorders>`

func wordTable(t *Table) string {
	var b strings.Builder
	b.WriteString(`<w:tbl><w:tblPr><w:tblW w:w="5000" w:type="pct"/>` + wordTableBorders + `</w:tblPr>`)
	writeRow := func(cells []string, bold bool, fill string) {
		b.WriteString("<w:tr>")
		for _, c := range cells {
			b.WriteString("<w:tc>")
			if fill != "" {
				b.WriteString(`<w:tcPr><w:shd w:val="clear" w:color="auto" w:fill="` + fill + `"/></w:tcPr>`)
			}
			b.WriteString(paragraph(c, runStyle{bold: bold, size: 20}, ""))
			b.WriteString("</w:tc>")
		}
		b.WriteString("</w:tr>")
	}
	writeRow(t.Headers, true, "D9E2F3")
	for _, r := range t.Rows {
		writeRow(r, false, "")
	}
	if t.Totals != nil {
		writeRow(t.Totals, true, "D9E2F3")
	}
	b.WriteString("</w:tbl>")
	return b.String()
}

// gridTable 填字网格，黑格用底纹表示
func gridTable(doc *Document) string {
	var b strings.Builder
	b.WriteString(`<w:tbl><w:tblPr>` + wordTableBorders + `</w:tblPr>`)
	for _, row := range doc.Grid.Cells {
		b.WriteString(`<w:tr><w:trPr><w:trHeight w:val="400" w:hRule="exact"/></w:trPr>`)
		for _, cl := range row {
			b.WriteString(`<w:tc><w:tcPr><w:tcW w:w="400" w:type="dxa"/>`)
			if cl.Letter == 0 {
				b.WriteString(`<w:shd w:val="clear" w:color="auto" w:fill="000000"/>`)
			}
			b.WriteString("</w:tcPr>")
			var label string
			if cl.Number > 0 {
				label = itoa(cl.Number)
			}
			b.WriteString(paragraph(label, runStyle{size: 12}, ""))
			b.WriteString("</w:tc>")
		}
		b.WriteString("</w:tr>")
	}
	b.WriteString("</w:tbl>")
	return b.String()
}
