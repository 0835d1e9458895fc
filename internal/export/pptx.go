package export

import (
	"fmt"
	"strings"

	"studio-go/internal/artifact"
)

const (
	nsA = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsR = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsP = "http://schemas.openxmlformats.org/presentationml/2006/main"

	relSlide  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	relMaster = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideMaster"
	relLayout = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout"
	relTheme  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme"

	// 16:9 幻灯片尺寸（EMU）
	slideWidth  = 12192000
	slideHeight = 6858000

	// maxBulletsPerSlide 单页要点上限，超出时续页
	maxBulletsPerSlide = 8

	closingText = "¡Gracias!"
	accentColor = "2F5597"
)

// PPTXExporter PowerPoint导出器
type PPTXExporter struct{}

// NewPPTXExporter 创建PowerPoint导出器
func NewPPTXExporter() *PPTXExporter {
	return &PPTXExporter{}
}

// Format 实现Exporter接口
func (e *PPTXExporter) Format() Format { return FormatPPTX }

// ContentType 实现Exporter接口
func (e *PPTXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
}

// slide 一页幻灯片的内容
type slide struct {
	title   string
	bullets []string
	cover   bool
}

// Export 实现Exporter接口
// 标题页 + 每个段落一页 + 结束页
func (e *PPTXExporter) Export(doc *Document) ([]byte, error) {
	slides := []slide{{title: doc.Title, bullets: nonEmpty(doc.Subtitle), cover: true}}

	sections := doc.Sections
	if doc.Table != nil {
		sections = append(sections, tableSections(doc.Table)...)
	}
	for _, s := range sections {
		slides = append(slides, splitSection(s, doc.Title)...)
	}
	slides = append(slides, slide{title: closingText, cover: true})

	parts := []part{
		{name: "[Content_Types].xml", body: pptxContentTypes(len(slides))},
		{name: "_rels/.rels", body: pptxRootRels},
		{name: "ppt/presentation.xml", body: presentationXML(len(slides))},
		{name: "ppt/_rels/presentation.xml.rels", body: presentationRels(len(slides))},
		{name: "ppt/slideMasters/slideMaster1.xml", body: slideMasterXML},
		{name: "ppt/slideMasters/_rels/slideMaster1.xml.rels", body: slideMasterRels},
		{name: "ppt/slideLayouts/slideLayout1.xml", body: slideLayoutXML},
		{name: "ppt/slideLayouts/_rels/slideLayout1.xml.rels", body: slideLayoutRels},
		{name: "ppt/theme/theme1.xml", body: themeXML},
	}
	for i, s := range slides {
		parts = append(parts,
			part{name: fmt.Sprintf("ppt/slides/slide%d.xml", i+1), body: slideXML(s)},
			part{name: fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", i+1), body: slideRels},
		)
	}
	return writePackage(parts)
}

// splitSection 段落按换行拆成要点，过长时分页
func splitSection(s artifact.Section, fallback string) []slide {
	title := s.Heading
	if title == "" {
		title = fallback
	}
	var bullets []string
	for _, line := range s.Lines {
		for _, l := range strings.Split(line, "\n") {
			l = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(l), strings.TrimSpace(artifact.Bullet)))
			if l != "" {
				bullets = append(bullets, l)
			}
		}
	}
	if len(bullets) == 0 {
		return []slide{{title: title}}
	}

	var slides []slide
	for start := 0; start < len(bullets); start += maxBulletsPerSlide {
		end := start + maxBulletsPerSlide
		if end > len(bullets) {
			end = len(bullets)
		}
		t := title
		if start > 0 {
			t = title + " (cont.)"
		}
		slides = append(slides, slide{title: t, bullets: bullets[start:end]})
	}
	return slides
}

// tableSections 表格每行一页，列名作为要点前缀
func tableSections(t *Table) []artifact.Section {
	var sections []artifact.Section
	for _, row := range t.Rows {
		s := artifact.Section{}
		for i, cell := range row {
			if i == 0 {
				s.Heading = cell
				continue
			}
			if cell == "" || i >= len(t.Headers) {
				continue
			}
			s.Lines = append(s.Lines, t.Headers[i]+": "+cell)
		}
		sections = append(sections, s)
	}
	if t.Totals != nil {
		sections = append(sections, artifact.Section{
			Heading: t.Totals[0],
			Lines:   []string{t.Headers[len(t.Headers)-1] + ": " + t.Totals[len(t.Totals)-1]},
		})
	}
	return sections
}

func nonEmpty(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return []string{s}
}

func pptxContentTypes(n int) string {
	var b strings.Builder
	b.WriteString(xmlHeader + `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	b.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	b.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	b.WriteString(`<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/slideMasters/slideMaster1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/slideLayouts/slideLayout1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/theme/theme1.xml" ContentType="application/vnd.openxmlformats-officedocument.theme+xml"/>`)
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, `<Override PartName="/ppt/slides/slide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>`, i)
	}
	b.WriteString(`</Types>`)
	return b.String()
}

const pptxRootRels = xmlHeader + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="ppt/presentation.xml"/>` +
	`</Relationships>`

func presentationXML(n int) string {
	var b strings.Builder
	b.WriteString(xmlHeader + `<p:presentation xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `">`)
	b.WriteString(`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst><p:sldIdLst>`)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `<p:sldId id="%d" r:id="rId%d"/>`, 256+i, i+3)
	}
	fmt.Fprintf(&b, `</p:sldIdLst><p:sldSz cx="%d" cy="%d"/><p:notesSz cx="6858000" cy="9144000"/></p:presentation>`, slideWidth, slideHeight)
	return b.String()
}

func presentationRels(n int) string {
	var b strings.Builder
	b.WriteString(xmlHeader + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	b.WriteString(`<Relationship Id="rId1" Type="` + relMaster + `" Target="slideMasters/slideMaster1.xml"/>`)
	b.WriteString(`<Relationship Id="rId2" Type="` + relTheme + `" Target="theme/theme1.xml"/>`)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `<Relationship Id="rId%d" Type="%s" Target="slides/slide%d.xml"/>`, i+3, relSlide, i+1)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

const groupHeader = `<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>` +
	`<p:grpSpPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="0" cy="0"/><a:chOff x="0" y="0"/><a:chExt cx="0" cy="0"/></a:xfrm></p:grpSpPr>`

// decoration 母版上的固定装饰色块
func decoration(id int, name string, x, y, cx, cy int) string {
	return fmt.Sprintf(`<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr/><p:nvPr userDrawn="1"/></p:nvSpPr>`+
		`<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom>`+
		`<a:solidFill><a:srgbClr val="%s"/></a:solidFill><a:ln><a:noFill/></a:ln></p:spPr></p:sp>`,
		id, name, x, y, cx, cy, accentColor)
}

var slideMasterXML = xmlHeader + `<p:sldMaster xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `">` +
	`<p:cSld><p:bg><p:bgPr><a:solidFill><a:srgbClr val="FFFFFF"/></a:solidFill><a:effectLst/></p:bgPr></p:bg><p:spTree>` + groupHeader +
	decoration(2, "Banda superior", 0, 0, slideWidth, 228600) +
	decoration(3, "Banda inferior", 0, slideHeight-137160, slideWidth, 137160) +
	`</p:spTree></p:cSld>` +
	`<p:clrMap bg1="lt1" tx1="dk1" bg2="lt2" tx2="dk2" accent1="accent1" accent2="accent2" accent3="accent3" accent4="accent4" accent5="accent5" accent6="accent6" hlink="hlink" folHlink="folHlink"/>` +
	`<p:sldLayoutIdLst><p:sldLayoutId id="2147483649" r:id="rId1"/></p:sldLayoutIdLst>` +
	`</p:sldMaster>`

const slideMasterRels = xmlHeader + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="` + relLayout + `" Target="../slideLayouts/slideLayout1.xml"/>` +
	`<Relationship Id="rId2" Type="` + relTheme + `" Target="../theme/theme1.xml"/>` +
	`</Relationships>`

const slideLayoutXML = xmlHeader + `<p:sldLayout xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `" preserve="1">` +
	`<p:cSld name="Blank"><p:spTree>` + groupHeader + `</p:spTree></p:cSld>` +
	`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sldLayout>`

const slideLayoutRels = xmlHeader + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="` + relMaster + `" Target="../slideMasters/slideMaster1.xml"/>` +
	`</Relationships>`

const slideRels = xmlHeader + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="` + relLayout + `" Target="../slideLayouts/slideLayout1.xml"/>` +
	`</Relationships>`

func slideXML(s slide) string {
	var b strings.Builder
	b.WriteString(xmlHeader + `<p:sld xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `"><p:cSld><p:spTree>` + groupHeader)

	if s.cover {
		b.WriteString(textBox(2, "Título", 609600, 2286000, 10972800, 1143000, []string{s.title}, 4000, true, false))
		if len(s.bullets) > 0 {
			b.WriteString(textBox(3, "Subtítulo", 609600, 3550920, 10972800, 914400, s.bullets, 2000, false, false))
		}
	} else {
		b.WriteString(textBox(2, "Título", 609600, 457200, 10972800, 914400, []string{s.title}, 3200, true, false))
		if len(s.bullets) > 0 {
			b.WriteString(textBox(3, "Contenido", 609600, 1508760, 10972800, 4800600, s.bullets, 1800, false, true))
		}
	}

	b.WriteString(`</p:spTree></p:cSld><p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr></p:sld>`)
	return b.String()
}

func textBox(id int, name string, x, y, cx, cy int, paragraphs []string, size int, bold, bullets bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr>`, id, name)
	fmt.Fprintf(&b, `<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom><a:noFill/></p:spPr>`, x, y, cx, cy)
	b.WriteString(`<p:txBody><a:bodyPr wrap="square"><a:normAutofit/></a:bodyPr><a:lstStyle/>`)
	for _, p := range paragraphs {
		b.WriteString("<a:p>")
		if bullets {
			b.WriteString(`<a:pPr marL="342900" indent="-342900"><a:buChar char="•"/></a:pPr>`)
		} else {
			b.WriteString(`<a:pPr algn="l"/>`)
		}
		boldAttr := ""
		if bold {
			boldAttr = ` b="1"`
		}
		fmt.Fprintf(&b, `<a:r><a:rPr lang="es-ES" sz="%d"%s dirty="0"/><a:t>%s</a:t></a:r></a:p>`, size, boldAttr, escape(p))
	}
	b.WriteString(`</p:txBody></p:sp>`)
	return b.String()
}

// themeXML 最小主题，母版必须引用
const themeXML = xmlHeader + `<a:theme xmlns:a="` + nsA + `" name="Studio"><a:themeElements>` +
	`<a:clrScheme name="Studio">` +
	`<a:dk1><a:srgbClr val="000000"/></a:dk1><a:lt1><a:srgbClr val="FFFFFF"/></a:lt1>` +
	`<a:dk2><a:srgbClr val="1F3864"/></a:dk2><a:lt2><a:srgbClr val="E7E6E6"/></a:lt2>` +
	`<a:accent1><a:srgbClr val="2F5597"/></a:accent1><a:accent2><a:srgbClr val="ED7D31"/></a:accent2>` +
	`<a:accent3><a:srgbClr val="A5A5A5"/></a:accent3><a:accent4><a:srgbClr val="FFC000"/></a:accent4>` +
	`<a:accent5><a:srgbClr val="5B9BD5"/></a:accent5><a:accent6><a:srgbClr val="70AD47"/></a:accent6>` +
	`<a:hlink><a:srgbClr val="0563C1"/></a:hlink><a:folHlink><a:srgbClr val="954F72"/></a:folHlink>` +
	`</a:clrScheme>` +
	`<a:fontScheme name="Studio">` +
	`<a:majorFont><a:latin typeface="Calibri Light"/><a:ea typeface=""/><a:cs typeface=""/></a:majorFont>` +
	`<a:minorFont><a:latin typeface="Calibri"/><a:ea typeface=""/><a:cs typeface=""/></a:minorFont>` +
	`</a:fontScheme>` +
	`<a:fmtScheme name="Studio">` +
	`<a:fillStyleLst><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:fillStyleLst>` +
	`<a:lnStyleLst><a:ln w="6350"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln><a:ln w="12700"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln><a:ln w="19050"><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:ln></a:lnStyleLst>` +
	`<a:effectStyleLst><a:effectStyle><a:effectLst/></a:effectStyle><a:effectStyle><a:effectLst/></a:effectStyle><a:effectStyle><a:effectLst/></a:effectStyle></a:effectStyleLst>` +
	`<a:bgFillStyleLst><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill><a:solidFill><a:schemeClr val="phClr"/></a:solidFill></a:bgFillStyleLst>` +
	`</a:fmtScheme></a:themeElements></a:theme>`
