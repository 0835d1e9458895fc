package export

import (
	"archive/zip"
	"bytes"
	"errors"
	"image/png"
	"io"
	"regexp"
	"strings"
	"testing"

	"studio-go/internal/artifact"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const rubricJSON = `{
  "titulo": "Rúbrica de lectura",
  "descripcion": "Comprensión de textos narrativos",
  "criterios": [
    {"criterio": "Idea principal", "descripcion": "Identifica la idea principal"},
    {"criterio": "Vocabulario", "descripcion": "Usa vocabulario del texto"},
    {"criterio": "Inferencias", "descripcion": "Realiza inferencias"},
    "Fluidez"
  ]
}`

const crosswordJSON = `{
  "titulo": "Sistema solar",
  "across": {"1": {"clue": "Astro rey", "answer": "sol", "row": 0, "col": 0}},
  "down": {"1": {"clue": "Sal de mesa", "answer": "sal", "row": 0, "col": 0}}
}`

func rubricDoc(t *testing.T) *Document {
	t.Helper()
	a := artifact.Decode(artifact.KindJSON, rubricJSON)
	a.Tool = "rubrica"
	return FromArtifact(a)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"pdf", FormatPDF},
		{"DOCX", FormatDOCX},
		{"word", FormatDOCX},
		{" excel ", FormatXLSX},
		{"pptx", FormatPPTX},
		{"png", FormatPNG},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseFormat("odt")
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "Rúbrica_de_lectura.xlsx", FileName("Rúbrica de  lectura", FormatXLSX))
	assert.Equal(t, "Unidad_1-2.pdf", FileName(" Unidad\t1/2 ", FormatPDF))
	assert.Equal(t, "documento.docx", FileName("   ", FormatDOCX))
}

func TestRubricTable(t *testing.T) {
	doc := rubricDoc(t)

	require.NotNil(t, doc.Table)
	assert.Equal(t, "Comprensión de textos narrativos", doc.Subtitle)
	assert.Equal(t, []string{"Criterio", "Descripción", "Puntaje"}, doc.Table.Headers)
	assert.Len(t, doc.Table.Rows, 4)
	assert.Equal(t, []string{"Total", "", "20"}, doc.Table.Totals)
}

func TestXLSXRubricRowsAndTotals(t *testing.T) {
	doc := rubricDoc(t)

	data, err := NewXLSXExporter().Export(doc)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(xlsxSheet)
	require.NoError(t, err)

	assert.Equal(t, "Rúbrica de lectura", rows[xlsxTitleRow-1][0])
	assert.Equal(t, "Criterio", rows[xlsxHeaderRow-1][0])

	// 每个标准一行，加一行总分
	body := rows[xlsxHeaderRow:]
	require.Len(t, body, 4+1)
	assert.Equal(t, "Idea principal", body[0][0])
	assert.Equal(t, "Fluidez", body[3][0])

	totals := body[len(body)-1]
	assert.Equal(t, "Total", totals[0])
	assert.Equal(t, "20", totals[len(totals)-1])

	merged, err := f.GetMergeCells(xlsxSheet)
	require.NoError(t, err)
	assert.NotEmpty(t, merged)
}

func TestPDFExport(t *testing.T) {
	doc := rubricDoc(t)
	for i := 0; i < 60; i++ {
		doc.Sections = append(doc.Sections, artifact.Section{Heading: "Nota", Lines: []string{strings.Repeat("texto largo ", 30)}})
	}

	data, err := NewPDFExporter(Options{PageFormat: "A4", FontSize: 11}).Export(doc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	pages := regexp.MustCompile(`/Type /Page\b`).FindAll(data, -1)
	assert.Greater(t, len(pages), 1)
}

func TestDOCXExport(t *testing.T) {
	doc := &Document{
		Title: "Ideas de actividades",
		Sections: []artifact.Section{
			{Heading: "Actividades", Lines: []string{artifact.Bullet + "Lluvia de ideas (5 min)", artifact.Bullet + "Debate <grupal>"}},
		},
	}

	data, err := NewDOCXExporter().Export(doc)
	require.NoError(t, err)

	files := unzip(t, data)
	require.Contains(t, files, "[Content_Types].xml")
	require.Contains(t, files, "word/document.xml")

	body := files["word/document.xml"]
	assert.Contains(t, body, "<w:t xml:space=\"preserve\">• Lluvia de ideas (5 min)</w:t>")
	assert.Contains(t, body, "Debate &lt;grupal&gt;")
	assert.Contains(t, body, "<w:b/>")
}

func TestDOCXRubricHasTable(t *testing.T) {
	data, err := NewDOCXExporter().Export(rubricDoc(t))
	require.NoError(t, err)

	body := unzip(t, data)["word/document.xml"]
	assert.Equal(t, 1+4+1, strings.Count(body, "<w:tr>"))
}

func TestPPTXExport(t *testing.T) {
	lines := make([]string, 10)
	for i := range lines {
		lines[i] = "Punto"
	}
	doc := &Document{
		Title: "Fracciones",
		Sections: []artifact.Section{
			{Heading: "Introducción", Lines: []string{"Qué es una fracción\nPartes de una fracción"}},
			{Heading: "Ejemplos", Lines: lines},
		},
	}

	data, err := NewPPTXExporter().Export(doc)
	require.NoError(t, err)

	files := unzip(t, data)
	slides := 0
	for name := range files {
		if regexp.MustCompile(`^ppt/slides/slide\d+\.xml$`).MatchString(name) {
			slides++
		}
	}
	// 标题页 + 1 + 2（续页）+ 结束页
	assert.Equal(t, 5, slides)

	assert.Contains(t, files["ppt/slides/slide1.xml"], "Fracciones")
	assert.Equal(t, 2, strings.Count(files["ppt/slides/slide2.xml"], `<a:buChar char="•"/>`))
	assert.Contains(t, files["ppt/slides/slide4.xml"], "Ejemplos (cont.)")
	assert.Contains(t, files["ppt/slides/slide5.xml"], closingText)
	assert.Contains(t, files["ppt/slideMasters/slideMaster1.xml"], "Banda superior")
	assert.Contains(t, files["ppt/presentation.xml"], `r:id="rId7"`)
}

func TestPNGCrosswordPreview(t *testing.T) {
	doc := FromArtifact(artifact.Decode(artifact.KindJSON, crosswordJSON))
	require.NotNil(t, doc.Grid)

	data, err := NewPNGExporter().Export(doc)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, int(2*pngMargin+3*pngCell), img.Bounds().Dx())
}

func TestPNGRejectsNonCrossword(t *testing.T) {
	_, err := NewPNGExporter().Export(rubricDoc(t))
	assert.True(t, errors.Is(err, ErrUnsupportedContent))
}

func TestRegistryExport(t *testing.T) {
	r := NewRegistry(Options{})

	file, err := r.Export(rubricDoc(t), "Rúbrica de lectura", FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, "Rúbrica_de_lectura.xlsx", file.Name)
	assert.Equal(t, NewXLSXExporter().ContentType(), file.ContentType)
	assert.NotEmpty(t, file.Data)

	// 失败时不返回半成品
	file, err = r.Export(rubricDoc(t), "x", FormatPNG)
	assert.Error(t, err)
	assert.Nil(t, file)

	_, err = r.Get(Format("odt"))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func unzip(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	files := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		files[f.Name] = string(b)
	}
	return files
}
