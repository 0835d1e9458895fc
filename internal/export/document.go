package export

import (
	"strconv"
	"strings"

	"studio-go/internal/artifact"
)

// Document 与格式无关的导出文档
type Document struct {
	Title    string
	Subtitle string
	Sections []artifact.Section
	Table    *Table
	// Grid 填字游戏网格，仅填字类制品有值
	Grid *artifact.Grid
}

// Table 文档中的表格
type Table struct {
	Headers []string
	Rows    [][]string
	Totals  []string
}

// FromArtifact 从制品构建导出文档
func FromArtifact(a *artifact.Artifact) *Document {
	title, sections := artifact.Outline(a)
	doc := &Document{Title: title, Sections: sections}
	if doc.Title == "" {
		doc.Title = defaultTitle(a.Tool)
	}

	switch artifact.ViewOf(a) {
	case artifact.ViewRubric:
		if r, err := artifact.AsRubric(a); err == nil {
			doc.Subtitle = r.Descripcion
			doc.Table = RubricTable(r)
			doc.Sections = nil
		}
	case artifact.ViewCrossword:
		if c, err := artifact.AsCrossword(a); err == nil {
			doc.Grid = artifact.CrosswordGrid(c)
		}
	}
	return doc
}

// RubricTable 量规表格，每个标准一行，最后是总分行
func RubricTable(r *artifact.Rubric) *Table {
	t := &Table{Headers: []string{"Criterio", "Descripción"}}
	withLevels := r.HasLevels()
	if withLevels {
		for _, level := range artifact.LevelNames {
			t.Headers = append(t.Headers, strings.ToUpper(level[:1])+level[1:])
		}
	}
	t.Headers = append(t.Headers, "Puntaje")

	for _, c := range r.Criterios {
		row := []string{c.Criterio, c.Descripcion}
		if withLevels {
			for _, level := range artifact.LevelNames {
				row = append(row, c.Niveles[level])
			}
		}
		row = append(row, strconv.Itoa(artifact.PointsPerCriterion))
		t.Rows = append(t.Rows, row)
	}

	t.Totals = make([]string, len(t.Headers))
	t.Totals[0] = "Total"
	t.Totals[len(t.Totals)-1] = strconv.Itoa(r.MaxScore())
	return t
}

func defaultTitle(tool string) string {
	if tool == "" {
		return "Documento"
	}
	return strings.ToUpper(tool[:1]) + strings.ReplaceAll(tool[1:], "-", " ")
}
