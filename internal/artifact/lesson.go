package artifact

import (
	"fmt"

	"studio-go/internal/models"
)

// SectionKeys 课时的固定环节
var SectionKeys = []string{"inicio", "desarrollo", "cierre"}

var sectionTitles = map[string]string{
	"inicio":     "Inicio",
	"desarrollo": "Desarrollo",
	"cierre":     "Cierre",
}

// LessonPlan 单元计划
type LessonPlan struct {
	ID           string         `json:"_id,omitempty"`
	NombreUnidad string         `json:"nombreUnidad"`
	Asignatura   string         `json:"asignatura,omitempty"`
	Nivel        string         `json:"nivel,omitempty"`
	Lecciones    models.Lessons `json:"lecciones"`
}

// AsLessonPlan 将制品解析为单元计划
func AsLessonPlan(a *Artifact) (*LessonPlan, error) {
	if a.Malformed {
		return nil, fmt.Errorf("单元计划不是有效的JSON")
	}
	var p LessonPlan
	if err := a.Unmarshal(&p); err != nil {
		return nil, fmt.Errorf("解析单元计划失败: %w", err)
	}
	if len(p.Lecciones) == 0 {
		return nil, fmt.Errorf("单元计划没有课时")
	}
	return &p, nil
}

// LessonSection 按环节键取课时环节
func LessonSection(l models.Lesson, key string) (models.LessonSection, bool) {
	switch key {
	case "inicio":
		return l.Inicio, true
	case "desarrollo":
		return l.Desarrollo, true
	case "cierre":
		return l.Cierre, true
	}
	return models.LessonSection{}, false
}

// LessonSections 把一节课展开为三个环节
func LessonSections(l models.Lesson) []Section {
	sections := make([]Section, 0, len(SectionKeys))
	for _, key := range SectionKeys {
		s, _ := LessonSection(l, key)
		var lines []string
		if s.Tema != "" {
			lines = append(lines, "Tema: "+s.Tema)
		}
		lines = appendList(lines, "Actividades", s.Actividades)
		lines = appendList(lines, "Recursos", s.Recursos)
		lines = appendList(lines, "Logros", s.Logros)
		if s.Evidencia != "" {
			lines = append(lines, "Evidencia: "+s.Evidencia)
		}
		sections = append(sections, Section{Heading: sectionTitles[key], Lines: lines})
	}
	return sections
}

func appendList(lines []string, label string, items []string) []string {
	if len(items) == 0 {
		return lines
	}
	lines = append(lines, label+":")
	for _, item := range items {
		lines = append(lines, Bullet+ParseActivity(item))
	}
	return lines
}
