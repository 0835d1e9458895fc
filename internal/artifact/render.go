package artifact

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// Bullet 列表项前缀
const Bullet = "• "

// View 制品的展示类型
type View string

const (
	ViewRubric     View = "rubric"
	ViewCrossword  View = "crossword"
	ViewLessonPlan View = "lessonPlan"
	ViewActivities View = "activities"
	ViewQuestions  View = "questions"
	ViewSlides     View = "slides"
	ViewObject     View = "object"
	ViewText       View = "text"
)

// Section 展示用的一个段落
type Section struct {
	Heading string   `json:"heading"`
	Lines   []string `json:"lines"`
}

// ViewOf 根据数据形状判断展示类型
func ViewOf(a *Artifact) View {
	obj := a.Object()
	if obj == nil {
		if _, ok := a.Data.([]interface{}); ok {
			return ViewActivities
		}
		return ViewText
	}
	switch {
	case has(obj, "criterios"):
		return ViewRubric
	case has(obj, "across") || has(obj, "down"):
		return ViewCrossword
	case has(obj, "lecciones"):
		return ViewLessonPlan
	case has(obj, "diapositivas"):
		return ViewSlides
	case has(obj, "preguntas"):
		return ViewQuestions
	case has(obj, "actividades") || has(obj, "ideas"):
		return ViewActivities
	}
	return ViewObject
}

// Outline 把制品整理成标题和段落
// 无法按类型解析时退回原文
func Outline(a *Artifact) (string, []Section) {
	title := a.Title
	var sections []Section
	var err error

	switch ViewOf(a) {
	case ViewRubric:
		sections, err = rubricSections(a)
	case ViewCrossword:
		sections, err = crosswordSections(a)
	case ViewLessonPlan:
		sections, err = lessonPlanSections(a)
	case ViewSlides:
		sections = slideSections(a.Object())
	case ViewQuestions:
		sections = questionSections(a.Object())
	case ViewActivities:
		sections = activitySections(a.Data)
	case ViewObject:
		sections = objectSections(a.Object())
	default:
		sections = textSections(a.Text)
	}
	if err != nil || len(sections) == 0 {
		sections = textSections(a.Text)
	}
	return title, sections
}

// RenderText 纯文本形式的制品
func RenderText(a *Artifact) string {
	title, sections := Outline(a)
	var b strings.Builder
	if title != "" {
		b.WriteString(title)
		b.WriteString("\n\n")
	}
	for i, s := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		if s.Heading != "" {
			b.WriteString(s.Heading)
			b.WriteString("\n")
		}
		for _, line := range s.Lines {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func rubricSections(a *Artifact) ([]Section, error) {
	r, err := AsRubric(a)
	if err != nil {
		return nil, err
	}
	var sections []Section
	if r.Descripcion != "" {
		sections = append(sections, Section{Lines: []string{r.Descripcion}})
	}
	for i, c := range r.Criterios {
		var lines []string
		if c.Descripcion != "" {
			lines = append(lines, c.Descripcion)
		}
		for _, level := range LevelNames {
			if text, ok := c.Niveles[level]; ok {
				lines = append(lines, Bullet+capitalize(level)+": "+text)
			}
		}
		sections = append(sections, Section{Heading: fmt.Sprintf("%d. %s", i+1, c.Criterio), Lines: lines})
	}
	sections = append(sections, Section{Lines: []string{fmt.Sprintf("Puntaje total: %d", r.MaxScore())}})
	return sections, nil
}

func crosswordSections(a *Artifact) ([]Section, error) {
	c, err := AsCrossword(a)
	if err != nil {
		return nil, err
	}
	placements, _ := c.Placements()
	across := Section{Heading: "Horizontales"}
	down := Section{Heading: "Verticales"}
	for _, p := range placements {
		line := fmt.Sprintf("%d. %s", p.Number, p.Clue)
		if p.Direction == Across {
			across.Lines = append(across.Lines, line)
		} else {
			down.Lines = append(down.Lines, line)
		}
	}
	grid := CrosswordGrid(c)
	sections := []Section{across, down}
	if len(grid.Conflicts) > 0 {
		conflicts := Section{Heading: "Conflictos"}
		for _, cf := range grid.Conflicts {
			conflicts.Lines = append(conflicts.Lines, fmt.Sprintf("%s %s (%d,%d): %s", cf.Key, cf.Direction, cf.Row, cf.Col, cf.Reason))
		}
		sections = append(sections, conflicts)
	}
	return sections, nil
}

func lessonPlanSections(a *Artifact) ([]Section, error) {
	p, err := AsLessonPlan(a)
	if err != nil {
		return nil, err
	}
	var sections []Section
	for _, l := range p.Lecciones {
		heading := fmt.Sprintf("Día %d: %s", l.Dia, l.Titulo)
		if l.Fecha != "" {
			heading += " (" + l.Fecha + ")"
		}
		sections = append(sections, Section{Heading: heading})
		sections = append(sections, LessonSections(l)...)
	}
	return sections, nil
}

func slideSections(obj map[string]interface{}) []Section {
	items, _ := obj["diapositivas"].([]interface{})
	sections := make([]Section, 0, len(items))
	for i, item := range items {
		slide, ok := item.(map[string]interface{})
		if !ok {
			sections = append(sections, Section{Heading: fmt.Sprintf("Diapositiva %d", i+1), Lines: splitLines(fmt.Sprint(item))})
			continue
		}
		heading := stringField(slide, "titulo")
		if heading == "" {
			heading = fmt.Sprintf("Diapositiva %d", i+1)
		}
		var lines []string
		switch content := slide["contenido"].(type) {
		case string:
			lines = splitLines(content)
		case []interface{}:
			for _, c := range content {
				lines = append(lines, fmt.Sprint(c))
			}
		}
		sections = append(sections, Section{Heading: heading, Lines: lines})
	}
	return sections
}

func questionSections(obj map[string]interface{}) []Section {
	var sections []Section
	if text := stringField(obj, "texto"); text != "" {
		sections = append(sections, Section{Heading: "Texto", Lines: splitLines(text)})
	}
	items, _ := obj["preguntas"].([]interface{})
	for i, item := range items {
		q, ok := item.(map[string]interface{})
		if !ok {
			sections = append(sections, Section{Heading: fmt.Sprintf("%d. %v", i+1, item)})
			continue
		}
		s := Section{Heading: fmt.Sprintf("%d. %s", i+1, stringField(q, "pregunta"))}
		if opts, ok := q["opciones"].([]interface{}); ok {
			for j, o := range opts {
				s.Lines = append(s.Lines, fmt.Sprintf("%c) %v", 'a'+j, o))
			}
		}
		if ans := stringField(q, "respuesta"); ans != "" {
			s.Lines = append(s.Lines, "Respuesta: "+ans)
		}
		sections = append(sections, s)
	}
	return sections
}

func activitySections(data interface{}) []Section {
	var items []interface{}
	switch v := data.(type) {
	case []interface{}:
		items = v
	case map[string]interface{}:
		items, _ = v["actividades"].([]interface{})
		if items == nil {
			items, _ = v["ideas"].([]interface{})
		}
	}

	s := Section{Heading: "Actividades"}
	for _, item := range items {
		switch v := item.(type) {
		case string:
			s.Lines = append(s.Lines, Bullet+ParseActivity(v))
		default:
			b, err := json.Marshal(v)
			if err != nil {
				continue
			}
			line := ParseActivity(string(b))
			if obj, ok := v.(map[string]interface{}); ok {
				if name := stringField(obj, "nombre"); name != "" {
					line = name + ": " + line
				}
			}
			s.Lines = append(s.Lines, Bullet+line)
		}
	}
	return []Section{s}
}

func objectSections(obj map[string]interface{}) []Section {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		if k == "titulo" || k == "title" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sections []Section
	for _, k := range keys {
		s := Section{Heading: capitalize(k)}
		switch v := obj[k].(type) {
		case string:
			s.Lines = splitLines(v)
		case []interface{}:
			for _, item := range v {
				s.Lines = append(s.Lines, Bullet+flatten(item))
			}
		default:
			s.Lines = []string{flatten(v)}
		}
		sections = append(sections, s)
	}
	return sections
}

func textSections(text string) []Section {
	lines := splitLines(text)
	if len(lines) == 0 {
		return nil
	}
	return []Section{{Lines: lines}}
}

func flatten(v interface{}) string {
	switch t := v.(type) {
	case string:
		return ParseActivity(t)
	case map[string]interface{}:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return ParseActivity(string(b))
	}
	return fmt.Sprint(v)
}

func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func has(obj map[string]interface{}, key string) bool {
	_, ok := obj[key]
	return ok
}

func capitalize(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return string(unicode.ToUpper(r[0])) + string(r[1:])
}
