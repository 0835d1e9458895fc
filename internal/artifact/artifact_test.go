package artifact

import (
	"strings"
	"testing"

	"studio-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rubricJSON = `{
  "titulo": "Rúbrica de exposición",
  "descripcion": "Evalúa la exposición oral",
  "criterios": [
    {"criterio": "Claridad", "descripcion": "Se expresa con claridad", "niveles": {"excelente": "Siempre", "deficiente": "Nunca"}},
    {"criterio": "Dominio del tema"},
    "Uso del tiempo"
  ]
}`

func TestDecodeJSON(t *testing.T) {
	a := Decode(KindJSON, "```json\n"+rubricJSON+"\n```")

	assert.False(t, a.Malformed)
	assert.Equal(t, models.SourceGenerated, a.Source)
	assert.Equal(t, "Rúbrica de exposición", a.Title)
	assert.Equal(t, ViewRubric, ViewOf(a))
	require.NotNil(t, a.Object())
}

func TestDecodeMalformedFallsBackToRaw(t *testing.T) {
	a := Decode(KindJSON, "no pude generar la rúbrica")

	assert.True(t, a.Malformed)
	assert.Nil(t, a.Data)
	assert.Equal(t, "no pude generar la rúbrica", a.Text)
	assert.Equal(t, "no pude generar la rúbrica", RenderText(a))
}

func TestDecodeQuotedJSON(t *testing.T) {
	a := Decode(KindJSON, `"{\"descripcion\":\"x\"}"`)

	assert.False(t, a.Malformed)
	assert.Equal(t, `{"descripcion":"x"}`, a.Text)
}

func TestDecodeText(t *testing.T) {
	a := Decode(KindText, "  Resumen del capítulo.\n")

	assert.Equal(t, "Resumen del capítulo.", a.Text)
	assert.Equal(t, ViewText, ViewOf(a))
}

func TestFromModelKeepsSource(t *testing.T) {
	a := FromModel(&models.Artifact{
		ID:      "a1",
		Tool:    "resumen",
		Kind:    string(KindText),
		Source:  models.SourceChatRevision,
		Title:   "Resumen",
		Content: "texto",
	})

	assert.Equal(t, "a1", a.ID)
	assert.Equal(t, models.SourceChatRevision, a.Source)
	assert.Equal(t, "Resumen", a.Title)
}

func TestAsRubric(t *testing.T) {
	r, err := AsRubric(Decode(KindJSON, rubricJSON))
	require.NoError(t, err)

	require.Len(t, r.Criterios, 3)
	assert.Equal(t, "Uso del tiempo", r.Criterios[2].Criterio)
	assert.Equal(t, 15, r.MaxScore())
	assert.True(t, r.HasLevels())
}

func TestAsRubricRequiresCriteria(t *testing.T) {
	_, err := AsRubric(Decode(KindJSON, `{"titulo":"x","criterios":[]}`))
	assert.Error(t, err)
}

func TestRenderTextRubric(t *testing.T) {
	text := RenderText(Decode(KindJSON, rubricJSON))

	assert.True(t, strings.HasPrefix(text, "Rúbrica de exposición"))
	assert.Contains(t, text, "1. Claridad")
	assert.Contains(t, text, Bullet+"Excelente: Siempre")
	assert.Contains(t, text, "Puntaje total: 15")
}

func TestRenderTextActivities(t *testing.T) {
	a := Decode(KindJSON, `{"actividades":[{"descripcion":"Lluvia de ideas","tiempoEstimado":"5 min"},"Lectura guiada"]}`)

	assert.Equal(t, ViewActivities, ViewOf(a))
	text := RenderText(a)
	assert.Contains(t, text, Bullet+"Lluvia de ideas (5 min)")
	assert.Contains(t, text, Bullet+"Lectura guiada")
}

func TestRenderTextLessonPlan(t *testing.T) {
	a := Decode(KindJSON, `{
	  "nombreUnidad": "Fracciones",
	  "lecciones": [{
	    "dia": 1, "fecha": "05/03/2024", "titulo": "Introducción",
	    "inicio": {"tema": "Repaso", "actividades": ["Preguntas"], "recursos": [], "logros": []},
	    "desarrollo": {"tema": "Partes", "actividades": [], "recursos": ["Pizarra"], "logros": ["Identifica"]},
	    "cierre": {"tema": "Cierre", "actividades": [], "recursos": [], "logros": [], "evidencia": "Ficha"}
	  }]
	}`)

	assert.Equal(t, ViewLessonPlan, ViewOf(a))
	text := RenderText(a)
	assert.Contains(t, text, "Día 1: Introducción (05/03/2024)")
	assert.Contains(t, text, "Inicio\nTema: Repaso")
	assert.Contains(t, text, "Recursos:\n"+Bullet+"Pizarra")
	assert.Contains(t, text, "Evidencia: Ficha")
}
