package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestActivityCommand(t *testing.T) {
	out, err := execute(t, "activity", `{"descripcion":"Juego de roles","tiempoEstimado":"20 min"}`)
	require.NoError(t, err)
	assert.Equal(t, "Juego de roles (20 min)\n", out)
}

func TestExportCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "rubrica.json")
	require.NoError(t, os.WriteFile(in, []byte("```json\n"+`{"titulo":"Rúbrica de lectura","criterios":[{"criterio":"Fluidez"},{"criterio":"Comprensión"}]}`+"\n```"), 0644))

	out, err := execute(t, "export", "--tool", "rubrica", "--in", in, "--format", "xlsx", "--out", dir)
	require.NoError(t, err)

	path := strings.TrimSpace(out)
	assert.True(t, strings.HasSuffix(path, ".xlsx"))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestExportCommandUnknownTool(t *testing.T) {
	_, err := execute(t, "export", "--tool", "desconocida", "--in", "x.json")
	assert.Error(t, err)
}

func TestEventsCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "unidades.json")
	units := `[
		{"_id":"u1","nombreUnidad":"Fracciones","asignatura":"Matemáticas","nivel":"5°","lecciones":[
			{"dia":2,"fecha":"06/03/2024","titulo":"Suma"},
			{"dia":1,"fecha":"05/03/2024","titulo":"Introducción"}
		]},
		{"_id":"u2","nombreUnidad":"Plantas","asignatura":"Ciencias","nivel":"5°","lecciones":[
			{"dia":1,"fecha":"05/03/2024","titulo":"Raíces"}
		]}
	]`
	require.NoError(t, os.WriteFile(in, []byte(units), 0644))

	out, err := execute(t, "events", "--in", in, "--subject", "Matemáticas", "--tz", "UTC")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "2024-03-05\t10:00-11:00\tMatemáticas\t5°\tIntroducción", lines[0])
	assert.Contains(t, lines[1], "Suma")
}

func TestExportCommandRejectsFormat(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "resumen.txt")
	require.NoError(t, os.WriteFile(in, []byte("Un resumen"), 0644))

	_, err := execute(t, "export", "--tool", "resumen", "--in", in, "--format", "odt", "--out", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdf、docx、xlsx、pptx 或 png")
}
