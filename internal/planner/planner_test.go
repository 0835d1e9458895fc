package planner

import (
	"testing"
	"time"

	"studio-go/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLessonEventMapsDateToMorningSlot(t *testing.T) {
	loc, err := time.LoadLocation("America/Bogota")
	require.NoError(t, err)

	ev, err := LessonEvent(models.Lesson{Dia: 1, Fecha: "05/03/2024", Titulo: "Fracciones"}, "Matemáticas", "5°", loc)
	require.NoError(t, err)

	assert.Equal(t, "2024-03-05T10:00", ev.Start.Format("2006-01-02T15:04"))
	assert.Equal(t, "2024-03-05T11:00", ev.End.Format("2006-01-02T15:04"))
	assert.Equal(t, loc, ev.Start.Location())
	assert.Equal(t, "Fracciones", ev.Title)
}

func TestLessonEventInvalidDate(t *testing.T) {
	_, err := LessonEvent(models.Lesson{Fecha: "2024-03-05"}, "", "", time.UTC)
	assert.Error(t, err)

	_, err = LessonEvent(models.Lesson{Fecha: "31/02/2024"}, "", "", time.UTC)
	assert.Error(t, err)
}

func TestUnitEventsSkipsBadDates(t *testing.T) {
	unit := &models.Unit{
		ID:         "u1",
		Asignatura: "Ciencias",
		Nivel:      "3°",
		Lecciones: models.Lessons{
			{Dia: 1, Fecha: "01/04/2024", Titulo: "A"},
			{Dia: 2, Fecha: "", Titulo: "B"},
			{Dia: 3, Fecha: "03/04/2024", Titulo: "C"},
		},
	}

	events, errs := UnitEvents(unit, time.UTC)
	require.Len(t, events, 2)
	assert.Len(t, errs, 1)
	assert.Equal(t, "u1-0", events[0].ID)
	assert.Equal(t, "u1-2", events[1].ID)
	assert.Equal(t, "Ciencias", events[1].Asignatura)
}

func sampleEvents() []Event {
	day := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	return []Event{
		{Title: "m5", Asignatura: "Matemáticas", Nivel: "5°", Start: day},
		{Title: "m3", Asignatura: "Matemáticas", Nivel: "3°", Start: day.AddDate(0, 0, 1)},
		{Title: "l5", Asignatura: "Lenguaje", Nivel: "5°", Start: day},
	}
}

func titles(events []Event) []string {
	out := make([]string, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Title)
	}
	return out
}

func TestFilterEvents(t *testing.T) {
	events := sampleEvents()

	tests := []struct {
		name     string
		subjects []string
		levels   []string
		want     []string
	}{
		{"empty selection passes all", nil, nil, []string{"m5", "m3", "l5"}},
		{"subject only", []string{"Matemáticas"}, []string{}, []string{"m5", "m3"}},
		{"level only", nil, []string{"5°"}, []string{"m5", "l5"}},
		{"subject and level", []string{"Matemáticas"}, []string{"5°"}, []string{"m5"}},
		{"no match", []string{"Historia"}, nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, titles(FilterEvents(events, tt.subjects, tt.levels)))
		})
	}
}

func TestGroupByDateAndLessonsOn(t *testing.T) {
	events := sampleEvents()

	groups := GroupByDate(events)
	assert.Equal(t, []string{"m5", "l5"}, titles(groups["2024-03-05"]))
	assert.Equal(t, []string{"m3"}, titles(groups["2024-03-06"]))

	on := LessonsOn(events, time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, []string{"m3"}, titles(on))
}

func TestSubjects(t *testing.T) {
	subjects, levels := Subjects(sampleEvents())
	assert.Equal(t, []string{"Lenguaje", "Matemáticas"}, subjects)
	assert.Equal(t, []string{"3°", "5°"}, levels)
}
