package artifact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrosswordGrid(t *testing.T) {
	a := Decode(KindJSON, `{
	  "across": {"1": {"clue": "Astro rey", "answer": "sol", "row": 0, "col": 0}},
	  "down": {"1": {"pista": "Satélite", "respuesta": "sal", "fila": 0, "columna": 0},
	           "2": {"clue": "Nota musical", "answer": "la", "row": 0, "col": 2}}
	}`)
	c, err := AsCrossword(a)
	require.NoError(t, err)

	g := CrosswordGrid(c)
	assert.Equal(t, 3, g.Rows)
	assert.Equal(t, 3, g.Cols)
	assert.Empty(t, g.Conflicts)
	assert.Equal(t, "SOL\nA#A\nL##\n", g.String())
	assert.Equal(t, 1, g.Cells[0][0].Number)
	assert.Equal(t, 2, g.Cells[0][2].Number)
}

func TestCrosswordGridConflicts(t *testing.T) {
	c := &Crossword{
		Across: map[string]CrosswordEntry{
			"1": {Clue: "a", Answer: "MAR", Row: 0, Col: 0},
			"x": {Clue: "b", Answer: "SI", Row: 3, Col: 3},
		},
		Down: map[string]CrosswordEntry{
			"2": {Clue: "c", Answer: "PIE", Row: 0, Col: 1},
			"3": {Clue: "d", Answer: "LUNA", Row: -1, Col: 0},
		},
	}

	g := CrosswordGrid(c)
	require.Len(t, g.Conflicts, 3)
	reasons := map[string]string{}
	for _, cf := range g.Conflicts {
		reasons[cf.Key] = cf.Reason
	}
	assert.Equal(t, "编号无效", reasons["x"])
	assert.Equal(t, "与已有字母冲突", reasons["2"])
	assert.Equal(t, "超出网格范围", reasons["3"])
	assert.Equal(t, "MAR\n###\n###\n", g.String())
}

func TestCrosswordGridHugeCoordinates(t *testing.T) {
	a := Decode(KindJSON, `{
	  "across": {"1": {"answer": "SOL", "row": 0, "col": 9223372036854775807}},
	  "down": {"2": {"answer": "MAR", "row": 9223372036854775807, "col": 0}}
	}`)
	c, err := AsCrossword(a)
	require.NoError(t, err)

	var g *Grid
	require.NotPanics(t, func() { g = CrosswordGrid(c) })
	assert.Equal(t, 0, g.Rows)
	require.Len(t, g.Conflicts, 2)
	for _, cf := range g.Conflicts {
		assert.Equal(t, "超出网格范围", cf.Reason)
	}
	assert.NotPanics(t, func() { RenderText(a) })
}

func TestPlacementLetters(t *testing.T) {
	p := Placement{CrosswordEntry: CrosswordEntry{Answer: "sistema solar"}}
	assert.Equal(t, "SISTEMASOLAR", string(p.Letters()))
}

func TestCrosswordRenderTextListsClues(t *testing.T) {
	text := RenderText(Decode(KindJSON, `{"across":{"1":{"clue":"Astro rey","answer":"sol","row":0,"col":0}},"down":{}}`))

	assert.Contains(t, text, "Horizontales\n1. Astro rey")
	assert.Contains(t, text, "Verticales")
}
