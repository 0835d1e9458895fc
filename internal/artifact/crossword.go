package artifact

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// MaxGridSize 填字网格的最大边长
const MaxGridSize = 40

// Direction 单词方向
type Direction string

const (
	Across Direction = "across"
	Down   Direction = "down"
)

// CrosswordEntry 填字游戏中的一个单词
// 行列从0开始
type CrosswordEntry struct {
	Clue   string `json:"clue"`
	Answer string `json:"answer"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
}

// UnmarshalJSON 兼容西语字段名
func (e *CrosswordEntry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Clue      string `json:"clue"`
		Pista     string `json:"pista"`
		Answer    string `json:"answer"`
		Respuesta string `json:"respuesta"`
		Row       *int   `json:"row"`
		Fila      *int   `json:"fila"`
		Col       *int   `json:"col"`
		Columna   *int   `json:"columna"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Clue = firstNonEmpty(raw.Clue, raw.Pista)
	e.Answer = firstNonEmpty(raw.Answer, raw.Respuesta)
	e.Row = firstInt(raw.Row, raw.Fila)
	e.Col = firstInt(raw.Col, raw.Columna)
	return nil
}

// Crossword 填字游戏，键为题号
type Crossword struct {
	Across map[string]CrosswordEntry `json:"across"`
	Down   map[string]CrosswordEntry `json:"down"`
}

// Placement 带编号和方向的单词
type Placement struct {
	Number    int
	Direction Direction
	CrosswordEntry
}

// Letters 答案的字母序列，去掉空格和连字符并转大写
func (p Placement) Letters() []rune {
	letters := make([]rune, 0, len(p.Answer))
	for _, r := range p.Answer {
		if unicode.IsSpace(r) || r == '-' {
			continue
		}
		letters = append(letters, unicode.ToUpper(r))
	}
	return letters
}

// Conflict 无法放入网格的单词
type Conflict struct {
	Key       string    `json:"key"`
	Direction Direction `json:"direction"`
	Row       int       `json:"row"`
	Col       int       `json:"col"`
	Reason    string    `json:"reason"`
}

// Cell 网格单元，Letter 为0表示黑格
type Cell struct {
	Letter rune
	Number int
}

// MarshalJSON 字母以字符串输出，黑格为空串
func (c Cell) MarshalJSON() ([]byte, error) {
	letter := ""
	if c.Letter != 0 {
		letter = string(c.Letter)
	}
	return json.Marshal(struct {
		Letter string `json:"letter"`
		Number int    `json:"number,omitempty"`
	}{letter, c.Number})
}

// Grid 填字网格
type Grid struct {
	Rows      int        `json:"rows"`
	Cols      int        `json:"cols"`
	Cells     [][]Cell   `json:"cells"`
	Conflicts []Conflict `json:"conflicts,omitempty"`
}

// AsCrossword 将制品解析为填字游戏
func AsCrossword(a *Artifact) (*Crossword, error) {
	if a.Malformed {
		return nil, fmt.Errorf("填字内容不是有效的JSON")
	}
	var c Crossword
	if err := a.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("解析填字游戏失败: %w", err)
	}
	if len(c.Across) == 0 && len(c.Down) == 0 {
		return nil, fmt.Errorf("填字游戏没有单词")
	}
	return &c, nil
}

// Placements 按编号排序，同号时横向在前
func (c *Crossword) Placements() ([]Placement, []Conflict) {
	var placements []Placement
	var conflicts []Conflict
	collect := func(dir Direction, entries map[string]CrosswordEntry) {
		for key, entry := range entries {
			n, err := strconv.Atoi(strings.TrimSpace(key))
			if err != nil || n <= 0 {
				conflicts = append(conflicts, Conflict{Key: key, Direction: dir, Row: entry.Row, Col: entry.Col, Reason: "编号无效"})
				continue
			}
			placements = append(placements, Placement{Number: n, Direction: dir, CrosswordEntry: entry})
		}
	}
	collect(Across, c.Across)
	collect(Down, c.Down)

	sort.Slice(placements, func(i, j int) bool {
		if placements[i].Number != placements[j].Number {
			return placements[i].Number < placements[j].Number
		}
		return placements[i].Direction == Across && placements[j].Direction == Down
	})
	sort.Slice(conflicts, func(i, j int) bool { return conflicts[i].Key < conflicts[j].Key })
	return placements, conflicts
}

// CrosswordGrid 把答案排进网格
// 越界或与已有字母冲突的单词不写入，记录在 Conflicts 中
func CrosswordGrid(c *Crossword) *Grid {
	placements, conflicts := c.Placements()

	rows, cols := 0, 0
	var fitting []Placement
	for _, p := range placements {
		letters := p.Letters()
		// 先检查起点，避免加长度后溢出
		if p.Row < 0 || p.Col < 0 || p.Row >= MaxGridSize || p.Col >= MaxGridSize {
			conflicts = append(conflicts, conflictOf(p, "超出网格范围"))
			continue
		}
		endRow, endCol := p.Row+1, p.Col+1
		if p.Direction == Across {
			endCol = p.Col + len(letters)
		} else {
			endRow = p.Row + len(letters)
		}
		if len(letters) == 0 || endRow > MaxGridSize || endCol > MaxGridSize {
			conflicts = append(conflicts, conflictOf(p, "超出网格范围"))
			continue
		}
		fitting = append(fitting, p)
		if endRow > rows {
			rows = endRow
		}
		if endCol > cols {
			cols = endCol
		}
	}

	g := &Grid{Rows: rows, Cols: cols, Cells: make([][]Cell, rows)}
	for i := range g.Cells {
		g.Cells[i] = make([]Cell, cols)
	}

	for _, p := range fitting {
		letters := p.Letters()
		if !g.fits(p, letters) {
			conflicts = append(conflicts, conflictOf(p, "与已有字母冲突"))
			continue
		}
		for i, r := range letters {
			row, col := p.Row, p.Col+i
			if p.Direction == Down {
				row, col = p.Row+i, p.Col
			}
			g.Cells[row][col].Letter = r
		}
		if g.Cells[p.Row][p.Col].Number == 0 {
			g.Cells[p.Row][p.Col].Number = p.Number
		}
	}

	g.Conflicts = conflicts
	return g
}

func (g *Grid) fits(p Placement, letters []rune) bool {
	for i, r := range letters {
		row, col := p.Row, p.Col+i
		if p.Direction == Down {
			row, col = p.Row+i, p.Col
		}
		existing := g.Cells[row][col].Letter
		if existing != 0 && existing != r {
			return false
		}
	}
	return true
}

// String 文本形式的网格，黑格为 #
func (g *Grid) String() string {
	var b strings.Builder
	for _, row := range g.Cells {
		for _, cell := range row {
			if cell.Letter == 0 {
				b.WriteRune('#')
			} else {
				b.WriteRune(cell.Letter)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func conflictOf(p Placement, reason string) Conflict {
	return Conflict{Key: strconv.Itoa(p.Number), Direction: p.Direction, Row: p.Row, Col: p.Col, Reason: reason}
}

func firstInt(values ...*int) int {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return 0
}
