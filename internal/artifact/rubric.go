package artifact

import (
	"encoding/json"
	"fmt"
)

// PointsPerCriterion 每个评价标准的满分
const PointsPerCriterion = 5

// LevelNames 评分等级，按分值从高到低
var LevelNames = []string{"excelente", "bueno", "regular", "deficiente"}

// Rubric 评分量规，检查清单共用该结构
type Rubric struct {
	Titulo      string      `json:"titulo"`
	Descripcion string      `json:"descripcion"`
	Criterios   []Criterion `json:"criterios"`
}

// Criterion 评价标准
type Criterion struct {
	Criterio    string            `json:"criterio"`
	Descripcion string            `json:"descripcion,omitempty"`
	Niveles     map[string]string `json:"niveles,omitempty"`
	Puntaje     int               `json:"puntaje,omitempty"`
}

// UnmarshalJSON 兼容纯字符串和对象两种写法
func (c *Criterion) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = Criterion{Criterio: s}
		return nil
	}

	var raw struct {
		Criterio    string            `json:"criterio"`
		Nombre      string            `json:"nombre"`
		Indicador   string            `json:"indicador"`
		Descripcion string            `json:"descripcion"`
		Niveles     map[string]string `json:"niveles"`
		Puntaje     json.Number       `json:"puntaje"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	c.Criterio = firstNonEmpty(raw.Criterio, raw.Nombre, raw.Indicador)
	c.Descripcion = raw.Descripcion
	c.Niveles = raw.Niveles
	if raw.Puntaje != "" {
		if n, err := raw.Puntaje.Int64(); err == nil {
			c.Puntaje = int(n)
		}
	}
	return nil
}

// MaxScore 量规满分
func (r *Rubric) MaxScore() int {
	return len(r.Criterios) * PointsPerCriterion
}

// HasLevels 是否有标准带等级描述
func (r *Rubric) HasLevels() bool {
	for _, c := range r.Criterios {
		if len(c.Niveles) > 0 {
			return true
		}
	}
	return false
}

// AsRubric 将制品解析为量规
func AsRubric(a *Artifact) (*Rubric, error) {
	if a.Malformed {
		return nil, fmt.Errorf("量规内容不是有效的JSON")
	}
	var r Rubric
	if err := a.Unmarshal(&r); err != nil {
		return nil, fmt.Errorf("解析量规失败: %w", err)
	}
	if len(r.Criterios) == 0 {
		return nil, fmt.Errorf("量规缺少评价标准")
	}
	if r.Titulo == "" {
		r.Titulo = a.Title
	}
	return &r, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
