package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Unit 单元计划
type Unit struct {
	ID           string    `gorm:"primaryKey;size:36" json:"_id"`
	Email        string    `gorm:"size:255;not null;index" json:"email"`
	ArtifactID   string    `gorm:"size:36;index" json:"artifact_id,omitempty"` // 生成该单元的制品
	NombreUnidad string    `gorm:"size:500;not null" json:"nombreUnidad"`
	Asignatura   string    `gorm:"size:100" json:"asignatura"`
	Nivel        string    `gorm:"size:100" json:"nivel"`
	Lecciones    Lessons   `gorm:"type:text" json:"lecciones"`
	Version      int64     `gorm:"not null;default:1" json:"version"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Unit) TableName() string {
	return "units"
}

// Lesson 单元中的每日课时
type Lesson struct {
	Dia        int           `json:"dia"`
	Fecha      string        `json:"fecha"` // dd/mm/yyyy
	Titulo     string        `json:"titulo"`
	Inicio     LessonSection `json:"inicio"`
	Desarrollo LessonSection `json:"desarrollo"`
	Cierre     LessonSection `json:"cierre"`
}

// LessonSection 课时的一个环节
type LessonSection struct {
	Tema        string   `json:"tema"`
	Actividades []string `json:"actividades"`
	Recursos    []string `json:"recursos"`
	Logros      []string `json:"logros"`
	Evidencia   string   `json:"evidencia,omitempty"`
}

// Lessons 课时列表，以JSON存储
type Lessons []Lesson

// Scan 实现sql.Scanner接口
func (l *Lessons) Scan(value interface{}) error {
	if value == nil {
		*l = Lessons{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	}
	return nil
}

// Value 实现driver.Valuer接口
func (l Lessons) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
