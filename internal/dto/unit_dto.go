package dto

import "studio-go/internal/models"

// UpdateUnitRequest 整体替换单元
// ExpectedVersion 为0时后写覆盖
type UpdateUnitRequest struct {
	NombreUnidad    string         `json:"nombreUnidad" binding:"required"`
	Asignatura      string         `json:"asignatura"`
	Nivel           string         `json:"nivel"`
	Lecciones       models.Lessons `json:"lecciones" binding:"required"`
	ExpectedVersion int64          `json:"expected_version" binding:"min=0"`
}

// CalendarQuery 日历查询参数
type CalendarQuery struct {
	Subjects []string `form:"subject"`
	Levels   []string `form:"level"`
	Date     string   `form:"date" binding:"omitempty,lesson_date"`
}

// CalendarResponse 日历事件
type CalendarResponse struct {
	Events   interface{} `json:"events"`
	Subjects []string    `json:"subjects"`
	Levels   []string    `json:"levels"`
	Skipped  []string    `json:"skipped,omitempty"`
}
