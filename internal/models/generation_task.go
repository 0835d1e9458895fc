package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// 任务状态
const (
	TaskStatusQueued    = "queued"
	TaskStatusRunning   = "running"
	TaskStatusFinished  = "finished"
	TaskStatusError     = "error"
	TaskStatusCancelled = "cancelled"
)

// GenerationTask 生成任务模型
type GenerationTask struct {
	ID             uint       `gorm:"primarykey" json:"id"`
	TaskID         string     `gorm:"uniqueIndex;size:36;not null" json:"task_id"`
	Email          string     `gorm:"size:255;not null;index" json:"email"`
	Tool           string     `gorm:"size:100;not null" json:"tool"`
	IdempotencyKey string     `gorm:"size:64;index" json:"idempotency_key"`
	Status         string     `gorm:"size:20;default:'queued'" json:"status"`
	Params         JSONMap    `gorm:"type:text" json:"params"`
	ArtifactID     string     `gorm:"size:36" json:"artifact_id"`
	Attempts       int        `gorm:"default:0" json:"attempts"`
	ErrorMessage   string     `gorm:"type:text" json:"error_message"`
	StartedAt      time.Time  `json:"started_at"`
	FinishedAt     *time.Time `json:"finished_at"`
}

// TableName 指定表名
func (GenerationTask) TableName() string {
	return "generation_tasks"
}

// IsTerminal 任务是否已结束
func (t *GenerationTask) IsTerminal() bool {
	return t.Status == TaskStatusFinished || t.Status == TaskStatusError || t.Status == TaskStatusCancelled
}

// JSONMap 自定义JSON类型
type JSONMap map[string]interface{}

// Scan 实现sql.Scanner接口
func (j *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSONMap)
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	}
	return nil
}

// Value 实现driver.Valuer接口
func (j JSONMap) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
