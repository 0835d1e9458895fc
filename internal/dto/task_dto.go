package dto

import "time"

// GenerateRequest 生成请求，字段因工具而异
type GenerateRequest struct {
	Fields map[string]interface{} `json:"fields" binding:"required"`
}

// TaskResponse 生成任务信息
type TaskResponse struct {
	TaskID         string     `json:"task_id"`
	Email          string     `json:"email"`
	Tool           string     `json:"tool"`
	Status         string     `json:"status"`
	IdempotencyKey string     `json:"idempotency_key"`
	ArtifactID     string     `json:"artifact_id,omitempty"`
	Attempts       int        `json:"attempts"`
	Error          string     `json:"error,omitempty"`
	Reused         bool       `json:"reused,omitempty"`
	StartedAt      time.Time  `json:"started_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
}

// GenerateResponse 同步生成结果
type GenerateResponse struct {
	Task     TaskResponse     `json:"task"`
	Artifact ArtifactResponse `json:"artifact"`
}

// 进度事件类型
const (
	EventQueued    = "queued"
	EventAccess    = "access"
	EventAttempt   = "attempt"
	EventRetry     = "retry"
	EventFinished  = "finished"
	EventError     = "error"
	EventCancelled = "cancelled"
)

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type       string    `json:"type"`
	Message    string    `json:"message,omitempty"`
	Attempt    int       `json:"attempt,omitempty"`
	ArtifactID string    `json:"artifact_id,omitempty"`
	Time       time.Time `json:"time"`
}

// IsTerminal 是否为结束事件
func (e *ProgressEvent) IsTerminal() bool {
	switch e.Type {
	case EventFinished, EventError, EventCancelled:
		return true
	}
	return false
}
