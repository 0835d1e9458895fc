package models

import (
	"time"
)

// 制品来源
const (
	SourceGenerated    = "generated"
	SourceChatRevision = "chatRevision"
)

// Artifact 生成的教学资源
type Artifact struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	Tool           string    `gorm:"size:100;not null;index" json:"tool"`
	Email          string    `gorm:"size:255;not null;index" json:"email"`
	Kind           string    `gorm:"size:10;default:'json'" json:"kind"` // json, text
	Source         string    `gorm:"size:20;default:'generated'" json:"source"`
	Title          string    `gorm:"size:500" json:"title"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	Revision       int       `gorm:"default:0" json:"revision"`
	IdempotencyKey string    `gorm:"size:64;index" json:"idempotency_key"`
	TaskID         string    `gorm:"size:36" json:"task_id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Artifact) TableName() string {
	return "artifacts"
}
