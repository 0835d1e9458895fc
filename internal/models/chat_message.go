package models

import (
	"time"
)

// ChatMessage 制品改进对话消息
type ChatMessage struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	ArtifactID string    `gorm:"size:36;not null;index" json:"artifact_id"`
	Email      string    `gorm:"size:255;not null" json:"email"`
	Role       string    `gorm:"size:20;not null" json:"role"` // user, assistant
	Content    string    `gorm:"type:text;not null" json:"content"`
	Applied    bool      `gorm:"default:false" json:"applied"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName 指定表名
func (ChatMessage) TableName() string {
	return "chat_messages"
}
