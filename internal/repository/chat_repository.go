package repository

import (
	"studio-go/internal/models"

	"gorm.io/gorm"
)

// ChatRepository 改进对话数据访问层
type ChatRepository struct {
	db *gorm.DB
}

// NewChatRepository 创建对话Repository
func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// CreateBatch 批量写入消息
func (r *ChatRepository) CreateBatch(messages []models.ChatMessage) error {
	if len(messages) == 0 {
		return nil
	}
	return r.db.Create(&messages).Error
}

// ListByArtifact 获取制品的对话历史
func (r *ChatRepository) ListByArtifact(artifactID string) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := r.db.Where("artifact_id = ?", artifactID).Order("id ASC").Find(&messages).Error
	return messages, err
}

// DeleteByArtifact 清空制品的对话历史
func (r *ChatRepository) DeleteByArtifact(artifactID string) error {
	return r.db.Where("artifact_id = ?", artifactID).Delete(&models.ChatMessage{}).Error
}
