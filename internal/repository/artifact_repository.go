package repository

import (
	"studio-go/internal/models"

	"gorm.io/gorm"
)

// ArtifactRepository 制品数据访问层
type ArtifactRepository struct {
	db *gorm.DB
}

// NewArtifactRepository 创建制品Repository
func NewArtifactRepository(db *gorm.DB) *ArtifactRepository {
	return &ArtifactRepository{db: db}
}

// Create 创建制品
func (r *ArtifactRepository) Create(artifact *models.Artifact) error {
	return r.db.Create(artifact).Error
}

// GetByID 根据ID获取制品
func (r *ArtifactRepository) GetByID(id string) (*models.Artifact, error) {
	var artifact models.Artifact
	err := r.db.Where("id = ?", id).First(&artifact).Error
	if err != nil {
		return nil, err
	}
	return &artifact, nil
}

// Update 更新制品
func (r *ArtifactRepository) Update(artifact *models.Artifact) error {
	return r.db.Save(artifact).Error
}

// ListByEmail 获取用户的制品列表
func (r *ArtifactRepository) ListByEmail(email, tool string, offset, limit int) ([]models.Artifact, int64, error) {
	var list []models.Artifact
	var total int64

	query := r.db.Model(&models.Artifact{}).Where("email = ?", email)
	if tool != "" {
		query = query.Where("tool = ?", tool)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&list).Error
	return list, total, err
}

// Delete 删除制品
func (r *ArtifactRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.Artifact{}).Error
}
