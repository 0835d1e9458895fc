package repository

import (
	"studio-go/internal/models"

	"gorm.io/gorm"
)

// ToolEndpointRepository 工具配置数据访问层
type ToolEndpointRepository struct {
	db *gorm.DB
}

// NewToolEndpointRepository 创建工具配置Repository
func NewToolEndpointRepository(db *gorm.DB) *ToolEndpointRepository {
	return &ToolEndpointRepository{db: db}
}

// Create 创建工具配置
func (r *ToolEndpointRepository) Create(endpoint *models.ToolEndpoint) error {
	return r.db.Create(endpoint).Error
}

// GetByID 根据ID获取工具配置
func (r *ToolEndpointRepository) GetByID(id uint) (*models.ToolEndpoint, error) {
	var endpoint models.ToolEndpoint
	err := r.db.First(&endpoint, id).Error
	if err != nil {
		return nil, err
	}
	return &endpoint, nil
}

// GetActiveByName 根据名称获取启用的工具配置
func (r *ToolEndpointRepository) GetActiveByName(name string) (*models.ToolEndpoint, error) {
	var endpoint models.ToolEndpoint
	err := r.db.Where("name = ? AND is_active = ?", name, true).First(&endpoint).Error
	if err != nil {
		return nil, err
	}
	return &endpoint, nil
}

// Update 更新工具配置
func (r *ToolEndpointRepository) Update(endpoint *models.ToolEndpoint) error {
	return r.db.Save(endpoint).Error
}

// Delete 删除工具配置
func (r *ToolEndpointRepository) Delete(id uint) error {
	return r.db.Delete(&models.ToolEndpoint{}, id).Error
}

// List 获取工具配置列表
func (r *ToolEndpointRepository) List(offset, limit int) ([]models.ToolEndpoint, int64, error) {
	var list []models.ToolEndpoint
	var total int64

	if err := r.db.Model(&models.ToolEndpoint{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Order("name ASC").Offset(offset).Limit(limit).Find(&list).Error
	return list, total, err
}
