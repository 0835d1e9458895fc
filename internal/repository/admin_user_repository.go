package repository

import (
	"time"

	"studio-go/internal/models"

	"gorm.io/gorm"
)

// AdminUserRepository 管理员数据访问层
type AdminUserRepository struct {
	db *gorm.DB
}

// NewAdminUserRepository 创建管理员Repository
func NewAdminUserRepository(db *gorm.DB) *AdminUserRepository {
	return &AdminUserRepository{db: db}
}

// Create 创建管理员
func (r *AdminUserRepository) Create(user *models.AdminUser) error {
	return r.db.Create(user).Error
}

// GetByUsername 根据用户名获取管理员
func (r *AdminUserRepository) GetByUsername(username string) (*models.AdminUser, error) {
	var user models.AdminUser
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Count 管理员数量
func (r *AdminUserRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.AdminUser{}).Count(&count).Error
	return count, err
}

// TouchLogin 记录最近登录时间
func (r *AdminUserRepository) TouchLogin(id uint) error {
	return r.db.Model(&models.AdminUser{}).Where("id = ?", id).Update("last_login_at", time.Now()).Error
}

// GetByID 根据ID获取管理员
func (r *AdminUserRepository) GetByID(id uint) (*models.AdminUser, error) {
	var user models.AdminUser
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}
