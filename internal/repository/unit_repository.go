package repository

import (
	"errors"

	"studio-go/internal/models"

	"gorm.io/gorm"
)

// ErrStaleVersion 单元版本已过期
var ErrStaleVersion = errors.New("单元版本已过期")

// UnitRepository 单元计划数据访问层
type UnitRepository struct {
	db *gorm.DB
}

// NewUnitRepository 创建单元Repository
func NewUnitRepository(db *gorm.DB) *UnitRepository {
	return &UnitRepository{db: db}
}

// Create 创建单元
func (r *UnitRepository) Create(unit *models.Unit) error {
	if unit.Version == 0 {
		unit.Version = 1
	}
	return r.db.Create(unit).Error
}

// GetByID 根据ID获取单元
func (r *UnitRepository) GetByID(id string) (*models.Unit, error) {
	var unit models.Unit
	err := r.db.Where("id = ?", id).First(&unit).Error
	if err != nil {
		return nil, err
	}
	return &unit, nil
}

// FindByArtifact 查找由指定制品生成的单元
func (r *UnitRepository) FindByArtifact(email, artifactID string) (*models.Unit, error) {
	var unit models.Unit
	err := r.db.Where("email = ? AND artifact_id = ?", email, artifactID).First(&unit).Error
	if err != nil {
		return nil, err
	}
	return &unit, nil
}

// ListByEmail 获取用户的全部单元
func (r *UnitRepository) ListByEmail(email string) ([]models.Unit, error) {
	var units []models.Unit
	err := r.db.Where("email = ?", email).Order("created_at ASC").Find(&units).Error
	return units, err
}

// Replace 整体替换单元内容
// expectedVersion 为0时后写覆盖先写，否则只在版本一致时写入
func (r *UnitRepository) Replace(unit *models.Unit, expectedVersion int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var current models.Unit
		if err := tx.Where("id = ?", unit.ID).First(&current).Error; err != nil {
			return err
		}
		if expectedVersion > 0 && current.Version != expectedVersion {
			return ErrStaleVersion
		}

		unit.Version = current.Version + 1
		unit.Email = current.Email
		unit.CreatedAt = current.CreatedAt
		return tx.Model(&models.Unit{}).Where("id = ?", unit.ID).Updates(map[string]interface{}{
			"nombre_unidad": unit.NombreUnidad,
			"asignatura":    unit.Asignatura,
			"nivel":         unit.Nivel,
			"lecciones":     unit.Lecciones,
			"version":       unit.Version,
		}).Error
	})
}

// Delete 删除单元
func (r *UnitRepository) Delete(id string) error {
	return r.db.Where("id = ?", id).Delete(&models.Unit{}).Error
}
